package progress

import (
	"context"
	"fmt"
)

// DefaultKey is the storage key holding the whole progress record.
const DefaultKey = "keycamp.progress"

// KV is a minimal key-value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Repository reads and writes the progress record as a whole.
type Repository struct {
	kv  KV
	key string
}

// NewRepository returns a repository over kv. An empty key uses DefaultKey.
func NewRepository(kv KV, key string) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{kv: kv, key: key}
}

// Key returns the storage key.
func (r *Repository) Key() string {
	return r.key
}

// Load returns stored progress. A missing or corrupt record is an empty map;
// only storage failures are returned as errors.
func (r *Repository) Load(ctx context.Context) (Progress, error) {
	data, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to read progress: %w", err)
	}
	if !ok {
		return Progress{}, nil
	}
	return Decode(data), nil
}

// Save writes the whole progress record.
func (r *Repository) Save(ctx context.Context, p Progress) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to write progress: %w", err)
	}
	return nil
}

// Reset deletes the progress record.
func (r *Repository) Reset(ctx context.Context) error {
	if err := r.kv.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}
