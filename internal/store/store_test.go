package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keycamp/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "keycamp.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return s
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte(`{"1":{}}`)))
	value, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"1":{}}`, string(value))

	require.NoError(t, s.Set(ctx, "k", []byte("second")))
	value, _, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(value))

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keycamp.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	value, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(value))
}

func insert(t *testing.T, s *Store, chapterID int, endedAt time.Time, wpm int, keys []model.KeyStats) string {
	t.Helper()
	id, err := s.InsertAttempt(context.Background(), model.Attempt{
		ChapterID:  chapterID,
		StartedAt:  endedAt.Add(-time.Minute),
		EndedAt:    endedAt,
		TextLength: 20,
		Words:      4,
		Correct:    19,
		Errors:     1,
		WPM:        wpm,
		Accuracy:   95,
		Stars:      2,
		DurationMs: 60000,
	}, keys)
	require.NoError(t, err)
	return id
}

func TestInsertAndListAttempts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	first := insert(t, s, 1, base, 10, nil)
	second := insert(t, s, 2, base.Add(time.Hour), 20, nil)
	third := insert(t, s, 1, base.Add(2*time.Hour), 30, nil)
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)

	all, err := s.ListAttempts(ctx, model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{first, second, third}, []string{all[0].AttemptID, all[1].AttemptID, all[2].AttemptID})
	assert.True(t, all[0].EndedAt.Equal(base))
	assert.Equal(t, 95, all[0].Accuracy)
	assert.Equal(t, 2, all[0].Stars)
	assert.Equal(t, 1, all[0].Errors)

	chapterOne, err := s.ListAttempts(ctx, model.StatsConfig{ChapterID: 1})
	require.NoError(t, err)
	require.Len(t, chapterOne, 2)
	assert.Equal(t, 30, chapterOne[1].WPM)

	since := base.Add(30 * time.Minute)
	recent, err := s.ListAttempts(ctx, model.StatsConfig{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	last, err := s.ListAttempts(ctx, model.StatsConfig{Last: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, third, last[0].AttemptID)
}

func TestInsertAttemptKeepsExplicitID(t *testing.T) {
	s := openTestStore(t)
	id, err := s.InsertAttempt(context.Background(), model.Attempt{ID: "fixed", ChapterID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)

	_, err = s.InsertAttempt(context.Background(), model.Attempt{ID: "fixed", ChapterID: 1}, nil)
	assert.Error(t, err)
}

func TestKeyAggregates(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	old := insert(t, s, 1, base, 10, []model.KeyStats{
		{Key: "a", Correct: 5, Incorrect: 5, LatencySumMs: 1000, LatencyCount: 4},
	})
	mid := insert(t, s, 2, base.Add(time.Hour), 10, []model.KeyStats{
		{Key: "a", Correct: 3, Incorrect: 1, LatencySumMs: 300, LatencyCount: 2},
		{Key: "b", Correct: 2, LatencySumMs: 100, LatencyCount: 1},
	})
	insert(t, s, 1, base.Add(2*time.Hour), 10, []model.KeyStats{
		{Key: "a", Correct: 1, Incorrect: 1},
	})

	window, err := s.KeyAggregates(ctx, 2, 0)
	require.NoError(t, err)
	byKey := map[string]model.KeyAggregate{}
	for _, agg := range window {
		byKey[agg.Key] = agg
	}
	assert.Equal(t, model.KeyAggregate{Key: "a", Correct: 4, Incorrect: 2, LatencySumMs: 300, LatencyCount: 2}, byKey["a"])
	assert.Equal(t, model.KeyAggregate{Key: "b", Correct: 2, LatencySumMs: 100, LatencyCount: 1}, byKey["b"])

	chapterOne, err := s.KeyAggregates(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, chapterOne, 1)
	assert.Equal(t, 6, chapterOne[0].Correct)
	assert.Equal(t, 6, chapterOne[0].Incorrect)

	none, err := s.KeyAggregates(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	selected, err := s.KeyAggregatesForAttempts(ctx, []string{old, mid})
	require.NoError(t, err)
	byKey = map[string]model.KeyAggregate{}
	for _, agg := range selected {
		byKey[agg.Key] = agg
	}
	assert.Equal(t, 8, byKey["a"].Correct)
	assert.Equal(t, int64(1300), byKey["a"].LatencySumMs)

	empty, err := s.KeyAggregatesForAttempts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteAttempts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	insert(t, s, 1, time.Now(), 10, []model.KeyStats{{Key: "a", Correct: 1}})
	require.NoError(t, s.Set(ctx, "progress", []byte("{}")))

	require.NoError(t, s.DeleteAttempts(ctx))
	attempts, err := s.ListAttempts(ctx, model.StatsConfig{})
	require.NoError(t, err)
	assert.Empty(t, attempts)
	keys, err := s.KeyAggregates(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, ok, err := s.Get(ctx, "progress")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'x'
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, m.Close())
}

func TestRedisParseURL(t *testing.T) {
	_, err := ParseURL("")
	assert.Error(t, err)

	_, err = ParseURL("http://localhost:6379")
	assert.Error(t, err)

	opts, err := ParseURL("redis://:secret@localhost:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
}

func TestNewRedisFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedis(ctx, "redis://127.0.0.1:1/0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pinging redis")
}
