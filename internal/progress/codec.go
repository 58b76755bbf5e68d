package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/verte-zerg/keycamp/internal/curriculum"
)

// Decode parses a stored progress record. Missing or corrupt data yields an
// empty map; malformed entries are dropped one by one.
func Decode(data []byte) Progress {
	out := Progress{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("ignoring corrupt progress record", "error", err)
		return out
	}
	for key, value := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id <= 0 {
			slog.Warn("dropping progress entry with bad chapter id", "key", key)
			continue
		}
		var e Entry
		if err := json.Unmarshal(value, &e); err != nil {
			slog.Warn("dropping corrupt progress entry", "chapter", id, "error", err)
			continue
		}
		if e.Stars < curriculum.MinStars || e.Stars > curriculum.MaxStars || e.Accuracy < 0 || e.Accuracy > 100 || e.WPM < 0 {
			slog.Warn("dropping out-of-range progress entry", "chapter", id, "stars", e.Stars)
			continue
		}
		out[id] = e
	}
	return out
}

// Encode serializes progress as a JSON object keyed by chapter id.
func Encode(p Progress) ([]byte, error) {
	if p == nil {
		p = Progress{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode progress: %w", err)
	}
	return data, nil
}
