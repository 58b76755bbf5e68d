package stats

import (
	"context"
	"io"
	"strings"

	"github.com/verte-zerg/keycamp/internal/model"
)

// History is the read side of the attempt log.
type History interface {
	ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptAggregate, error)
	KeyAggregatesForAttempts(ctx context.Context, attemptIDs []string) ([]model.KeyAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Attempts         []model.AttemptAggregate
	WindowAttemptIDs []string
	KeysAll          []model.KeyAggregate
	KeysWindow       []model.KeyAggregate
	WeakKeys         []string
	TopKeys          []string
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, h History, cfg model.StatsConfig) (Report, error) {
	attempts, err := h.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}

	windowIDs := lastAttemptIDs(attempts, cfg.KeyWindow)
	keysAll, err := h.KeyAggregatesForAttempts(ctx, attemptIDs(attempts))
	if err != nil {
		return Report{}, err
	}
	keysWindow, err := h.KeyAggregatesForAttempts(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Attempts:         attempts,
		WindowAttemptIDs: windowIDs,
		KeysAll:          keysAll,
		KeysWindow:       keysWindow,
		WeakKeys:         SelectWeakKeys(keysWindow, cfg.WeakTop),
		TopKeys:          TopKeysByFrequency(keysAll, cfg.WeakTop),
	}, nil
}

// Render prints the whole report. width caps the curve length.
func (r Report) Render(w io.Writer, window, width int) error {
	if err := RenderSummary(w, r.Attempts); err != nil {
		return err
	}
	if len(r.Attempts) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Attempts, window, width); err != nil {
		return err
	}
	if err := RenderKeyTable(w, r.KeysWindow); err != nil {
		return err
	}
	var lines []string
	if len(r.TopKeys) > 0 {
		lines = append(lines, "Most practiced: "+joinKeyLabels(r.TopKeys))
	}
	if len(r.WeakKeys) > 0 {
		lines = append(lines, "Weak keys: "+joinKeyLabels(r.WeakKeys))
	}
	return writeLines(w, lines)
}

func joinKeyLabels(keys []string) string {
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = keyLabel(k)
	}
	return strings.Join(labels, " ")
}

func attemptIDs(attempts []model.AttemptAggregate) []string {
	ids := make([]string, len(attempts))
	for i, a := range attempts {
		ids[i] = a.AttemptID
	}
	return ids
}

func lastAttemptIDs(attempts []model.AttemptAggregate, window int) []string {
	if window <= 0 || len(attempts) <= window {
		return attemptIDs(attempts)
	}
	return attemptIDs(attempts[len(attempts)-window:])
}
