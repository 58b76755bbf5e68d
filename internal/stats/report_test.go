package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/keycamp/internal/model"
	"github.com/verte-zerg/keycamp/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "keycamp.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		attempt := model.Attempt{
			ChapterID:  1,
			StartedAt:  start,
			EndedAt:    end,
			TextLength: 11,
			Words:      2,
			Correct:    10,
			Errors:     1,
			WPM:        4 + i,
			Accuracy:   91,
			Stars:      0,
			DurationMs: end.Sub(start).Milliseconds(),
		}
		keys := []model.KeyStats{
			{Key: "a", Correct: 5, Incorrect: 0},
			{Key: "b", Correct: 4, Incorrect: 1},
		}
		id, err := st.InsertAttempt(ctx, attempt, keys)
		if err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		ChapterID: 1,
		Last:      2,
		KeyWindow: 1,
		WeakTop:   3,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(report.Attempts))
	}
	if report.Attempts[0].AttemptID != ids[1] || report.Attempts[1].AttemptID != ids[2] {
		t.Fatalf("unexpected attempt ids: %+v", report.Attempts)
	}
	if len(report.WindowAttemptIDs) != 1 || report.WindowAttemptIDs[0] != ids[2] {
		t.Fatalf("unexpected window ids: %v", report.WindowAttemptIDs)
	}
	if len(report.KeysAll) != 2 {
		t.Fatalf("expected key aggregates for all attempts, got %+v", report.KeysAll)
	}
	for _, agg := range report.KeysAll {
		if agg.Key == "b" && agg.Correct != 8 {
			t.Fatalf("expected 8 correct b presses across 2 attempts, got %d", agg.Correct)
		}
	}
	if len(report.WeakKeys) != 1 || report.WeakKeys[0] != "b" {
		t.Fatalf("unexpected weak keys: %v", report.WeakKeys)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 2, 40); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Attempts: 2", "Learning Curves", "Per-Key (Windowed)", "Most practiced: a b", "Weak keys: b"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	other, err := BuildReport(ctx, st, model.StatsConfig{ChapterID: 2})
	if err != nil {
		t.Fatalf("build empty report: %v", err)
	}
	if len(other.Attempts) != 0 || len(other.KeysAll) != 0 {
		t.Fatalf("expected empty report, got %+v", other)
	}
}
