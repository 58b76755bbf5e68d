package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keycamp/internal/curriculum"
	"github.com/verte-zerg/keycamp/internal/model"
	"github.com/verte-zerg/keycamp/internal/progress"
	"github.com/verte-zerg/keycamp/internal/trainer"
)

func TestAttemptMetrics(t *testing.T) {
	assert.Equal(t, Summary{}, AttemptMetrics(nil))

	sum := AttemptMetrics([]model.AttemptAggregate{
		{WPM: 10, Accuracy: 90, Stars: 1},
		{WPM: 20, Accuracy: 80, Stars: 2},
		{WPM: 15, Accuracy: 100, Stars: 3},
	})
	assert.Equal(t, 3, sum.Attempts)
	assert.InDelta(t, 15.0, sum.AvgWPM, 1e-9)
	assert.Equal(t, 20, sum.BestWPM)
	assert.InDelta(t, 90.0, sum.AvgAccuracy, 1e-9)
	assert.Equal(t, 6, sum.TotalStars)
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		window int
		want   []float64
	}{
		{"empty", nil, 3, []float64{}},
		{"window one copies", []float64{1, 2, 3}, 1, []float64{1, 2, 3}},
		{"rolling", []float64{2, 4, 6, 8}, 2, []float64{2, 3, 5, 7}},
		{"window larger than input", []float64{3, 6}, 5, []float64{3, 4.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDeltaSlice(t, tt.want, MovingAverage(tt.values, tt.window), 1e-9)
		})
	}
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "+++", Sparkline([]float64{5, 5, 5}))
	assert.Equal(t, " @", Sparkline([]float64{1, 9}))
	line := Sparkline([]float64{0, 5, 10})
	assert.Len(t, line, 3)
	assert.Equal(t, byte(' '), line[0])
	assert.Equal(t, byte('@'), line[2])
}

func TestStarBar(t *testing.T) {
	assert.Equal(t, "---", StarBar(0))
	assert.Equal(t, "**-", StarBar(2))
	assert.Equal(t, "***", StarBar(3))
	assert.Equal(t, "***", StarBar(7))
	assert.Equal(t, "---", StarBar(-1))
}

func TestSelectWeakKeys(t *testing.T) {
	aggs := []model.KeyAggregate{
		{Key: "a", Correct: 9, Incorrect: 1},
		{Key: "b", Correct: 1, Incorrect: 1},
		{Key: "c", Correct: 5},
		{Key: "d", Correct: 3, Incorrect: 1},
		{Key: "e", Correct: 1, Incorrect: 1},
	}
	assert.Equal(t, []string{"b", "e"}, SelectWeakKeys(aggs, 2))
	assert.Equal(t, []string{"b", "e", "d", "a"}, SelectWeakKeys(aggs, 0))
	assert.Nil(t, SelectWeakKeys(nil, 3))
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, nil))
	assert.Equal(t, "No attempts found.\n", buf.String())
}

func TestRenderCurvesCapsWidth(t *testing.T) {
	attempts := make([]model.AttemptAggregate, 10)
	for i := range attempts {
		attempts[i] = model.AttemptAggregate{WPM: i, Accuracy: 90}
	}
	var buf bytes.Buffer
	require.NoError(t, RenderCurves(&buf, attempts, 1, 4))
	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "WPM      "+" -*@"+"  (6..9)", lines[1])
	assert.Contains(t, lines[2], "++++")
}

func TestRenderKeyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderKeyTable(&buf, []model.KeyAggregate{
		{Key: " ", Correct: 4},
		{Key: "q", Correct: 1, Incorrect: 3, LatencySumMs: 500, LatencyCount: 2},
	}))
	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "Per-Key (Windowed)", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "q"), lines[2])
	assert.Contains(t, lines[2], "25.00%")
	assert.Contains(t, lines[2], "250.0")
	assert.True(t, strings.HasPrefix(lines[3], "<space>"), lines[3])

	buf.Reset()
	require.NoError(t, RenderKeyTable(&buf, nil))
	assert.Equal(t, "No key stats found.\n", buf.String())
}

func TestRenderProgressTable(t *testing.T) {
	c, err := curriculum.Default()
	require.NoError(t, err)
	ch1, _ := c.ChapterByID(1)
	ch2, _ := c.ChapterByID(2)
	ch3, _ := c.ChapterByID(3)
	statuses := []trainer.ChapterStatus{
		{Chapter: ch1, Attempted: true, Entry: progress.Entry{Stars: 2, WPM: 14, Accuracy: 88}},
		{Chapter: ch2},
		{Chapter: ch3, Locked: true},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderProgressTable(&buf, statuses))
	out := buf.String()
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[1], "done")
	assert.Contains(t, lines[1], "**-")
	assert.Contains(t, lines[1], "88%")
	assert.Contains(t, lines[2], "open")
	assert.Contains(t, lines[3], "locked")
	assert.Contains(t, out, "Stars: 2/9")
}
