// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/keycamp/internal/curriculum"
	"github.com/verte-zerg/keycamp/internal/model"
	"github.com/verte-zerg/keycamp/internal/trainer"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates attempt metrics.
type Summary struct {
	Attempts    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	TotalStars  int
}

// AttemptMetrics summarizes attempts.
func AttemptMetrics(attempts []model.AttemptAggregate) Summary {
	if len(attempts) == 0 {
		return Summary{}
	}
	var sum Summary
	var totalWPM, totalAcc float64
	for _, a := range attempts {
		totalWPM += float64(a.WPM)
		totalAcc += float64(a.Accuracy)
		sum.TotalStars += a.Stars
		if a.WPM > sum.BestWPM {
			sum.BestWPM = a.WPM
		}
	}
	sum.Attempts = len(attempts)
	sum.AvgWPM = totalWPM / float64(len(attempts))
	sum.AvgAccuracy = totalAcc / float64(len(attempts))
	return sum
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// StarBar renders earned stars out of the maximum, e.g. "**-".
func StarBar(stars int) string {
	stars = max(curriculum.MinStars, min(stars, curriculum.MaxStars))
	return strings.Repeat("*", stars) + strings.Repeat("-", curriculum.MaxStars-stars)
}

// RenderSummary prints a summary for attempts.
func RenderSummary(w io.Writer, attempts []model.AttemptAggregate) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	sum := AttemptMetrics(attempts)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", sum.Attempts),
		fmt.Sprintf("Avg WPM: %.2f", sum.AvgWPM),
		fmt.Sprintf("Best WPM: %d", sum.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", sum.AvgAccuracy),
		"",
	}
	return writeLines(w, lines)
}

// RenderCurves prints smoothed WPM and accuracy sparklines, keeping at most
// width points. A width of zero keeps every attempt.
func RenderCurves(w io.Writer, attempts []model.AttemptAggregate, window, width int) error {
	if len(attempts) == 0 {
		return nil
	}
	if width > 0 && len(attempts) > width {
		attempts = attempts[len(attempts)-width:]
	}
	wpms := make([]float64, len(attempts))
	accs := make([]float64, len(attempts))
	for i, a := range attempts {
		wpms[i] = float64(a.WPM)
		accs[i] = float64(a.Accuracy)
	}
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)
	lines := []string{
		"Learning Curves",
		fmt.Sprintf("WPM      %s  (%.0f..%.0f)", Sparkline(wpms), minOf(wpms), maxOf(wpms)),
		fmt.Sprintf("Accuracy %s  (%.0f%%..%.0f%%)", Sparkline(accs), minOf(accs), maxOf(accs)),
		"",
	}
	return writeLines(w, lines)
}

// RenderKeyTable prints per-key aggregates, weakest first.
func RenderKeyTable(w io.Writer, aggs []model.KeyAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No key stats found.")
		return err
	}
	rows := make([]model.KeyAggregate, len(aggs))
	copy(rows, aggs)
	sortByAccuracy(rows)

	tbl := newTextTable(left("Key"), right("Accuracy"), right("Avg Latency (ms)"), right("Correct"), right("Incorrect"))
	for _, agg := range rows {
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		tbl.add(
			keyLabel(agg.Key),
			fmt.Sprintf("%.2f%%", keyAccuracy(agg)*100),
			fmt.Sprintf("%.1f", lat),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		)
	}
	lines := append([]string{"Per-Key (Windowed)"}, tbl.lines()...)
	return writeLines(w, append(lines, ""))
}

// RenderProgressTable prints every chapter with its lock state and best entry.
func RenderProgressTable(w io.Writer, statuses []trainer.ChapterStatus) error {
	if len(statuses) == 0 {
		_, err := fmt.Fprintln(w, "No chapters found.")
		return err
	}
	tbl := newTextTable(right("#"), left("Chapter"), left("Phase"), left("Status"), left("Stars"), right("Best WPM"), right("Accuracy"))
	total := 0
	for _, st := range statuses {
		status, wpm, acc := "open", "-", "-"
		switch {
		case st.Locked:
			status = "locked"
		case st.Attempted:
			status = "done"
			wpm = fmt.Sprintf("%d", st.Entry.WPM)
			acc = fmt.Sprintf("%d%%", st.Entry.Accuracy)
		}
		total += st.Entry.Stars
		tbl.add(
			fmt.Sprintf("%d", st.Chapter.ID),
			st.Chapter.Title,
			st.Chapter.Phase,
			status,
			StarBar(st.Entry.Stars),
			wpm,
			acc,
		)
	}
	lines := tbl.lines()
	lines = append(lines, "", fmt.Sprintf("Stars: %d/%d", total, len(statuses)*curriculum.MaxStars))
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func keyLabel(key string) string {
	if key == " " {
		return "<space>"
	}
	return key
}

func sortByAccuracy(aggs []model.KeyAggregate) {
	sort.Slice(aggs, func(i, j int) bool {
		ai, aj := keyAccuracy(aggs[i]), keyAccuracy(aggs[j])
		if ai == aj {
			return aggs[i].Key < aggs[j].Key
		}
		return ai < aj
	})
}

func minOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		out = math.Min(out, v)
	}
	return out
}

func maxOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		out = math.Max(out, v)
	}
	return out
}
