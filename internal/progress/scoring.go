package progress

import (
	"time"

	"github.com/verte-zerg/keycamp/internal/curriculum"
)

// CalculateStars returns the highest star level whose WPM and accuracy
// thresholds are both met, or zero.
func CalculateStars(wpm, accuracy int, chapter curriculum.Chapter) int {
	for level := curriculum.MaxStars; level >= 1; level-- {
		t, ok := chapter.Threshold(level)
		if !ok {
			continue
		}
		if wpm >= t.WPM && accuracy >= t.Accuracy {
			return level
		}
	}
	return 0
}

// Better reports whether a candidate attempt beats the stored entry: more
// stars, or the same stars with strictly higher WPM.
func Better(candidate Attempt, existing Entry) bool {
	if candidate.Stars != existing.Stars {
		return candidate.Stars > existing.Stars
	}
	return candidate.WPM > existing.WPM
}

// RecordAttempt merges an attempt into progress with best-attempt-wins
// semantics. The input map is never mutated; the returned map is a copy and
// updated reports whether the chapter's entry changed.
func RecordAttempt(p Progress, chapterID int, a Attempt, now time.Time) (Progress, bool) {
	out := p.Clone()
	existing, ok := out[chapterID]
	if ok && !Better(a, existing) {
		return out, false
	}
	out[chapterID] = Entry{
		Stars:       clampStars(a.Stars),
		WPM:         a.WPM,
		Accuracy:    a.Accuracy,
		CompletedAt: now,
	}
	return out, true
}

func clampStars(stars int) int {
	if stars < curriculum.MinStars {
		return curriculum.MinStars
	}
	if stars > curriculum.MaxStars {
		return curriculum.MaxStars
	}
	return stars
}
