// Package progress resolves chapter unlocks, scores attempts and keeps the
// best-attempt record per chapter.
package progress

import "time"

// Entry is the best recorded attempt for a chapter.
type Entry struct {
	Stars       int       `json:"stars"`
	WPM         int       `json:"wpm"`
	Accuracy    int       `json:"accuracy"`
	CompletedAt time.Time `json:"completedAt"`
}

// Progress maps chapter ids to their best entry.
type Progress map[int]Entry

// Attempt is the scored outcome of one completed session.
type Attempt struct {
	Stars    int
	WPM      int
	Accuracy int
}

// Stars returns the stored stars for a chapter, zero when absent.
func (p Progress) Stars(chapterID int) int {
	if p == nil {
		return 0
	}
	return p[chapterID].Stars
}

// Clone returns a shallow copy of p. A nil map clones to an empty one.
func (p Progress) Clone() Progress {
	out := make(Progress, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// TotalStars sums stars across all chapters.
func (p Progress) TotalStars() int {
	total := 0
	for _, e := range p {
		total += e.Stars
	}
	return total
}
