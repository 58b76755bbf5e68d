// Package curriculum defines the chapter catalog for the typing course.
package curriculum

// Star levels a chapter can award.
const (
	MinStars = 0
	MaxStars = 3
)

// Chapter is one immutable unit of the curriculum.
type Chapter struct {
	ID                int
	Title             string
	Description       string
	Phase             string
	PhaseNumber       int
	TargetWPM         int
	MinimumAccuracy   int
	FocusKeys         []string
	Words             []string
	Sentences         []string
	UnlockRequirement *UnlockRequirement
	StarThresholds    map[int]Threshold
}

// UnlockRequirement names a single prerequisite chapter.
type UnlockRequirement struct {
	ChapterID int
	MinStars  int
}

// Threshold is the WPM and accuracy both required for a star level.
type Threshold struct {
	WPM      int
	Accuracy int
}

// Phase groups consecutive chapters.
type Phase struct {
	Number     int
	Name       string
	ChapterIDs []int
}

// SentenceBased reports whether practice text comes from curated sentences.
func (c Chapter) SentenceBased() bool {
	return len(c.Sentences) > 0
}

// Threshold returns the threshold for a star level.
func (c Chapter) Threshold(level int) (Threshold, bool) {
	t, ok := c.StarThresholds[level]
	return t, ok
}
