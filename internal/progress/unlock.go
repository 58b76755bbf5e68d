package progress

import "github.com/verte-zerg/keycamp/internal/curriculum"

// IsUnlocked reports whether a chapter is accessible. Unknown chapters are
// locked, and so is any chapter whose prerequisite has no recorded entry.
func IsUnlocked(catalog *curriculum.Catalog, chapterID int, p Progress) bool {
	if catalog == nil {
		return false
	}
	ch, ok := catalog.ChapterByID(chapterID)
	if !ok {
		return false
	}
	return RequirementMet(ch.UnlockRequirement, p)
}

// RequirementMet evaluates a single unlock edge against progress.
func RequirementMet(req *curriculum.UnlockRequirement, p Progress) bool {
	if req == nil {
		return true
	}
	entry, ok := p[req.ChapterID]
	return ok && entry.Stars >= req.MinStars
}

// Unlocked returns the ids of all accessible chapters in catalog order.
func Unlocked(catalog *curriculum.Catalog, p Progress) []int {
	var ids []int
	for _, ch := range catalog.Chapters() {
		if RequirementMet(ch.UnlockRequirement, p) {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}

// NewlyUnlocked lists chapters unlocked by after that were locked under before.
func NewlyUnlocked(catalog *curriculum.Catalog, before, after Progress) []int {
	var ids []int
	for _, ch := range catalog.Chapters() {
		if !RequirementMet(ch.UnlockRequirement, before) && RequirementMet(ch.UnlockRequirement, after) {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}
