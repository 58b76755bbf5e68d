package curriculum

import "sort"

// Catalog is an ordered, read-only set of chapters.
type Catalog struct {
	chapters []Chapter
	byID     map[int]int
	phases   []Phase
}

// NewCatalog builds a catalog from chapters. Chapters are ordered by id.
// Call Validate to check authoring invariants.
func NewCatalog(chapters []Chapter) *Catalog {
	sorted := make([]Chapter, len(chapters))
	copy(sorted, chapters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	c := &Catalog{
		chapters: sorted,
		byID:     make(map[int]int, len(sorted)),
	}
	phaseIdx := map[int]int{}
	for i, ch := range sorted {
		if _, ok := c.byID[ch.ID]; !ok {
			c.byID[ch.ID] = i
		}
		idx, ok := phaseIdx[ch.PhaseNumber]
		if !ok {
			idx = len(c.phases)
			phaseIdx[ch.PhaseNumber] = idx
			c.phases = append(c.phases, Phase{Number: ch.PhaseNumber, Name: ch.Phase})
		}
		c.phases[idx].ChapterIDs = append(c.phases[idx].ChapterIDs, ch.ID)
	}
	sort.SliceStable(c.phases, func(i, j int) bool {
		return c.phases[i].Number < c.phases[j].Number
	})
	return c
}

// ChapterByID looks up a chapter.
func (c *Catalog) ChapterByID(id int) (Chapter, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Chapter{}, false
	}
	return c.chapters[idx], true
}

// ChaptersByPhase returns the chapters of a phase ordered by id.
func (c *Catalog) ChaptersByPhase(phaseNumber int) []Chapter {
	var out []Chapter
	for _, ch := range c.chapters {
		if ch.PhaseNumber == phaseNumber {
			out = append(out, ch)
		}
	}
	return out
}

// Phases returns all phases ordered by number.
func (c *Catalog) Phases() []Phase {
	out := make([]Phase, len(c.phases))
	for i, p := range c.phases {
		out[i] = Phase{
			Number:     p.Number,
			Name:       p.Name,
			ChapterIDs: append([]int(nil), p.ChapterIDs...),
		}
	}
	return out
}

// Chapters returns every chapter ordered by id.
func (c *Catalog) Chapters() []Chapter {
	return append([]Chapter(nil), c.chapters...)
}

// Len returns the number of chapters.
func (c *Catalog) Len() int {
	return len(c.chapters)
}

// First returns the lowest-id chapter, the safe default for redirects.
func (c *Catalog) First() (Chapter, bool) {
	if len(c.chapters) == 0 {
		return Chapter{}, false
	}
	return c.chapters[0], true
}
