package curriculum

import (
	"errors"
	"fmt"
)

// ErrInvalidCatalog is wrapped by every Validate failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Validate checks the authoring invariants of a catalog.
func Validate(c *Catalog) error {
	if c == nil || c.Len() == 0 {
		return fmt.Errorf("%w: no chapters", ErrInvalidCatalog)
	}
	seen := make(map[int]struct{}, c.Len())
	phaseNames := map[int]string{}
	for _, ch := range c.chapters {
		if ch.ID <= 0 {
			return fmt.Errorf("%w: chapter id %d must be positive", ErrInvalidCatalog, ch.ID)
		}
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("%w: duplicate chapter id %d", ErrInvalidCatalog, ch.ID)
		}
		seen[ch.ID] = struct{}{}

		if name, ok := phaseNames[ch.PhaseNumber]; ok && name != ch.Phase {
			return fmt.Errorf("%w: phase %d named both %q and %q", ErrInvalidCatalog, ch.PhaseNumber, name, ch.Phase)
		}
		phaseNames[ch.PhaseNumber] = ch.Phase

		if len(ch.Words) == 0 && len(ch.Sentences) == 0 {
			return fmt.Errorf("%w: chapter %d has no practice content", ErrInvalidCatalog, ch.ID)
		}
		for _, s := range ch.Sentences {
			if s == "" {
				return fmt.Errorf("%w: chapter %d has an empty sentence", ErrInvalidCatalog, ch.ID)
			}
		}
		if err := validateThresholds(ch); err != nil {
			return err
		}
	}

	for _, ch := range c.chapters {
		req := ch.UnlockRequirement
		if req == nil {
			continue
		}
		if req.ChapterID == ch.ID {
			return fmt.Errorf("%w: chapter %d requires itself", ErrInvalidCatalog, ch.ID)
		}
		if _, ok := seen[req.ChapterID]; !ok {
			return fmt.Errorf("%w: chapter %d requires unknown chapter %d", ErrInvalidCatalog, ch.ID, req.ChapterID)
		}
		if req.MinStars < MinStars || req.MinStars > MaxStars {
			return fmt.Errorf("%w: chapter %d min stars %d out of range", ErrInvalidCatalog, ch.ID, req.MinStars)
		}
	}
	if err := checkUnlockCycles(c); err != nil {
		return err
	}

	if first, ok := c.First(); ok && first.UnlockRequirement != nil {
		return fmt.Errorf("%w: first chapter %d must be unlocked", ErrInvalidCatalog, first.ID)
	}
	return nil
}

func validateThresholds(ch Chapter) error {
	prev := Threshold{}
	for level := 1; level <= MaxStars; level++ {
		t, ok := ch.StarThresholds[level]
		if !ok {
			return fmt.Errorf("%w: chapter %d missing %d-star threshold", ErrInvalidCatalog, ch.ID, level)
		}
		if t.Accuracy < 0 || t.Accuracy > 100 || t.WPM < 0 {
			return fmt.Errorf("%w: chapter %d %d-star threshold out of range", ErrInvalidCatalog, ch.ID, level)
		}
		if t.WPM < prev.WPM || t.Accuracy < prev.Accuracy {
			return fmt.Errorf("%w: chapter %d thresholds decrease at %d stars", ErrInvalidCatalog, ch.ID, level)
		}
		prev = t
	}
	return nil
}

// checkUnlockCycles rejects requirement chains that never reach an
// always-unlocked chapter.
func checkUnlockCycles(c *Catalog) error {
	for _, ch := range c.chapters {
		visited := map[int]struct{}{}
		cur := ch
		for cur.UnlockRequirement != nil {
			if _, ok := visited[cur.ID]; ok {
				return fmt.Errorf("%w: unlock cycle through chapter %d", ErrInvalidCatalog, ch.ID)
			}
			visited[cur.ID] = struct{}{}
			next, ok := c.ChapterByID(cur.UnlockRequirement.ChapterID)
			if !ok {
				break
			}
			cur = next
		}
	}
	return nil
}
