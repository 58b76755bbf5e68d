// Package trainer drives chapter navigation, practice sessions and progress
// recording on top of the catalog.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/verte-zerg/keycamp/internal/curriculum"
	"github.com/verte-zerg/keycamp/internal/generator"
	"github.com/verte-zerg/keycamp/internal/model"
	"github.com/verte-zerg/keycamp/internal/progress"
	"github.com/verte-zerg/keycamp/internal/session"
)

var (
	// ErrChapterNotFound is returned for ids missing from the catalog.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrChapterLocked is returned for chapters whose prerequisite is unmet.
	ErrChapterLocked = errors.New("chapter locked")
)

// IsRedirect reports whether err means the caller should fall back to the
// chapter listing instead of failing.
func IsRedirect(err error) bool {
	return errors.Is(err, ErrChapterNotFound) || errors.Is(err, ErrChapterLocked)
}

// ProgressStore loads and saves the whole progress record.
type ProgressStore interface {
	Load(ctx context.Context) (progress.Progress, error)
	Save(ctx context.Context, p progress.Progress) error
	Reset(ctx context.Context) error
}

// History records completed attempts.
type History interface {
	InsertAttempt(ctx context.Context, attempt model.Attempt, keys []model.KeyStats) (string, error)
}

// ChapterStatus is a chapter with its lock state and best entry.
type ChapterStatus struct {
	Chapter   curriculum.Chapter
	Locked    bool
	Attempted bool
	Entry     progress.Entry
}

// Outcome describes what a completed session changed.
type Outcome struct {
	ChapterID     int
	Result        session.Result
	Stars         int
	Updated       bool
	HadPrevious   bool
	Previous      progress.Entry
	Best          progress.Entry
	NewlyUnlocked []int
	AttemptID     string
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithHistory records every completed attempt in h.
func WithHistory(h History) Option {
	return func(t *Trainer) { t.history = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClock replaces time.Now for sessions and completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Trainer) {
		if now != nil {
			t.now = now
		}
	}
}

// WithGenerator sets the practice text generator.
func WithGenerator(g *generator.Generator) Option {
	return func(t *Trainer) {
		if g != nil {
			t.gen = g
		}
	}
}

// WithWordCount overrides the drill length of word-bank chapters.
func WithWordCount(n int) Option {
	return func(t *Trainer) { t.words = n }
}

// Trainer ties the catalog to stored progress.
type Trainer struct {
	catalog *curriculum.Catalog
	repo    ProgressStore
	history History
	gen     *generator.Generator
	logger  *slog.Logger
	now     func() time.Time
	words   int
}

// New returns a Trainer over catalog and repo.
func New(catalog *curriculum.Catalog, repo ProgressStore, opts ...Option) *Trainer {
	t := &Trainer{
		catalog: catalog,
		repo:    repo,
		gen:     generator.New(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Catalog returns the chapter catalog.
func (t *Trainer) Catalog() *curriculum.Catalog {
	return t.catalog
}

// Progress returns the stored progress record.
func (t *Trainer) Progress(ctx context.Context) (progress.Progress, error) {
	return t.repo.Load(ctx)
}

// Open grants access to a chapter and starts a session with fresh text.
func (t *Trainer) Open(ctx context.Context, chapterID int) (curriculum.Chapter, *session.Session, error) {
	p, err := t.repo.Load(ctx)
	if err != nil {
		return curriculum.Chapter{}, nil, err
	}
	ch, err := t.access(chapterID, p)
	if err != nil {
		return curriculum.Chapter{}, nil, err
	}
	return ch, t.NewSession(ch), nil
}

// NewSession starts a session over newly generated text for ch. Restarting
// a chapter is a new session.
func (t *Trainer) NewSession(ch curriculum.Chapter) *session.Session {
	return session.New(t.gen.PracticeText(ch, t.words), session.WithClock(t.now))
}

// Resolve returns the requested chapter when accessible, otherwise the
// default chapter with redirected set.
func (t *Trainer) Resolve(ctx context.Context, chapterID int) (curriculum.Chapter, bool, error) {
	p, err := t.repo.Load(ctx)
	if err != nil {
		return curriculum.Chapter{}, false, err
	}
	ch, err := t.access(chapterID, p)
	if err == nil {
		return ch, false, nil
	}
	t.logger.Info("redirecting chapter request", "chapter", chapterID, "reason", err)
	next, ok := t.Next(p)
	if !ok {
		return curriculum.Chapter{}, true, err
	}
	return next, true, nil
}

// Next returns the first unlocked chapter without stars, or the first
// chapter once everything has been starred.
func (t *Trainer) Next(p progress.Progress) (curriculum.Chapter, bool) {
	for _, ch := range t.catalog.Chapters() {
		if progress.RequirementMet(ch.UnlockRequirement, p) && p.Stars(ch.ID) == 0 {
			return ch, true
		}
	}
	return t.catalog.First()
}

func (t *Trainer) access(chapterID int, p progress.Progress) (curriculum.Chapter, error) {
	ch, ok := t.catalog.ChapterByID(chapterID)
	if !ok {
		return curriculum.Chapter{}, fmt.Errorf("%w: %d", ErrChapterNotFound, chapterID)
	}
	if !progress.IsUnlocked(t.catalog, chapterID, p) {
		return curriculum.Chapter{}, fmt.Errorf("%w: %d", ErrChapterLocked, chapterID)
	}
	return ch, nil
}

// Complete scores a finished session, stores it when it beats the previous
// best and records it in history. History failures are logged only.
func (t *Trainer) Complete(ctx context.Context, ch curriculum.Chapter, res session.Result) (Outcome, error) {
	before, err := t.repo.Load(ctx)
	if err != nil {
		return Outcome{}, err
	}
	stars := progress.CalculateStars(res.WPM, res.Accuracy, ch)
	previous, hadPrevious := before[ch.ID]
	after, updated := progress.RecordAttempt(before, ch.ID, progress.Attempt{
		Stars:    stars,
		WPM:      res.WPM,
		Accuracy: res.Accuracy,
	}, t.now())
	if updated {
		if err := t.repo.Save(ctx, after); err != nil {
			return Outcome{}, err
		}
	}

	out := Outcome{
		ChapterID:     ch.ID,
		Result:        res,
		Stars:         stars,
		Updated:       updated,
		HadPrevious:   hadPrevious,
		Previous:      previous,
		Best:          after[ch.ID],
		NewlyUnlocked: progress.NewlyUnlocked(t.catalog, before, after),
	}
	t.logger.Info("chapter completed",
		"chapter", ch.ID,
		"wpm", res.WPM,
		"accuracy", res.Accuracy,
		"stars", stars,
		"updated", updated,
		"total_stars", after.TotalStars(),
	)

	if t.history != nil {
		id, err := t.history.InsertAttempt(ctx, attemptFromResult(ch.ID, stars, res), res.Keys)
		if err != nil {
			t.logger.Warn("failed to record attempt", "chapter", ch.ID, "error", err)
		} else {
			out.AttemptID = id
		}
	}
	return out, nil
}

// Overview lists every chapter with its lock state and best entry.
func (t *Trainer) Overview(ctx context.Context) ([]ChapterStatus, error) {
	p, err := t.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	chapters := t.catalog.Chapters()
	out := make([]ChapterStatus, 0, len(chapters))
	for _, ch := range chapters {
		entry, attempted := p[ch.ID]
		out = append(out, ChapterStatus{
			Chapter:   ch,
			Locked:    !progress.RequirementMet(ch.UnlockRequirement, p),
			Attempted: attempted,
			Entry:     entry,
		})
	}
	return out, nil
}

// Reset clears stored progress.
func (t *Trainer) Reset(ctx context.Context) error {
	return t.repo.Reset(ctx)
}

func attemptFromResult(chapterID, stars int, res session.Result) model.Attempt {
	return model.Attempt{
		ChapterID:  chapterID,
		StartedAt:  res.StartedAt,
		EndedAt:    res.EndedAt,
		TextLength: res.Correct + res.Errors,
		Words:      res.Words,
		Correct:    res.Correct,
		Errors:     res.Errors,
		WPM:        res.WPM,
		Accuracy:   res.Accuracy,
		Stars:      stars,
		DurationMs: res.Duration.Milliseconds(),
	}
}
