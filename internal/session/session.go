// Package session tracks a single practice attempt from the first keystroke
// to completion.
package session

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/keycamp/internal/model"
)

// MinElapsed is the shortest duration used for WPM, one timer tick.
const MinElapsed = time.Second

var (
	// ErrFinished is returned for input after the session completed.
	ErrFinished = errors.New("session finished")
	// ErrEmptyText is returned for input on a session with no practice text.
	ErrEmptyText = errors.New("practice text is empty")
)

// State is the lifecycle stage of a session.
type State int

const (
	NotStarted State = iota // Waiting for the first character
	InProgress              // Typing
	Finished                // Terminal; input rejected
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Live is the feedback rendered while typing.
type Live struct {
	State          State
	ElapsedSeconds int
	Typed          int
	Total          int
	Accuracy       int
	Target         []rune
	Input          []rune
}

// Result holds the final metrics of a finished session.
type Result struct {
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	Words     int
	Correct   int
	Errors    int
	WPM       int
	Accuracy  int
	Keys      []model.KeyStats
}

type keyStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is a single attempt at a practice text. It is not safe for
// concurrent use.
type Session struct {
	now func() time.Time

	target []rune
	input  []rune
	state  State

	startedAt     time.Time
	prevCorrectAt time.Time
	keys          map[rune]*keyStat

	result Result
}

// New starts a session over practiceText.
func New(practiceText string, opts ...Option) *Session {
	s := &Session{
		now:    time.Now,
		target: []rune(norm.NFC.String(practiceText)),
		keys:   map[rune]*keyStat{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// PracticeText returns the target text.
func (s *Session) PracticeText() string {
	return string(s.target)
}

// Typed returns the learner's input so far.
func (s *Session) Typed() string {
	return string(s.input)
}

// StartedAt returns when the first character arrived, zero before that.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Input appends a typed delta. Characters beyond the end of the practice
// text are discarded; reaching the end finishes the session.
func (s *Session) Input(delta string) (Live, error) {
	if s.state == Finished {
		return s.Live(), ErrFinished
	}
	if len(s.target) == 0 {
		return s.Live(), ErrEmptyText
	}
	for _, r := range norm.NFC.String(delta) {
		if s.state == NotStarted {
			s.state = InProgress
			s.startedAt = s.now()
		}
		expected := s.target[len(s.input)]
		s.input = append(s.input, r)
		s.updateKeyStats(expected, r)
		if len(s.input) >= len(s.target) {
			s.finish()
			break
		}
	}
	return s.Live(), nil
}

// Live returns the current feedback snapshot.
func (s *Session) Live() Live {
	elapsed := 0
	switch s.state {
	case InProgress:
		elapsed = int(s.now().Sub(s.startedAt) / time.Second)
	case Finished:
		elapsed = int(s.result.Duration / time.Second)
	}
	correct := countCorrect(s.target, s.input)
	return Live{
		State:          s.state,
		ElapsedSeconds: elapsed,
		Typed:          len(s.input),
		Total:          len(s.target),
		Accuracy:       accuracyPercent(correct, len(s.input)),
		Target:         append([]rune(nil), s.target...),
		Input:          append([]rune(nil), s.input...),
	}
}

// Result returns the final metrics once the session finished.
func (s *Session) Result() (Result, bool) {
	if s.state != Finished {
		return Result{}, false
	}
	out := s.result
	out.Keys = append([]model.KeyStats(nil), s.result.Keys...)
	return out, true
}

func (s *Session) finish() {
	endedAt := s.now()
	correct := countCorrect(s.target, s.input)
	words := len(strings.Fields(string(s.input)))
	duration := endedAt.Sub(s.startedAt)
	if duration < 0 {
		duration = 0
	}
	s.result = Result{
		StartedAt: s.startedAt,
		EndedAt:   endedAt,
		Duration:  duration,
		Words:     words,
		Correct:   correct,
		Errors:    len(s.input) - correct,
		WPM:       WordsPerMinute(words, duration),
		Accuracy:  accuracyPercent(correct, len(s.input)),
		Keys:      s.keySnapshot(),
	}
	s.state = Finished
}

// WordsPerMinute rounds words over elapsed minutes. Durations below
// MinElapsed are clamped so the result is always finite.
func WordsPerMinute(words int, elapsed time.Duration) int {
	if words <= 0 {
		return 0
	}
	if elapsed < MinElapsed {
		elapsed = MinElapsed
	}
	return int(math.Round(float64(words) / elapsed.Minutes()))
}

func countCorrect(target, input []rune) int {
	correct := 0
	for i, r := range input {
		if i < len(target) && target[i] == r {
			correct++
		}
	}
	return correct
}

// accuracyPercent is 100 for no input.
func accuracyPercent(correct, typed int) int {
	if typed <= 0 {
		return 100
	}
	acc := int(math.Round(float64(correct) / float64(typed) * 100))
	if acc < 0 {
		return 0
	}
	if acc > 100 {
		return 100
	}
	return acc
}

func (s *Session) updateKeyStats(expected, typed rune) {
	if expected == ' ' {
		return
	}
	entry, ok := s.keys[expected]
	if !ok {
		entry = &keyStat{}
		s.keys[expected] = entry
	}
	if typed != expected {
		entry.incorrect++
		return
	}
	entry.correct++
	now := s.now()
	if !s.prevCorrectAt.IsZero() {
		entry.latencySumMs += now.Sub(s.prevCorrectAt).Milliseconds()
		entry.latencyCount++
	}
	s.prevCorrectAt = now
}

func (s *Session) keySnapshot() []model.KeyStats {
	out := make([]model.KeyStats, 0, len(s.keys))
	for r, entry := range s.keys {
		out = append(out, model.KeyStats{
			Key:          string(r),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}
