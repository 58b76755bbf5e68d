// Package generator builds practice text for chapters.
package generator

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/keycamp/internal/curriculum"
)

// DefaultWordCount is the drill length for chapters without a word bank.
const DefaultWordCount = 50

// Generator produces practice text. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return NewWithRand(rand.New(rand.NewSource(seed)))
}

// NewWithRand wraps an existing random source.
func NewWithRand(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// PracticeText returns the text to transcribe for a chapter. Sentence-based
// chapters always yield their sentences verbatim. Word-bank chapters yield
// wordCount shuffled words; wordCount <= 0 selects the chapter default.
func (g *Generator) PracticeText(ch curriculum.Chapter, wordCount int) string {
	if ch.SentenceBased() {
		return strings.Join(ch.Sentences, " ")
	}
	return strings.Join(g.Drill(ch.Words, TargetWords(ch, wordCount)), " ")
}

// TargetWords resolves the drill length for a word-bank chapter.
func TargetWords(ch curriculum.Chapter, wordCount int) int {
	if wordCount > 0 {
		return wordCount
	}
	if len(ch.Words) > 0 {
		return 3 * len(ch.Words)
	}
	return DefaultWordCount
}

// Drill appends freshly shuffled passes over words until it has count
// entries. An empty bank yields nil.
func (g *Generator) Drill(words []string, count int) []string {
	if len(words) == 0 || count <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	result := make([]string, 0, count+len(words))
	pass := make([]string, len(words))
	for len(result) < count {
		copy(pass, words)
		g.rnd.Shuffle(len(pass), func(i, j int) {
			pass[i], pass[j] = pass[j], pass[i]
		})
		result = append(result, pass...)
	}
	return result[:count]
}
