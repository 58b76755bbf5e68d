package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/keycamp/internal/session"
)

// wrongSpace marks a space in the target that received another key.
const wrongSpace = '•'

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes colors the practice text against the typed input. The
// cursor sits on the next rune unless the session is finished.
func buildStyledRunes(live session.Live) []styledRune {
	target, input := live.Target, live.Input
	cursor := -1
	if live.State != session.Finished && len(input) < len(target) {
		cursor = len(input)
	}
	current, hasCurrent := wordAt(findWords(target), cursor)

	out := make([]styledRune, 0, len(target))
	for i, want := range target {
		shown := want
		var style lipgloss.Style
		switch {
		case i < len(input) && input[i] == want:
			style = correctStyle
		case i < len(input):
			style = incorrectStyle
			if want == ' ' {
				shown = wrongSpace
			}
		case hasCurrent && want != ' ' && i >= current.start && i < current.end:
			style = currentWordStyle
		default:
			style = pendingStyle
		}
		if i == cursor {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:       style.Render(string(shown)),
			width:   runewidth.RuneWidth(shown),
			isSpace: want == ' ',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(target []rune) []wordRange {
	var words []wordRange
	start := -1
	for i, r := range target {
		switch {
		case r == ' ' && start != -1:
			words = append(words, wordRange{start: start, end: i})
			start = -1
		case r != ' ' && start == -1:
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(target)})
	}
	return words
}

// wordAt returns the word containing the cursor, or the next word when the
// cursor is on a space. A negative cursor means no current word.
func wordAt(words []wordRange, cursor int) (wordRange, bool) {
	if cursor < 0 {
		return wordRange{}, false
	}
	for _, w := range words {
		if cursor < w.end {
			return w, true
		}
	}
	return wordRange{}, false
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits in width, or
// mid-word when a single word is wider than the line. The space at a break
// is not rendered.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpace := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				out.WriteString(renderStyledRunes(line))
				out.WriteByte('\n')
				line = line[:0]
				lineWidth, lastSpace = 0, -1
				i++
				continue
			}
			rest := []styledRune(nil)
			if lastSpace >= 0 {
				rest = append(rest, line[lastSpace+1:]...)
				line = line[:lastSpace]
			}
			out.WriteString(renderStyledRunes(line))
			out.WriteByte('\n')
			line = append(line[:0], rest...)
			lineWidth, lastSpace = measure(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func measure(line []styledRune) (width, lastSpace int) {
	lastSpace = -1
	for i, item := range line {
		width += item.width
		if item.isSpace {
			lastSpace = i
		}
	}
	return width, lastSpace
}
