// Package patch performs context-aware text substitution: it validates
// that a span is still live, harmonizes the replacement's casing and
// spacing with its surroundings, restores the cursor, and cascades the
// resulting offset delta onto the remaining spans.
package patch

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/quillgo/quill/internal/model"
)

// StaleError reports a fix whose underlying text changed between
// detection and apply. The fix must not be applied; the caller drops
// the span and re-renders.
type StaleError struct {
	Expected string // span.Original at detection time
	Found    string // what the range holds now
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("patch: text has changed: expected %q, found %q", e.Expected, e.Found)
}

// Edit is the outcome of a successful Apply.
type Edit struct {
	NewText     string
	Replacement string // harmonized replacement actually inserted
	Start, End  int    // edited region in the pre-edit text, rune offsets
	Delta       int    // rune length delta: len(Replacement) - (End - Start)
	NewCursor   int    // cursor position in NewText, rune offset
}

// openers suppress the leading space when they immediately precede the
// edited range; closers suppress the trailing space when they follow it.
const (
	openers = "([{‘“'\""
	closers = ".,;:!?)]}’”"
)

// Apply substitutes span's suggestion into text. cursor is the caller's
// current rune offset and is remapped into the new text.
//
// Returns *StaleError when the range no longer holds span.Original
// (case/whitespace-insensitively); nothing is mutated in that case.
func Apply(text string, span model.Span, cursor int) (*Edit, error) {
	runes := []rune(text)

	if span.Start < 0 || span.End > len(runes) || span.Start >= span.End {
		return nil, &StaleError{Expected: span.Original}
	}

	actual := string(runes[span.Start:span.End])
	if !strings.EqualFold(strings.TrimSpace(actual), strings.TrimSpace(span.Original)) {
		return nil, &StaleError{Expected: span.Original, Found: actual}
	}

	replacement := harmonize(runes, span)

	repl := []rune(replacement)
	out := make([]rune, 0, len(runes)+len(repl)-(span.End-span.Start))
	out = append(out, runes[:span.Start]...)
	out = append(out, repl...)
	out = append(out, runes[span.End:]...)

	delta := len(repl) - (span.End - span.Start)

	newCursor := cursor
	switch {
	case cursor >= span.Start && cursor <= span.End:
		newCursor = span.Start + len(repl)
	case cursor > span.End:
		newCursor = cursor + delta
	}
	if newCursor < 0 {
		newCursor = 0
	}
	if newCursor > len(out) {
		newCursor = len(out)
	}

	return &Edit{
		NewText:     string(out),
		Replacement: replacement,
		Start:       span.Start,
		End:         span.End,
		Delta:       delta,
		NewCursor:   newCursor,
	}, nil
}

// Cascade adjusts the remaining live spans after an edit replaced
// [editStart, editEnd) with a delta-runes-longer string. Spans inside
// the rewritten region are dropped — their offsets are meaningless now.
// Spans at or after editEnd shift by delta; spans entirely before the
// edit are untouched. The input slice is not modified.
func Cascade(spans []model.Span, editStart, editEnd, delta int) []model.Span {
	out := make([]model.Span, 0, len(spans))
	for _, s := range spans {
		switch {
		case s.Start < editEnd && s.End > editStart:
			// overlaps the edited region
		case s.Start >= editEnd:
			s.Start += delta
			s.End += delta
			out = append(out, s)
		default:
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// harmonize builds the final replacement string: trimmed suggestion,
// casing matched to the original's context, and boundary spaces
// inserted where the surrounding text requires them.
func harmonize(runes []rune, span model.Span) string {
	repl := strings.TrimSpace(span.Suggestion)

	orig := []rune(span.Original)
	switch {
	case atSentenceStart(runes, span.Start):
		repl = capitalizeFirst(repl)
	case allUpper(orig):
		repl = strings.ToUpper(repl)
	case len(orig) > 0 && unicode.IsUpper(orig[0]):
		// proper-noun heuristic: keep the leading capital
		repl = capitalizeFirst(repl)
	}

	if span.Start > 0 && !startsWithSpace(span.Suggestion) {
		prev := runes[span.Start-1]
		if !unicode.IsSpace(prev) && !strings.ContainsRune(openers, prev) {
			repl = " " + repl
		}
	}
	if span.End < len(runes) && !endsWithSpace(span.Suggestion) {
		next := runes[span.End]
		if !unicode.IsSpace(next) && !strings.ContainsRune(closers, next) {
			repl += " "
		}
	}
	return repl
}

// atSentenceStart reports whether offset sits at the start of a
// sentence: only whitespace between it and either the text start or
// the nearest '.', '!' or '?'.
func atSentenceStart(runes []rune, offset int) bool {
	i := offset - 1
	for i >= 0 && unicode.IsSpace(runes[i]) {
		i--
	}
	if i < 0 {
		return true
	}
	switch runes[i] {
	case '.', '!', '?':
		return true
	}
	return false
}

func allUpper(rs []rune) bool {
	hasLetter := false
	for _, r := range rs {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func capitalizeFirst(s string) string {
	rs := []rune(s)
	if len(rs) == 0 {
		return s
	}
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}

func startsWithSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}

func endsWithSpace(s string) bool {
	rs := []rune(s)
	return len(rs) > 0 && unicode.IsSpace(rs[len(rs)-1])
}
