// Package local provides an offline spelling-only checker built on a
// trained fuzzy dictionary model. It cannot see grammar, but it needs
// no network and answers instantly, which makes it the fallback
// backend and the workhorse for tests.
package local

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/sajari/fuzzy"

	"github.com/quillgo/quill/internal/model"
)

type Checker struct {
	model *fuzzy.Model
}

// New loads a word list (one word per line) and trains the model.
func New(dictPath string) (*Checker, error) {
	f, err := os.Open(dictPath)
	if err != nil {
		return nil, fmt.Errorf("local: open dictionary: %w", err)
	}
	defer f.Close()

	m := fuzzy.NewModel()
	m.SetDepth(2) // depth 2 keeps training fast without hurting accuracy much

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			m.TrainWord(strings.ToLower(w))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("local: read dictionary: %w", err)
	}
	return &Checker{model: m}, nil
}

// NewFromWords trains the model from an in-memory word list.
func NewFromWords(words []string) *Checker {
	m := fuzzy.NewModel()
	m.SetDepth(2)
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			m.TrainWord(strings.ToLower(w))
		}
	}
	return &Checker{model: m}
}

// Check tokenizes text and flags words the model does not know,
// suggesting the model's best correction. Offsets are exact, so the
// resolver accepts these candidates as-is.
func (c *Checker) Check(ctx context.Context, text string) ([]model.Candidate, error) {
	var out []model.Candidate
	for _, tok := range tokenize(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if skippable(tok.word) {
			continue
		}

		lower := strings.ToLower(tok.word)
		best := c.model.SpellCheck(lower)
		if best == lower {
			continue // known word
		}
		if best == "" {
			continue // unknown and nothing close: no fix to offer
		}

		start, end := tok.start, tok.end
		out = append(out, model.Candidate{
			Kind:       string(model.KindSpelling),
			Message:    fmt.Sprintf("%q may be misspelled", tok.word),
			Original:   tok.word,
			Suggestion: best,
			Start:      &start,
			End:        &end,
		})
	}
	return out, nil
}

// skippable filters tokens fuzzy matching handles badly: very short
// words and all-caps runs (acronyms).
func skippable(word string) bool {
	rs := []rune(word)
	if len(rs) <= 2 {
		return true
	}
	for _, r := range rs {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// wordToken is a word with its rune offsets in the original text.
type wordToken struct {
	word  string
	start int // inclusive rune offset
	end   int // exclusive rune offset
}

// tokenize splits text into letter/digit/apostrophe runs, tracking
// rune offsets.
func tokenize(text string) []wordToken {
	runes := []rune(text)
	var tokens []wordToken
	i := 0
	for i < len(runes) {
		if !isWordChar(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && isWordChar(runes[i]) {
			i++
		}
		tokens = append(tokens, wordToken{
			word:  string(runes[start:i]),
			start: start,
			end:   i,
		})
	}
	return tokens
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\''
}
