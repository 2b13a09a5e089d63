// Package resolve turns raw backend candidates into verified,
// non-overlapping error spans. All offsets are rune offsets.
package resolve

import (
	"strings"
	"unicode"

	"github.com/quillgo/quill/internal/model"
	"github.com/quillgo/quill/internal/util"
)

// window is how far (in runes) Resolve searches around a mismatched
// offset before giving up on a candidate. Backends miscount by a rune
// or two on unicode-heavy text; a bounded search recovers those
// cheaply without re-scanning the whole input.
const window = 5

// Resolve verifies a candidate against text and returns a Span, or nil
// when the candidate cannot be anchored anywhere.
//
// Offsets absent     → case-insensitive full-text search for Original.
// Offsets verified   → accepted as-is.
// Offsets mismatched → search [start-window, end+window], else discard.
func Resolve(text string, cand model.Candidate) *model.Span {
	original := cand.Original
	if strings.TrimSpace(original) == "" {
		return nil
	}

	runes := []rune(text)
	need := []rune(original)

	start, end, ok := anchor(runes, need, cand)
	if !ok {
		return nil
	}

	return &model.Span{
		Kind:       model.ParseKind(cand.Kind),
		Message:    cand.Message,
		Original:   string(runes[start:end]),
		Suggestion: cand.Suggestion,
		Start:      start,
		End:        end,
		Distance:   util.Levenshtein(original, cand.Suggestion),
	}
}

func anchor(runes, need []rune, cand model.Candidate) (start, end int, ok bool) {
	// Malformed or missing offsets: full-text search is all we have.
	if cand.Start == nil || cand.End == nil ||
		*cand.Start < 0 || *cand.End < *cand.Start || *cand.Start > len(runes) {
		p := indexFold(runes, need)
		if p < 0 {
			return 0, 0, false
		}
		return p, p + len(need), true
	}

	start, end = *cand.Start, *cand.End
	if end > len(runes) {
		end = len(runes)
	}

	if foldTrimEqual(string(runes[start:end]), string(need)) {
		return start, end, true
	}

	// Near-miss recovery: bounded local search.
	lo := start - window
	if lo < 0 {
		lo = 0
	}
	hi := end + window
	if hi > len(runes) {
		hi = len(runes)
	}
	p := indexFold(runes[lo:hi], need)
	if p < 0 {
		return 0, 0, false
	}
	return lo + p, lo + p + len(need), true
}

// foldTrimEqual compares two slices case-insensitively after trimming
// surrounding whitespace.
func foldTrimEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// indexFold returns the rune offset of the first case-insensitive
// occurrence of needle in hay, or -1. Works rune-by-rune so the
// returned offset stays valid for multi-byte text.
func indexFold(hay, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(hay) {
		return -1
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if unicode.ToLower(hay[i+j]) != unicode.ToLower(needle[j]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
