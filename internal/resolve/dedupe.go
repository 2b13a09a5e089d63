package resolve

import (
	"fmt"
	"sort"

	"github.com/quillgo/quill/internal/model"
)

// Dedupe prunes a candidate span list down to a maximal set of
// non-overlapping spans. Pure function: the input slice is not
// modified.
//
// Order of precedence: spans are sorted by (start asc, length asc) and
// walked first-wins, so the shorter span at a given start beats longer
// ones — the more specific fix survives. Exact duplicates are dropped
// by key, overlapping spans are dropped outright (never merged), and
// every survivor is re-verified against text since distinct candidates
// may have been resolved against stale windows.
//
// Postcondition: output is sorted by start and pairwise disjoint under
// the half-open overlap test a.Start < b.End && a.End > b.Start.
func Dedupe(spans []model.Span, text string) []model.Span {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]model.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Len() < sorted[j].Len()
	})

	runes := []rune(text)
	seen := make(map[string]struct{}, len(sorted))
	accepted := make([]model.Span, 0, len(sorted))

	for _, s := range sorted {
		key := fmt.Sprintf("%d-%d", s.Start, s.End)
		if _, dup := seen[key]; dup {
			continue
		}
		if s.Start < 0 || s.End > len(runes) || s.Start >= s.End {
			continue
		}
		if !foldTrimEqual(string(runes[s.Start:s.End]), s.Original) {
			continue
		}
		overlaps := false
		for _, a := range accepted {
			if s.Overlaps(a) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		seen[key] = struct{}{}
		accepted = append(accepted, s)
	}

	if len(accepted) == 0 {
		return nil
	}
	return accepted
}
