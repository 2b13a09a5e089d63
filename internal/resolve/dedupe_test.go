package resolve

import (
	"reflect"
	"testing"

	"github.com/quillgo/quill/internal/model"
)

func span(start, end int, orig, sugg string) model.Span {
	return model.Span{Kind: model.KindGrammar, Original: orig, Suggestion: sugg, Start: start, End: end}
}

func TestDedupe_ExactDuplicatesCollapse(t *testing.T) {
	text := "I has a apple"
	in := []model.Span{
		span(2, 5, "has", "have"),
		span(2, 5, "has", "have"),
		span(2, 5, "has", "had"),
	}
	got := Dedupe(in, text)
	if len(got) != 1 {
		t.Fatalf("len(Dedupe()) = %d, want 1", len(got))
	}
	if got[0].Suggestion != "have" {
		t.Fatalf("suggestion = %q, want %q (first occurrence wins)", got[0].Suggestion, "have")
	}
}

func TestDedupe_OverlapKeepsShorterOfEqualStart(t *testing.T) {
	text := "the dog run fast today"
	in := []model.Span{
		span(8, 16, "run fast", "runs fast"),
		span(8, 11, "run", "runs"),
	}
	got := Dedupe(in, text)
	if len(got) != 1 {
		t.Fatalf("len(Dedupe()) = %d, want 1", len(got))
	}
	if got[0].End != 11 {
		t.Fatalf("kept span end = %d, want 11 (shorter span wins at equal start)", got[0].End)
	}
}

func TestDedupe_OverlapChainKeepsOne(t *testing.T) {
	text := "aaaa bbbb cccc"
	in := []model.Span{
		span(2, 7, "aa bb", "x"),
		span(5, 10, "bbbb ", "y"),
		span(0, 4, "aaaa", "z"),
	}
	got := Dedupe(in, text)
	// [0,4) sorts first; both others overlap something already kept or
	// each other, and [5,10) does not touch [0,4).
	want := []int{0, 5}
	if len(got) != 2 || got[0].Start != want[0] || got[1].Start != want[1] {
		t.Fatalf("kept starts = %v, want %v", starts(got), want)
	}
	assertNoOverlap(t, got)
}

func TestDedupe_StaleSubstringDropped(t *testing.T) {
	text := "hello world"
	in := []model.Span{
		span(0, 5, "hello", "hi"),
		span(6, 11, "wrold", "world"), // text no longer matches
		span(6, 99, "world", "earth"), // out of bounds
	}
	got := Dedupe(in, text)
	if len(got) != 1 || got[0].Start != 0 {
		t.Fatalf("Dedupe() = %+v, want only the [0,5) span", got)
	}
}

func TestDedupe_EmptyInput(t *testing.T) {
	if got := Dedupe(nil, "text"); got != nil {
		t.Fatalf("Dedupe(nil) = %v, want nil", got)
	}
	if got := Dedupe([]model.Span{}, "text"); got != nil {
		t.Fatalf("Dedupe(empty) = %v, want nil", got)
	}
}

func TestDedupe_InputUntouched(t *testing.T) {
	text := "one two three"
	in := []model.Span{
		span(8, 13, "three", "3"),
		span(0, 3, "one", "1"),
	}
	orig := make([]model.Span, len(in))
	copy(orig, in)
	Dedupe(in, text)
	if !reflect.DeepEqual(in, orig) {
		t.Fatalf("input mutated: %+v, want %+v", in, orig)
	}
}

func TestDedupe_SortedNonOverlappingOutput(t *testing.T) {
	text := "The wrold is big and the sun are hot"
	in := []model.Span{
		span(29, 32, "are", "is"),
		span(4, 9, "wrold", "world"),
		span(13, 16, "big", "large"),
		span(4, 9, "wrold", "world"),
		span(13, 20, "big and", "huge"), // overlaps the shorter [13,16) span, dropped
		span(29, 32, "are", "is"),
	}
	got := Dedupe(in, text)
	if len(got) != 3 {
		t.Fatalf("len(Dedupe()) = %d, want 3 (%+v)", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start < got[i-1].Start {
			t.Fatalf("output not sorted by start: %v", starts(got))
		}
	}
	assertNoOverlap(t, got)
}

func TestDedupe_Idempotent(t *testing.T) {
	text := "The wrold is big"
	in := []model.Span{
		span(4, 9, "wrold", "world"),
		span(4, 12, "wrold is", "world is"),
		span(13, 16, "big", "large"),
	}
	once := Dedupe(in, text)
	twice := Dedupe(once, text)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Dedupe not idempotent: %+v vs %+v", once, twice)
	}
}

func starts(spans []model.Span) []int {
	out := make([]int, len(spans))
	for i, s := range spans {
		out[i] = s.Start
	}
	return out
}

func assertNoOverlap(t *testing.T, spans []model.Span) {
	t.Helper()
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].Overlaps(spans[j]) {
				t.Fatalf("spans %d and %d overlap: %+v / %+v", i, j, spans[i], spans[j])
			}
		}
	}
}
