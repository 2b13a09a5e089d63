package model

// Kind classifies an error span.
type Kind string

const (
	KindGrammar     Kind = "grammar"
	KindSpelling    Kind = "spelling"
	KindPunctuation Kind = "punctuation"
	KindWordChoice  Kind = "word_choice"
)

// ParseKind maps a free-form backend label onto a Kind.
// Unknown labels default to grammar.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindSpelling, KindPunctuation, KindWordChoice:
		return Kind(s)
	default:
		return KindGrammar
	}
}

// Span is a verified error span over a field's text.
// Start/End are half-open rune offsets; text[Start:End] == Original
// holds for every live span.
type Span struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`            // human-readable explanation
	Original   string `json:"original"`           // exact slice at [Start, End)
	Suggestion string `json:"suggestion"`         // proposed replacement
	Start      int    `json:"start"`              // rune offset, inclusive
	End        int    `json:"end"`                // rune offset, exclusive
	Distance   int    `json:"distance,omitempty"` // Levenshtein(Original, Suggestion)
}

// Len returns the span length in runes.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports half-open interval overlap with o.
func (s Span) Overlaps(o Span) bool { return s.Start < o.End && s.End > o.Start }

// Candidate is one raw error from a backend before validation.
// Backends may omit offsets, miscount them, or return overlapping
// spans; the resolver repairs or discards candidates before they
// become Spans.
type Candidate struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Original   string `json:"original"`
	Suggestion string `json:"suggestion"`
	Start      *int   `json:"start,omitempty"` // rune offset, nil if the backend omitted it
	End        *int   `json:"end,omitempty"`
}

// Result is JSON-serialisable as-is.
type Result struct {
	Original     string `json:"original"`     // input text
	Corrected    string `json:"corrected"`    // text with every surviving fix applied
	EditDistance int    `json:"editDistance"` // Levenshtein(original, corrected)
	CharCount    int    `json:"charCount"`    // UTF-8 rune length
	ChunkCount   int    `json:"chunkCount"`   // parts checked
	ErrorCount   int    `json:"errorCount"`   // len(Spans)
	Spans        []Span `json:"spans"`        // nil if no errors
}

// Rect is an on-screen rectangle in page coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
