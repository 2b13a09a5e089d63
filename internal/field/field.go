// Package field abstracts the host text surfaces the engine monitors.
// The engine never owns an element's lifecycle; adapters implement
// these interfaces on top of whatever the host page exposes and feed
// the engine a single "text changed" event, regardless of how many
// platform events that takes.
package field

import "github.com/quillgo/quill/internal/model"

// Kind distinguishes the two host surface families.
type Kind int

const (
	// Plain is a native input/textarea: a value string with no
	// queryable glyph layout. Geometry must be estimated.
	Plain Kind = iota
	// Rich is a content-editable region: text segments with native
	// range geometry. Geometry is exact.
	Rich
)

// Metrics describes the rendered box of a field, used by the plain
// geometry estimation path.
type Metrics struct {
	FontSize    float64
	LineHeight  float64 // 0 when the host can't compute it; 1.2 × font size is assumed
	PaddingTop  float64
	PaddingLeft float64
	Origin      model.Rect // field bounding rect in page coordinates
}

// Field is one monitored text surface. Cursor offsets are rune
// offsets into Text.
type Field interface {
	Kind() Kind
	Text() string
	SetText(string)
	Cursor() int
	SetCursor(int)
	Metrics() Metrics
}

// RichField additionally exposes its text segments (the host's text
// nodes in document order) and native range geometry between two
// segment-relative points.
type RichField interface {
	Field

	// Segments returns the field's text split into its underlying
	// segments. Concatenated, the segments equal Text().
	Segments() []string

	// RangeRect returns the bounding rect of the range running from
	// rune offset startOff inside segment startSeg to endOff inside
	// endSeg, in page coordinates. ok is false when the host cannot
	// produce a rect for the range.
	RangeRect(startSeg, startOff, endSeg, endOff int) (model.Rect, bool)
}
