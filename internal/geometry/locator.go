// Package geometry maps rune offset ranges in a monitored field to
// on-screen rectangles.
//
// Rich fields expose native range geometry, so the locator only has to
// translate document offsets into (segment, intra-segment offset)
// pairs. Plain form controls render their value internally with no
// queryable layout, so position there is estimated from line/column
// arithmetic and font metrics — approximate by necessity.
package geometry

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/quillgo/quill/internal/field"
	"github.com/quillgo/quill/internal/model"
)

const (
	charWidthRatio  = 0.55 // average glyph advance as a fraction of font size
	lineHeightRatio = 1.2  // fallback when the host has no computed line height
)

// Locate returns the rectangle covering [start, end) in f, or nil when
// the range is currently unrenderable (out of the field's visible
// bounds, past the text, or the host produced no rect). A nil result
// means "don't draw a marker now", never an error.
func Locate(f field.Field, start, end int) *model.Rect {
	if start < 0 || end < start {
		return nil
	}
	if rf, ok := f.(field.RichField); ok && f.Kind() == field.Rich {
		return locateRich(rf, start, end)
	}
	return locatePlain(f, start, end)
}

func locateRich(f field.RichField, start, end int) *model.Rect {
	segs := f.Segments()

	startSeg, startOff, ok := segmentPoint(segs, start, false)
	if !ok {
		return nil
	}
	endSeg, endOff, ok := segmentPoint(segs, end, true)
	if !ok {
		return nil
	}

	r, ok := f.RangeRect(startSeg, startOff, endSeg, endOff)
	if !ok {
		return nil
	}
	return &r
}

// segmentPoint walks segments in order, accumulating consumed rune
// counts, until it finds the segment containing the document offset.
// Range ends bind to the tail of the previous segment (atEnd), range
// starts to the head of the next, so a point on a segment boundary
// never lands in a zero-width position.
func segmentPoint(segs []string, offset int, atEnd bool) (seg, segOff int, ok bool) {
	consumed := 0
	for i, s := range segs {
		n := len([]rune(s))
		if n == 0 {
			continue // empty text node, nothing to anchor to
		}
		if offset < consumed+n || (atEnd && offset == consumed+n) {
			return i, offset - consumed, true
		}
		consumed += n
	}
	// offset == total length: anchor a start point to the last
	// non-empty segment's end.
	if offset == consumed && !atEnd {
		for i := len(segs) - 1; i >= 0; i-- {
			if n := len([]rune(segs[i])); n > 0 {
				return i, n, true
			}
		}
	}
	return 0, 0, false
}

func locatePlain(f field.Field, start, end int) *model.Rect {
	runes := []rune(f.Text())
	if start > len(runes) {
		return nil
	}
	if end > len(runes) {
		end = len(runes)
	}

	m := f.Metrics()
	charW := m.FontSize * charWidthRatio
	lineH := m.LineHeight
	if lineH <= 0 {
		lineH = m.FontSize * lineHeightRatio
	}

	before := string(runes[:start])
	line := strings.Count(before, "\n")
	col := before
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		col = before[i+1:]
	}

	top := m.Origin.Top + m.PaddingTop + float64(line)*lineH
	left := m.Origin.Left + m.PaddingLeft + float64(runewidth.StringWidth(col))*charW

	// The row must lie inside the rendered box; otherwise the range is
	// scrolled out of view and no marker may be drawn.
	if top < m.Origin.Top || top >= m.Origin.Top+m.Origin.Height {
		return nil
	}

	span := string(runes[start:end])
	if i := strings.IndexByte(span, '\n'); i >= 0 {
		span = span[:i] // clip a multi-line span to its first row
	}
	width := float64(runewidth.StringWidth(span)) * charW
	if width < charW {
		width = charW
	}

	return &model.Rect{Top: top, Left: left, Width: width, Height: lineH}
}
