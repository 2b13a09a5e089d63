package overlay

import (
	"sync"

	"github.com/quillgo/quill/internal/field"
	"github.com/quillgo/quill/internal/geometry"
	"github.com/quillgo/quill/internal/model"
)

// Renderer keeps one field's markers and badge in sync with its live
// spans. It does not own the spans: Clear hides everything without
// touching span state, so callers can blank the view during typing and
// re-render the same spans later.
type Renderer struct {
	surface  Surface
	viewport Viewport
	f        field.Field

	mu      sync.Mutex
	spans   []model.Span
	markers []Marker // aligned with spans; nil while geometry is unavailable
	badge   Badge
	cancel  func() // viewport subscription teardown, nil when not subscribed
	onClick func(i int)
}

func NewRenderer(surface Surface, viewport Viewport, f field.Field) *Renderer {
	return &Renderer{surface: surface, viewport: viewport, f: f}
}

// Render replaces all markers with one per span. onClick receives the
// span's index within spans. Spans whose geometry is unavailable get
// no marker now; they are retried on every viewport event.
func (r *Renderer) Render(spans []model.Span, onClick func(i int)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeAllLocked()
	r.spans = spans
	r.onClick = onClick
	r.markers = make([]Marker, len(spans))

	for i, s := range spans {
		if rect := geometry.Locate(r.f, s.Start, s.End); rect != nil {
			i := i
			r.markers[i] = r.surface.CreateMarker(*rect, s, func() { r.clicked(i) })
		}
	}
	r.syncBadgeLocked()

	if len(spans) > 0 && r.cancel == nil {
		r.cancel = r.viewport.Subscribe(r.reposition)
	} else if len(spans) == 0 {
		r.unsubscribeLocked()
	}
}

// Clear removes every marker, the badge, and the viewport listener.
// Span data held by the caller is untouched.
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeAllLocked()
	r.spans = nil
	r.markers = nil
	r.unsubscribeLocked()
}

// reposition recomputes every marker's rectangle after a scroll or
// resize. Markers whose geometry came back are created late; markers
// whose geometry went away are hidden, not destroyed.
func (r *Renderer) reposition() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.spans {
		rect := geometry.Locate(r.f, s.Start, s.End)
		switch {
		case rect == nil && r.markers[i] != nil:
			r.surface.HideMarker(r.markers[i])
		case rect != nil && r.markers[i] == nil:
			i := i
			r.markers[i] = r.surface.CreateMarker(*rect, s, func() { r.clicked(i) })
		case rect != nil:
			r.surface.MoveMarker(r.markers[i], *rect)
		}
	}
	r.syncBadgeLocked()
}

func (r *Renderer) clicked(i int) {
	r.mu.Lock()
	cb := r.onClick
	n := len(r.spans)
	r.mu.Unlock()
	if cb != nil && i < n {
		cb(i)
	}
}

func (r *Renderer) syncBadgeLocked() {
	anchor := r.f.Metrics().Origin
	switch {
	case len(r.spans) == 0 && r.badge != nil:
		r.surface.RemoveBadge(r.badge)
		r.badge = nil
	case len(r.spans) > 0 && r.badge == nil:
		r.badge = r.surface.ShowBadge(anchor, len(r.spans))
	case len(r.spans) > 0:
		r.surface.UpdateBadge(r.badge, anchor, len(r.spans))
	}
}

func (r *Renderer) removeAllLocked() {
	for _, m := range r.markers {
		if m != nil {
			r.surface.RemoveMarker(m)
		}
	}
	if r.badge != nil {
		r.surface.RemoveBadge(r.badge)
		r.badge = nil
	}
}

func (r *Renderer) unsubscribeLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
