package overlay

import (
	"testing"

	"github.com/quillgo/quill/internal/field"
	"github.com/quillgo/quill/internal/model"
)

type fakeField struct {
	text    string
	metrics field.Metrics
}

func (f *fakeField) Kind() field.Kind { return field.Plain }

func (f *fakeField) Text() string { return f.text }

func (f *fakeField) SetText(s string) { f.text = s }

func (f *fakeField) Cursor() int { return 0 }

func (f *fakeField) SetCursor(int) {}

func (f *fakeField) Metrics() field.Metrics { return f.metrics }

func newFakeField(text string) *fakeField {
	return &fakeField{
		text: text,
		metrics: field.Metrics{
			FontSize: 10,
			Origin:   model.Rect{Top: 0, Left: 0, Width: 400, Height: 60},
		},
	}
}

type markerHandle struct {
	hidden  bool
	onClick func()
}

type fakeSurface struct {
	markers []*markerHandle // live handles
	created int
	moved   int
	removed int

	badgeLive  bool
	badgeCount int
	badgeOps   int

	notices []string
}

func (s *fakeSurface) CreateMarker(r model.Rect, span model.Span, onClick func()) Marker {
	m := &markerHandle{onClick: onClick}
	s.markers = append(s.markers, m)
	s.created++
	return m
}

// MoveMarker revives a hidden marker, per the Surface contract.
func (s *fakeSurface) MoveMarker(m Marker, r model.Rect) {
	m.(*markerHandle).hidden = false
	s.moved++
}

func (s *fakeSurface) HideMarker(m Marker) { m.(*markerHandle).hidden = true }

func (s *fakeSurface) RemoveMarker(m Marker) {
	s.removed++
	for i, h := range s.markers {
		if h == m {
			s.markers = append(s.markers[:i], s.markers[i+1:]...)
			return
		}
	}
}

func (s *fakeSurface) ShowBadge(anchor model.Rect, count int) Badge {
	s.badgeLive = true
	s.badgeCount = count
	s.badgeOps++
	return &struct{}{}
}

func (s *fakeSurface) UpdateBadge(b Badge, anchor model.Rect, count int) {
	s.badgeCount = count
	s.badgeOps++
}

func (s *fakeSurface) RemoveBadge(b Badge) { s.badgeLive = false }

func (s *fakeSurface) ShowPopup(span model.Span, at model.Rect, onApply, onDismiss func()) Popup {
	return &struct{}{}
}
func (s *fakeSurface) ClosePopup(p Popup) {}

func (s *fakeSurface) Notify(sev Severity, msg string) { s.notices = append(s.notices, msg) }

type fakeViewport struct {
	fns       []func()
	subscribe int
	cancels   int
}

func (v *fakeViewport) Subscribe(fn func()) func() {
	v.fns = append(v.fns, fn)
	v.subscribe++
	return func() { v.cancels++ }
}

func (v *fakeViewport) fire() {
	for _, fn := range v.fns {
		fn()
	}
}

func sp(start, end int) model.Span {
	return model.Span{Kind: model.KindSpelling, Original: "x", Suggestion: "y", Start: start, End: end}
}

func TestRender_MarkerPerSpanAndBadge(t *testing.T) {
	s := &fakeSurface{}
	v := &fakeViewport{}
	r := NewRenderer(s, v, newFakeField("hello world again"))

	r.Render([]model.Span{sp(0, 5), sp(6, 11)}, func(int) {})

	if len(s.markers) != 2 {
		t.Fatalf("live markers = %d, want 2", len(s.markers))
	}
	if !s.badgeLive || s.badgeCount != 2 {
		t.Fatalf("badge = (live=%v, count=%d), want (true, 2)", s.badgeLive, s.badgeCount)
	}
	if v.subscribe != 1 {
		t.Fatalf("viewport subscriptions = %d, want 1", v.subscribe)
	}
}

func TestRender_UnlocatableSpanGetsNoMarker(t *testing.T) {
	s := &fakeSurface{}
	v := &fakeViewport{}
	f := newFakeField("short")
	r := NewRenderer(s, v, f)

	// second span lies past the text, so it cannot be located yet
	r.Render([]model.Span{sp(0, 5), sp(40, 44)}, func(int) {})

	if len(s.markers) != 1 {
		t.Fatalf("live markers = %d, want 1", len(s.markers))
	}
	if s.badgeCount != 2 {
		t.Fatalf("badge count = %d, want 2 (badge counts spans, not markers)", s.badgeCount)
	}

	// the text grows; a viewport event retries and creates the late marker
	f.SetText("short plus a much longer tail of text here")
	v.fire()
	if len(s.markers) != 2 {
		t.Fatalf("live markers after reposition = %d, want 2", len(s.markers))
	}
}

func TestReposition_MovesAndHides(t *testing.T) {
	s := &fakeSurface{}
	v := &fakeViewport{}
	f := newFakeField("hello world")
	r := NewRenderer(s, v, f)

	r.Render([]model.Span{sp(6, 11)}, func(int) {})
	v.fire()
	if s.moved != 1 {
		t.Fatalf("moved = %d, want 1", s.moved)
	}

	// the span's range vanishes from the text: hidden, not destroyed
	f.SetText("")
	v.fire()
	if len(s.markers) != 1 || !s.markers[0].hidden {
		t.Fatal("marker should be hidden but kept alive")
	}
	if s.removed != 0 {
		t.Fatalf("removed = %d, want 0", s.removed)
	}

	// geometry comes back: the same handle is revived via MoveMarker
	f.SetText("hello world")
	v.fire()
	if s.markers[0].hidden {
		t.Fatal("marker still hidden after its geometry returned")
	}
	if s.created != 1 {
		t.Fatalf("created = %d, want 1 (no duplicate marker)", s.created)
	}
}

func TestRender_ReplacesPreviousMarkers(t *testing.T) {
	s := &fakeSurface{}
	v := &fakeViewport{}
	r := NewRenderer(s, v, newFakeField("hello world again"))

	r.Render([]model.Span{sp(0, 5), sp(6, 11)}, func(int) {})
	r.Render([]model.Span{sp(12, 17)}, func(int) {})

	if len(s.markers) != 1 {
		t.Fatalf("live markers = %d, want 1", len(s.markers))
	}
	if s.removed != 2 {
		t.Fatalf("removed = %d, want 2", s.removed)
	}
	if s.badgeCount != 1 {
		t.Fatalf("badge count = %d, want 1", s.badgeCount)
	}
	if v.subscribe != 1 {
		t.Fatalf("viewport subscriptions = %d, want 1 (reused across renders)", v.subscribe)
	}
}

func TestRender_EmptyTearsDown(t *testing.T) {
	s := &fakeSurface{}
	v := &fakeViewport{}
	r := NewRenderer(s, v, newFakeField("hello world"))

	r.Render([]model.Span{sp(0, 5)}, func(int) {})
	r.Render(nil, nil)

	if len(s.markers) != 0 {
		t.Fatalf("live markers = %d, want 0", len(s.markers))
	}
	if s.badgeLive {
		t.Fatal("badge still live after empty render")
	}
	if v.cancels != 1 {
		t.Fatalf("viewport cancels = %d, want 1", v.cancels)
	}
}

func TestClear_RemovesEverythingOnce(t *testing.T) {
	s := &fakeSurface{}
	v := &fakeViewport{}
	r := NewRenderer(s, v, newFakeField("hello world"))

	r.Render([]model.Span{sp(0, 5), sp(6, 11)}, func(int) {})
	r.Clear()
	r.Clear() // second clear must not double-cancel

	if len(s.markers) != 0 {
		t.Fatalf("live markers = %d, want 0", len(s.markers))
	}
	if s.badgeLive {
		t.Fatal("badge still live after Clear")
	}
	if v.cancels != 1 {
		t.Fatalf("viewport cancels = %d, want exactly 1", v.cancels)
	}
}

func TestMarkerClick_DispatchesIndex(t *testing.T) {
	s := &fakeSurface{}
	v := &fakeViewport{}
	r := NewRenderer(s, v, newFakeField("hello world"))

	var clicked []int
	r.Render([]model.Span{sp(0, 5), sp(6, 11)}, func(i int) { clicked = append(clicked, i) })

	s.markers[1].onClick()
	s.markers[0].onClick()
	if len(clicked) != 2 || clicked[0] != 1 || clicked[1] != 0 {
		t.Fatalf("clicked = %v, want [1 0]", clicked)
	}
}

func TestMarkerClick_StaleIndexIgnored(t *testing.T) {
	s := &fakeSurface{}
	v := &fakeViewport{}
	r := NewRenderer(s, v, newFakeField("hello world"))

	var clicked []int
	r.Render([]model.Span{sp(0, 5), sp(6, 11)}, func(i int) { clicked = append(clicked, i) })
	stale := s.markers[1]

	r.Render([]model.Span{sp(0, 5)}, func(i int) { clicked = append(clicked, i) })

	stale.onClick() // index 1 no longer exists
	if len(clicked) != 0 {
		t.Fatalf("clicked = %v, want no dispatch for a stale marker", clicked)
	}
}
