// Package engine coordinates checking for a set of monitored fields.
//
// Each field is an independent unit of concurrency with its own state
// machine (Idle → Checking → {Clean, HasErrors}) and at most one
// outstanding backend call. The engine owns all cross-cutting state
// explicitly — the field table and the single popup — so construction
// and teardown are ordinary method calls, not script-global side
// effects.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/quillgo/quill/internal/field"
	"github.com/quillgo/quill/internal/geometry"
	"github.com/quillgo/quill/internal/model"
	"github.com/quillgo/quill/internal/oracle"
	"github.com/quillgo/quill/internal/overlay"
	"github.com/quillgo/quill/internal/patch"
	"github.com/quillgo/quill/internal/resolve"
)

// State is a field's position in the check lifecycle.
type State int

const (
	Idle State = iota
	Checking
	Clean
	HasErrors
)

// DefaultTimeout bounds one backend call.
const DefaultTimeout = 8 * time.Second

type fieldState struct {
	state    State
	spans    []model.Span
	renderer *overlay.Renderer
	checking bool    // one backend call in flight for this field
	queued   *string // newest text seen while in flight; intermediate versions are discarded
}

// Engine owns the monitored-field table and the process-wide popup.
type Engine struct {
	checker  oracle.Checker
	surface  overlay.Surface
	viewport overlay.Viewport
	timeout  time.Duration

	mu     sync.Mutex
	fields map[field.Field]*fieldState
	popup  overlay.Popup
}

// New creates an Engine. timeout <= 0 means DefaultTimeout.
func New(checker oracle.Checker, surface overlay.Surface, viewport overlay.Viewport, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{
		checker:  checker,
		surface:  surface,
		viewport: viewport,
		timeout:  timeout,
		fields:   make(map[field.Field]*fieldState),
	}
}

// Monitor starts tracking f. Monitoring an already-monitored field is
// a no-op.
func (e *Engine) Monitor(f field.Field) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.fields[f]; ok {
		return
	}
	e.fields[f] = &fieldState{
		state:    Idle,
		renderer: overlay.NewRenderer(e.surface, e.viewport, f),
	}
}

// Unmonitor stops tracking f, destroying its markers, badge, span
// state and listeners. The field element itself is untouched.
func (e *Engine) Unmonitor(f field.Field) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.fields[f]
	if !ok {
		return
	}
	st.renderer.Clear()
	e.closePopupLocked()
	delete(e.fields, f)
}

// Close unmonitors every field.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, st := range e.fields {
		st.renderer.Clear()
	}
	e.closePopupLocked()
	e.fields = make(map[field.Field]*fieldState)
}

// State returns f's lifecycle state.
func (e *Engine) State(f field.Field) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.fields[f]; ok {
		return st.state
	}
	return Idle
}

// Spans returns a copy of f's live spans.
func (e *Engine) Spans(f field.Field) []model.Span {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.fields[f]
	if !ok || len(st.spans) == 0 {
		return nil
	}
	out := make([]model.Span, len(st.spans))
	copy(out, st.spans)
	return out
}

// TextChanged is the single abstract "field changed" event. Markers
// and badge clear immediately; a check launches right away, or is
// queued (newest text only) when one is already in flight.
func (e *Engine) TextChanged(f field.Field) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.fields[f]
	if !ok {
		return
	}

	st.renderer.Clear()
	e.closePopupLocked()
	st.state = Checking

	if st.checking {
		t := f.Text()
		st.queued = &t
		return
	}
	e.launchLocked(f, st, f.Text())
}

// ApplyFix applies the fix for the i-th live span of f. Returns
// *patch.StaleError when the span is no longer safe to apply; the
// span is dropped and markers re-rendered, the text untouched.
func (e *Engine) ApplyFix(f field.Field, i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.fields[f]
	if !ok || i < 0 || i >= len(st.spans) {
		return errors.New("engine: no such span")
	}
	return e.applySpanLocked(f, st, st.spans[i])
}

// Dismiss drops the i-th live span of f without editing anything.
func (e *Engine) Dismiss(f field.Field, i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.fields[f]
	if !ok || i < 0 || i >= len(st.spans) {
		return
	}
	e.dismissSpanLocked(f, st, st.spans[i])
}

/***----- internals -----***/

func (e *Engine) launchLocked(f field.Field, st *fieldState, snapshot string) {
	st.checking = true
	go e.run(f, st, snapshot)
}

// run performs one backend call and publishes its outcome. Responses
// for text that has since changed are discarded, never rendered: the
// marker state the user sees always belongs to the most recently
// completed check of the current text.
func (e *Engine) run(f field.Field, st *fieldState, snapshot string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	cands, err := e.checker.Check(ctx, snapshot)

	e.mu.Lock()
	defer e.mu.Unlock()
	if cur, ok := e.fields[f]; !ok || cur != st {
		return // unmonitored (or re-monitored fresh) mid-flight
	}
	st.checking = false

	if st.queued != nil {
		next := *st.queued
		st.queued = nil
		e.launchLocked(f, st, next)
		return // a newer text is pending; this response is dead
	}

	if err != nil {
		// Fail safe, not fail blank: one notice, prior spans kept.
		e.surface.Notify(overlay.NoticeError, "grammar check failed: "+err.Error())
		e.renderLocked(f, st)
		return
	}

	if snapshot != f.Text() {
		// The field moved under us without a queued recheck.
		e.launchLocked(f, st, f.Text())
		return
	}

	spans := make([]model.Span, 0, len(cands))
	for _, c := range cands {
		if s := resolve.Resolve(snapshot, c); s != nil {
			spans = append(spans, *s)
		}
	}
	st.spans = resolve.Dedupe(spans, snapshot)
	e.renderLocked(f, st)
}

func (e *Engine) renderLocked(f field.Field, st *fieldState) {
	if len(st.spans) > 0 {
		st.state = HasErrors
	} else {
		st.state = Clean
	}
	st.renderer.Render(st.spans, func(i int) { e.markerClicked(f, i) })
}

func (e *Engine) markerClicked(f field.Field, i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.fields[f]
	if !ok || i < 0 || i >= len(st.spans) {
		return
	}
	span := st.spans[i]

	anchor := f.Metrics().Origin
	if rect := geometry.Locate(f, span.Start, span.End); rect != nil {
		anchor = *rect
	}

	e.closePopupLocked()
	e.popup = e.surface.ShowPopup(span, anchor,
		func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if st, ok := e.fields[f]; ok {
				e.applySpanLocked(f, st, span)
			}
		},
		func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if st, ok := e.fields[f]; ok {
				e.dismissSpanLocked(f, st, span)
			}
		})
}

// applySpanLocked applies span by value, not index: between popup open
// and the user's click, other fixes may have cascaded the live set.
// A span that is no longer in the set is rejected as stale.
func (e *Engine) applySpanLocked(f field.Field, st *fieldState, span model.Span) error {
	e.closePopupLocked()

	idx := indexOf(st.spans, span)
	if idx < 0 {
		err := &patch.StaleError{Expected: span.Original}
		e.surface.Notify(overlay.NoticeWarn, err.Error())
		e.renderLocked(f, st)
		return err
	}

	edit, err := patch.Apply(f.Text(), span, f.Cursor())
	if err != nil {
		var stale *patch.StaleError
		if errors.As(err, &stale) {
			e.surface.Notify(overlay.NoticeWarn, stale.Error())
			st.spans = removeAt(st.spans, idx)
			e.renderLocked(f, st)
		}
		return err
	}

	f.SetText(edit.NewText)
	f.SetCursor(edit.NewCursor)

	rest := removeAt(st.spans, idx)
	st.spans = patch.Cascade(rest, edit.Start, edit.End, edit.Delta)
	e.renderLocked(f, st)
	return nil
}

func (e *Engine) dismissSpanLocked(f field.Field, st *fieldState, span model.Span) {
	e.closePopupLocked()
	if idx := indexOf(st.spans, span); idx >= 0 {
		st.spans = removeAt(st.spans, idx)
	}
	e.renderLocked(f, st)
}

func (e *Engine) closePopupLocked() {
	if e.popup != nil {
		e.surface.ClosePopup(e.popup)
		e.popup = nil
	}
}

func indexOf(spans []model.Span, s model.Span) int {
	for i, v := range spans {
		if v == s {
			return i
		}
	}
	return -1
}

func removeAt(spans []model.Span, i int) []model.Span {
	out := make([]model.Span, 0, len(spans)-1)
	out = append(out, spans[:i]...)
	out = append(out, spans[i+1:]...)
	if len(out) == 0 {
		return nil
	}
	return out
}
