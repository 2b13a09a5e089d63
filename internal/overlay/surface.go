// Package overlay owns the visual side of the engine: one marker per
// live span, one badge per field with errors, and at most one popup
// process-wide. Drawing itself is delegated to a Surface implemented
// by the host; this package only runs the lifecycle.
package overlay

import "github.com/quillgo/quill/internal/model"

// Marker, Badge and Popup are opaque host handles.
type (
	Marker any
	Badge  any
	Popup  any
)

// Severity grades a user-visible notice.
type Severity int

const (
	NoticeInfo Severity = iota
	NoticeWarn
	NoticeError
)

// Surface is the host's drawing API. All calls happen on the caller's
// goroutine; implementations must not call back synchronously.
type Surface interface {
	// CreateMarker draws one error marker at r. onClick fires when the
	// user clicks it.
	CreateMarker(r model.Rect, span model.Span, onClick func()) Marker
	// MoveMarker repositions m and redraws it if a HideMarker call had
	// undrawn it: a hidden marker whose geometry comes back is revived
	// through MoveMarker alone.
	MoveMarker(m Marker, r model.Rect)
	// HideMarker keeps the handle alive but undraws it, for spans whose
	// geometry is temporarily unavailable.
	HideMarker(m Marker)
	RemoveMarker(m Marker)

	ShowBadge(anchor model.Rect, count int) Badge
	UpdateBadge(b Badge, anchor model.Rect, count int)
	RemoveBadge(b Badge)

	// ShowPopup opens the fix popup for span. Exactly two actions are
	// offered: onApply and onDismiss.
	ShowPopup(span model.Span, at model.Rect, onApply, onDismiss func()) Popup
	ClosePopup(p Popup)

	// Notify shows a transient notice.
	Notify(sev Severity, msg string)
}

// Viewport delivers scroll/resize events. Subscribe returns the
// cancel function that tears the listener down; the renderer calls it
// exactly once per subscription, so a well-behaved Viewport never
// leaks listeners.
type Viewport interface {
	Subscribe(fn func()) (cancel func())
}
