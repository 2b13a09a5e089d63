// Package quill is a grammar-checking engine for live text fields.
//
// The library half (Check, CheckWithDict) turns a backend's raw
// candidates into verified, non-overlapping error spans and a fully
// corrected text. The engine half (NewEngine) monitors host text
// fields, keeps markers on screen through edits and scrolling, and
// applies fixes with cascading offset adjustment.
package quill

import (
	"time"

	"github.com/quillgo/quill/internal/engine"
	"github.com/quillgo/quill/internal/field"
	"github.com/quillgo/quill/internal/model"
	"github.com/quillgo/quill/internal/oracle"
	"github.com/quillgo/quill/internal/overlay"
	"github.com/quillgo/quill/internal/patch"
)

// Re-exported core types, so hosts implement adapters without
// reaching into internal packages.
type (
	Result    = model.Result
	Span      = model.Span
	Candidate = model.Candidate
	Kind      = model.Kind
	Rect      = model.Rect

	Checker              = oracle.Checker
	CheckerFunc          = oracle.Func
	ProtectedWordChecker = oracle.ProtectedWordChecker

	Field     = field.Field
	RichField = field.RichField
	Metrics   = field.Metrics

	Surface  = overlay.Surface
	Viewport = overlay.Viewport

	Engine     = engine.Engine
	StaleError = patch.StaleError
)

const (
	KindGrammar     = model.KindGrammar
	KindSpelling    = model.KindSpelling
	KindPunctuation = model.KindPunctuation
	KindWordChoice  = model.KindWordChoice
)

// NewEngine builds an engine over the given backend and host surfaces.
// timeout bounds each backend call; <= 0 picks the default.
func NewEngine(c Checker, s Surface, v Viewport, timeout time.Duration) *Engine {
	return engine.New(c, s, v, timeout)
}
