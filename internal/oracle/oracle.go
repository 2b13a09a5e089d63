// Package oracle defines the text-analysis backend contract. A backend
// takes raw text and returns candidate error spans; it is allowed to
// omit offsets, miscount them, overlap spans, or find nothing. The
// resolver downstream makes the rest of the system safe against all of
// that, so backends stay thin.
package oracle

import (
	"context"

	"github.com/quillgo/quill/internal/model"
)

// Checker is one text-analysis backend.
type Checker interface {
	Check(ctx context.Context, text string) ([]model.Candidate, error)
}

// Func adapts a plain function to Checker.
type Func func(ctx context.Context, text string) ([]model.Candidate, error)

func (f Func) Check(ctx context.Context, text string) ([]model.Candidate, error) {
	return f(ctx, text)
}

// ProtectedWordChecker is implemented by backends that can carry a
// do-not-flag word list into the check itself (LLM prompts). Callers
// without such a backend fall back to filtering spans afterwards.
type ProtectedWordChecker interface {
	Checker

	// WithProtected returns a checker that never flags the given
	// words. The receiver is not modified.
	WithProtected(words []string) Checker
}
