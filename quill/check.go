package quill

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/quillgo/quill/internal/chunk"
	"github.com/quillgo/quill/internal/model"
	"github.com/quillgo/quill/internal/patch"
	"github.com/quillgo/quill/internal/resolve"
	"github.com/quillgo/quill/internal/util"
)

// Check submits text (any length) to c and returns a normalized
// Result.
//
// Input is split into word-bounded parts, dispatched in parallel
// (bounded by GOMAXPROCS), then each part's candidates are verified,
// re-based onto document offsets, and deduplicated globally.
//
// ctx controls overall timeout / cancellation.
func Check(ctx context.Context, text string, c Checker) (*model.Result, error) {
	text = strings.TrimSpace(text)
	if ctx == nil {
		return nil, errors.New("ctx is nil")
	}
	if c == nil {
		return nil, ErrNoChecker
	}

	parts := chunk.Split(text, 0)
	perPart := make([][]model.Span, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range parts {
		i, p := i, p
		g.Go(func() error {
			cands, err := c.Check(gctx, p.Text)
			if err != nil {
				return err
			}
			spans := make([]model.Span, 0, len(cands))
			for _, cand := range cands {
				if s := resolve.Resolve(p.Text, cand); s != nil {
					s.Start += p.Base
					s.End += p.Base
					spans = append(spans, *s)
				}
			}
			perPart[i] = spans
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Span
	for _, spans := range perPart {
		all = append(all, spans...)
	}
	live := resolve.Dedupe(all, text)

	res := &model.Result{
		Original:   text,
		CharCount:  utf8.RuneCountInString(text),
		ChunkCount: len(parts),
		ErrorCount: len(live),
		Spans:      live,
	}
	res.Corrected = applyAll(text, live)
	res.EditDistance = util.Levenshtein(res.Original, res.Corrected)
	return res, nil
}

// CheckWithDict is like Check but drops any span whose flagged text is
// a protected word.
func CheckWithDict(ctx context.Context, text string, c Checker, dict *Dict) (*model.Result, error) {
	res, err := Check(ctx, text, c)
	if err != nil || dict == nil || len(dict.Words) == 0 {
		return res, err
	}

	kept := make([]model.Span, 0, len(res.Spans))
	for _, s := range res.Spans {
		if !dict.Contains(s.Original) {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(res.Spans) {
		return res, nil
	}
	if len(kept) == 0 {
		kept = nil
	}

	res.Spans = kept
	res.ErrorCount = len(kept)
	res.Corrected = applyAll(res.Original, kept)
	res.EditDistance = util.Levenshtein(res.Original, res.Corrected)
	return res, nil
}

// applyAll fixes every span through the patcher, front to back,
// cascading each edit's offset delta onto the spans still pending.
// Spans invalidated along the way are skipped, not guessed at.
func applyAll(text string, spans []model.Span) string {
	cur := text
	pending := make([]model.Span, len(spans))
	copy(pending, spans)

	for len(pending) > 0 {
		s := pending[0]
		pending = pending[1:]
		edit, err := patch.Apply(cur, s, 0)
		if err != nil {
			continue
		}
		cur = edit.NewText
		pending = patch.Cascade(pending, edit.Start, edit.End, edit.Delta)
	}
	return cur
}
