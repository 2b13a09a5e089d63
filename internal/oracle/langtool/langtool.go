// Package langtool is a checker backed by a LanguageTool-compatible
// HTTP API (the /v2/check form endpoint).
package langtool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/quillgo/quill/internal/model"
	"github.com/quillgo/quill/internal/net"
)

const DefaultLanguage = "en-US"

// Checker posts text to a LanguageTool server and converts its matches
// into candidates.
type Checker struct {
	baseURL  string
	language string
}

// New creates a Checker. language falls back to DefaultLanguage.
func New(baseURL, language string) *Checker {
	if language == "" {
		language = DefaultLanguage
	}
	return &Checker{baseURL: strings.TrimRight(baseURL, "/"), language: language}
}

// --- wire types ---

type ltResponse struct {
	Matches []ltMatch `json:"matches"`
}

type ltMatch struct {
	Message      string `json:"message"`
	ShortMessage string `json:"shortMessage"`
	Offset       int    `json:"offset"`
	Length       int    `json:"length"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
	Rule struct {
		IssueType string `json:"issueType"`
		Category  struct {
			ID string `json:"id"`
		} `json:"category"`
	} `json:"rule"`
}

// Check posts text and returns one candidate per match that carries a
// replacement. Matches without replacements are skipped: there is no
// fix to offer for them.
func (c *Checker) Check(ctx context.Context, text string) ([]model.Candidate, error) {
	form := url.Values{
		"text":     {text},
		"language": {c.language},
	}

	req, err := net.NewPOST(ctx, c.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := net.Do(req)
	if err != nil {
		return nil, fmt.Errorf("langtool: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("langtool: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var lt ltResponse
	if err := json.NewDecoder(resp.Body).Decode(&lt); err != nil {
		return nil, fmt.Errorf("langtool: decode response: %w", err)
	}

	runes := []rune(text)
	out := make([]model.Candidate, 0, len(lt.Matches))
	for _, m := range lt.Matches {
		if len(m.Replacements) == 0 || m.Length <= 0 {
			continue
		}
		// The server counts offsets in UTF-16 code units; for BMP text
		// that equals rune offsets, and the resolver repairs the rest.
		start, end := m.Offset, m.Offset+m.Length
		if start < 0 || start >= len(runes) {
			continue
		}
		if end > len(runes) {
			end = len(runes)
		}
		s, e := start, end
		out = append(out, model.Candidate{
			Kind:       kindOf(m),
			Message:    m.Message,
			Original:   string(runes[start:end]),
			Suggestion: m.Replacements[0].Value,
			Start:      &s,
			End:        &e,
		})
	}
	return out, nil
}

func kindOf(m ltMatch) string {
	switch {
	case m.Rule.Category.ID == "TYPOS" || m.Rule.IssueType == "misspelling":
		return string(model.KindSpelling)
	case m.Rule.Category.ID == "PUNCTUATION":
		return string(model.KindPunctuation)
	case m.Rule.Category.ID == "STYLE" || m.Rule.Category.ID == "REDUNDANCY":
		return string(model.KindWordChoice)
	default:
		return string(model.KindGrammar)
	}
}
