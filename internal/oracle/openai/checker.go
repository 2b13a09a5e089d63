// Package openai is a checker backed by an OpenAI-compatible chat
// completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quillgo/quill/internal/model"
	"github.com/quillgo/quill/internal/oracle"
)

const (
	DefaultModel   = "gpt-5-mini"
	DefaultBaseURL = "https://api.openai.com/v1"
)

// Checker sends check requests to an OpenAI-compatible chat
// completions API.
type Checker struct {
	baseURL   string
	apiKey    string
	model     string
	protected []string // words the model is told never to flag
	client    *http.Client
}

// New creates a new Checker. Unset model/baseURL fall back to their
// defaults.
func New(apiKey, model, baseURL string) *Checker {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Checker{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WithProtected returns a copy of c whose prompts carry words as a
// do-not-flag list.
func (c *Checker) WithProtected(words []string) oracle.Checker {
	cp := *c
	cp.protected = words
	return &cp
}

// --- OpenAI wire types ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type candidateList struct {
	Candidates []model.Candidate `json:"candidates"`
}

// Check calls the model and returns its candidate spans unverified.
func (c *Checker) Check(ctx context.Context, text string) ([]model.Candidate, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserMessage(text, c.protected)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read body: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("openai: API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices (status %d)", resp.StatusCode)
	}

	content := stripMarkdownFence(chatResp.Choices[0].Message.Content)

	var list candidateList
	if err := json.Unmarshal([]byte(content), &list); err != nil {
		return nil, fmt.Errorf("openai: parse JSON output: %w\ncontent: %s", err, content)
	}
	return list.Candidates, nil
}

func buildUserMessage(text string, protected []string) string {
	if len(protected) == 0 {
		return "Input:\n" + text
	}
	wordList, _ := json.Marshal(protected)
	return "<protected words>\n" + string(wordList) + "\n\nInput:\n" + text
}

// stripMarkdownFence removes optional ```json ... ``` wrapping from
// model output.
func stripMarkdownFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

const systemPrompt = `You are a grammar and spelling checker. Output JSON only.

Rules:
- Never flag words listed under <protected words>.
- start/end are 0-based character (rune) offsets into the input; end is exclusive.
- If you are unsure of the exact offsets, omit start and end entirely rather than guessing.
- kind is one of: grammar, spelling, punctuation, word_choice.
- suggestion is the full replacement for the flagged range.
- If the text has no issues, return {"candidates": []}.

Output format (JSON only, no commentary or Markdown):
{
  "candidates": [
    {
      "kind": "spelling",
      "message": "<why this is an error>",
      "original": "<exact flagged text>",
      "suggestion": "<replacement>",
      "start": <int>,
      "end": <int>
    }
  ]
}`
