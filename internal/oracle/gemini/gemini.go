// Package gemini is a checker backed by Google's Gemini models.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/quillgo/quill/internal/model"
	"github.com/quillgo/quill/internal/oracle"
)

const DefaultModel = "gemini-2.0-flash"

type Checker struct {
	apiKey    string
	model     string
	protected []string // words the model is told never to flag
}

func New(apiKey, modelName string) *Checker {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Checker{apiKey: strings.TrimSpace(apiKey), model: modelName}
}

// WithProtected returns a copy of c whose prompts carry words as a
// do-not-flag list.
func (c *Checker) WithProtected(words []string) oracle.Checker {
	cp := *c
	cp.protected = words
	return &cp
}

type candidateList struct {
	Candidates []model.Candidate `json:"candidates"`
}

// Check asks the model for candidate spans in strict JSON mode.
func (c *Checker) Check(ctx context.Context, text string) ([]model.Candidate, error) {
	if c.apiKey == "" {
		return nil, errors.New("gemini: API key is empty")
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(buildUserMessage(text, c.protected)))
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}

	var list candidateList
	if err := json.Unmarshal([]byte(sb.String()), &list); err != nil {
		return nil, fmt.Errorf("gemini: parse JSON output: %w", err)
	}
	return list.Candidates, nil
}

func ptrFloat32(v float32) *float32 { return &v }

func buildUserMessage(text string, protected []string) string {
	if len(protected) == 0 {
		return "Input:\n" + text
	}
	wordList, _ := json.Marshal(protected)
	return "<protected words>\n" + string(wordList) + "\n\nInput:\n" + text
}

const systemPrompt = `You are a grammar and spelling checker. Return JSON only, matching:
{"candidates":[{"kind":"grammar|spelling|punctuation|word_choice","message":"...","original":"<exact flagged text>","suggestion":"<replacement>","start":<int>,"end":<int>}]}
start/end are 0-based character offsets into the input, end exclusive. Never flag words listed under <protected words>. Omit start/end if unsure. Return {"candidates":[]} for clean text.`
