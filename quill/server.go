package quill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quillgo/quill/internal/cache"
	"github.com/quillgo/quill/internal/model"
	"github.com/quillgo/quill/internal/patch"
	"github.com/quillgo/quill/internal/util"
)

// Mode names the configured backend: "languagetool" | "openai" |
// "gemini" | "local".
var Mode = "languagetool"

// DefaultChecker is the shared backend used by the HTTP handlers.
var DefaultChecker Checker

// ResultCache, when non-nil, short-circuits repeated checks.
var ResultCache *cache.Redis

// CheckRequest is the HTTP request body for POST /v1/check.
type CheckRequest struct {
	Text    string   `json:"text"`              // text to check (required)
	Words   []string `json:"words,omitempty"`   // inline protected words (optional)
	Dict    *Dict    `json:"dict,omitempty"`    // user dictionary {"words":[...]} (optional)
	Timeout int      `json:"timeout,omitempty"` // seconds; default 8, LLM modes 60
}

// CheckHandler handles POST /v1/check.
func CheckHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if DefaultChecker == nil {
		http.Error(w, ErrNoChecker.Error(), http.StatusInternalServerError)
		return
	}

	timeout := 8 * time.Second
	if Mode == "openai" || Mode == "gemini" {
		timeout = 60 * time.Second
	}
	if req.Timeout > 0 {
		timeout = time.Duration(req.Timeout) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var dict *Dict
	if len(req.Words) > 0 || (req.Dict != nil && len(req.Dict.Words) > 0) {
		dict = NewDict(req.Words...)
		if req.Dict != nil {
			dict.Words = append(dict.Words, req.Dict.Words...)
		}
	}

	var words []string
	if dict != nil {
		words = dict.Words
	}
	key := cache.Key(Mode, req.Text, words)
	if ResultCache != nil {
		if res, ok := ResultCache.Get(ctx, key); ok {
			writeJSON(w, res)
			return
		}
	}

	checker := DefaultChecker
	if dict != nil {
		// LLM backends take the words into the prompt; the span filter
		// below still runs in case the model flags one anyway
		if pw, ok := checker.(ProtectedWordChecker); ok {
			checker = pw.WithProtected(dict.Words)
		}
	}

	var res *model.Result
	var err error
	if dict != nil {
		res, err = CheckWithDict(ctx, req.Text, checker, dict)
	} else {
		res, err = Check(ctx, req.Text, checker)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Check failed: %v", err), http.StatusInternalServerError)
		return
	}

	if ResultCache != nil {
		_ = ResultCache.Put(ctx, key, res) // best effort; a check never fails on cache trouble
	}
	writeJSON(w, res)
}

// PreviewFixRequest is the HTTP request body for POST /v1/preview-fix.
type PreviewFixRequest struct {
	Text   string     `json:"text"`
	Span   model.Span `json:"span"`
	Cursor int        `json:"cursor,omitempty"` // rune offset; optional
}

// PreviewFixResponse reports what applying the fix would do.
type PreviewFixResponse struct {
	Replacement string `json:"replacement"` // harmonized replacement string
	NewText     string `json:"newText"`
	Delta       int    `json:"delta"` // rune length delta
	NewCursor   int    `json:"newCursor"`
}

// PreviewFixHandler handles POST /v1/preview-fix. A span whose text
// no longer matches returns 409 with the expected/found pair.
func PreviewFixHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PreviewFixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	edit, err := patch.Apply(req.Text, req.Span, req.Cursor)
	if err != nil {
		var stale *patch.StaleError
		if errors.As(err, &stale) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{
				"error":    "stale span",
				"expected": stale.Expected,
				"found":    stale.Found,
			})
			return
		}
		http.Error(w, fmt.Sprintf("Apply failed: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, PreviewFixResponse{
		Replacement: edit.Replacement,
		NewText:     edit.NewText,
		Delta:       edit.Delta,
		NewCursor:   edit.NewCursor,
	})
}

// HealthHandler handles GET /health.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "quill",
	})
}

// OpenAPIHandler serves the OpenAPI 3.0 spec at GET /openapi.json.
func OpenAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, openAPISpec)
}

// DocsHandler serves the Redoc UI at GET /.
func DocsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, redocHTML)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	out, _ := util.MarshalNoEscape(v, true)
	fmt.Fprint(w, string(out))
}

const openAPISpec = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Quill API",
    "description": "Grammar and spelling check REST API returning verified, non-overlapping error spans.",
    "version": "1.0.0"
  },
  "paths": {
    "/v1/check": {
      "post": {
        "summary": "Check text",
        "description": "Checks text for grammar and spelling errors. Protected words are never flagged.",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": { "$ref": "#/components/schemas/CheckRequest" },
              "examples": {
                "basic": { "value": { "text": "I has a apple." } },
                "inline dictionary": { "value": { "text": "We deploy on Kubernetes", "words": ["Kubernetes"] } },
                "timeout": { "value": { "text": "long text...", "timeout": 15 } }
              }
            }
          }
        },
        "responses": {
          "200": {
            "description": "Check result",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/Result" },
                "example": {
                  "original": "I has a apple.",
                  "corrected": "I have an apple.",
                  "editDistance": 3,
                  "charCount": 14,
                  "chunkCount": 1,
                  "errorCount": 2,
                  "spans": [
                    { "kind": "grammar", "message": "Subject-verb agreement", "original": "has", "suggestion": "have", "start": 2, "end": 5 },
                    { "kind": "grammar", "message": "Wrong article", "original": "a", "suggestion": "an", "start": 6, "end": 7 }
                  ]
                }
              }
            }
          },
          "400": { "description": "Malformed request body" },
          "500": { "description": "Backend failure or checker not configured" }
        }
      }
    },
    "/v1/preview-fix": {
      "post": {
        "summary": "Preview a fix",
        "description": "Applies one span's suggestion with context-aware casing and spacing, returning the patched text without persisting anything.",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": { "$ref": "#/components/schemas/PreviewFixRequest" }
            }
          }
        },
        "responses": {
          "200": {
            "description": "Fix preview",
            "content": {
              "application/json": { "schema": { "$ref": "#/components/schemas/PreviewFixResponse" } }
            }
          },
          "409": { "description": "Stale span: the text no longer matches the span's original" }
        }
      }
    },
    "/health": {
      "get": {
        "summary": "Health",
        "responses": {
          "200": {
            "description": "Service healthy",
            "content": { "application/json": { "example": { "status": "ok", "service": "quill" } } }
          }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "CheckRequest": {
        "type": "object",
        "required": ["text"],
        "properties": {
          "text":    { "type": "string", "description": "text to check" },
          "words":   { "type": "array", "items": { "type": "string" }, "description": "inline protected words" },
          "dict":    { "$ref": "#/components/schemas/Dict" },
          "timeout": { "type": "integer", "description": "seconds; default 8 (LLM modes 60)" }
        }
      },
      "Dict": {
        "type": "object",
        "properties": {
          "words": { "type": "array", "items": { "type": "string" } }
        }
      },
      "Result": {
        "type": "object",
        "properties": {
          "original":     { "type": "string" },
          "corrected":    { "type": "string", "description": "text with every surviving fix applied" },
          "editDistance": { "type": "integer", "description": "Levenshtein(original, corrected)" },
          "charCount":    { "type": "integer", "description": "rune count" },
          "chunkCount":   { "type": "integer" },
          "errorCount":   { "type": "integer" },
          "spans":        { "type": "array", "items": { "$ref": "#/components/schemas/Span" } }
        }
      },
      "Span": {
        "type": "object",
        "properties": {
          "kind":       { "type": "string", "enum": ["grammar", "spelling", "punctuation", "word_choice"] },
          "message":    { "type": "string" },
          "original":   { "type": "string", "description": "exact text at [start, end)" },
          "suggestion": { "type": "string" },
          "start":      { "type": "integer", "description": "rune offset, inclusive" },
          "end":        { "type": "integer", "description": "rune offset, exclusive" },
          "distance":   { "type": "integer", "description": "Levenshtein(original, suggestion)" }
        }
      },
      "PreviewFixRequest": {
        "type": "object",
        "required": ["text", "span"],
        "properties": {
          "text":   { "type": "string" },
          "span":   { "$ref": "#/components/schemas/Span" },
          "cursor": { "type": "integer", "description": "rune offset to remap" }
        }
      },
      "PreviewFixResponse": {
        "type": "object",
        "properties": {
          "replacement": { "type": "string" },
          "newText":     { "type": "string" },
          "delta":       { "type": "integer" },
          "newCursor":   { "type": "integer" }
        }
      }
    }
  }
}`

const redocHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Quill API Docs</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>body { margin: 0; padding: 0; }</style>
</head>
<body>
  <redoc spec-url="/openapi.json" expand-responses="200" hide-download-button></redoc>
  <script src="https://cdn.jsdelivr.net/npm/redoc@latest/bundles/redoc.standalone.js"></script>
</body>
</html>`
