package quill

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func withChecker(t *testing.T, c Checker) {
	t.Helper()
	prev, prevMode := DefaultChecker, Mode
	DefaultChecker, Mode = c, "languagetool"
	t.Cleanup(func() { DefaultChecker, Mode = prev, prevMode })
}

func TestCheckHandler_Basic(t *testing.T) {
	withChecker(t, hasAChecker)

	req := httptest.NewRequest(http.MethodPost, "/v1/check", strings.NewReader(`{"text":"I has a apple"}`))
	w := httptest.NewRecorder()
	CheckHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	var res Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if res.ErrorCount != 2 {
		t.Fatalf("errorCount = %d, want 2", res.ErrorCount)
	}
	if res.Corrected != "I have an apple" {
		t.Fatalf("corrected = %q, want %q", res.Corrected, "I have an apple")
	}
}

func TestCheckHandler_ProtectedWords(t *testing.T) {
	c := CheckerFunc(func(ctx context.Context, text string) ([]Candidate, error) {
		return []Candidate{
			{Kind: "spelling", Original: "Quillgo", Suggestion: "Quill", Start: intp(0), End: intp(7)},
		}, nil
	})
	withChecker(t, c)

	body := `{"text":"Quillgo ships today","words":["Quillgo"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/check", strings.NewReader(body))
	w := httptest.NewRecorder()
	CheckHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	var res Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if res.ErrorCount != 0 {
		t.Fatalf("errorCount = %d, want 0 (protected word flagged)", res.ErrorCount)
	}
}

// promptChecker records the protected words it was handed, so the
// handler's prompt-level wiring is observable.
type promptChecker struct {
	got   *[]string
	words []string
}

func (p *promptChecker) Check(ctx context.Context, text string) ([]Candidate, error) {
	return nil, nil
}

func (p *promptChecker) WithProtected(words []string) Checker {
	*p.got = words
	return &promptChecker{got: p.got, words: words}
}

func TestCheckHandler_DictReachesPromptBackend(t *testing.T) {
	var got []string
	withChecker(t, &promptChecker{got: &got})

	body := `{"text":"Quillgo ships today","words":["Quillgo","gRPC"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/check", strings.NewReader(body))
	w := httptest.NewRecorder()
	CheckHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	if len(got) != 2 || got[0] != "Quillgo" || got[1] != "gRPC" {
		t.Fatalf("protected words handed to backend = %v, want [Quillgo gRPC]", got)
	}
}

func TestCheckHandler_MethodNotAllowed(t *testing.T) {
	withChecker(t, hasAChecker)
	req := httptest.NewRequest(http.MethodGet, "/v1/check", nil)
	w := httptest.NewRecorder()
	CheckHandler(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestCheckHandler_BadBody(t *testing.T) {
	withChecker(t, hasAChecker)
	req := httptest.NewRequest(http.MethodPost, "/v1/check", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	CheckHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCheckHandler_NoChecker(t *testing.T) {
	withChecker(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/check", strings.NewReader(`{"text":"x"}`))
	w := httptest.NewRecorder()
	CheckHandler(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestPreviewFixHandler_Basic(t *testing.T) {
	body := `{"text":"Hello wrold.","span":{"kind":"spelling","original":"wrold","suggestion":"world","start":6,"end":11},"cursor":12}`
	req := httptest.NewRequest(http.MethodPost, "/v1/preview-fix", strings.NewReader(body))
	w := httptest.NewRecorder()
	PreviewFixHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	var res PreviewFixResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if res.NewText != "Hello world." {
		t.Fatalf("newText = %q, want %q", res.NewText, "Hello world.")
	}
	if res.Delta != 0 || res.NewCursor != 12 {
		t.Fatalf("delta/newCursor = %d/%d, want 0/12", res.Delta, res.NewCursor)
	}
}

func TestPreviewFixHandler_StaleConflict(t *testing.T) {
	body := `{"text":"Hello world.","span":{"kind":"spelling","original":"wrold","suggestion":"world","start":6,"end":11}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/preview-fix", strings.NewReader(body))
	w := httptest.NewRecorder()
	PreviewFixHandler(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	var res map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if res["expected"] != "wrold" || res["found"] != "world" {
		t.Fatalf("conflict body = %v, want expected/found pair", res)
	}
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	HealthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var res map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if res["status"] != "ok" {
		t.Fatalf("status field = %q, want ok", res["status"])
	}
}

func TestOpenAPIHandler_ValidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()
	OpenAPIHandler(w, req)

	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("spec is not valid JSON: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Fatalf("openapi version = %v, want 3.0.3", doc["openapi"])
	}
}

func TestDocsHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	DocsHandler(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "redoc") {
		t.Fatalf("docs page: status %d, body %q", w.Code, w.Body.String()[:60])
	}

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	w = httptest.NewRecorder()
	DocsHandler(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for unknown path", w.Code)
	}
}
