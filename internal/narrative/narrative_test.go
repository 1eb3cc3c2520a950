package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tabreport/internal/dataset"
	logx "tabreport/pkg/logx"
)

func testSummary() (dataset.Summary, []dataset.ColumnStats) {
	d := dataset.New(
		[]string{"region", "sales"},
		[][]string{{"north", "100"}, {"south", "220"}, {"east", "150"}},
	)
	return dataset.Summarize(d), dataset.AnalyzeColumns(d)
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "models/gemini-1.5-flash:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "Sales are healthy."}}}},
			},
		})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "test-key", BaseURL: srv.URL, RatePerMin: 600}, logx.Nop())
	sum, cols := testSummary()

	got, err := c.Generate(context.Background(), "weekly sales", sum, cols, "es")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Sales are healthy." {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(gotPrompt, "3 rows, 2 columns") {
		t.Errorf("prompt missing dataset profile: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "español") {
		t.Errorf("prompt missing spanish directive: %q", gotPrompt)
	}
}

func TestGenerateEnglishHasNoDirective(t *testing.T) {
	t.Parallel()
	sum, cols := testSummary()
	prompt := buildPrompt("jobs", sum, cols, "en")
	for _, directive := range languageDirectives {
		if strings.Contains(prompt, directive) {
			t.Fatalf("english prompt contains directive %q", directive)
		}
	}
}

func TestGenerateAPIError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL, RatePerMin: 600}, logx.Nop())
	sum, cols := testSummary()

	_, err := c.Generate(context.Background(), "jobs", sum, cols, "en")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d", apiErr.Status)
	}
}

func TestGenerateWithoutKey(t *testing.T) {
	t.Parallel()
	c := New(Config{}, logx.Nop())
	sum, cols := testSummary()
	if _, err := c.Generate(context.Background(), "jobs", sum, cols, "en"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}
