// Package narrative turns dataset summaries into prose insights by calling
// a Gemini-style generateContent endpoint. Calls are throttled with a token
// bucket so bursty report schedules stay inside the provider quota.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tabreport/internal/dataset"
	logx "tabreport/pkg/logx"
)

const (
	defaultModel   = "gemini-1.5-flash"
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultTimeout = 45 * time.Second
	defaultPerMin  = 10
)

// ErrDisabled is returned when no API key is configured. Callers treat
// narrative generation as optional and degrade to a report without it.
var ErrDisabled = errors.New("narrative: api key not configured")

// APIError reports a non-2xx response from the model endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("narrative: api status %d: %s", e.Status, e.Message)
}

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	RatePerMin int
	Timeout    time.Duration
}

type Client struct {
	httpc   *http.Client
	apiKey  string
	model   string
	baseURL string
	limiter *rate.Limiter
	log     logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RatePerMin <= 0 {
		cfg.RatePerMin = defaultPerMin
	}
	return &Client{
		httpc:   &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMin)), 1),
		log:     log,
	}
}

// Enabled reports whether the client has credentials to call the API.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// languageDirectives maps report languages to response-language
// instructions appended to every prompt. English needs none.
var languageDirectives = map[string]string{
	"es": "Responde completamente en español.",
	"fr": "Réponds entièrement en français.",
	"de": "Antworte vollständig auf Deutsch.",
	"pt": "Responda inteiramente em português.",
	"hi": "पूरी तरह हिंदी में उत्तर दें।",
	"zh": "请完全用中文回答。",
	"ja": "すべて日本語で回答してください。",
}

// Generate produces an analyst-style narrative for the dataset in the given
// language. Unknown languages fall back to English output.
func (c *Client) Generate(ctx context.Context, name string, sum dataset.Summary, cols []dataset.ColumnStats, lang string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	prompt := buildPrompt(name, sum, cols, lang)
	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("narrative: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("narrative: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("narrative: decode response: %w", err)
	}
	text := out.text()
	if text == "" {
		return "", errors.New("narrative: empty completion")
	}

	c.log.Debug("narrative generated",
		logx.String("model", c.model),
		logx.String("language", lang),
		logx.Duration("took", time.Since(started)),
	)
	return text, nil
}

func buildPrompt(name string, sum dataset.Summary, cols []dataset.ColumnStats, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a data analyst. Write a concise executive summary for the dataset %q.\n\n", name)
	fmt.Fprintf(&b, "Dataset profile: %d rows, %d columns (%d numeric, %d text), %.1f%% of cells missing.\n",
		sum.Rows, sum.Columns, sum.NumericColumns, sum.TextColumns, sum.MissingPct)

	for _, c := range cols {
		if c.Numeric {
			fmt.Fprintf(&b, "- %s: mean %.4g, median %.4g, std %.4g, range [%.4g, %.4g], %.1f%% missing\n",
				c.Name, c.Mean, c.Median, c.Std, c.Min, c.Max, c.MissingPct)
		} else {
			fmt.Fprintf(&b, "- %s: text, %d distinct values, %.1f%% missing\n",
				c.Name, c.Unique, c.MissingPct)
		}
	}

	b.WriteString("\nCover notable patterns, data quality concerns, and two or three actionable observations. Use plain paragraphs, no markdown headings.\n")
	if d, ok := languageDirectives[lang]; ok {
		b.WriteString(d)
		b.WriteString("\n")
	}
	return b.String()
}

// ---- wire types ----

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}
