// Package mail delivers finished reports over the Resend HTTP API.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	logx "tabreport/pkg/logx"
)

const (
	defaultBaseURL = "https://api.resend.com"
	defaultTimeout = 30 * time.Second
)

// SendError reports a rejected delivery attempt.
type SendError struct {
	Status  int
	Message string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mail: send failed with status %d: %s", e.Status, e.Message)
}

type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
	BaseURL   string
	Timeout   time.Duration
}

// Message is one outbound email. PDF, when set, is attached under
// AttachmentName.
type Message struct {
	To             string
	Subject        string
	HTML           string
	PDF            []byte
	AttachmentName string
}

type Client struct {
	httpc   *http.Client
	apiKey  string
	from    string
	baseURL string
	log     logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return &Client{
		httpc:   &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		from:    from,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     log,
	}
}

// Send submits msg and returns the provider message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("mail: api key not configured")
	}
	if msg.To == "" {
		return "", errors.New("mail: recipient is required")
	}

	payload := sendRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	if len(msg.PDF) > 0 {
		name := msg.AttachmentName
		if name == "" {
			name = "report.pdf"
		}
		payload.Attachments = []attachment{{
			Filename: name,
			Content:  base64.StdEncoding.EncodeToString(msg.PDF),
		}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("mail: request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("mail: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &SendError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	var out struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(respBody, &out)

	c.log.Info("email sent",
		logx.String("to", msg.To),
		logx.String("message_id", out.ID),
		logx.Int("attachment_bytes", len(msg.PDF)),
	)
	return out.ID, nil
}

type sendRequest struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}
