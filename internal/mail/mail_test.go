package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	logx "tabreport/pkg/logx"
)

func TestSend(t *testing.T) {
	t.Parallel()
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer re_test" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg_123"})
	}))
	defer srv.Close()

	c := New(Config{
		APIKey:    "re_test",
		FromEmail: "reports@example.com",
		FromName:  "Reports",
		BaseURL:   srv.URL,
	}, logx.Nop())

	id, err := c.Send(context.Background(), Message{
		To:             "ops@example.com",
		Subject:        "Weekly sales",
		HTML:           "<p>hello</p>",
		PDF:            []byte("%PDF-1.4 fake"),
		AttachmentName: "weekly.pdf",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "msg_123" {
		t.Fatalf("id = %q", id)
	}
	if got.From != "Reports <reports@example.com>" {
		t.Errorf("from = %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "ops@example.com" {
		t.Errorf("to = %v", got.To)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Filename != "weekly.pdf" {
		t.Fatalf("attachments = %+v", got.Attachments)
	}
	raw, err := base64.StdEncoding.DecodeString(got.Attachments[0].Content)
	if err != nil || string(raw) != "%PDF-1.4 fake" {
		t.Errorf("attachment content mismatch: %q err=%v", raw, err)
	}
}

func TestSendWithoutAttachment(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Attachments != nil {
			t.Errorf("expected no attachments, got %+v", req.Attachments)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg_1"})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", FromEmail: "a@b.c", BaseURL: srv.URL}, logx.Nop())
	if _, err := c.Send(context.Background(), Message{To: "x@y.z", Subject: "s", HTML: "<p/>"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSendRejected(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid recipient"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", FromEmail: "a@b.c", BaseURL: srv.URL}, logx.Nop())
	_, err := c.Send(context.Background(), Message{To: "bad", Subject: "s"})
	var serr *SendError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want SendError", err)
	}
	if serr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", serr.Status)
	}
}

func TestSendValidation(t *testing.T) {
	t.Parallel()
	c := New(Config{FromEmail: "a@b.c"}, logx.Nop())
	if _, err := c.Send(context.Background(), Message{To: "x@y.z"}); err == nil {
		t.Fatal("expected error without api key")
	}
	c = New(Config{APIKey: "k", FromEmail: "a@b.c"}, logx.Nop())
	if _, err := c.Send(context.Background(), Message{}); err == nil {
		t.Fatal("expected error without recipient")
	}
}
