package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openwatch/beacon/internal/domain"
)

func TestSlack_OK(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		got = payload["text"]
		w.WriteHeader(200)
	}))
	defer ts.Close()

	s := NewSlack(ts.URL)
	if s == nil {
		t.Fatal("expected slack client")
	}
	ep := domain.Endpoint{ID: "E1", URL: "https://example.com", Status: domain.StatusDown}
	if err := s.Send(context.Background(), "ignored@example.com", ep); err != nil {
		t.Fatalf("send err: %v", err)
	}
	if !strings.Contains(got, "https://example.com is unavailable!") {
		t.Fatalf("payload not as expected: %q", got)
	}
}

func TestSlack_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	s := NewSlack(ts.URL)
	err := s.Send(context.Background(), "x@example.com", domain.Endpoint{URL: "https://x"})
	if err == nil {
		t.Fatalf("expected error on non-2xx")
	}
}

func TestNewMailer_DisabledWithoutHost(t *testing.T) {
	m, err := NewMailer(MailConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil mailer when host is empty")
	}
}

func TestMulti_SkipsNilAndReturnsFirstError(t *testing.T) {
	var sent []string
	ok := notifierFunc(func(_ context.Context, r string, _ domain.Endpoint) error {
		sent = append(sent, r)
		return nil
	})
	bad := notifierFunc(func(_ context.Context, _ string, _ domain.Endpoint) error {
		return context.DeadlineExceeded
	})

	m := Multi{nil, bad, ok}
	err := m.Send(context.Background(), "a@example.com", domain.Endpoint{URL: "https://x"})
	if err != context.DeadlineExceeded {
		t.Fatalf("want first error back, got %v", err)
	}
	if len(sent) != 1 || sent[0] != "a@example.com" {
		t.Fatalf("later notifiers should still run: %v", sent)
	}
}

type notifierFunc func(ctx context.Context, recipient string, ep domain.Endpoint) error

func (f notifierFunc) Send(ctx context.Context, recipient string, ep domain.Endpoint) error {
	return f(ctx, recipient, ep)
}
