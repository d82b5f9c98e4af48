package respond

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"logguard/internal/config"
	"logguard/internal/model"
)

func TestSendPostsJSONWithBearerToken(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody []model.Alert
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewCoordinator(config.AlertingConfig{
		WebhookURL: server.URL,
		APIKey:     "secret-key",
		Timeout:    5 * time.Second,
	}, nil)
	alerts := []model.Alert{
		{Type: model.AlertBruteForce, IP: "1.1.1.1", FailedLogins: 9},
		{Type: model.AlertAnomaly, IP: "2.2.2.2", FailedLogins: 100, Requests: 120},
	}
	status, err := c.Send(context.Background(), alerts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotContentType)
	}
	if len(gotBody) != 2 || gotBody[0].IP != "1.1.1.1" || gotBody[1].Requests != 120 {
		t.Fatalf("unexpected posted body: %+v", gotBody)
	}
}

func TestSendOmitsAuthWithoutKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	c := NewCoordinator(config.AlertingConfig{WebhookURL: server.URL}, nil)
	if _, err := c.Send(context.Background(), []model.Alert{{IP: "1.1.1.1"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestSendReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewCoordinator(config.AlertingConfig{WebhookURL: server.URL}, nil)
	status, err := c.Send(context.Background(), []model.Alert{{IP: "1.1.1.1"}})
	if err == nil {
		t.Fatalf("expected error for 403 response")
	}
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
}

func TestSendWithoutWebhook(t *testing.T) {
	c := NewCoordinator(config.AlertingConfig{}, nil)
	if _, err := c.Send(context.Background(), []model.Alert{{IP: "1.1.1.1"}}); err == nil {
		t.Fatalf("expected error without webhook")
	}
}

func TestHandleSurvivesDeadWebhook(t *testing.T) {
	c := NewCoordinator(config.AlertingConfig{
		WebhookURL: "http://127.0.0.1:1/unreachable",
		Timeout:    time.Second,
	}, nil)
	// must not panic or block the run
	c.Handle(context.Background(), []model.Alert{{IP: "1.1.1.1"}}, nil)
}
