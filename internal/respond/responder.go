package respond

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"logguard/internal/config"
	"logguard/internal/model"
)

// Coordinator handles detection output: it logs every alert and, when a
// webhook is configured, posts the combined list there.
type Coordinator struct {
	cfg    config.AlertingConfig
	client *http.Client
	logger *slog.Logger
}

func NewCoordinator(cfg config.AlertingConfig, logger *slog.Logger) *Coordinator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Coordinator{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Handle combines the two alert lists, rule alerts first, and dispatches
// them. Delivery failures are logged, not returned: a dead webhook must
// not fail the detection run.
func (c *Coordinator) Handle(ctx context.Context, ruleAlerts, anomalyAlerts []model.Alert) {
	all := make([]model.Alert, 0, len(ruleAlerts)+len(anomalyAlerts))
	all = append(all, ruleAlerts...)
	all = append(all, anomalyAlerts...)
	if len(all) == 0 {
		if c.logger != nil {
			c.logger.Info("no threats detected")
		}
		return
	}
	if c.logger != nil {
		for _, a := range all {
			c.logger.Warn("alert",
				"type", a.Type,
				"ip", a.IP,
				"failed_logins", a.FailedLogins,
				"requests", a.Requests,
			)
		}
	}
	if c.cfg.WebhookURL == "" {
		if c.logger != nil {
			c.logger.Info("no webhook configured, alerts logged locally only", "count", len(all))
		}
		return
	}
	status, err := c.Send(ctx, all)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("alert delivery failed", "webhook", c.cfg.WebhookURL, "err", err)
		}
		return
	}
	if c.logger != nil {
		c.logger.Info("alerts posted to webhook", "webhook", c.cfg.WebhookURL, "status", status, "count", len(all))
	}
}

// Send posts the alert list as a JSON body. A bearer token header is set
// when an API key is configured. Returns the upstream status code.
func (c *Coordinator) Send(ctx context.Context, alerts []model.Alert) (int, error) {
	if c.cfg.WebhookURL == "" {
		return 0, fmt.Errorf("no webhook configured")
	}
	body, err := json.Marshal(alerts)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("webhook returned %s", resp.Status)
	}
	return resp.StatusCode, nil
}
