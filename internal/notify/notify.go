// Package notify announces changed runs to an external webhook.
package notify

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

	"feedsync/internal/config"
	"feedsync/internal/pipeline"
	"feedsync/pkg/utils"
)

// ErrWebhookStatus is returned when the webhook answers with a non-2xx status.
var ErrWebhookStatus = errors.New("webhook returned error status")

const defaultTimeout = 10 * time.Second

// Notifier is told about every finished run.
type Notifier interface {
	Notify(ctx context.Context, res *pipeline.Result) error
}

// Payload is the JSON body posted to the webhook.
type Payload struct {
	RunID  string          `json:"run_id"`
	Status string          `json:"status"`
	Items  []pipeline.Item `json:"items"`
}

// New returns a webhook notifier when a URL is configured and a noop
// notifier otherwise.
func New(cfg config.NotifyConfig) Notifier {
	endpoint := strings.TrimSpace(cfg.WebhookURL)
	if endpoint == "" {
		return noop{}
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &webhook{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type webhook struct {
	endpoint string
	client   *http.Client
}

// Notify posts the run summary. Runs that changed nothing are not announced.
func (w *webhook) Notify(ctx context.Context, res *pipeline.Result) error {
	if res == nil || !res.Changed || res.DryRun {
		return nil
	}

	items := res.Items
	if items == nil {
		items = []pipeline.Item{}
	}

	body, err := json.Marshal(Payload{RunID: res.RunID, Status: res.Status(), Items: items})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header = utils.BuildHeaders("", http.Header{"Content-Type": {"application/json"}})

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))

		return fmt.Errorf("%w: %d %s", ErrWebhookStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

type noop struct{}

func (noop) Notify(context.Context, *pipeline.Result) error { return nil }
