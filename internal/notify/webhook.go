package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/certwatch-app/cw-inventory/internal/alert"
	"github.com/certwatch-app/cw-inventory/internal/version"
)

// maxDetailBody caps how much of an error response is kept in Delivery.Detail
const maxDetailBody = 512

// Webhook posts messages to a single webhook URL
type Webhook struct {
	httpClient *http.Client
	logger     *zap.Logger
	url        string
}

// New creates a Webhook client. An empty url is allowed; Send then reports the
// webhook as not configured.
func New(url string, timeout time.Duration, logger *zap.Logger) *Webhook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Webhook{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Configured reports whether a webhook URL is set
func (w *Webhook) Configured() bool {
	return w.url != ""
}

// Send posts msg once. Failures are reported through the returned Delivery,
// never retried.
func (w *Webhook) Send(ctx context.Context, msg Message) Delivery {
	if w.url == "" {
		return Delivery{Detail: "webhook URL not configured"}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return Delivery{Detail: fmt.Sprintf("failed to marshal message: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return Delivery{Detail: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("User-Agent", version.UserAgent())

	w.logger.Debug("sending webhook notification", zap.Int("body_length", len(body)))

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return Delivery{Detail: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBody))

	w.logger.Debug("received webhook response",
		zap.Int("status", resp.StatusCode),
		zap.Int("body_length", len(respBody)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if text := strings.TrimSpace(string(respBody)); text != "" {
			detail += ": " + text
		}
		return Delivery{Detail: detail, StatusCode: resp.StatusCode}
	}

	return Delivery{
		OK:         true,
		Detail:     fmt.Sprintf("HTTP %d", resp.StatusCode),
		StatusCode: resp.StatusCode,
	}
}

// MessageFromAlert builds the webhook message for a composed alert
func MessageFromAlert(res alert.Result) Message {
	text := res.Text()
	msg := Message{Text: text}
	if res.Empty {
		return msg
	}

	header := fmt.Sprintf(":warning: *%d certificate(s) expiring within %d days*", res.Count, res.Threshold)
	lines := strings.Join(res.Lines, "\n")
	if res.Remaining > 0 {
		lines += fmt.Sprintf("\n...and %d more", res.Remaining)
	}

	msg.Blocks = []Block{
		{Type: "section", Text: &TextObject{Type: "mrkdwn", Text: header}},
		{Type: "section", Text: &TextObject{Type: "mrkdwn", Text: "```" + lines + "```"}},
	}
	return msg
}
