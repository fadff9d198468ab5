// Package report delivers the end-of-session intelligence report to an
// external collection endpoint. Delivery is fire-and-forget from the
// caller's perspective: retries and failure logging live here, and a failed
// delivery never unwinds a concluded session.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/decoykit/scamtrap/internal/domain"
)

// Report is the fixed-shape payload posted when a session concludes.
type Report struct {
	SessionID              string              `json:"sessionId"`
	ScamDetected           bool                `json:"scamDetected"`
	TotalMessagesExchanged int                 `json:"totalMessagesExchanged"`
	ExtractedIntelligence  domain.Intelligence `json:"extractedIntelligence"`
	AgentNotes             string              `json:"agentNotes"`
}

// Dispatcher delivers a terminal report. Implementations must be safe for
// concurrent use.
type Dispatcher interface {
	Deliver(ctx context.Context, r Report) error
}

// HTTPDispatcher posts reports as JSON with bounded retry and backoff.
type HTTPDispatcher struct {
	url         string
	authToken   string
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

// Options tunes the HTTP dispatcher. Zero values get sensible defaults
// (3 attempts, 500ms initial backoff, 10s request timeout).
type Options struct {
	AuthToken   string
	MaxAttempts int
	Backoff     time.Duration
	Timeout     time.Duration
}

// NewHTTP creates a dispatcher posting to url.
func NewHTTP(url string, logger *slog.Logger, opts Options) *HTTPDispatcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &HTTPDispatcher{
		url:       url,
		authToken: opts.AuthToken,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		logger:      logger,
	}
}

// Deliver posts the report, retrying with doubling backoff. Exhausted
// retries return a CallbackDeliveryError; callers log and swallow it.
func (d *HTTPDispatcher) Deliver(ctx context.Context, r Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return &domain.CallbackDeliveryError{SessionID: r.SessionID, Attempts: 0, Err: err}
	}

	backoff := d.backoff
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		lastErr = d.post(ctx, body)
		if lastErr == nil {
			d.logger.Info("callback delivered",
				slog.String("session_id", r.SessionID),
				slog.Int("attempt", attempt),
			)
			return nil
		}

		d.logger.Warn("callback delivery attempt failed",
			slog.String("session_id", r.SessionID),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)

		if attempt < d.maxAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return &domain.CallbackDeliveryError{SessionID: r.SessionID, Attempts: attempt, Err: ctx.Err()}
			}
			backoff *= 2
		}
	}

	return &domain.CallbackDeliveryError{SessionID: r.SessionID, Attempts: d.maxAttempts, Err: lastErr}
}

func (d *HTTPDispatcher) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+d.authToken)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// LogDispatcher records reports to the log only. Used when no callback URL
// is configured.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d *LogDispatcher) Deliver(ctx context.Context, r Report) error {
	d.Logger.Info("session report (no callback endpoint configured)",
		slog.String("session_id", r.SessionID),
		slog.Bool("scam_detected", r.ScamDetected),
		slog.Int("messages", r.TotalMessagesExchanged),
		slog.Int("artifacts", r.ExtractedIntelligence.Count()),
		slog.String("notes", r.AgentNotes),
	)
	return nil
}
