package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/notification"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"
	"golang.org/x/time/rate"
)

const (
	peer     = "discord"
	endpoint = "webhook"

	defaultAttempts       = 3
	defaultBaseBackoff    = 500 * time.Millisecond
	defaultAttemptTimeout = 5 * time.Second
)

// ErrDisabled is logged when no webhook URL is configured.
var ErrDisabled = errors.New("discord: webhook disabled")

// DeliveryError is returned when the webhook could not be reached or rejected the message.
type DeliveryError struct {
	StatusCode int
	Attempts   int
	Body       string
	RetryAfter time.Duration
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("discord: webhook returned %d after %d attempt(s): %s", e.StatusCode, e.Attempts, e.Body)
	}
	return fmt.Sprintf("discord: webhook unreachable after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type Config struct {
	URL            string
	Identity       Identity
	MaxAttempts    int
	BaseBackoff    time.Duration
	AttemptTimeout time.Duration
	// RatePerSecond and Burst bound outgoing requests; zero disables limiting.
	RatePerSecond float64
	Burst         int
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error

	log          observability.Logger
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewClient(cfg Config, httpClient *http.Client, tel observability.Observability) *Client {
	if tel == nil {
		tel = observability.Nop()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = defaultBaseBackoff
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	if cfg.Identity == (Identity{}) {
		cfg.Identity = DefaultIdentity()
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{
		cfg:          cfg,
		http:         httpClient,
		limiter:      limiter,
		sleep:        sleepCtx,
		log:          tel.Logger().With(observability.F("component", "discord_webhook")),
		extCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		extHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

func (c *Client) Enabled() bool { return c.cfg.URL != "" }

// Dispatch posts ev to the webhook, retrying network errors, 429 and 5xx with
// exponential backoff. Other 4xx responses fail on the first attempt.
func (c *Client) Dispatch(ctx context.Context, ev notification.Event) (notification.Delivery, error) {
	logger := logctx.FromOr(ctx, c.log).With(observability.F("kind", string(ev.Kind)))
	if !c.Enabled() {
		logger.Debug("notification_skipped", observability.F("reason", ErrDisabled.Error()))
		return notification.Delivery{Skipped: true}, nil
	}

	body, err := json.Marshal(NewPayload(c.cfg.Identity, ev))
	if err != nil {
		return notification.Delivery{}, fmt.Errorf("discord: encode payload: %w", err)
	}

	var last *DeliveryError
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.backoff(attempt-1, last)); err != nil {
				last.Err = errors.Join(last.Err, err)
				return notification.Delivery{}, last
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return notification.Delivery{}, &DeliveryError{Attempts: attempt - 1, Err: err}
			}
		}

		res, err := c.post(ctx, body)
		switch {
		case err != nil:
			last = &DeliveryError{Attempts: attempt, Err: err}
		case res.status >= 200 && res.status < 300:
			return notification.Delivery{StatusCode: res.status, Attempts: attempt}, nil
		default:
			last = &DeliveryError{StatusCode: res.status, Attempts: attempt, Body: res.body, RetryAfter: res.retryAfter}
		}

		if !retryable(last) {
			break
		}
		logger.Warn("notification_retry",
			observability.F("attempt", attempt),
			observability.F("error", last.Error()),
		)
	}
	return notification.Delivery{}, last
}

type attemptResult struct {
	status     int
	body       string
	retryAfter time.Duration
}

func (c *Client) post(ctx context.Context, body []byte) (attemptResult, error) {
	actx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	start := time.Now()
	outcome := "success"
	defer func() {
		c.extCounter.Add(1,
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
		c.extHistogram.Observe(time.Since(start).Seconds(),
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
		)
	}()

	req, err := http.NewRequestWithContext(actx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		outcome = "error"
		return attemptResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = "error"
		return attemptResult{}, err
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "rejected"
	}

	res := attemptResult{status: resp.StatusCode, body: string(snippet)}
	if secs, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64); err == nil && secs > 0 {
		res.retryAfter = time.Duration(secs * float64(time.Second))
	}
	return res, nil
}

func retryable(e *DeliveryError) bool {
	if e == nil {
		return false
	}
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func (c *Client) backoff(retry int, last *DeliveryError) time.Duration {
	if last != nil && last.RetryAfter > 0 {
		return last.RetryAfter
	}
	return c.cfg.BaseBackoff << (retry - 1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ notification.Dispatcher = (*Client)(nil)
