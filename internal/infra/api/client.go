package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
	"github.com/aliskhannn/knowledge-check-bot/internal/metrics"
)

// Default retry policy.
const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultInitialDelay   = time.Second
	DefaultMaxDelay       = 16 * time.Second
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 4 << 20

var (
	ErrUnsuccessful = errors.New("backend returned success: false")
	ErrBadStatus    = errors.New("unexpected http status")
)

// Config controls timeouts and the backoff between attempts.
type Config struct {
	RequestTimeout time.Duration
	InitialDelay   time.Duration
	MaxDelay       time.Duration
}

// Client posts to knowledge-check endpoints and retries until one succeeds.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger

	newBackoff func() retry.Backoff
}

// NewClient creates a client. Zero values in cfg fall back to the defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = max(DefaultMaxDelay, cfg.InitialDelay)
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 3,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cfg:    cfg,
		logger: logger,
	}
	c.newBackoff = c.defaultBackoff

	return c
}

// defaultBackoff yields min(InitialDelay * 2^(n-1), MaxDelay) before retry n, forever.
func (c *Client) defaultBackoff() retry.Backoff {
	return retry.WithCappedDuration(c.cfg.MaxDelay, retry.NewExponential(c.cfg.InitialDelay))
}

// FetchWithRetry posts payload to url until the backend answers with success.
// Failed attempts are never surfaced: the only errors returned are a payload
// that cannot be encoded and cancellation of ctx.
func (c *Client) FetchWithRetry(ctx context.Context, url string, payload any) (*entities.APIResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	requestID := uuid.NewString()
	log := c.logger.With(
		zap.String("url", url),
		zap.String("request_id", requestID),
	)

	var (
		attempt int
		result  *entities.APIResponse
	)

	backoff := c.newBackoff()
	logged := retry.BackoffFunc(func() (time.Duration, bool) {
		delay, stop := backoff.Next()
		log.Info("retrying knowledge check fetch",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)
		return delay, stop
	})

	err = retry.Do(ctx, logged, func(ctx context.Context) error {
		attempt++
		metrics.FetchAttempts.WithLabelValues(url).Inc()
		log.Debug("fetching knowledge check", zap.Int("attempt", attempt))

		resp, err := c.post(ctx, url, requestID, body)
		if err != nil {
			// Cancellation of the caller's context ends the loop for good.
			if ctx.Err() != nil {
				return ctx.Err()
			}

			metrics.FetchFailures.WithLabelValues(url, failureReason(err)).Inc()
			log.Warn("knowledge check fetch failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}

		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("fetched knowledge check", zap.Int("attempts", attempt))
	return result, nil
}

// post performs a single attempt bounded by the per-attempt timeout.
func (c *Client) post(ctx context.Context, url, requestID string, body []byte) (*entities.APIResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	var out entities.APIResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if !out.Success {
		return nil, ErrUnsuccessful
	}

	return &out, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrUnsuccessful):
		return "unsuccessful"
	case errors.Is(err, ErrBadStatus):
		return "status"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}
