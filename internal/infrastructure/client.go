package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jira-mcp-server/internal/domain"
)

// maxBackoff caps the delay between retry attempts, including delays
// requested by the server via Retry-After.
const maxBackoff = 30 * time.Second

// RestClient executes requests against one Jira deployment with
// per-attempt timeouts, bounded retries, and typed error classification.
// It serves both REST API families; the typed clients wrap it with
// per-endpoint methods.
type RestClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retryCount int
	retryDelay time.Duration
	metrics    *MetricsCollector
}

// NewRestClient creates a client from the loaded configuration. The
// httpClient must already attach authentication; the metrics collector
// may be nil.
func NewRestClient(cfg *domain.Config, httpClient *http.Client, metrics *MetricsCollector) *RestClient {
	return &RestClient{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		timeout:    cfg.Timeout(),
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay(),
		metrics:    metrics,
	}
}

// attemptOutcome classifies the result of one request attempt.
type attemptOutcome int

const (
	outcomeSuccess attemptOutcome = iota
	outcomeRetryable
	outcomeFatal
)

// attemptResult carries one attempt's outcome through the retry loop.
type attemptResult struct {
	outcome    attemptOutcome
	payload    json.RawMessage
	err        *domain.APIError
	retryAfter time.Duration
}

// Request executes a single API call with retries. The path is relative
// to the family's base path and must already carry any encoded query
// string. A nil body sends no payload; anything else is encoded as JSON.
// Responses without a body yield a nil message.
//
// Failed attempts are retried for rate limiting (429), transient server
// errors (502, 503, 504), transport failures, and per-attempt timeouts,
// up to the configured retry count. Other failures return immediately.
// The delay before attempt n+1 is base*2^n plus uniform jitter of up to
// one base, capped at 30 seconds; a server-supplied Retry-After can only
// lengthen it. Cancelling ctx stops the loop.
func (c *RestClient) Request(ctx context.Context, method string, family domain.APIFamily, path string, body interface{}) (json.RawMessage, error) {
	var encoded []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		encoded = data
	}

	endpoint := c.baseURL + family.BasePath() + path

	var lastErr *domain.APIError
	var retryAfter time.Duration

	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt-1, c.retryDelay)
			if retryAfter > delay {
				delay = retryAfter
			}
			select {
			case <-ctx.Done():
				return nil, domain.NewAPIError(domain.ErrTransport, 0,
					fmt.Sprintf("%s: request cancelled: %v", familyLabel(family), ctx.Err()))
			case <-time.After(delay):
			}
			c.metrics.RecordRetry(family.String())
		}

		result := c.attempt(ctx, method, endpoint, family, encoded)
		switch result.outcome {
		case outcomeSuccess:
			return result.payload, nil
		case outcomeFatal:
			return nil, result.err
		}

		lastErr = result.err
		retryAfter = result.retryAfter
	}

	return nil, lastErr
}

// attempt executes one HTTP round trip under a per-attempt deadline and
// classifies the result.
func (c *RestClient) attempt(ctx context.Context, method, endpoint string, family domain.APIFamily, body []byte) attemptResult {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, endpoint, reader)
	if err != nil {
		return attemptResult{
			outcome: outcomeFatal,
			err: domain.NewAPIError(domain.ErrTransport, 0,
				fmt.Sprintf("%s: failed to create request: %v", familyLabel(family), err)),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(method, family.String(), 0, time.Since(start))
		return c.classifyTransportFailure(ctx, family, err)
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(resp.Body)
	c.metrics.RecordRequest(method, family.String(), resp.StatusCode, time.Since(start))
	if readErr != nil {
		return attemptResult{
			outcome: outcomeRetryable,
			err: domain.NewAPIError(domain.ErrTransport, 0,
				fmt.Sprintf("%s: failed to read response: %v", familyLabel(family), readErr)),
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if resp.StatusCode == http.StatusNoContent || len(payload) == 0 {
			return attemptResult{outcome: outcomeSuccess}
		}
		return attemptResult{outcome: outcomeSuccess, payload: payload}
	}

	message := fmt.Sprintf("%s: %s", familyLabel(family),
		domain.ParseErrorBody(resp.Header.Get("Content-Type"), payload, resp.StatusCode))
	apiErr := domain.NewAPIError(domain.ClassifyStatus(resp.StatusCode), resp.StatusCode, message)

	if !apiErr.Retryable() {
		return attemptResult{outcome: outcomeFatal, err: apiErr}
	}
	return attemptResult{
		outcome:    outcomeRetryable,
		err:        apiErr,
		retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// classifyTransportFailure maps a failed round trip to an attempt
// result. A cancelled parent context is fatal; per-attempt deadline
// expiry and network timeouts are retryable timeouts; everything else
// is a retryable transport failure.
func (c *RestClient) classifyTransportFailure(parent context.Context, family domain.APIFamily, err error) attemptResult {
	label := familyLabel(family)

	if parent.Err() != nil {
		return attemptResult{
			outcome: outcomeFatal,
			err: domain.NewAPIError(domain.ErrTransport, 0,
				fmt.Sprintf("%s: request cancelled: %v", label, parent.Err())),
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return attemptResult{
			outcome: outcomeRetryable,
			err: domain.NewAPIError(domain.ErrTimeout, 0,
				fmt.Sprintf("%s: no response within %s", label, c.timeout)),
		}
	}

	return attemptResult{
		outcome: outcomeRetryable,
		err: domain.NewAPIError(domain.ErrTransport, 0,
			fmt.Sprintf("%s: %v", label, err)),
	}
}

// backoffDelay returns the base delay before the attempt that follows
// failed attempt n: exponential growth from the configured base with
// uniform jitter of up to one base, capped at maxBackoff.
func backoffDelay(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}

	// Cap the shift so the doubling cannot overflow
	if attempt > 20 {
		attempt = 20
	}
	delay := base << uint(attempt)
	if delay <= 0 || delay > maxBackoff {
		return maxBackoff
	}

	jitter := time.Duration(rand.Int63n(int64(base)))
	if delay+jitter > maxBackoff {
		return maxBackoff
	}
	return delay + jitter
}

// parseRetryAfter reads a Retry-After header given as integer seconds or
// an HTTP date. Malformed or non-positive values are ignored; the result
// is capped at maxBackoff.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		// Compare before multiplying so absurd values cannot overflow.
		if seconds > int(maxBackoff/time.Second) {
			return maxBackoff
		}
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(value); err == nil {
		delay := time.Until(t)
		if delay <= 0 {
			return 0
		}
		if delay > maxBackoff {
			return maxBackoff
		}
		return delay
	}

	return 0
}

// familyLabel names the API family in error messages.
func familyLabel(family domain.APIFamily) string {
	if family == domain.AgileAPI {
		return "Jira Agile API"
	}
	return "Jira API"
}
