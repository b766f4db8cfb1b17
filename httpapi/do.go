package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/stoat-chat/stoatgo"
	"github.com/stoat-chat/stoatgo/internal/circuitbreaker"
	"github.com/stoat-chat/stoatgo/ratelimit"
)

// defaultRetryAfterMS is used when a 429 body carries no parseable
// retry_after field (spec §4.C step 5).
const defaultRetryAfterMS = 10000

type requestSpec struct {
	host   string // "api" or "cdn", selects base URL and breaker key
	method string
	path   string // joined to the host's base URL
	body   any    // marshaled as the JSON request body; nil for none
	out    any    // decode target for a 2xx response; nil to discard the body
}

// do executes spec against the facade: classify into a bucket, take,
// build and send, observe the response headers, then classify the
// outcome (spec §4.C). The circuit breaker wraps the whole round trip so
// a known-bad host fails fast without waiting out the bucket or the
// network timeout.
func (c *Client) do(ctx context.Context, spec requestSpec) error {
	breaker := c.breakers.GetOrCreate(spec.host)
	if !breaker.Allow() {
		if c.metrics != nil {
			c.metrics.CircuitBreakerRejects.WithLabelValues(spec.host).Inc()
		}
		return stoat.NewTransportError(fmt.Errorf("httpapi: circuit open for %s", spec.host))
	}

	err := c.doOnce(ctx, spec)
	if weight := circuitbreaker.ClassifyError(err); weight > 0 {
		breaker.RecordError(weight)
	} else {
		breaker.RecordSuccess()
	}
	if c.metrics != nil {
		c.metrics.CircuitBreakerState.WithLabelValues(spec.host).Set(float64(breaker.State()))
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, spec requestSpec) error {
	key := ratelimit.Classify(spec.method, spec.path)
	if ok, wait := c.governor.Take(key); !ok {
		if c.metrics != nil {
			c.metrics.RateLimitRejects.WithLabelValues(string(key.Family)).Inc()
		}
		return stoat.RetryAfter(wait)
	}

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RequestDuration.WithLabelValues(spec.method, spec.path).Observe(time.Since(start).Seconds())
		}
	}()

	base := c.apiURL
	if spec.host == "cdn" {
		base = c.cdnURL
	}

	var bodyReader io.Reader
	if spec.body != nil {
		b, err := json.Marshal(spec.body)
		if err != nil {
			return stoat.NewDecodeError(fmt.Errorf("httpapi: marshal request: %w", err))
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, base+spec.path, bodyReader)
	if err != nil {
		return stoat.NewTransportError(err)
	}
	if spec.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return stoat.NewTransportError(err)
	}
	defer resp.Body.Close()

	c.governor.Observe(key, resp.Header)
	if c.metrics != nil {
		c.metrics.RequestsTotal.WithLabelValues(spec.method, spec.path, strconv.Itoa(resp.StatusCode)).Inc()
	}

	return classifyResponse(resp, spec.out)
}

// classifyResponse implements spec §4.C step 5: 2xx decodes into out;
// 429 parses retry_after; other non-success decodes an ApiError; a body
// read/decode failure anywhere becomes a Decode-kind error.
func classifyResponse(resp *http.Response, out any) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		return stoat.NewDecodeError(fmt.Errorf("httpapi: read response body: %w", readErr))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return stoat.NewDecodeError(fmt.Errorf("httpapi: decode response: %w", err))
		}
		return nil

	case resp.StatusCode == http.StatusTooManyRequests:
		var payload struct {
			RetryAfter int64 `json:"retry_after"`
		}
		ms := int64(defaultRetryAfterMS)
		if json.Unmarshal(body, &payload) == nil && payload.RetryAfter > 0 {
			ms = payload.RetryAfter
		}
		return stoat.RetryAfter(msToDuration(ms))

	default:
		var api stoat.APIError
		if err := json.Unmarshal(body, &api); err != nil || api.Type == "" {
			return stoat.NewDecodeError(fmt.Errorf("httpapi: decode error body (status %d): %s", resp.StatusCode, body))
		}
		return stoat.NewAPIError(&api)
	}
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
