// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components: a
// context-aware pause for provider rate limits and a client-side request
// throttle. Requests are never retried.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Pause blocks for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when the context ends the wait early. A non-positive d returns
// immediately.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Throttle spaces outgoing requests to at most a fixed rate. A nil *Throttle
// does not throttle.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle returns a throttle admitting rps requests per second with a
// burst of one. It returns nil when rps is not positive.
func NewThrottle(rps float64) *Throttle {
	if rps <= 0 {
		return nil
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait blocks until the next request is admitted or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}

// Do waits on the throttle, then sends req with client.
func (t *Throttle) Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	if err := t.Wait(ctx); err != nil {
		return nil, err
	}
	return client.Do(req.WithContext(ctx))
}

const maxErrorBody = 512

// ErrorBody drains resp.Body and returns at most 512 bytes of it, trimmed,
// for inclusion in error messages.
func ErrorBody(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	io.Copy(io.Discard, resp.Body)
	if err != nil {
		return fmt.Sprintf("<unreadable body: %v>", err)
	}
	return strings.TrimSpace(string(data))
}
