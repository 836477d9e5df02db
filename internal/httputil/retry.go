// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient failures. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 5

// Transient reports whether an HTTP status is worth retrying: rate
// limiting (429) and server-side errors (5xx). Client errors other than
// 429 are permanent and returned to the caller immediately.
func Transient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry executes an HTTP request and retries transport errors and
// transient HTTP statuses with exponential backoff: 2 s, 4 s, 8 s, 16 s,
// 32 s by default.
//
// When maxRetries is 0 the default (5) is used. The request must have
// GetBody set when it carries a body (http.NewRequest does this for the
// common reader types) so each attempt can replay it. On each transient
// response the body is drained and closed before sleeping. If the context
// is cancelled during a backoff wait the function returns ctx.Err(). After
// exhausting retries the last response or transport error is returned so
// the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("replaying request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err == nil && !Transient(resp.StatusCode) {
			return resp, nil
		}

		// Exhausted retries; hand the last outcome to the caller.
		if attempt >= maxRetries {
			return resp, err
		}

		if err == nil {
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
