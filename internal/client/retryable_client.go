package client

import (
	"fmt"
	"net/http"
	"time"
)

// RetryableTransport retries round trips that fail before a response is
// received. Responses, including error statuses, are returned as is.
type RetryableTransport struct {
	next          http.RoundTripper
	retryMax      int
	retryInterval time.Duration
}

// NewRetryableTransport wraps next; a nil next uses http.DefaultTransport.
func NewRetryableTransport(next http.RoundTripper, retryMax int, retryInterval time.Duration) *RetryableTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if retryMax < 1 {
		retryMax = 1
	}
	return &RetryableTransport{next: next, retryMax: retryMax, retryInterval: retryInterval}
}

// NewRetryableClient returns an http.Client retrying with intervel.
func NewRetryableClient(retryMax int, retryInterval time.Duration) *http.Client {
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: NewRetryableTransport(nil, retryMax, retryInterval),
	}
}

// RoundTrip handles http request and return response and error
func (r *RetryableTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	for i := 0; i < r.retryMax; i++ {
		attempt := req
		if i > 0 {
			attempt = req.Clone(req.Context())
			if req.GetBody != nil {
				if attempt.Body, err = req.GetBody(); err != nil {
					return nil, err
				}
			}
		}

		resp, err = r.next.RoundTrip(attempt)
		if err == nil {
			return resp, nil
		}
		if i == r.retryMax-1 {
			break
		}

		select {
		case <-time.After(r.retryInterval):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", r.retryMax, err)
}
