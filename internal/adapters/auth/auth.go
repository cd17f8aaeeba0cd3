// Package auth drives the OAuth flows the gateway supports: the OpenAI
// subscription device flow, the GitHub-Copilot-style device flow, the
// refresh-token grant, and a browser-based authorization-code login.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	deviceCodeGrantType   = "urn:ietf:params:oauth:grant-type:device_code"
	maxOAuthResponseBytes = 1 << 20

	defaultPollIntervalSeconds = 5
	defaultRequestTimeout      = 30 * time.Second
)

var (
	ErrDeviceFlowTimeout = errors.New("timed out waiting for device authorization")
	// ErrMalformedTokenResponse marks a 2xx token exchange without an
	// access token. Unlike a blank chat reply, this is a protocol
	// violation, not an empty result.
	ErrMalformedTokenResponse = errors.New("token response missing access token")
)

// DeniedError is a terminal negative status from an authorization server,
// e.g. the user declined the device prompt or the code expired.
type DeniedError struct {
	Code        string
	Description string
}

func (e *DeniedError) Error() string {
	if e.Description != "" {
		return "authorization denied: " + e.Code + ": " + e.Description
	}
	return "authorization denied: " + e.Code
}

// pollDelay is the wait between device-flow polls: the server-advised
// interval plus a fixed 3-second buffer to stay clear of rate limits.
func pollDelay(intervalSeconds int) time.Duration {
	if intervalSeconds <= 0 {
		intervalSeconds = defaultPollIntervalSeconds
	}
	return time.Duration(intervalSeconds)*time.Second + 3*time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func postJSON(ctx context.Context, client *http.Client, endpoint string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return doRequest(client, req)
}

func postForm(ctx context.Context, client *http.Client, endpoint string, values url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return doRequest(client, req)
}

func doRequest(client *http.Client, req *http.Request) (int, []byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxOAuthResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, raw, nil
}

func is2xx(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func requestContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
