package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/zeroclaw/provider-gateway/internal/domain"
	"github.com/zeroclaw/provider-gateway/internal/version"
)

const (
	connectTimeout      = 10 * time.Second
	defaultChatTimeout  = 300 * time.Second
	maxChatResponseSize = 1 << 20
)

func userAgent() string {
	return "zcgw/" + version.Version
}

// Transport issues one JSON POST per chat call. Model inference can be
// slow, so the per-request timeout is generous while the dial timeout
// stays short.
type Transport struct {
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// NewTransport builds a transport whose connect phase is bounded
// separately from the full round trip.
func NewTransport() *Transport {
	return &Transport{
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

// PostJSON sends payload to endpoint and returns the status code and raw
// body. Transport-level failures return an error; non-2xx statuses do not,
// so callers can shape their own upstream errors.
func (t *Transport) PostJSON(ctx context.Context, endpoint string, headers map[string]string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request payload: %w", err)
	}

	requestCtx, cancel := t.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent())
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := t.httpClient().Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send chat request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxChatResponseSize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read chat response: %w", err)
	}

	return resp.StatusCode, raw, nil
}

func (t *Transport) httpClient() *http.Client {
	if t.HTTPClient != nil {
		return t.HTTPClient
	}
	return http.DefaultClient
}

func (t *Transport) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := t.RequestTimeout
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

func upstreamError(status int, body []byte) error {
	return &domain.UpstreamError{StatusCode: status, Body: string(body)}
}

func is2xx(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
