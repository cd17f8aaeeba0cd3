package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zeroclaw/provider-gateway/internal/domain"
)

var (
	ErrStateMismatch   = errors.New("oauth callback state mismatch")
	ErrCallbackTimeout = errors.New("timed out waiting for oauth callback")
)

// BrowserFlow is the authorization-code + PKCE alternative to the OpenAI
// device flow: open a browser, catch the redirect on a local listener,
// exchange the code.
type BrowserFlow struct {
	Issuer         string
	ClientID       string
	ListenAddr     string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

func (f BrowserFlow) issuer() string {
	if f.Issuer != "" {
		return strings.TrimRight(f.Issuer, "/")
	}
	return openAIAuthBase
}

func (f BrowserFlow) clientID() string {
	if f.ClientID != "" {
		return f.ClientID
	}
	return OpenAIClientID
}

func newState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// AuthorizationURL builds the browser URL for a fresh state/PKCE pair.
func (f BrowserFlow) AuthorizationURL(redirectURI string, state string, pkce PKCEPair) (string, error) {
	if redirectURI == "" {
		return "", errors.New("redirect uri is required")
	}
	if state == "" {
		return "", errors.New("state is required")
	}

	parsed, err := url.Parse(f.issuer() + "/oauth/authorize")
	if err != nil {
		return "", fmt.Errorf("parse authorize url: %w", err)
	}

	q := parsed.Query()
	q.Set("response_type", "code")
	q.Set("client_id", f.clientID())
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", "openid profile email offline_access")
	q.Set("state", state)
	q.Set("code_challenge", pkce.Challenge)
	q.Set("code_challenge_method", PKCEChallengeMethodS256)
	q.Set("id_token_add_organizations", "true")
	q.Set("originator", "zcgw")
	parsed.RawQuery = q.Encode()

	return parsed.String(), nil
}

// Login runs the whole browser flow: start the callback listener, hand the
// authorization URL to openURL, wait for the redirect, exchange the code.
func (f BrowserFlow) Login(ctx context.Context, openURL func(authURL string) error) (domain.OAuthTokenResult, error) {
	pkce, err := NewPKCEPair()
	if err != nil {
		return domain.OAuthTokenResult{}, fmt.Errorf("generate pkce pair: %w", err)
	}
	state, err := newState()
	if err != nil {
		return domain.OAuthTokenResult{}, fmt.Errorf("generate state: %w", err)
	}

	callback, err := startCallbackServer(f.ListenAddr, state)
	if err != nil {
		return domain.OAuthTokenResult{}, err
	}
	defer func() { _ = callback.Close() }()

	authURL, err := f.AuthorizationURL(callback.RedirectURI(), state, pkce)
	if err != nil {
		return domain.OAuthTokenResult{}, err
	}
	if err := openURL(authURL); err != nil {
		return domain.OAuthTokenResult{}, fmt.Errorf("open authorization url: %w", err)
	}

	timeout := f.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	code, err := callback.WaitForCode(ctx, timeout)
	if err != nil {
		return domain.OAuthTokenResult{}, err
	}

	return f.exchange(ctx, code, pkce.Verifier, callback.RedirectURI())
}

func (f BrowserFlow) exchange(ctx context.Context, code string, verifier string, redirectURI string) (domain.OAuthTokenResult, error) {
	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("code", code)
	values.Set("redirect_uri", redirectURI)
	values.Set("client_id", f.clientID())
	values.Set("code_verifier", verifier)

	requestCtx, cancel := requestContext(ctx, defaultRequestTimeout)
	defer cancel()

	status, body, err := postForm(requestCtx, f.HTTPClient, f.issuer()+openAITokenPath, values)
	if err != nil {
		return domain.OAuthTokenResult{}, fmt.Errorf("exchange code for tokens: %w", err)
	}
	if !is2xx(status) {
		return domain.OAuthTokenResult{}, &domain.UpstreamError{StatusCode: status, Body: string(body)}
	}

	var tokens openAITokenExchangeResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return domain.OAuthTokenResult{}, fmt.Errorf("decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return domain.OAuthTokenResult{}, ErrMalformedTokenResponse
	}

	expiresIn := tokens.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresInSeconds
	}

	return domain.OAuthTokenResult{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second).UnixMilli(),
		AccountID:    ChatGPTAccountID(tokens.IDToken),
	}, nil
}

type callbackServer struct {
	expectedState string
	listener      net.Listener
	server        *http.Server
	resultCh      chan callbackResult
	resultOnce    sync.Once
	closeOnce     sync.Once
}

type callbackResult struct {
	code string
	err  error
}

func startCallbackServer(listenAddr string, expectedState string) (*callbackServer, error) {
	if listenAddr == "" {
		listenAddr = "127.0.0.1:1455"
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen callback server: %w", err)
	}

	cb := &callbackServer{
		expectedState: expectedState,
		listener:      listener,
		resultCh:      make(chan callbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/callback", cb.handleCallback)
	cb.server = &http.Server{Handler: mux}

	go func() {
		if serveErr := cb.server.Serve(cb.listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			cb.trySendResult(callbackResult{err: serveErr})
		}
	}()

	return cb, nil
}

func (c *callbackServer) RedirectURI() string {
	if tcpAddr, ok := c.listener.Addr().(*net.TCPAddr); ok {
		return fmt.Sprintf("http://localhost:%d/auth/callback", tcpAddr.Port)
	}
	return "http://localhost/auth/callback"
}

func (c *callbackServer) WaitForCode(ctx context.Context, timeout time.Duration) (string, error) {
	defer func() { _ = c.Close() }()

	select {
	case result := <-c.resultCh:
		return result.code, result.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(timeout):
		return "", ErrCallbackTimeout
	}
}

func (c *callbackServer) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		closeErr = c.server.Close()
	})
	return closeErr
}

func (c *callbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	if state != c.expectedState {
		c.trySendResult(callbackResult{err: ErrStateMismatch})
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	if oauthError := r.URL.Query().Get("error"); oauthError != "" {
		description := r.URL.Query().Get("error_description")
		c.trySendResult(callbackResult{err: &DeniedError{Code: oauthError, Description: description}})
		http.Error(w, "oauth error", http.StatusBadRequest)
		return
	}
	if code == "" {
		c.trySendResult(callbackResult{err: errors.New("missing authorization code")})
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	c.trySendResult(callbackResult{code: code})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Login complete. You can close this window."))
}

func (c *callbackServer) trySendResult(result callbackResult) {
	c.resultOnce.Do(func() {
		c.resultCh <- result
	})
}
