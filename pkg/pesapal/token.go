package pesapal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/pkg/httpclient"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/payload"
)

const (
	RequestTokenEndpoint = "/api/Auth/RequestToken"

	DefaultTokenLifetime = 3600 * time.Second
)

type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

type TokenOption func(*TokenManager)

// WithClock replaces time.Now for expiry bookkeeping.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenManager) {
		t.now = now
	}
}

// TokenManager caches the gateway bearer token in memory until its expiry. Refreshes are
// serialised so concurrent callers share a single request.
type TokenManager struct {
	cfg    Config
	client httpclient.HTTPClient
	now    func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewTokenManager(cfg Config, client httpclient.HTTPClient, opts ...TokenOption) *TokenManager {
	t := &TokenManager{cfg: cfg, client: client, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *TokenManager) Token(ctx context.Context) (string, error) {
	if t.cfg.ConsumerKey == "" {
		return "", configurationError("PESAPAL_CONSUMER_KEY")
	}

	if t.cfg.ConsumerSecret == "" {
		return "", configurationError("PESAPAL_CONSUMER_SECRET")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expiry) {
		return t.token, nil
	}

	token, lifetime, err := t.requestToken(ctx)
	if err != nil {
		return "", err
	}

	t.token = token
	t.expiry = t.now().Add(lifetime)

	return t.token, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (t *TokenManager) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.token = ""
	t.expiry = time.Time{}
}

func (t *TokenManager) requestToken(ctx context.Context) (string, time.Duration, error) {
	var buf bytes.Buffer
	request := TokenRequest{ConsumerKey: t.cfg.ConsumerKey, ConsumerSecret: t.cfg.ConsumerSecret}
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return "", 0, fmt.Errorf("encoding error: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}

	resp, err := t.client.Post(ctx, t.cfg.Endpoint()+RequestTokenEndpoint, &buf, headers)
	if err != nil {
		return "", 0, transportError(ErrAuthRequest, err)
	}

	defer resp.Body.Close()

	body, err := decodeBody(resp.Body)
	if err != nil {
		if resp.StatusCode == http.StatusOK {
			return "", 0, &Error{Kind: ErrAuthRequest, StatusCode: resp.StatusCode,
				Code: ErrCodeInvalidResponse, Message: err.Error(), Err: err}
		}

		body = map[string]any{"message": err.Error()}
	}

	if resp.StatusCode != http.StatusOK || gatewayErrorObject(body) {
		return "", 0, responseError(ErrAuthRequest, resp.StatusCode, body)
	}

	token := payload.String(body, tokenKeys...)
	if token == "" {
		return "", 0, &Error{Kind: ErrAuthRequest, StatusCode: resp.StatusCode,
			Code: ErrCodeMissingToken, Message: "token missing from auth response"}
	}

	return token, t.lifetime(body), nil
}

// lifetime prefers an explicit duration in seconds, then an absolute expiry date, then the
// default.
func (t *TokenManager) lifetime(body map[string]any) time.Duration {
	if s := payload.String(body, expiresInKeys...); s != "" {
		if seconds, err := strconv.ParseFloat(s, 64); err == nil && seconds > 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}

	if s := payload.String(body, expiryDateKeys...); s != "" {
		if expiry, err := time.Parse(time.RFC3339Nano, s); err == nil {
			if d := expiry.Sub(t.now()); d > 0 {
				return d
			}
		}
	}

	return DefaultTokenLifetime
}
