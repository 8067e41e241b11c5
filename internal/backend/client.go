package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/metrics"
	"github.com/workbridg/workbridg-web/internal/models"
	"golang.org/x/sync/singleflight"
)

const maxResponseBytes = 8 << 20

// Client talks JSON to the Workbridg REST backend. It is safe for concurrent
// use; per-session credentials travel in the request context (see WithTokens).
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
	refreshes  singleflight.Group
	now        func() time.Time
}

func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = constants.DefaultBackendTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
		now: time.Now,
	}
}

// envelope is the backend's response wrapper. Data is absent on errors.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    *bool           `json:"success"`
}

type response struct {
	status  int
	body    []byte
	env     envelope
	cookies []*http.Cookie
}

func (r *response) message() string {
	if r.env.Message != "" {
		return r.env.Message
	}
	return http.StatusText(r.status)
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// Do sends a JSON request and decodes the response data into out (may be
// nil). When ctx carries a TokenStore the request is authenticated and an
// expired access token is refreshed once and the request replayed once.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	resp, err := c.roundTrip(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, in interface{}) (*response, error) {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	store, authed := tokensFrom(ctx)
	if !authed {
		resp, err := c.send(ctx, method, path, query, body, "")
		if err != nil {
			return nil, err
		}
		if !resp.ok() {
			return nil, &Error{Status: resp.status, Message: resp.message()}
		}
		return resp, nil
	}

	// A request refreshes at most once, proactively or after a 401.
	refreshed := false
	tokens := store.Tokens()
	if accessTokenExpired(tokens.AccessToken, c.now()) {
		fresh, err := c.refresh(ctx, store, tokens)
		if err != nil {
			return nil, err
		}
		tokens = fresh
		refreshed = true
	}

	resp, err := c.send(ctx, method, path, query, body, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusUnauthorized {
		if refreshed || !isAccessTokenExpired(resp) {
			return nil, fmt.Errorf("%w: %s", ErrSessionExpired, resp.message())
		}

		refreshed, err := c.refresh(ctx, store, tokens)
		if err != nil {
			return nil, err
		}

		resp, err = c.send(ctx, method, path, query, body, refreshed.AccessToken)
		if err != nil {
			return nil, err
		}
		if resp.status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", ErrSessionExpired, resp.message())
		}
	}

	if !resp.ok() {
		return nil, &Error{Status: resp.status, Message: resp.message()}
	}
	return resp, nil
}

func isAccessTokenExpired(resp *response) bool {
	return strings.Contains(strings.ToLower(resp.message()), constants.AccessTokenExpiredMarker)
}

// refresh exchanges the refresh token for a new pair and stores it. Callers
// racing on the same refresh token share one backend call.
func (c *Client) refresh(ctx context.Context, store TokenStore, current models.Tokens) (models.Tokens, error) {
	if current.RefreshToken == "" {
		metrics.IncrementTokenRefresh("failed")
		return models.Tokens{}, fmt.Errorf("%w: no refresh token", ErrSessionExpired)
	}

	// The shared call outlives any single caller, so one caller going away
	// does not fail the others.
	v, err, _ := c.refreshes.Do(current.RefreshToken, func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.httpClient.Timeout)
		defer cancel()
		return c.requestRefresh(refreshCtx, current.RefreshToken)
	})
	if err != nil {
		metrics.IncrementTokenRefresh("failed")
		c.log.WithError(err).Info("Access token refresh failed")
		if refreshRejected(err) {
			return models.Tokens{}, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		return models.Tokens{}, err
	}

	tokens := v.(models.Tokens)
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = current.RefreshToken
	}
	if err := store.SetTokens(tokens); err != nil {
		c.log.WithError(err).Warn("Failed to persist refreshed tokens")
	}
	metrics.IncrementTokenRefresh("success")
	return tokens, nil
}

// refreshRejected reports whether the backend turned the refresh token down,
// as opposed to failing to answer.
func refreshRejected(err error) bool {
	status := StatusOf(err)
	return status >= http.StatusBadRequest && status < http.StatusInternalServerError
}

func (c *Client) requestRefresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return models.Tokens{}, err
	}

	resp, err := c.send(ctx, http.MethodPost, constants.RefreshTokenPath, nil, body, "")
	if err != nil {
		return models.Tokens{}, err
	}
	if !resp.ok() {
		return models.Tokens{}, &Error{Status: resp.status, Message: resp.message()}
	}

	var tokens models.Tokens
	if err := decode(resp, &tokens); err != nil {
		return models.Tokens{}, err
	}
	tokens = mergeCookieTokens(tokens, resp.cookies)
	if tokens.AccessToken == "" {
		return models.Tokens{}, errors.New("refresh response carried no access token")
	}
	return tokens, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte, accessToken string) (*response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	start := c.now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordBackendCall(method, resourceOf(path), 0, time.Since(start))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}
	metrics.RecordBackendCall(method, resourceOf(path), httpResp.StatusCode, time.Since(start))

	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": httpResp.StatusCode,
	}).Debug("backend call")

	resp := &response{
		status:  httpResp.StatusCode,
		body:    raw,
		cookies: httpResp.Cookies(),
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		// Non-JSON bodies (proxies, HTML error pages) leave env empty.
		_ = json.Unmarshal(raw, &resp.env)
	}
	return resp, nil
}

// decode writes the envelope data into out. Bodies that are not wrapped in
// an envelope are decoded whole.
func decode(resp *response, out interface{}) error {
	if out == nil {
		return nil
	}

	data := []byte(resp.env.Data)
	if resp.env.Data == nil && resp.env.Success == nil {
		data = resp.body
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

func mergeCookieTokens(tokens models.Tokens, cookies []*http.Cookie) models.Tokens {
	for _, ck := range cookies {
		switch ck.Name {
		case "accessToken":
			if tokens.AccessToken == "" {
				tokens.AccessToken = ck.Value
			}
		case "refreshToken":
			if tokens.RefreshToken == "" {
				tokens.RefreshToken = ck.Value
			}
		}
	}
	return tokens
}

// resourceOf maps a path to its resource group for metric labels.
func resourceOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "root"
	}
	return trimmed
}

// Ping checks that the backend answers HTTP at all. Any status counts as
// reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodGet, "/", nil, nil, "")
	return err
}
