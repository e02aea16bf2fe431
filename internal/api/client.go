// Package api is the HTTP adapter for the food recognition backend. It
// attaches the bearer token to every request and tears the token down on
// any 401, whichever endpoint produced it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	defaultTimeout = 30 * time.Second
	userAgent      = "foodlens/1.0"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenStore
	Logger     *slog.Logger

	mu           sync.Mutex
	unauthorized []func()
}

func NewClient(baseURL string, tokens TokenStore, logger *slog.Logger) *Client {
	return &Client{BaseURL: baseURL, Tokens: tokens, Logger: logger}
}

// OnUnauthorized registers fn to run after the token has been cleared because
// a response came back 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unauthorized = append(c.unauthorized, fn)
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
}

func (c *Client) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Client) token() string {
	if c.Tokens == nil {
		return ""
	}
	token, err := c.Tokens.Token()
	if err != nil {
		c.logger().Warn("read access token", slog.String("error", err.Error()))
		return ""
	}
	return token
}

func (c *Client) invalidate(op string) {
	c.logger().Info("session rejected by server, clearing token", slog.String("op", op))
	if c.Tokens != nil {
		if err := c.Tokens.ClearToken(); err != nil {
			c.logger().Warn("clear access token", slog.String("error", err.Error()))
		}
	}
	c.mu.Lock()
	hooks := append([]func(){}, c.unauthorized...)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (c *Client) jsonRequest(op, method, path string, payload any) (request, error) {
	r := request{op: op, method: method, path: path}
	if payload == nil {
		return r, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return r, fmt.Errorf("marshal %s payload: %w", op, err)
	}
	r.body = bytes.NewReader(b)
	r.contentType = "application/json"
	return r, nil
}

// do runs r and decodes the body into out when the envelope reports success.
// The raw body is returned alongside for callers that keep it.
func (c *Client) do(ctx context.Context, r request, out any) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL()+r.path, r.body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger().Debug("api request",
		slog.String("op", r.op),
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidate(r.op)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, &Error{Op: r.op, Status: resp.StatusCode, Message: env.Error}
	}
	if decodeErr != nil {
		return body, &DecodeError{Op: r.op, Body: body, Err: decodeErr}
	}
	if env.Success == nil || !*env.Success {
		return body, &Error{Op: r.op, Status: resp.StatusCode, Message: env.Error}
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return body, &DecodeError{Op: r.op, Body: body, Err: err}
		}
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	_, err := c.do(ctx, request{op: op, method: http.MethodGet, path: path}, out)
	return err
}

func (c *Client) send(ctx context.Context, op, method, path string, payload, out any) error {
	r, err := c.jsonRequest(op, method, path, payload)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, r, out)
	return err
}

// requireField turns a missing mandatory response field into a DecodeError.
func requireField(op, field string, present bool) error {
	if present {
		return nil
	}
	return &DecodeError{Op: op, Err: errors.New("missing " + field)}
}
