package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Observer sees every completed backend response, before the caller does.
type Observer interface {
	ObserveResponse(creds Credentials, method, path string, status int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(creds Credentials, method, path string, status int)

func (f ObserverFunc) ObserveResponse(creds Credentials, method, path string, status int) {
	f(creds, method, path, status)
}

type RetryConfig struct {
	// Retries is how many extra attempts a GET gets.
	Retries   int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Client talks to the platform backend. It holds no credentials; use For to
// get a client signed for one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observers  []Observer
	retry      RetryConfig
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observers = append(c.observers, o) }
}

func WithRetry(r RetryConfig) Option {
	return func(c *Client) { c.retry = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No Timeout: request lifetime belongs to the caller's context.
		httpClient: &http.Client{},
		retry:      RetryConfig{Retries: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// For returns the endpoint surface signed with creds. A nil creds gives an
// anonymous client (login, register).
func (c *Client) For(creds Credentials) *Scoped {
	return &Scoped{c: c, creds: creds}
}

// Scoped is a Client bound to one session's credentials.
type Scoped struct {
	c     *Client
	creds Credentials
}

func (s *Scoped) Credentials() Credentials { return s.creds }

func (s *Scoped) get(ctx context.Context, path string) ([]byte, error) {
	return s.do(ctx, http.MethodGet, path, nil)
}

func (s *Scoped) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	return s.do(ctx, method, path, body)
}

func (s *Scoped) getInto(ctx context.Context, path string, out any) error {
	raw, err := s.get(ctx, path)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

func (s *Scoped) sendInto(ctx context.Context, method, path string, body, out any) error {
	raw, err := s.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

func decodeInto(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// do performs one logical request. GETs are retried on transport errors, 429
// and 5xx; everything else is sent exactly once.
func (s *Scoped) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += s.c.retry.Retries
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, s.c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		respBody, status, retryAfter, err := s.roundTrip(req, method, path)
		if err != nil {
			if attempt < attempts && ctx.Err() == nil {
				s.c.logger.Debug("retrying backend request", zap.String("method", method), zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
				if s.c.backoff(ctx, attempt, "") == nil {
					continue
				}
			}
			return nil, err
		}
		if status >= 200 && status < 300 {
			return respBody, nil
		}
		if shouldRetryStatus(status) && attempt < attempts {
			s.c.logger.Debug("retrying backend request", zap.String("method", method), zap.String("path", path), zap.Int("attempt", attempt), zap.Int("status", status))
			if s.c.backoff(ctx, attempt, retryAfter) == nil {
				continue
			}
		}
		return nil, parseError(method, path, status, respBody)
	}
	return nil, fmt.Errorf("%w: %s %s: no attempts made", ErrTransport, method, path)
}

// upload posts a multipart form with a single file part.
func (s *Scoped) upload(ctx context.Context, path, field, filename string, content io.Reader) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, status, _, err := s.roundTrip(req, http.MethodPost, path)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, parseError(http.MethodPost, path, status, respBody)
	}
	return respBody, nil
}

func (s *Scoped) roundTrip(req *http.Request, method, path string) ([]byte, int, string, error) {
	Sign(req, s.creds)

	resp, err := s.c.httpClient.Do(req)
	if err != nil {
		return nil, 0, "", fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, "", fmt.Errorf("%w: %s %s: reading body: %v", ErrTransport, method, path, err)
	}

	for _, o := range s.c.observers {
		o.ObserveResponse(s.creds, method, path, resp.StatusCode)
	}
	return respBody, resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

func shouldRetryStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (c *Client) backoff(ctx context.Context, attempt int, retryAfter string) error {
	d := time.Duration(0)
	if sec, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil {
		d = time.Duration(sec) * time.Second
	} else if c.retry.BaseDelay > 0 {
		max := c.retry.BaseDelay << (attempt - 1)
		d = time.Duration(rand.Int63n(int64(max)) + 1)
	}
	if c.retry.MaxDelay > 0 && d > c.retry.MaxDelay {
		d = c.retry.MaxDelay
	}
	if d <= 0 {
		return ctx.Err()
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
