// Package apiclient is a small JSON REST client for the LMS API.
//
// Every call attaches the JSON content headers and, when the token source
// yields one, a bearer token. Non-2xx responses become *APIError. The client
// adds no retries or timeouts of its own; use the context for cancellation.
package apiclient

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

	"github.com/rs/zerolog"
)

// DefaultErrorMessage is used when an error response carries no message.
const DefaultErrorMessage = "API Error"

// TokenSource yields the current access token, or "" when signed out.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Client issues requests against a base URL. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for transport failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client. Endpoints passed to the request methods are appended
// to baseURL verbatim.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL endpoints are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	// Data is the decoded JSON body, nil for non-JSON responses.
	Data map[string]interface{}
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// NetworkError is a request that produced no HTTP response.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out)
}

// Post issues a POST request. A nil body is sent as {}.
func (c *Client) Post(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, endpoint, orEmpty(body), out)
}

// Put issues a PUT request. A nil body is sent as {}.
func (c *Client) Put(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, endpoint, orEmpty(body), out)
}

// Patch issues a PATCH request. A nil body is sent as {}.
func (c *Client) Patch(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPatch, endpoint, orEmpty(body), out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, out)
}

func orEmpty(body interface{}) interface{} {
	if body == nil {
		return struct{}{}
	}
	return body
}

// Do sends a request with an optional JSON body and decodes the response into
// out. See decode for the accepted out types.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("API request failed")
		return &NetworkError{Message: fmt.Sprintf("%s %s", method, endpoint), Err: err}
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "application/json")
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// decode handles a response the way every request method does.
//
// JSON bodies decode into out on success and into APIError.Data otherwise.
// Non-JSON success bodies are copied into out when it is *[]byte, *string or
// io.Writer and discarded otherwise.
func decode(resp *http.Response, out interface{}) error {
	if isJSON(resp) {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if isSuccess(resp.StatusCode) {
			if out == nil || len(bytes.TrimSpace(raw)) == 0 {
				return nil
			}
			if err := assignRaw(out, raw); err == nil {
				return nil
			}
			if w, isWriter := out.(io.Writer); isWriter {
				_, err := w.Write(raw)
				return err
			}
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}

		var data map[string]interface{}
		_ = json.Unmarshal(raw, &data)
		return &APIError{
			Status:  resp.StatusCode,
			Message: messageFrom(data, DefaultErrorMessage),
			Data:    data,
		}
	}

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &APIError{Status: resp.StatusCode, Message: DefaultErrorMessage}
	}

	switch dst := out.(type) {
	case io.Writer:
		if _, err := io.Copy(dst, resp.Body); err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return nil
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	_ = assignRaw(out, raw)
	return nil
}

var errNotRaw = errors.New("not a raw destination")

// assignRaw stores raw into *[]byte or *string destinations.
func assignRaw(out interface{}, raw []byte) error {
	switch dst := out.(type) {
	case *[]byte:
		*dst = append((*dst)[:0], raw...)
	case *string:
		*dst = string(raw)
	default:
		return errNotRaw
	}
	return nil
}

// messageFrom picks the top level message, then error.message, then fallback.
func messageFrom(data map[string]interface{}, fallback string) string {
	if data == nil {
		return fallback
	}
	if msg, ok := data["message"].(string); ok && msg != "" {
		return msg
	}
	if nested, ok := data["error"].(map[string]interface{}); ok {
		if msg, ok := nested["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fallback
}

// WithQuery appends non-empty params to endpoint in sorted key order.
func WithQuery(endpoint string, params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}
	if len(values) == 0 {
		return endpoint
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + values.Encode()
}
