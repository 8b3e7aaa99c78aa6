package clientcli

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/sagarc03/notes"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client performs note operations against a notesd server.
type Client struct {
	config     *Config
	httpClient *http.Client
	signer     *v4.Signer
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithClock sets the clock used for signing timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a new Client with the given config and options.
// Requests are signed only when both keys are set.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		signer:     v4.NewSigner(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Ping checks that the server answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Create stores a new note and returns it.
func (c *Client) Create(ctx context.Context, in notes.CreateNoteRequest) (notes.Note, error) {
	var n notes.Note
	if err := c.do(ctx, http.MethodPost, "/notes", in, &n); err != nil {
		return notes.Note{}, fmt.Errorf("create: %w", err)
	}
	return n, nil
}

// Get fetches a single note.
func (c *Client) Get(ctx context.Context, id string) (notes.Note, error) {
	if id == "" {
		return notes.Note{}, fmt.Errorf("get: %w", ErrEmptyID)
	}

	var n notes.Note
	if err := c.do(ctx, http.MethodGet, notePath(id), nil, &n); err != nil {
		return notes.Note{}, fmt.Errorf("get: %w", err)
	}
	return n, nil
}

// List returns every note of the caller.
func (c *Client) List(ctx context.Context) ([]notes.Note, error) {
	items := make([]notes.Note, 0)
	if err := c.do(ctx, http.MethodGet, "/notes", nil, &items); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return items, nil
}

// Update replaces the content and attachment of a note. Nil fields are
// cleared on the server.
func (c *Client) Update(ctx context.Context, id string, in notes.UpdateNoteRequest) error {
	if id == "" {
		return fmt.Errorf("update: %w", ErrEmptyID)
	}

	var res notes.StatusResult
	if err := c.do(ctx, http.MethodPut, notePath(id), in, &res); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// Delete deletes one or more notes.
// Continues on error, collecting results for all ids.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.IDs) == 0 {
		return nil, ErrNoIDs
	}

	results := make([]DeleteResult, 0, len(opts.IDs))

	for _, id := range opts.IDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := DeleteResult{ID: id}
		if id == "" {
			result.Err = ErrEmptyID
		} else if err := c.do(ctx, http.MethodDelete, notePath(id), nil, nil); err != nil {
			result.Err = err
		} else {
			result.Deleted = true
		}
		results = append(results, result)
	}

	return results, nil
}

func notePath(id string) string {
	return "/notes/" + url.PathEscape(id)
}

// do sends a request and decodes a 200 response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.sign(ctx, req, payload); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseServerError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}

func (c *Client) sign(ctx context.Context, req *http.Request, payload []byte) error {
	if c.config.AccessKey == "" || c.config.SecretKey == "" {
		return nil
	}

	creds := aws.Credentials{
		AccessKeyID:     c.config.AccessKey,
		SecretAccessKey: c.config.SecretKey,
	}
	sum := sha256.Sum256(payload)

	err := c.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(sum[:]),
		c.config.Service, c.config.Region, c.now().UTC())
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}

	return nil
}

// parseServerError extracts the error message from a server response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Error
	}

	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound reports whether the server could not find the note. Servers
// using the uniform error policy answer 500, so the message is checked too.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.Message == "Note not found"
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested resource does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned when authentication fails (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}
)
