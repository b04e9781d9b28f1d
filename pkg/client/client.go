// Package client submits userforms operations over HTTP the way the browser
// controller does: fetch a token, post the envelope, and map the result back
// onto schema fields. A Controller runs one submission at a time.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-userforms/components/accounts"
	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/validation"
)

// DefaultTimeout bounds one submission, token fetch included.
const DefaultTimeout = 15 * time.Second

// ErrInFlight is returned when Submit is called while another submission on
// the same controller has not finished.
var ErrInFlight = errors.New("client: submission already in flight")

// ResponseError is a non-200 answer: a rejected token or a malformed
// request.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("client: status %d: %s", e.StatusCode, e.Message)
}

// Forbidden reports whether the anti-forgery token was rejected.
func (e *ResponseError) Forbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// Outcome is the decoded result of one submission.
type Outcome struct {
	Success bool
	Errors  validation.Errors
	// Highlight lists the field ids to mark invalid, in error order. Pair
	// errors name both password fields.
	Highlight []string
}

type Option func(*Controller)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		if client != nil {
			c.http = client
		}
	}
}

func WithBasePath(path string) Option {
	return func(c *Controller) {
		c.basePath = path
	}
}

func WithPaths(paths accounts.Paths) Option {
	return func(c *Controller) {
		c.paths = paths
	}
}

// WithSchemas sets the schemas used to compute Outcome.Highlight.
func WithSchemas(schemas accounts.Schemas) Option {
	return func(c *Controller) {
		c.schemas = schemas
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller talks to one userforms deployment.
type Controller struct {
	http     *http.Client
	baseURL  string
	basePath string
	paths    accounts.Paths
	schemas  accounts.Schemas
	timeout  time.Duration
	logger   zerolog.Logger
	inFlight atomic.Bool
}

// New builds a controller for the site at baseURL.
func New(baseURL string, options ...Option) (*Controller, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: invalid base url %q", baseURL)
	}
	defaults := accounts.DefaultOptions()
	c := &Controller{
		http:     http.DefaultClient,
		baseURL:  strings.TrimRight(parsed.String(), "/"),
		basePath: defaults.BasePath,
		paths:    defaults.Paths,
		schemas:  defaults.Schemas,
		timeout:  DefaultTimeout,
		logger:   zerolog.Nop(),
	}
	for _, option := range options {
		if option != nil {
			option(c)
		}
	}
	opts := accounts.NewOptions(
		accounts.WithBasePath(c.basePath),
		accounts.WithPaths(c.paths),
		accounts.WithSchemas(c.schemas),
	)
	c.basePath, c.paths, c.schemas = opts.BasePath, opts.Paths, opts.Schemas
	return c, nil
}

// Endpoint returns the absolute URL op posts to.
func (c *Controller) Endpoint(op accounts.Operation) string {
	return c.baseURL + accounts.MountPath(c.basePath, op, accounts.WithPaths(c.paths))
}

func (c *Controller) tokenURL(op accounts.Operation) string {
	base := strings.TrimRight(c.basePath, "/")
	path := c.paths.Token
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + base + path + "?" + url.Values{"operation": {string(op)}}.Encode()
}

// Token fetches a fresh anti-forgery token for op.
func (c *Controller) Token(ctx context.Context, op accounts.Operation) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tokenURL(op), nil)
	if err != nil {
		return "", fmt.Errorf("client: token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("client: token request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", responseError(res)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("client: decode token: %w", err)
	}
	if body.Token == "" {
		return "", errors.New("client: empty token")
	}
	return body.Token, nil
}

// Submit fetches a token and posts values to op. Overlapping calls on one
// controller fail with ErrInFlight.
func (c *Controller) Submit(ctx context.Context, op accounts.Operation, values url.Values) (Outcome, error) {
	if !op.Valid() {
		return Outcome{}, fmt.Errorf("client: unknown operation %q", op)
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, ErrInFlight
	}
	defer c.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.Token(ctx, op)
	if err != nil {
		return Outcome{}, err
	}
	return c.post(ctx, op, accounts.Envelope{
		Operation:        string(op),
		AntiForgeryToken: token,
		Payload:          values.Encode(),
	})
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	return c.inFlight.Load()
}

func (c *Controller) post(ctx context.Context, op accounts.Operation, env accounts.Envelope) (Outcome, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return Outcome{}, fmt.Errorf("client: encode envelope: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(op), bytes.NewReader(raw))
	if err != nil {
		return Outcome{}, fmt.Errorf("client: %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("operation", string(op)).Msg("submission failed")
		return Outcome{}, fmt.Errorf("client: %s request: %w", op, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Outcome{}, responseError(res)
	}
	var result accounts.Result
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return Outcome{}, fmt.Errorf("client: decode result: %w", err)
	}

	outcome := Outcome{Success: result.OK()}
	if result.Errors != nil {
		outcome.Errors = *result.Errors
		outcome.Highlight = highlight(c.schema(op), outcome.Errors)
	}
	return outcome, nil
}

func (c *Controller) schema(op accounts.Operation) model.Schema {
	switch op {
	case accounts.OpRegister:
		return c.schemas.Registration
	case accounts.OpLogin:
		return c.schemas.Login
	case accounts.OpRequestReset:
		return c.schemas.Forgot
	case accounts.OpPerformReset:
		return c.schemas.Reset
	}
	return model.Schema{}
}

func highlight(schema model.Schema, errs validation.Errors) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, key := range errs.Keys() {
		for _, id := range validation.TargetsForKey(schema, key) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func responseError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	var body struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		message = body.Error
	}
	return &ResponseError{StatusCode: res.StatusCode, Message: message}
}
