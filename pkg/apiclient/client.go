package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/gearmarket-web/pkg/config"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
	"github.com/angelmondragon/gearmarket-web/pkg/metrics"
	"github.com/go-resty/resty/v2"
)

const (
	userAgent            = "gearmarket-web/1.0"
	defaultFailureReason = "upstream request failed"
)

var errBaseURLRequired = errors.New("upstream base url is required")

// Client is the shared transport for the marketplace REST API. Domain clients build
// requests with R and run them through Do, which owns metrics, logging and the
// mapping of upstream failures onto typed errors.
type Client struct {
	http    *resty.Client
	metrics *metrics.UpstreamMetrics
	logg    *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc).
				SetBaseURL(c.http.BaseURL).
				SetTimeout(c.http.GetClient().Timeout).
				SetHeader("User-Agent", userAgent)
		}
	}
}

func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) { c.logg = logg }
}

// New builds a client for the configured upstream. Only idempotent GETs are retried.
func New(cfg config.UpstreamConfig, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}

	rc := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", userAgent)
	c := &Client{http: rc}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.http.
		SetRetryCount(max(cfg.RetryCount, 0)).
		SetRetryWaitTime(cfg.RetryWait).
		AddRetryCondition(retryableGET)
	return c, nil
}

func retryableGET(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

// BaseURL returns the upstream root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// R starts a request bound to ctx. A non-empty token is sent as a bearer credential.
func (c *Client) R(ctx context.Context, token string) *resty.Request {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json")
	if token = strings.TrimSpace(token); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// errorBody is the upstream's failure payload.
type errorBody struct {
	Message           string   `json:"message"`
	Errors            []string `json:"errors"`
	Code              string   `json:"code"`
	VerificationToken string   `json:"verificationToken"`
	RemainingCooldown int      `json:"remainingCooldown"`
	RetryAfter        int      `json:"retryAfter"`
}

// Do executes req and decodes a successful body into out (which may be nil).
// operation names the call in metrics and logs, e.g. "gears.list".
func (c *Client) Do(ctx context.Context, operation string, req *resty.Request, method, path string, out any) error {
	if c == nil || c.http == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "upstream client not configured")
	}

	var failure errorBody
	req.SetError(&failure)
	if out != nil {
		req.SetResult(out)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	elapsed := time.Since(start)
	c.metrics.ObserveDuration(operation, elapsed)

	if c.logg != nil {
		fields := map[string]any{
			"operation":   operation,
			"method":      method,
			"path":        path,
			"duration_ms": elapsed.Milliseconds(),
		}
		if resp != nil {
			fields["status"] = resp.StatusCode()
		}
		c.logg.Debug(c.logg.WithFields(ctx, fields), "upstream.call")
	}

	if err != nil {
		c.metrics.IncFailure(operation, "NETWORK")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, defaultFailureReason)
	}
	if !resp.IsError() {
		return nil
	}

	upErr := &UpstreamError{
		Operation:         operation,
		Status:            resp.StatusCode(),
		Code:              strings.TrimSpace(failure.Code),
		Message:           strings.TrimSpace(failure.Message),
		Messages:          failure.Errors,
		VerificationToken: strings.TrimSpace(failure.VerificationToken),
		RemainingCooldown: failure.RemainingCooldown,
		RetryAfter:        failure.RetryAfter,
	}
	label := upErr.Code
	if label == "" {
		label = strconv.Itoa(upErr.Status)
	}
	c.metrics.IncFailure(operation, label)

	typed := pkgerrors.Wrap(CodeForStatus(upErr.Status), upErr, upErr.publicMessage())
	if details := upErr.details(); len(details) > 0 {
		typed = typed.WithDetails(details)
	}
	return typed
}

// CodeForStatus maps an upstream HTTP status onto the local error taxonomy.
func CodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusRequestEntityTooLarge:
		return pkgerrors.CodePayloadTooLarge
	case http.StatusUnsupportedMediaType:
		return pkgerrors.CodeUnsupportedMedia
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	}
	return pkgerrors.CodeDependency
}

// UpstreamError carries the remote API's failure response. The auth endpoints add
// VerificationToken for unverified accounts and the cooldown fields on throttling.
type UpstreamError struct {
	Operation         string
	Status            int
	Code              string
	Message           string
	Messages          []string
	VerificationToken string
	RemainingCooldown int
	RetryAfter        int
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: upstream %d %s: %s", e.Operation, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("%s: upstream %d: %s", e.Operation, e.Status, msg)
}

func (e *UpstreamError) UpstreamStatus() int        { return e.Status }
func (e *UpstreamError) UpstreamCode() string       { return e.Code }
func (e *UpstreamError) UpstreamMessages() []string { return e.Messages }

func (e *UpstreamError) details() map[string]any {
	details := map[string]any{}
	if e.Code != "" || len(e.Messages) > 0 {
		details["upstreamCode"] = e.Code
		details["errors"] = e.Messages
	}
	if e.VerificationToken != "" {
		details["verificationToken"] = e.VerificationToken
	}
	if e.RemainingCooldown > 0 {
		details["remainingCooldown"] = e.RemainingCooldown
	}
	if e.RetryAfter > 0 {
		details["retryAfter"] = e.RetryAfter
	}
	return details
}

func (e *UpstreamError) publicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	return defaultFailureReason
}

// AsUpstream returns the UpstreamError in err's chain, if any.
func AsUpstream(err error) (*UpstreamError, bool) {
	var up *UpstreamError
	if errors.As(err, &up) {
		return up, true
	}
	return nil, false
}
