// Package backend is the HTTP/JSON adapter for the account backend that
// validates registrations, stores identity documents and runs OTP challenges.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"enroll/internal/registration/metrics"
	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/platform/circuit"
	"enroll/pkg/platform/sentinel"
)

// maxReplyBytes bounds how much of a reply body is read.
const maxReplyBytes = 1 << 20

// ErrCircuitOpen is returned without contacting the backend while the
// breaker is open.
var ErrCircuitOpen = fmt.Errorf("backend circuit open: %w", sentinel.ErrUnavailable)

// Config locates the backend operations. Channel operations are posted to
// {BaseURL}/{Channel}/{operation}; the OTP request goes to {BaseURL}{OTPPath}.
type Config struct {
	BaseURL string
	Channel string
	OTPPath string
	Timeout time.Duration
}

// Client calls the backend over HTTP. A reply envelope is returned for every
// call the backend answered, including Success=false; an error means no
// usable reply was received.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *circuit.Breaker
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(cl *Client) {
		if t != nil {
			cl.tracer = t
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// New builds a Client. The default HTTP client is instrumented with otelhttp.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend base url %q is invalid", cfg.BaseURL)
	}
	if cfg.Channel == "" {
		return nil, errors.New("backend channel is required")
	}
	if cfg.OTPPath == "" {
		return nil, errors.New("backend otp path is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.Channel = strings.Trim(cfg.Channel, "/")
	if !strings.HasPrefix(cfg.OTPPath, "/") {
		cfg.OTPPath = "/" + cfg.OTPPath
	}

	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer: otel.Tracer("enroll/internal/registration/backend"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) ValidateRegister(ctx context.Context, req ValidateRegisterRequest) (*Envelope, error) {
	return c.call(ctx, OpValidateRegister, c.channelURL(OpValidateRegister), req)
}

func (c *Client) SaveIdentityDocument(ctx context.Context, req SaveIdentityDocumentRequest) (*Envelope, error) {
	return c.call(ctx, OpSaveIdentityDocument, c.channelURL(OpSaveIdentityDocument), req)
}

func (c *Client) RequestOTPForTransaction(ctx context.Context, req RequestOTPRequest) (*Envelope, error) {
	return c.call(ctx, OpRequestOTPForTransaction, c.cfg.BaseURL+c.cfg.OTPPath, req)
}

func (c *Client) ConfirmAccountRegister(ctx context.Context, req ConfirmAccountRegisterRequest) (*Envelope, error) {
	return c.call(ctx, OpConfirmAccountRegister, c.channelURL(OpConfirmAccountRegister), req)
}

func (c *Client) channelURL(op string) string {
	return c.cfg.BaseURL + "/" + c.cfg.Channel + "/" + op
}

func (c *Client) call(ctx context.Context, op, target string, body any) (*Envelope, error) {
	ctx, span := c.tracer.Start(ctx, "backend."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("backend.operation", op))

	start := time.Now()
	env, err := c.do(ctx, op, target, body)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "transport_error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.WarnContext(ctx, "backend call failed", "operation", op, "error", err)
	case !env.Success:
		outcome = "rejected"
		span.SetAttributes(attribute.Bool("backend.success", false))
	default:
		span.SetAttributes(attribute.Bool("backend.success", true))
	}
	c.metrics.ObserveBackendCall(op, outcome, start)
	return env, err
}

func (c *Client) do(ctx context.Context, op, target string, body any) (*Envelope, error) {
	if c.breaker != nil && !c.breaker.Allow() {
		return nil, dErrors.Wrap(ErrCircuitOpen, dErrors.CodeTransportFailure, "backend temporarily unavailable")
	}

	env, err := c.roundTrip(ctx, target, body)
	if c.breaker != nil {
		var change circuit.StateChange
		if err != nil {
			_, change = c.breaker.RecordFailure()
		} else {
			_, change = c.breaker.RecordSuccess()
		}
		if change.Opened {
			c.logger.WarnContext(ctx, "backend circuit opened", "breaker", c.breaker.Name(), "operation", op)
		}
		if change.Closed {
			c.logger.InfoContext(ctx, "backend circuit closed", "breaker", c.breaker.Name())
		}
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransportFailure, "backend unreachable")
	}
	return env, nil
}

func (c *Client) roundTrip(ctx context.Context, target string, body any) (*Envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReplyBytes))
		return nil, fmt.Errorf("post %s: unexpected status %s", target, resp.Status)
	}

	var env Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReplyBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return &env, nil
}
