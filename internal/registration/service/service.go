// Package service drives registration sessions through the backend: data
// validation, document upload and the OTP request/confirm/resend protocol.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Backend,AuditPublisher,Throttle

import (
	"context"
	"log/slog"
	"time"

	"enroll/internal/audit"
	"enroll/internal/registration/backend"
	"enroll/internal/registration/metrics"
	"enroll/internal/registration/models"
	"enroll/internal/registration/steps"
	id "enroll/pkg/domain"
	"enroll/pkg/requestcontext"
)

// Backend is the remote account service.
type Backend interface {
	ValidateRegister(ctx context.Context, req backend.ValidateRegisterRequest) (*backend.Envelope, error)
	SaveIdentityDocument(ctx context.Context, req backend.SaveIdentityDocumentRequest) (*backend.Envelope, error)
	RequestOTPForTransaction(ctx context.Context, req backend.RequestOTPRequest) (*backend.Envelope, error)
	ConfirmAccountRegister(ctx context.Context, req backend.ConfirmAccountRegisterRequest) (*backend.Envelope, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Throttle limits OTP requests per user.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ConfirmFunc asks the user to acknowledge the data about to be submitted.
type ConfirmFunc func(ctx context.Context, data *models.UserData) bool

// DefaultRedirectDelay is how long the UI waits before showing sign-in.
const DefaultRedirectDelay = 2 * time.Second

// Orchestrator translates backend replies into session state. It holds no
// session state itself; callers serialize calls per session.
type Orchestrator struct {
	backend        Backend
	machine        *steps.Machine
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	throttle       Throttle
	now            func() time.Time
	newTxID        func() id.TransactionID
	newFileID      func() id.FileID
	campaign       string
	redirectDelay  time.Duration
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(o *Orchestrator) {
		o.auditPublisher = publisher
	}
}

// WithThrottle enables the per-user OTP request limit.
func WithThrottle(t Throttle) Option {
	return func(o *Orchestrator) {
		o.throttle = t
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerators replaces the transaction and file id sources.
func WithIDGenerators(tx func() id.TransactionID, file func() id.FileID) Option {
	return func(o *Orchestrator) {
		if tx != nil {
			o.newTxID = tx
		}
		if file != nil {
			o.newFileID = file
		}
	}
}

// WithCampaign sets the campaign attached to data validation.
func WithCampaign(campaign string) Option {
	return func(o *Orchestrator) {
		o.campaign = campaign
	}
}

func WithRedirectDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.redirectDelay = d
		}
	}
}

func WithMachine(m *steps.Machine) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.machine = m
		}
	}
}

func New(b Backend, opts ...Option) (*Orchestrator, error) {
	if b == nil {
		return nil, errBackendRequired
	}
	o := &Orchestrator{
		backend:       b,
		logger:        slog.Default(),
		now:           time.Now,
		newTxID:       id.NewTransactionID,
		newFileID:     id.NewFileID,
		redirectDelay: DefaultRedirectDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.machine == nil {
		o.machine = steps.New(steps.WithClock(o.now))
	}
	return o, nil
}

// Machine returns the step machine the orchestrator moves sessions with.
func (o *Orchestrator) Machine() *steps.Machine {
	return o.machine
}

// Reset returns the session to step 1 with every field cleared and the
// countdown stopped.
func (o *Orchestrator) Reset(ctx context.Context, s *models.Session) {
	s.Reset(o.now())
	o.logAudit(ctx, s, audit.EventReset, "")
}

func (o *Orchestrator) notify(s *models.Session, kind models.NoticeKind, message string) {
	s.Notify(kind, message, o.now())
}

// serverMessage prefers the backend's message over the fallback.
func serverMessage(env *backend.Envelope, fallback string) string {
	if env != nil && env.Message != "" {
		return env.Message
	}
	return fallback
}

func (o *Orchestrator) logAudit(ctx context.Context, s *models.Session, event audit.EventType, reason string) {
	requestID := requestcontext.RequestID(ctx)
	args := []any{
		"event", string(event),
		"log_type", "audit",
		"session_id", s.ID.String(),
	}
	if s.UserID != "" {
		args = append(args, "user_id", s.UserID)
	}
	if reason != "" {
		args = append(args, "reason", reason)
	}
	if requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if o.logger != nil {
		o.logger.InfoContext(ctx, string(event), args...)
	}
	if o.auditPublisher == nil {
		return
	}
	if err := o.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: o.now(),
		SessionID: s.ID.String(),
		UserID:    s.UserID,
		Action:    event,
		Reason:    reason,
		RequestID: requestID,
	}); err != nil && o.logger != nil {
		o.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
