package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"enroll/internal/registration/models"
	id "enroll/pkg/domain"
	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/platform/sentinel"
)

// SessionStore holds live sessions and serializes work on each one.
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	Execute(ctx context.Context, sessionID id.SessionID, fn func(*models.Session) error) error
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// SessionFactory builds a fresh session.
type SessionFactory func(sessionID id.SessionID, now time.Time) *models.Session

// Wizard runs the user-facing registration flows on stored sessions. Every
// flow executes under the session's lock, so at most one backend call is in
// flight per session.
type Wizard struct {
	sessions   SessionStore
	orch       *Orchestrator
	newSession SessionFactory
	logger     *slog.Logger
}

type WizardOption func(*Wizard)

func WithSessionFactory(f SessionFactory) WizardOption {
	return func(w *Wizard) {
		if f != nil {
			w.newSession = f
		}
	}
}

func WithWizardLogger(logger *slog.Logger) WizardOption {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWizard(sessions SessionStore, orch *Orchestrator, opts ...WizardOption) (*Wizard, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if orch == nil {
		return nil, errors.New("orchestrator is required")
	}
	w := &Wizard{
		sessions: sessions,
		orch:     orch,
		newSession: func(sessionID id.SessionID, now time.Time) *models.Session {
			return models.NewSession(sessionID, now, nil)
		},
		logger: orch.logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start opens a new session on step 1.
func (w *Wizard) Start(ctx context.Context) (*models.Snapshot, error) {
	s := w.newSession(id.NewSessionID(), w.orch.now())
	if err := w.sessions.Create(ctx, s); err != nil {
		s.Teardown()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}
	w.logger.InfoContext(ctx, "registration session started", "session_id", s.ID.String())
	snap := s.Snapshot()
	return &snap, nil
}

// Get returns the session's current view and drains its notices.
func (w *Wizard) Get(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error) {
	return w.run(ctx, sessionID, func(*models.Session) error { return nil })
}

// Close tears the session down and forgets it.
func (w *Wizard) Close(ctx context.Context, sessionID id.SessionID) error {
	if err := w.sessions.Delete(ctx, sessionID); err != nil {
		return translateStoreError(err)
	}
	w.logger.InfoContext(ctx, "registration session closed", "session_id", sessionID.String())
	return nil
}

// SubmitData runs the host form check, then server validation, and on
// success moves to the document step.
func (w *Wizard) SubmitData(ctx context.Context, sessionID id.SessionID, form *models.UserData, confirmed bool) (*models.Snapshot, error) {
	return w.runActive(ctx, sessionID, func(s *models.Session) error {
		if s.Step != models.StepDataConfirmation {
			return dErrors.New(dErrors.CodePreconditionFailed, "data can only be submitted on the first step")
		}
		if form != nil {
			form.Normalize()
		}
		// a form that fails the local check never replaces the one held
		prev := s.Form
		s.Form = form
		if _, err := w.orch.machine.Advance(s); err != nil {
			s.Form = prev
			w.orch.notify(s, models.NoticeError, dErrors.MessageOf(err))
			return err
		}
		confirm := func(context.Context, *models.UserData) bool { return confirmed }
		if err := w.orch.ValidateUserData(ctx, s, form, confirm); err != nil {
			return err
		}
		return w.orch.machine.GoTo(s, models.StepDocumentUpload)
	})
}

// ContinueValidation re-enters the flow for an existing account.
func (w *Wizard) ContinueValidation(ctx context.Context, sessionID id.SessionID, acct models.ExistingAccount) (*models.Snapshot, error) {
	return w.run(ctx, sessionID, func(s *models.Session) error {
		return w.orch.ContinueValidation(ctx, s, acct)
	})
}

// AttachDocument stores one side of the document on the upload step.
func (w *Wizard) AttachDocument(ctx context.Context, sessionID id.SessionID, side models.Side, mimeType string, size int64, data []byte) (*models.Snapshot, error) {
	return w.runActive(ctx, sessionID, func(s *models.Session) error {
		if s.Step != models.StepDocumentUpload {
			return dErrors.New(dErrors.CodePreconditionFailed, "documents can only be attached on the upload step")
		}
		_, err := w.orch.AttachDocument(ctx, s, side, mimeType, size, data)
		return err
	})
}

func (w *Wizard) RemoveDocument(ctx context.Context, sessionID id.SessionID, side models.Side) (*models.Snapshot, error) {
	return w.runActive(ctx, sessionID, func(s *models.Session) error {
		s.Documents.Remove(side)
		return nil
	})
}

// SaveImages uploads both sides, requests the OTP and enters code
// verification. A bypassed OTP completes the registration instead.
func (w *Wizard) SaveImages(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error) {
	return w.runActive(ctx, sessionID, func(s *models.Session) error {
		if s.Step != models.StepDocumentUpload {
			return dErrors.New(dErrors.CodePreconditionFailed, "documents can only be saved on the upload step")
		}
		if !s.Documents.BothPresent() {
			w.orch.notify(s, models.NoticeError, msgImagesIncomplete)
			return dErrors.New(dErrors.CodeValidation, "both document images are required")
		}
		if err := w.orch.SaveDocuments(ctx, s, s.Documents.Front, s.Documents.Back); err != nil {
			return err
		}
		return w.issueAndAdvance(ctx, s)
	})
}

// RequestOTP retries the code request on the upload step after the documents
// were saved but the request failed.
func (w *Wizard) RequestOTP(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error) {
	return w.runActive(ctx, sessionID, func(s *models.Session) error {
		if s.Step != models.StepDocumentUpload {
			return dErrors.New(dErrors.CodePreconditionFailed, "codes can only be requested on the upload step")
		}
		return w.issueAndAdvance(ctx, s)
	})
}

func (w *Wizard) issueAndAdvance(ctx context.Context, s *models.Session) error {
	outcome, err := w.orch.RequestOTP(ctx, s)
	if err != nil {
		return err
	}
	if outcome.Kind != models.OTPIssued {
		return nil
	}
	_, err = w.orch.machine.Advance(s)
	return err
}

// SubmitCodes fills both code fields from the given text and confirms them.
func (w *Wizard) SubmitCodes(ctx context.Context, sessionID id.SessionID, emailCode, phoneCode string) (*models.Snapshot, error) {
	return w.runActive(ctx, sessionID, func(s *models.Session) error {
		if s.Step != models.StepCodeVerification {
			return dErrors.New(dErrors.CodePreconditionFailed, "codes can only be confirmed on the verification step")
		}
		s.EmailCode.Clear()
		s.PhoneCode.Clear()
		s.EmailCode.Paste(emailCode)
		s.PhoneCode.Paste(phoneCode)
		return w.orch.ConfirmOTP(ctx, s, s.EmailCode.Assemble(), s.PhoneCode.Assemble())
	})
}

// Resend requests fresh codes once the countdown has run out.
func (w *Wizard) Resend(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error) {
	return w.runActive(ctx, sessionID, func(s *models.Session) error {
		if s.Step != models.StepCodeVerification {
			return dErrors.New(dErrors.CodePreconditionFailed, "codes can only be resent on the verification step")
		}
		if s.Countdown.Active() {
			return dErrors.New(dErrors.CodePreconditionFailed, "resend is available when the countdown ends")
		}
		_, err := w.orch.ResendOTP(ctx, s)
		return err
	})
}

// Back retreats one step.
func (w *Wizard) Back(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error) {
	return w.runActive(ctx, sessionID, func(s *models.Session) error {
		w.orch.machine.Retreat(s)
		return nil
	})
}

func (w *Wizard) Reset(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error) {
	return w.run(ctx, sessionID, func(s *models.Session) error {
		w.orch.Reset(ctx, s)
		return nil
	})
}

// runActive is run for flows that are closed once registration completed.
func (w *Wizard) runActive(ctx context.Context, sessionID id.SessionID, fn func(*models.Session) error) (*models.Snapshot, error) {
	return w.run(ctx, sessionID, func(s *models.Session) error {
		if s.Completed {
			return dErrors.New(dErrors.CodeConflict, "registration already completed")
		}
		return fn(s)
	})
}

func (w *Wizard) run(ctx context.Context, sessionID id.SessionID, fn func(*models.Session) error) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := w.sessions.Execute(ctx, sessionID, func(s *models.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		s.Touch(w.orch.now())
		snap = s.Snapshot()
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return &snap, nil
}

func translateStoreError(err error) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrExpired):
		return dErrors.New(dErrors.CodeNotFound, "registration session not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "session store failure")
	}
}
