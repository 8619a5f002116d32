// Package steps holds the wizard's step transitions and the precondition
// each step imposes before it may be left.
package steps

import (
	"fmt"
	"time"

	"enroll/internal/registration/models"
	dErrors "enroll/pkg/domain-errors"
)

// Machine moves a session between steps. It keeps no state of its own.
type Machine struct {
	now func() time.Time
}

type Option func(*Machine)

// WithClock overrides the clock used by the step-1 form check.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

func New(opts ...Option) *Machine {
	m := &Machine{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Advance moves to the next step when the current step's precondition holds.
//
// Step 1 never advances here: a passing form check returns (false, nil) and
// the move is left to the server round trip, which calls GoTo. A failing form
// check returns a validation error. Step 3 is terminal.
func (m *Machine) Advance(s *models.Session) (bool, error) {
	switch s.Step {
	case models.StepDataConfirmation:
		if err := m.CheckForm(s); err != nil {
			return false, err
		}
		return false, nil
	case models.StepDocumentUpload:
		if !s.Documents.BothPresent() {
			return false, dErrors.New(dErrors.CodeValidation, "both document images are required")
		}
		if _, ok := s.TransactionID(); !ok {
			return false, dErrors.New(dErrors.CodePreconditionFailed, "no OTP transaction has been issued")
		}
		m.enter(s, models.StepCodeVerification)
		return true, nil
	case models.StepCodeVerification:
		return false, nil
	default:
		return false, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("session at invalid %s", s.Step))
	}
}

// CheckForm runs the client-visible check of the host form.
func (m *Machine) CheckForm(s *models.Session) error {
	if s.Form == nil {
		return dErrors.New(dErrors.CodeValidation, "registration form is empty")
	}
	return s.Form.Validate(m.now())
}

// Retreat moves back one step. Landing on step 1 restores the host form.
func (m *Machine) Retreat(s *models.Session) bool {
	if s.Step <= models.FirstStep {
		return false
	}
	if s.Step == models.StepCodeVerification {
		s.Countdown.Stop()
	}
	s.Step--
	if s.Step == models.FirstStep {
		s.View = models.ViewHostForm
	}
	return true
}

// GoTo sets the step directly without checking preconditions. Callers are
// responsible for the session being consistent with the target step.
func (m *Machine) GoTo(s *models.Session, step models.Step) error {
	if !step.Valid() {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("cannot go to %s", step))
	}
	m.enter(s, step)
	return nil
}

func (m *Machine) enter(s *models.Session, step models.Step) {
	if s.Step == models.StepCodeVerification && step != models.StepCodeVerification {
		s.Countdown.Stop()
	}
	s.Step = step
	if step > models.FirstStep {
		s.View = models.ViewWizard
	}
	if step == models.StepCodeVerification {
		s.ClearCodes()
		s.Countdown.Start()
	}
}
