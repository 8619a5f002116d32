package service

import (
	"context"
	"encoding/json"

	"enroll/internal/audit"
	"enroll/internal/registration/backend"
	"enroll/internal/registration/models"
	dErrors "enroll/pkg/domain-errors"
)

// ValidateUserData submits the confirmed form to the backend. On success the
// session holds the user data, user id and account state; the caller then
// moves the session to step 2. A blocking account state schedules a redirect
// to sign-in and returns CodeBlockedAccount; any user id held from an earlier
// validation or a continued account is dropped.
// Declined confirmation, rejection and transport failure leave the session
// data unchanged.
func (o *Orchestrator) ValidateUserData(ctx context.Context, s *models.Session, form *models.UserData, confirm ConfirmFunc) error {
	if form == nil {
		return dErrors.New(dErrors.CodeValidation, "registration form is empty")
	}
	if confirm == nil || !confirm(ctx, form) {
		return ErrConfirmationDeclined
	}

	user := form.Fields()
	user["Campaign"] = o.campaign
	env, err := o.backend.ValidateRegister(ctx, backend.ValidateRegisterRequest{User: user})
	if err != nil {
		o.notify(s, models.NoticeError, msgValidateTransport)
		return dErrors.Wrap(err, dErrors.CodeTransportFailure, msgValidateTransport)
	}
	if !env.Success {
		msg := serverMessage(env, msgValidateFailed)
		o.notify(s, models.NoticeError, msg)
		return dErrors.New(dErrors.CodeRemoteRejected, msg)
	}

	state, err := decodeRegisterState(env)
	if err != nil {
		o.notify(s, models.NoticeError, msgInvalidReply)
		return dErrors.Wrap(err, dErrors.CodeTransportFailure, msgInvalidReply)
	}

	if state.IsBlocked() {
		msg := serverMessage(env, msgBlockedState+state.StateName)
		s.ClearAccount()
		s.RegisterState = state
		o.notify(s, models.NoticeError, msg)
		s.RedirectTo(models.RedirectSignIn, o.now(), o.redirectDelay)
		o.metrics.IncrementBlocked()
		o.logAudit(ctx, s, audit.EventAccountBlocked, state.StateName)
		return dErrors.Wrap(&models.BlockedAccountError{StateName: state.StateName, Message: msg}, dErrors.CodeBlockedAccount, msg)
	}
	if state.UserID == "" {
		o.notify(s, models.NoticeError, msgInvalidReply)
		return dErrors.New(dErrors.CodeRemoteRejected, "backend reply carries no user id")
	}

	stored := *form
	s.UserData = &stored
	s.UserID = state.UserID
	s.RegisterState = state
	s.Touch(o.now())
	o.logAudit(ctx, s, audit.EventDataValidated, state.StateName)
	return nil
}

func decodeRegisterState(env *backend.Envelope) (*models.RegisterState, error) {
	state := &models.RegisterState{}
	if err := env.DecodeData(state); err != nil {
		return nil, err
	}
	if len(env.Data) > 0 {
		raw := map[string]any{}
		if err := json.Unmarshal(env.Data, &raw); err == nil {
			state.Raw = raw
		}
	}
	return state, nil
}

// ContinueValidation re-enters the flow for an account that already exists
// but still needs validating. The host form is pre-filled from the account
// and the session returns to step 1.
func (o *Orchestrator) ContinueValidation(ctx context.Context, s *models.Session, acct models.ExistingAccount) error {
	if acct.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "existing account has no user id")
	}
	s.Countdown.Stop()
	s.ClearRegistrationData()
	s.Completed = false
	s.Redirect = nil
	s.ValidationMode = true
	s.UserID = acct.UserID
	s.UserData = acct.UserData()
	s.Form = acct.UserData()
	if err := o.machine.GoTo(s, models.FirstStep); err != nil {
		return err
	}
	s.View = models.ViewHostForm
	s.Touch(o.now())
	o.logAudit(ctx, s, audit.EventValidationEntry, "")
	return nil
}
