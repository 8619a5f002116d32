package service

import (
	"context"

	"enroll/internal/audit"
	"enroll/internal/registration/backend"
	"enroll/internal/registration/codeinput"
	"enroll/internal/registration/models"
	dErrors "enroll/pkg/domain-errors"
)

// Completion paths, used as the metrics label.
const (
	completedViaOTP         = "otp"
	completedViaNotRequired = "not_required"
)

// RequestOTP issues a new OTP transaction for the validated user.
//
// The outcome is one of three kinds. Issued stores the new transaction on the
// session. NotRequired completes the registration at once, without a
// transaction ever being stored. Rejected returns an error and stores
// nothing.
func (o *Orchestrator) RequestOTP(ctx context.Context, s *models.Session) (models.OTPOutcome, error) {
	rejected := models.OTPOutcome{Kind: models.OTPOutcomeRejected}
	if s.UserData == nil {
		o.notify(s, models.NoticeError, msgUserDataMissing)
		return rejected, dErrors.New(dErrors.CodePreconditionFailed, "user data is not set")
	}
	if err := o.checkThrottle(ctx, s); err != nil {
		rejected.Message = msgThrottled
		return rejected, err
	}

	txID := o.newTxID()
	env, err := o.backend.RequestOTPForTransaction(ctx, backend.RequestOTPRequest{
		UserID: s.UserID,
		OTP: backend.OTPChallenge{
			TransactionID: txID.String(),
			Code:          "",
			Purpose:       models.PurposeRegistration,
		},
	})
	if err != nil {
		o.notify(s, models.NoticeError, msgRequestTransport)
		rejected.Message = msgRequestTransport
		return rejected, dErrors.Wrap(err, dErrors.CodeTransportFailure, msgRequestTransport)
	}

	if env.Success {
		s.OTP = models.NewOTPTransaction(txID, s.Countdown.Seconds(), o.now())
		s.Touch(o.now())
		o.logAudit(ctx, s, audit.EventOTPIssued, "")
		return models.OTPOutcome{Kind: models.OTPIssued, TransactionID: txID, Message: env.Message}, nil
	}

	if env.DataString() == backend.DataNotRequired {
		msg := serverMessage(env, msgCompletedNoOTP)
		o.complete(ctx, s, completedViaNotRequired, msg)
		return models.OTPOutcome{Kind: models.OTPOutcomeSkipped, Message: msg}, nil
	}

	msg := serverMessage(env, msgRequestFailed)
	o.notify(s, models.NoticeError, msg)
	o.logAudit(ctx, s, audit.EventOTPRejected, msg)
	rejected.Message = msg
	return rejected, dErrors.New(dErrors.CodeRemoteRejected, msg)
}

func (o *Orchestrator) checkThrottle(ctx context.Context, s *models.Session) error {
	if o.throttle == nil {
		return nil
	}
	key := s.UserID
	if key == "" {
		key = s.ID.String()
	}
	allowed, err := o.throttle.Allow(ctx, key)
	if err != nil {
		// Throttle backend trouble never blocks a registration.
		o.logger.WarnContext(ctx, "otp throttle unavailable", "session_id", s.ID.String(), "error", err)
		return nil
	}
	if allowed {
		return nil
	}
	o.metrics.IncrementOTPThrottled()
	o.notify(s, models.NoticeError, msgThrottled)
	o.logAudit(ctx, s, audit.EventOTPThrottled, "")
	return dErrors.New(dErrors.CodeRateLimited, msgThrottled)
}

// ConfirmOTP submits both codes for the active transaction. Success activates
// the account and clears the session. A rejected confirmation marks both code
// fields as erroneous and keeps the user and transaction for another attempt.
func (o *Orchestrator) ConfirmOTP(ctx context.Context, s *models.Session, emailCode, phoneCode string) error {
	if !s.HasUser() {
		o.notify(s, models.NoticeError, msgUserIDMissing)
		return dErrors.New(dErrors.CodePreconditionFailed, "user id is not set")
	}
	txID, ok := s.TransactionID()
	if !ok {
		o.notify(s, models.NoticeError, msgTransactionMissing)
		return dErrors.New(dErrors.CodePreconditionFailed, "transaction id is not set")
	}
	if !codeinput.Valid(emailCode) || !codeinput.Valid(phoneCode) {
		o.notify(s, models.NoticeError, msgCodesIncomplete)
		return dErrors.New(dErrors.CodeValidation, "both codes must be exactly 6 digits")
	}

	env, err := o.backend.ConfirmAccountRegister(ctx, backend.ConfirmAccountRegisterRequest{
		UserID: s.UserID,
		OTP: backend.OTPConfirmation{
			TransactionID: txID.String(),
			CodeMail:      emailCode,
			CodeSms:       phoneCode,
			Purpose:       models.PurposeRegistration,
		},
	})
	if err != nil {
		o.notify(s, models.NoticeError, msgConfirmTransport)
		return dErrors.Wrap(err, dErrors.CodeTransportFailure, msgConfirmTransport)
	}
	if !env.Success {
		msg := serverMessage(env, msgConfirmFailed)
		s.OTP.Status = models.OTPFailed
		s.EmailCode.MarkError()
		s.PhoneCode.MarkError()
		o.notify(s, models.NoticeError, msg)
		o.logAudit(ctx, s, audit.EventOTPRejected, msg)
		return dErrors.New(dErrors.CodeRemoteRejected, msg)
	}

	s.OTP.Status = models.OTPConfirmed
	o.complete(ctx, s, completedViaOTP, serverMessage(env, msgActivated))
	return nil
}

// ResendOTP clears the entered digits and requests a fresh transaction. An
// issued transaction restarts the countdown. The user and data are kept.
func (o *Orchestrator) ResendOTP(ctx context.Context, s *models.Session) (models.OTPOutcome, error) {
	s.ClearCodes()
	outcome, err := o.RequestOTP(ctx, s)
	if err != nil {
		o.notify(s, models.NoticeError, msgResendFailed)
		return outcome, err
	}
	if outcome.Kind == models.OTPIssued {
		s.Countdown.Start()
		msg := outcome.Message
		if msg == "" {
			msg = msgResent
		}
		o.notify(s, models.NoticeInfo, msg)
	}
	return outcome, nil
}

// complete clears the session after activation and schedules the sign-in
// redirect.
func (o *Orchestrator) complete(ctx context.Context, s *models.Session, path, message string) {
	o.logAudit(ctx, s, audit.EventCompleted, path)
	now := o.now()
	s.Complete(now)
	o.notify(s, models.NoticeInfo, message)
	s.RedirectTo(models.RedirectSignIn, now, o.redirectDelay)
	o.metrics.IncrementCompleted(path)
}
