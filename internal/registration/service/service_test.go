package service

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"enroll/internal/audit"
	"enroll/internal/registration/backend"
	"enroll/internal/registration/countdown"
	"enroll/internal/registration/metrics"
	"enroll/internal/registration/models"
	"enroll/internal/registration/service/mocks"
	id "enroll/pkg/domain"
	dErrors "enroll/pkg/domain-errors"
)

// =============================================================================
// Orchestrator Test Suite
// =============================================================================
// Justification for unit tests: the orchestrator owns every translation from
// backend reply to session state. Tests pin the all-or-nothing mutation rule,
// the blocked-account and OTP bypass paths, and the cleared state after
// completion, without a live backend.

type OrchestratorSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockBackend  *mocks.MockBackend
	mockAudit    *mocks.MockAuditPublisher
	mockThrottle *mocks.MockThrottle
	metrics      *metrics.Metrics
	now          time.Time
	tx1, tx2     id.TransactionID
	orch         *Orchestrator
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockBackend = mocks.NewMockBackend(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.mockThrottle = mocks.NewMockThrottle(s.ctrl)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.now = time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC)
	s.tx1 = id.NewTransactionID()
	s.tx2 = id.NewTransactionID()

	var err error
	s.orch, err = New(s.mockBackend,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithAuditPublisher(s.mockAudit),
		WithClock(func() time.Time { return s.now }),
		WithIDGenerators(fixedTxIDs(s.tx1, s.tx2), nil),
		WithCampaign("spring-2026"),
	)
	s.Require().NoError(err)
}

func (s *OrchestratorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorSuite) confirmed() ConfirmFunc {
	return func(context.Context, *models.UserData) bool { return true }
}

// validatedSession is a session that passed data validation and sits on the
// document step.
func (s *OrchestratorSuite) validatedSession() *models.Session {
	sess := newIdleSession(s.now)
	sess.UserData = testForm()
	sess.UserID = "user-42"
	sess.RegisterState = &models.RegisterState{UserID: "user-42", StateName: "Activo"}
	sess.Step = models.StepDocumentUpload
	return sess
}

// issuedSession is on code verification with an open transaction.
func (s *OrchestratorSuite) issuedSession() *models.Session {
	sess := s.validatedSession()
	sess.OTP = models.NewOTPTransaction(s.tx1, 60, s.now)
	sess.Step = models.StepCodeVerification
	return sess
}

func (s *OrchestratorSuite) assertCleared(sess *models.Session) {
	s.Nil(sess.UserData)
	s.Empty(sess.UserID)
	s.Nil(sess.RegisterState)
	s.False(sess.ValidationMode)
	_, ok := sess.TransactionID()
	s.False(ok)
	s.True(sess.Completed)
	s.Require().NotNil(sess.Redirect)
	s.Equal(models.RedirectSignIn, sess.Redirect.Target)
	s.Equal(s.now.Add(DefaultRedirectDelay), sess.Redirect.Due)
}

// =============================================================================
// Constructor
// =============================================================================

func (s *OrchestratorSuite) TestNew() {
	s.Run("nil backend returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "backend is required")
	})
}

// =============================================================================
// Data Validation
// =============================================================================

func (s *OrchestratorSuite) TestValidateUserData() {
	ctx := context.Background()

	s.Run("declined confirmation sends nothing", func() {
		sess := newIdleSession(s.now)
		declined := func(context.Context, *models.UserData) bool { return false }

		err := s.orch.ValidateUserData(ctx, sess, testForm(), declined)
		s.ErrorIs(err, ErrConfirmationDeclined)
		s.Nil(sess.UserData)
		s.Empty(sess.Notices)
	})

	s.Run("success stores user data, id and state", func() {
		sess := newIdleSession(s.now)
		s.mockBackend.EXPECT().ValidateRegister(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req backend.ValidateRegisterRequest) (*backend.Envelope, error) {
				s.Equal("spring-2026", req.User["Campaign"])
				s.Equal("ana@example.com", req.User["mail"])
				return okEnvelope("ok", registerState("user-42", "Activo")), nil
			})

		err := s.orch.ValidateUserData(ctx, sess, testForm(), s.confirmed())
		s.Require().NoError(err)
		s.Equal("user-42", sess.UserID)
		s.Equal("Activo", sess.RegisterState.StateName)
		s.Equal("ana@example.com", sess.UserData.Mail)
		s.Equal(models.StepDataConfirmation, sess.Step, "the caller moves the step")
	})

	for _, state := range []string{"En Validación", "Bloqueado", "Eliminado"} {
		s.Run("blocked state "+state+" halts the flow", func() {
			sess := newIdleSession(s.now)
			s.mockBackend.EXPECT().ValidateRegister(gomock.Any(), gomock.Any()).
				Return(okEnvelope("cuenta bloqueada", registerState("user-9", state)), nil)

			err := s.orch.ValidateUserData(ctx, sess, testForm(), s.confirmed())
			s.True(dErrors.HasCode(err, dErrors.CodeBlockedAccount))
			var blocked *models.BlockedAccountError
			s.Require().ErrorAs(err, &blocked)
			s.Equal(state, blocked.StateName)

			s.Empty(sess.UserID)
			s.Nil(sess.UserData)
			s.Equal(models.StepDataConfirmation, sess.Step)
			s.Require().NotNil(sess.Redirect)
			s.Equal(s.now.Add(2*time.Second), sess.Redirect.Due)
			s.Equal(models.ViewSignIn, sess.View)
			s.Equal("cuenta bloqueada", sess.Notices[len(sess.Notices)-1].Message)
		})
	}

	s.Run("rejection surfaces the server message and mutates nothing", func() {
		sess := newIdleSession(s.now)
		s.mockBackend.EXPECT().ValidateRegister(gomock.Any(), gomock.Any()).
			Return(failEnvelope("document already registered", nil), nil)

		err := s.orch.ValidateUserData(ctx, sess, testForm(), s.confirmed())
		s.True(dErrors.HasCode(err, dErrors.CodeRemoteRejected))
		s.Equal("document already registered", dErrors.MessageOf(err))
		s.Nil(sess.UserData)
		s.Empty(sess.UserID)
		s.Nil(sess.RegisterState)
	})

	s.Run("rejection without a message uses the fallback", func() {
		sess := newIdleSession(s.now)
		s.mockBackend.EXPECT().ValidateRegister(gomock.Any(), gomock.Any()).
			Return(failEnvelope("", nil), nil)

		err := s.orch.ValidateUserData(ctx, sess, testForm(), s.confirmed())
		s.Equal(msgValidateFailed, dErrors.MessageOf(err))
	})

	s.Run("transport failure substitutes a generic message", func() {
		sess := newIdleSession(s.now)
		s.mockBackend.EXPECT().ValidateRegister(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("dial tcp: connection refused"))

		err := s.orch.ValidateUserData(ctx, sess, testForm(), s.confirmed())
		s.True(dErrors.HasCode(err, dErrors.CodeTransportFailure))
		s.Equal(msgValidateTransport, sess.Notices[0].Message)
		s.Nil(sess.UserData)
	})

	s.Run("success without a user id is rejected", func() {
		sess := newIdleSession(s.now)
		s.mockBackend.EXPECT().ValidateRegister(gomock.Any(), gomock.Any()).
			Return(okEnvelope("", map[string]string{"StateName": "Activo"}), nil)

		err := s.orch.ValidateUserData(ctx, sess, testForm(), s.confirmed())
		s.True(dErrors.HasCode(err, dErrors.CodeRemoteRejected))
		s.Empty(sess.UserID)
	})
}

func (s *OrchestratorSuite) TestBlockedValidationIsCounted() {
	sess := newIdleSession(s.now)
	s.mockBackend.EXPECT().ValidateRegister(gomock.Any(), gomock.Any()).
		Return(okEnvelope("", registerState("u", "Bloqueado")), nil)

	_ = s.orch.ValidateUserData(context.Background(), sess, testForm(), s.confirmed())
	s.InDelta(1, testutil.ToFloat64(s.metrics.BlockedValidations), 0)
	s.Equal("Your account is in state: Bloqueado", sess.Notices[0].Message)
}

func (s *OrchestratorSuite) TestBlockedValidationDropsContinuedAccount() {
	ctx := context.Background()
	sess := newIdleSession(s.now)
	s.Require().NoError(s.orch.ContinueValidation(ctx, sess, models.ExistingAccount{
		UserID:   "u-old",
		Document: "99",
		Mail:     "old@example.com",
	}))
	s.Require().True(sess.HasUser())

	s.mockBackend.EXPECT().ValidateRegister(gomock.Any(), gomock.Any()).
		Return(okEnvelope("", registerState("u-new", "Bloqueado")), nil)

	err := s.orch.ValidateUserData(ctx, sess, testForm(), s.confirmed())
	s.True(dErrors.HasCode(err, dErrors.CodeBlockedAccount))
	s.False(sess.HasUser())
	s.Nil(sess.UserData)
	s.Nil(sess.OTP)
	s.Require().NotNil(sess.RegisterState)
	s.Equal("Bloqueado", sess.RegisterState.StateName)

	front := &models.Image{MimeType: "image/png", Size: 1, Data: []byte("f")}
	back := &models.Image{MimeType: "image/png", Size: 1, Data: []byte("b")}
	err = s.orch.SaveDocuments(ctx, sess, front, back)
	s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
}

// =============================================================================
// Documents
// =============================================================================

func (s *OrchestratorSuite) TestAttachDocument() {
	sess := s.validatedSession()

	_, err := s.orch.AttachDocument(context.Background(), sess, models.SideFront, "image/gif", 10, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeUnsupportedMediaType))
	s.InDelta(1, testutil.ToFloat64(s.metrics.DocumentRejections.WithLabelValues("unsupported_type")), 0)

	_, err = s.orch.AttachDocument(context.Background(), sess, models.SideFront, "image/png", models.MaxImageBytes+1, nil)
	s.True(dErrors.HasCode(err, dErrors.CodePayloadTooLarge))
	s.InDelta(1, testutil.ToFloat64(s.metrics.DocumentRejections.WithLabelValues("too_large")), 0)

	img, err := s.orch.AttachDocument(context.Background(), sess, models.SideFront, "image/png", 3, []byte("abc"))
	s.Require().NoError(err)
	s.Same(img, sess.Documents.Front)
}

func (s *OrchestratorSuite) TestSaveDocuments() {
	ctx := context.Background()
	front := &models.Image{MimeType: "image/png", Size: 3, Data: []byte("fnt")}
	back := &models.Image{MimeType: "image/jpeg", Size: 3, Data: []byte("bck")}

	s.Run("missing user id fails before any request", func() {
		sess := newIdleSession(s.now)
		err := s.orch.SaveDocuments(ctx, sess, front, back)
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	})

	s.Run("missing image fails before any request", func() {
		err := s.orch.SaveDocuments(ctx, s.validatedSession(), front, nil)
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	})

	s.Run("uploads both sides with fixed metadata", func() {
		sess := s.validatedSession()
		s.mockBackend.EXPECT().SaveIdentityDocument(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req backend.SaveIdentityDocumentRequest) (*backend.Envelope, error) {
				s.Equal("user-42", req.UserID)
				s.Require().Len(req.Files, 2)
				s.Equal("document_front.jpg", req.Files[0].FileName)
				s.Equal("document_back.jpg", req.Files[1].FileName)
				for _, f := range req.Files {
					s.Equal("image/jpeg", f.FileType)
					s.Nil(f.FileData)
					s.NotEmpty(f.FileID)
				}
				s.NotEqual(req.Files[0].FileID, req.Files[1].FileID)
				s.Equal(base64.StdEncoding.EncodeToString([]byte("fnt")), req.Files[0].FileStream)
				s.Equal(base64.StdEncoding.EncodeToString([]byte("bck")), req.Files[1].FileStream)
				return okEnvelope("saved", nil), nil
			})

		s.Require().NoError(s.orch.SaveDocuments(ctx, sess, front, back))
		s.Equal("user-42", sess.UserID)
	})

	s.Run("rejection leaves the session alone", func() {
		sess := s.validatedSession()
		s.mockBackend.EXPECT().SaveIdentityDocument(gomock.Any(), gomock.Any()).
			Return(failEnvelope("", nil), nil)

		err := s.orch.SaveDocuments(ctx, sess, front, back)
		s.True(dErrors.HasCode(err, dErrors.CodeRemoteRejected))
		s.Equal(msgSaveFailed, dErrors.MessageOf(err))
		s.Equal("user-42", sess.UserID)
	})

	s.Run("transport failure", func() {
		s.mockBackend.EXPECT().SaveIdentityDocument(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("timeout"))
		err := s.orch.SaveDocuments(ctx, s.validatedSession(), front, back)
		s.True(dErrors.HasCode(err, dErrors.CodeTransportFailure))
	})
}

// =============================================================================
// OTP Request
// =============================================================================

func (s *OrchestratorSuite) TestRequestOTP() {
	ctx := context.Background()

	s.Run("missing user data fails before any request", func() {
		sess := newIdleSession(s.now)
		out, err := s.orch.RequestOTP(ctx, sess)
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
		s.Equal(models.OTPOutcomeRejected, out.Kind)
	})

	s.Run("issued stores the transaction", func() {
		sess := s.validatedSession()
		s.mockBackend.EXPECT().RequestOTPForTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req backend.RequestOTPRequest) (*backend.Envelope, error) {
				s.Equal("user-42", req.UserID)
				s.Equal(s.tx1.String(), req.OTP.TransactionID)
				s.Equal("", req.OTP.Code)
				s.Equal("Registration", req.OTP.Purpose)
				return okEnvelope("codes sent", nil), nil
			})

		out, err := s.orch.RequestOTP(ctx, sess)
		s.Require().NoError(err)
		s.Equal(models.OTPIssued, out.Kind)
		s.Equal(s.tx1, out.TransactionID)
		s.Equal("codes sent", out.Message)
		tx, ok := sess.TransactionID()
		s.True(ok)
		s.Equal(s.tx1, tx)
		s.Equal(models.OTPRequested, sess.OTP.Status)
		s.Equal(countdown.DefaultSeconds, sess.OTP.ExpiresInSeconds)
	})

	s.Run("not required completes the registration", func() {
		sess := s.validatedSession()
		sess.ValidationMode = true
		s.mockBackend.EXPECT().RequestOTPForTransaction(gomock.Any(), gomock.Any()).
			Return(failEnvelope("", backend.DataNotRequired), nil)

		out, err := s.orch.RequestOTP(ctx, sess)
		s.Require().NoError(err)
		s.Equal(models.OTPOutcomeSkipped, out.Kind)
		s.True(out.TransactionID.IsNil())
		s.assertCleared(sess)
		s.Nil(sess.OTP)
		s.Equal(models.ViewSignIn, sess.View)
		s.Equal(msgCompletedNoOTP, sess.Notices[len(sess.Notices)-1].Message)
		s.InDelta(1, testutil.ToFloat64(s.metrics.Completions.WithLabelValues("not_required")), 0)
	})

	s.Run("other rejection stores no transaction", func() {
		sess := s.validatedSession()
		s.mockBackend.EXPECT().RequestOTPForTransaction(gomock.Any(), gomock.Any()).
			Return(failEnvelope("limit reached", "SOMETHING_ELSE"), nil)

		out, err := s.orch.RequestOTP(ctx, sess)
		s.True(dErrors.HasCode(err, dErrors.CodeRemoteRejected))
		s.Equal(models.OTPOutcomeRejected, out.Kind)
		s.Equal("limit reached", out.Message)
		s.Nil(sess.OTP)
		s.Equal("user-42", sess.UserID)
	})

	s.Run("transport failure stores no transaction", func() {
		sess := s.validatedSession()
		s.mockBackend.EXPECT().RequestOTPForTransaction(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("reset by peer"))

		_, err := s.orch.RequestOTP(ctx, sess)
		s.True(dErrors.HasCode(err, dErrors.CodeTransportFailure))
		s.Nil(sess.OTP)
	})
}

func (s *OrchestratorSuite) TestRequestOTPThrottle() {
	ctx := context.Background()
	orch, err := New(s.mockBackend,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithThrottle(s.mockThrottle),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)

	s.Run("refused request never reaches the backend", func() {
		sess := s.validatedSession()
		s.mockThrottle.EXPECT().Allow(gomock.Any(), "user-42").Return(false, nil)

		out, err := orch.RequestOTP(ctx, sess)
		s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
		s.Equal(models.OTPOutcomeRejected, out.Kind)
		s.Nil(sess.OTP)
		s.InDelta(1, testutil.ToFloat64(s.metrics.OTPThrottled), 0)
	})

	s.Run("throttle errors let the request through", func() {
		sess := s.validatedSession()
		s.mockThrottle.EXPECT().Allow(gomock.Any(), "user-42").Return(false, errors.New("redis down"))
		s.mockBackend.EXPECT().RequestOTPForTransaction(gomock.Any(), gomock.Any()).Return(okEnvelope("", nil), nil)

		out, err := orch.RequestOTP(ctx, sess)
		s.Require().NoError(err)
		s.Equal(models.OTPIssued, out.Kind)
	})
}

// =============================================================================
// OTP Confirmation
// =============================================================================

func (s *OrchestratorSuite) TestConfirmOTP() {
	ctx := context.Background()

	s.Run("malformed codes never reach the backend", func() {
		cases := [][2]string{
			{"12345", "123456"},
			{"123456", "1234567"},
			{"12a456", "123456"},
			{"", ""},
			{"123456", "١٢٣٤٥٦"},
		}
		for _, c := range cases {
			sess := s.issuedSession()
			err := s.orch.ConfirmOTP(ctx, sess, c[0], c[1])
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "%q/%q", c[0], c[1])
			s.Equal("user-42", sess.UserID)
		}
	})

	s.Run("missing transaction fails before any request", func() {
		err := s.orch.ConfirmOTP(ctx, s.validatedSession(), "123456", "654321")
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	})

	s.Run("missing user fails before any request", func() {
		sess := s.issuedSession()
		sess.UserID = ""
		err := s.orch.ConfirmOTP(ctx, sess, "123456", "654321")
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	})

	s.Run("success clears the session", func() {
		sess := s.issuedSession()
		sess.ValidationMode = true
		sess.Countdown.Start()
		s.mockBackend.EXPECT().ConfirmAccountRegister(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req backend.ConfirmAccountRegisterRequest) (*backend.Envelope, error) {
				s.Equal("user-42", req.UserID)
				s.Equal(s.tx1.String(), req.OTP.TransactionID)
				s.Equal("123456", req.OTP.CodeMail)
				s.Equal("654321", req.OTP.CodeSms)
				s.Equal("Registration", req.OTP.Purpose)
				return okEnvelope("Cuenta activada", nil), nil
			})

		s.Require().NoError(s.orch.ConfirmOTP(ctx, sess, "123456", "654321"))
		s.assertCleared(sess)
		s.False(sess.Countdown.Active())
		s.Equal(models.StepDataConfirmation, sess.Step)
		s.Equal("Cuenta activada", sess.Notices[len(sess.Notices)-1].Message)
		s.InDelta(1, testutil.ToFloat64(s.metrics.Completions.WithLabelValues("otp")), 0)
	})

	s.Run("rejection marks codes and keeps the transaction", func() {
		sess := s.issuedSession()
		s.mockBackend.EXPECT().ConfirmAccountRegister(gomock.Any(), gomock.Any()).
			Return(failEnvelope("", nil), nil)

		err := s.orch.ConfirmOTP(ctx, sess, "123456", "654321")
		s.True(dErrors.HasCode(err, dErrors.CodeRemoteRejected))
		s.Equal(msgConfirmFailed, dErrors.MessageOf(err))
		s.True(sess.EmailCode.Errored())
		s.True(sess.PhoneCode.Errored())
		s.Equal("user-42", sess.UserID)
		tx, ok := sess.TransactionID()
		s.True(ok)
		s.Equal(s.tx1, tx)
		s.Equal(models.OTPFailed, sess.OTP.Status)
		s.False(sess.Completed)
	})

	s.Run("transport failure keeps the transaction", func() {
		sess := s.issuedSession()
		s.mockBackend.EXPECT().ConfirmAccountRegister(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("eof"))

		err := s.orch.ConfirmOTP(ctx, sess, "123456", "654321")
		s.True(dErrors.HasCode(err, dErrors.CodeTransportFailure))
		_, ok := sess.TransactionID()
		s.True(ok)
	})
}

// =============================================================================
// Resend
// =============================================================================

func (s *OrchestratorSuite) TestResendOTP() {
	ctx := context.Background()

	s.Run("clears digits, issues a new transaction and restarts the countdown", func() {
		sess := s.issuedSession()
		sess.EmailCode.Paste("123")
		sess.PhoneCode.Paste("456789")
		sess.PhoneCode.MarkError()
		s.orch.newTxID = fixedTxIDs(s.tx2)
		s.mockBackend.EXPECT().RequestOTPForTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req backend.RequestOTPRequest) (*backend.Envelope, error) {
				s.Equal(s.tx2.String(), req.OTP.TransactionID)
				return okEnvelope("", nil), nil
			})

		out, err := s.orch.ResendOTP(ctx, sess)
		s.Require().NoError(err)
		s.Equal(models.OTPIssued, out.Kind)
		s.NotEqual(s.tx1, out.TransactionID)

		s.Empty(sess.EmailCode.Assemble())
		s.Empty(sess.PhoneCode.Assemble())
		s.False(sess.PhoneCode.Errored())
		tx, _ := sess.TransactionID()
		s.Equal(s.tx2, tx)
		s.True(sess.Countdown.Active())
		s.Equal(countdown.DefaultSeconds, sess.Countdown.Remaining())
		s.Equal("user-42", sess.UserID)
		s.Equal(msgResent, sess.Notices[len(sess.Notices)-1].Message)
		sess.Teardown()
	})

	s.Run("failure surfaces a resend message", func() {
		sess := s.issuedSession()
		s.mockBackend.EXPECT().RequestOTPForTransaction(gomock.Any(), gomock.Any()).
			Return(failEnvelope("nope", nil), nil)

		_, err := s.orch.ResendOTP(ctx, sess)
		s.Error(err)
		s.Equal(msgResendFailed, sess.Notices[len(sess.Notices)-1].Message)
		s.False(sess.Countdown.Active())
	})
}

// =============================================================================
// Continue Validation and Reset
// =============================================================================

func (s *OrchestratorSuite) TestContinueValidation() {
	ctx := context.Background()

	s.Run("account without user id is refused", func() {
		err := s.orch.ContinueValidation(ctx, newIdleSession(s.now), models.ExistingAccount{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("pre-fills the host form and returns to step 1", func() {
		sess := s.issuedSession()
		acct := models.ExistingAccount{
			UserID:       "user-7",
			Document:     "99",
			Mail:         "v@example.com",
			CellPhone:    "300",
			Names:        "Val",
			Personalize1: "fuerza OFF",
		}
		s.Require().NoError(s.orch.ContinueValidation(ctx, sess, acct))

		s.True(sess.ValidationMode)
		s.Equal("user-7", sess.UserID)
		s.Equal(models.StepDataConfirmation, sess.Step)
		s.Equal(models.ViewHostForm, sess.View)
		s.Nil(sess.OTP)
		s.Require().NotNil(sess.Form)
		s.Equal(models.SegmentSalesForce, sess.Form.Segment)
		s.Equal("v@example.com", sess.Form.ConfirmMail)
		s.Equal("CC", sess.Form.DocumentType)
	})
}

func (s *OrchestratorSuite) TestReset() {
	sess := s.issuedSession()
	sess.Countdown.Start()
	_, _ = sess.Documents.Attach(models.SideFront, "image/png", 1, nil)

	s.orch.Reset(context.Background(), sess)

	s.Equal(models.StepDataConfirmation, sess.Step)
	s.Nil(sess.UserData)
	s.Empty(sess.UserID)
	s.Nil(sess.OTP)
	s.Nil(sess.Documents.Front)
	s.False(sess.Countdown.Active())
}

// =============================================================================
// Audit
// =============================================================================

func (s *OrchestratorSuite) TestCompletionIsAudited() {
	ctrl := gomock.NewController(s.T())
	auditMock := mocks.NewMockAuditPublisher(ctrl)
	orch, err := New(s.mockBackend,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(auditMock),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)

	sess := s.issuedSession()
	s.mockBackend.EXPECT().ConfirmAccountRegister(gomock.Any(), gomock.Any()).Return(okEnvelope("", nil), nil)
	auditMock.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(audit.EventCompleted, e.Action)
		s.Equal("user-42", e.UserID)
		s.Equal("otp", e.Reason)
		s.Equal(sess.ID.String(), e.SessionID)
		return nil
	})

	s.Require().NoError(orch.ConfirmOTP(context.Background(), sess, "111111", "222222"))
}
