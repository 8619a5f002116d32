package models

import (
	"strings"
	"time"

	"enroll/internal/registration/codeinput"
	"enroll/internal/registration/countdown"
	id "enroll/pkg/domain"
)

// View is the presentation the surrounding UI should show.
type View string

const (
	ViewHostForm View = "host_form"
	ViewWizard   View = "wizard"
	ViewSignIn   View = "sign_in"
)

// NoticeKind classifies a user-visible message.
type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is one user-visible message waiting to be shown.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// RedirectTarget names a navigation destination.
type RedirectTarget string

const RedirectSignIn RedirectTarget = "sign_in"

// Redirect is a pending navigation the UI performs once Due has passed.
type Redirect struct {
	Target RedirectTarget `json:"target"`
	Due    time.Time      `json:"due"`
}

// DefaultDocumentType is used when an existing account carries none.
const DefaultDocumentType = "CC"

// ExistingAccount is the account record handed over by the sign-in flow when
// a user must finish validating an account that already exists.
type ExistingAccount struct {
	UserID       string `json:"UserId"`
	Document     string `json:"Document"`
	DocumentType string `json:"DocumentType"`
	Mail         string `json:"Mail"`
	CellPhone    string `json:"CellPhone"`
	Names        string `json:"Names"`
	BusinessName string `json:"BusinessName"`
	Address      string `json:"Address"`
	Gender       string `json:"Gender"`
	Personalize1 string `json:"Personalize1"`
	BirthDate    string `json:"BirthDate"`
}

// SegmentFor derives the form segment from the account's Personalize1 flag.
func SegmentFor(personalize1 string) Segment {
	if strings.Contains(strings.ToLower(personalize1), "off") {
		return SegmentSalesForce
	}
	return SegmentCustomers
}

// UserData converts the account into pre-filled form data.
func (a ExistingAccount) UserData() *UserData {
	docType := a.DocumentType
	if docType == "" {
		docType = DefaultDocumentType
	}
	return &UserData{
		Document:     a.Document,
		DocumentType: docType,
		Mail:         a.Mail,
		ConfirmMail:  a.Mail,
		CellPhone:    a.CellPhone,
		Names:        a.Names,
		BusinessName: a.BusinessName,
		Address:      a.Address,
		Gender:       a.Gender,
		Segment:      SegmentFor(a.Personalize1),
		Personalize1: a.Personalize1,
		BirthDate:    a.BirthDate,
	}
}

// Session is one registration attempt. It is not safe for concurrent use;
// callers serialize access per session.
type Session struct {
	ID             id.SessionID
	Step           Step
	UserData       *UserData
	UserID         string
	RegisterState  *RegisterState
	ValidationMode bool
	Documents      DocumentCapture
	OTP            *OTPTransaction

	EmailCode *codeinput.Field
	PhoneCode *codeinput.Field
	Countdown *countdown.Countdown

	View View
	// Form is the host form as last submitted, or pre-filled on re-entry.
	Form      *UserData
	Notices   []Notice
	Redirect  *Redirect
	Completed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession returns a session at step 1 showing the host form. A nil
// countdown gets a default one driven by the system clock.
func NewSession(sessionID id.SessionID, now time.Time, cd *countdown.Countdown) *Session {
	if cd == nil {
		cd = countdown.New()
	}
	return &Session{
		ID:        sessionID,
		Step:      FirstStep,
		EmailCode: codeinput.New(),
		PhoneCode: codeinput.New(),
		Countdown: cd,
		View:      ViewHostForm,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasUser reports whether data validation assigned a user id.
func (s *Session) HasUser() bool {
	return s.UserID != ""
}

// TransactionID returns the active OTP transaction id, if any.
func (s *Session) TransactionID() (id.TransactionID, bool) {
	if s.OTP == nil || s.OTP.TransactionID.IsNil() {
		return id.TransactionID{}, false
	}
	return s.OTP.TransactionID, true
}

// ClearCodes empties both code fields and their error marks.
func (s *Session) ClearCodes() {
	s.EmailCode.Clear()
	s.PhoneCode.Clear()
}

// ClearAccount forgets the account the session was registering: user data,
// user id and any OTP transaction. The host form and validation mode stay.
func (s *Session) ClearAccount() {
	s.UserData = nil
	s.UserID = ""
	s.OTP = nil
}

// ClearRegistrationData drops everything tied to the account being
// registered. Documents and presentation state are kept.
func (s *Session) ClearRegistrationData() {
	s.UserData = nil
	s.UserID = ""
	s.RegisterState = nil
	s.ValidationMode = false
	s.OTP = nil
	s.Form = nil
}

// Complete marks the account as activated: registration data and documents
// are cleared, the countdown stops and the wizard rewinds to step 1.
func (s *Session) Complete(now time.Time) {
	s.Countdown.Stop()
	s.ClearRegistrationData()
	s.Documents.Clear()
	s.ClearCodes()
	s.Step = FirstStep
	s.Completed = true
	s.Touch(now)
}

// Reset returns the session to its initial state.
func (s *Session) Reset(now time.Time) {
	s.Countdown.Stop()
	s.ClearRegistrationData()
	s.Documents.Clear()
	s.ClearCodes()
	s.Step = FirstStep
	s.View = ViewHostForm
	s.Notices = nil
	s.Redirect = nil
	s.Completed = false
	s.Touch(now)
}

// Teardown releases the session's background resources.
func (s *Session) Teardown() {
	s.Countdown.Stop()
}

// Notify queues a user-visible message.
func (s *Session) Notify(kind NoticeKind, message string, now time.Time) {
	s.Notices = append(s.Notices, Notice{Kind: kind, Message: message, At: now})
}

// DrainNotices returns and clears the pending notices.
func (s *Session) DrainNotices() []Notice {
	out := s.Notices
	s.Notices = nil
	return out
}

// RedirectTo schedules navigation to target after delay.
func (s *Session) RedirectTo(target RedirectTarget, now time.Time, delay time.Duration) {
	s.Redirect = &Redirect{Target: target, Due: now.Add(delay)}
	if target == RedirectSignIn {
		s.View = ViewSignIn
	}
}

// Touch records activity.
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
}
