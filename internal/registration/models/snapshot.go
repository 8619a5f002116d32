package models

// Snapshot is a read-only view of a session for the presentation layer. It
// never includes document bytes or entered codes.
type Snapshot struct {
	ID             string          `json:"id"`
	Step           Step            `json:"step"`
	StepName       string          `json:"step_name"`
	View           View            `json:"view"`
	ValidationMode bool            `json:"validation_mode"`
	HasUser        bool            `json:"has_user"`
	RegisterState  string          `json:"register_state,omitempty"`
	Form           *UserData       `json:"form,omitempty"`
	Documents      DocumentsStatus `json:"documents"`
	OTP            *OTPStatusView  `json:"otp,omitempty"`
	Codes          CodesStatus     `json:"codes"`
	Countdown      CountdownStatus `json:"countdown"`
	Notices        []Notice        `json:"notices"`
	Redirect       *Redirect       `json:"redirect,omitempty"`
	Completed      bool            `json:"completed"`
}

type DocumentsStatus struct {
	Front bool `json:"front"`
	Back  bool `json:"back"`
}

type OTPStatusView struct {
	TransactionID string    `json:"transaction_id"`
	Status        OTPStatus `json:"status"`
}

type CodesStatus struct {
	EmailFilled  int  `json:"email_filled"`
	PhoneFilled  int  `json:"phone_filled"`
	EmailErrored bool `json:"email_errored"`
	PhoneErrored bool `json:"phone_errored"`
}

type CountdownStatus struct {
	Remaining       int  `json:"remaining"`
	Active          bool `json:"active"`
	ResendAvailable bool `json:"resend_available"`
}

// Snapshot captures the session and drains its pending notices.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:             s.ID.String(),
		Step:           s.Step,
		StepName:       s.Step.String(),
		View:           s.View,
		ValidationMode: s.ValidationMode,
		HasUser:        s.HasUser(),
		Form:           s.Form,
		Documents: DocumentsStatus{
			Front: s.Documents.Front != nil,
			Back:  s.Documents.Back != nil,
		},
		Codes: CodesStatus{
			EmailFilled:  len(s.EmailCode.Assemble()),
			PhoneFilled:  len(s.PhoneCode.Assemble()),
			EmailErrored: s.EmailCode.Errored(),
			PhoneErrored: s.PhoneCode.Errored(),
		},
		Countdown: CountdownStatus{
			Remaining:       s.Countdown.Remaining(),
			Active:          s.Countdown.Active(),
			ResendAvailable: s.Countdown.ResendAvailable(),
		},
		Notices:   s.DrainNotices(),
		Redirect:  s.Redirect,
		Completed: s.Completed,
	}
	if s.RegisterState != nil {
		snap.RegisterState = s.RegisterState.StateName
	}
	if s.OTP != nil {
		snap.OTP = &OTPStatusView{TransactionID: s.OTP.TransactionID.String(), Status: s.OTP.Status}
	}
	if snap.Notices == nil {
		snap.Notices = []Notice{}
	}
	return snap
}
