package backend

import (
	"encoding/json"
	"strings"
)

// Operation names as the backend knows them.
const (
	OpValidateRegister         = "ValidateRegister"
	OpSaveIdentityDocument     = "SaveIdentityDocument"
	OpRequestOTPForTransaction = "RequestOTPForTransaction"
	OpConfirmAccountRegister   = "ConfirmAccountRegister"
)

// DataNotRequired is the envelope data that marks an OTP request as bypassed.
const DataNotRequired = "NOT_REQUIRED"

// Envelope is the reply shape shared by every backend operation.
type Envelope struct {
	Success bool            `json:"Success"`
	Message string          `json:"Message"`
	Data    json.RawMessage `json:"Data,omitempty"`
}

// DataString returns Data when it is a JSON string, or "".
func (e *Envelope) DataString() string {
	if e == nil || len(e.Data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err != nil {
		return ""
	}
	return s
}

// DecodeData unmarshals Data into v. Empty or null data leaves v untouched.
func (e *Envelope) DecodeData(v any) error {
	if e == nil || len(e.Data) == 0 || strings.TrimSpace(string(e.Data)) == "null" {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// ValidateRegisterRequest carries the host form fields plus the campaign.
type ValidateRegisterRequest struct {
	User map[string]string `json:"user"`
}

// File is one document image as the backend stores it.
type File struct {
	FileID     string  `json:"FileId"`
	FileName   string  `json:"FileName"`
	FileType   string  `json:"FileType"`
	FileData   *string `json:"FileData"`
	FileStream string  `json:"FileStream"`
}

type SaveIdentityDocumentRequest struct {
	UserID string `json:"userId"`
	Files  []File `json:"files"`
}

type OTPChallenge struct {
	TransactionID string `json:"TransactionId"`
	Code          string `json:"Code"`
	Purpose       string `json:"Purpose"`
}

type RequestOTPRequest struct {
	UserID string       `json:"userId"`
	OTP    OTPChallenge `json:"otp"`
}

type OTPConfirmation struct {
	TransactionID string `json:"TransactionId"`
	CodeMail      string `json:"CodeMail"`
	CodeSms       string `json:"CodeSms"`
	Purpose       string `json:"Purpose"`
}

type ConfirmAccountRegisterRequest struct {
	UserID string          `json:"userId"`
	OTP    OTPConfirmation `json:"otp"`
}
