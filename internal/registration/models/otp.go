package models

import (
	"time"

	id "enroll/pkg/domain"
)

// PurposeRegistration is the fixed OTP purpose of this flow.
const PurposeRegistration = "Registration"

// OTPStatus tracks one challenge. Confirmed, Failed and NotRequired are terminal.
type OTPStatus string

const (
	OTPRequested   OTPStatus = "requested"
	OTPConfirmed   OTPStatus = "confirmed"
	OTPFailed      OTPStatus = "failed"
	OTPNotRequired OTPStatus = "not_required"
)

// OTPTransaction is one OTP challenge correlated by TransactionID.
type OTPTransaction struct {
	TransactionID    id.TransactionID
	Purpose          string
	ExpiresInSeconds int
	EmailCode        string
	PhoneCode        string
	Status           OTPStatus
	IssuedAt         time.Time
}

// NewOTPTransaction returns a freshly requested challenge.
func NewOTPTransaction(txID id.TransactionID, expiresIn int, now time.Time) *OTPTransaction {
	return &OTPTransaction{
		TransactionID:    txID,
		Purpose:          PurposeRegistration,
		ExpiresInSeconds: expiresIn,
		Status:           OTPRequested,
		IssuedAt:         now,
	}
}

// OTPOutcomeKind distinguishes the three results of an OTP request.
type OTPOutcomeKind string

const (
	OTPIssued          OTPOutcomeKind = "issued"
	OTPOutcomeSkipped  OTPOutcomeKind = "not_required"
	OTPOutcomeRejected OTPOutcomeKind = "rejected"
)

// OTPOutcome is the result of requesting (or re-requesting) an OTP.
// TransactionID is set only for OTPIssued.
type OTPOutcome struct {
	Kind          OTPOutcomeKind
	TransactionID id.TransactionID
	Message       string
}
