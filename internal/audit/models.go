package audit

import "time"

// EventType names a registration milestone worth auditing.
type EventType string

const (
	EventDataValidated   EventType = "registration.data_validated"
	EventAccountBlocked  EventType = "registration.account_blocked"
	EventDocumentsSaved  EventType = "registration.documents_saved"
	EventOTPIssued       EventType = "registration.otp_issued"
	EventOTPRejected     EventType = "registration.otp_rejected"
	EventOTPThrottled    EventType = "registration.otp_throttled"
	EventCompleted       EventType = "registration.completed"
	EventValidationEntry EventType = "registration.validation_reentry"
	EventReset           EventType = "registration.reset"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. It never carries
// document images or OTP codes.
type Event struct {
	Timestamp time.Time
	SessionID string
	UserID    string
	Action    EventType
	Reason    string
	RequestID string
}
