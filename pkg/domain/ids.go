// Package domain holds typed identifiers shared across the registration flow.
package domain

import (
	"github.com/google/uuid"

	dErrors "enroll/pkg/domain-errors"
)

// SessionID identifies one registration attempt held by this service.
type SessionID uuid.UUID

// TransactionID correlates the request, confirm and resend calls of one OTP challenge.
type TransactionID uuid.UUID

// FileID identifies an uploaded identity document image on the backend.
type FileID uuid.UUID

func (id SessionID) String() string     { return uuid.UUID(id).String() }
func (id TransactionID) String() string { return uuid.UUID(id).String() }
func (id FileID) String() string        { return uuid.UUID(id).String() }

func (id SessionID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TransactionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewSessionID returns a random (v4) session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewTransactionID returns a random (v4) transaction identifier.
func NewTransactionID() TransactionID { return TransactionID(uuid.New()) }

// NewFileID returns a random (v4) file identifier.
func NewFileID() FileID { return FileID(uuid.New()) }

// ParseSessionID parses a session id received at a trust boundary.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session")
	return SessionID(u), err
}

// ParseTransactionID parses a transaction id.
func ParseTransactionID(s string) (TransactionID, error) {
	u, err := parseUUID(s, "transaction")
	return TransactionID(u), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be nil")
	}
	return u, nil
}
