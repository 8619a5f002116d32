package models

import "fmt"

// Account state names reported by the backend that halt the flow.
const (
	StatePendingValidation = "En Validación"
	StateBlocked           = "Bloqueado"
	StateDeleted           = "Eliminado"
)

var blockedStates = map[string]struct{}{
	StatePendingValidation: {},
	StateBlocked:           {},
	StateDeleted:           {},
}

// RegisterState is the account state returned by data validation.
type RegisterState struct {
	UserID    string         `json:"UserId"`
	StateName string         `json:"StateName"`
	Raw       map[string]any `json:"-"`
}

// IsBlocked reports whether the state must halt registration and send the
// user back to sign-in.
func (r *RegisterState) IsBlocked() bool {
	if r == nil {
		return false
	}
	return IsBlockedState(r.StateName)
}

// IsBlockedState reports whether name is one of the blocking account states.
func IsBlockedState(name string) bool {
	_, ok := blockedStates[name]
	return ok
}

// BlockedAccountError carries the blocking state name of a rejected validation.
type BlockedAccountError struct {
	StateName string
	Message   string
}

func (e *BlockedAccountError) Error() string {
	return fmt.Sprintf("account state %q blocks registration", e.StateName)
}
