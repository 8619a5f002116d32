package service

import (
	"errors"

	dErrors "enroll/pkg/domain-errors"
)

var errBackendRequired = errors.New("backend is required")

// ErrConfirmationDeclined is returned when the user does not acknowledge the
// data; nothing is sent and the session is unchanged.
var ErrConfirmationDeclined = dErrors.New(dErrors.CodeBadRequest, "registration data was not confirmed")

// User-visible fallbacks used when the backend gives no message or cannot be reached.
const (
	msgValidateFailed     = "Could not validate the registration data"
	msgValidateTransport  = "Connection error while validating user data"
	msgBlockedState       = "Your account is in state: "
	msgUserIDMissing      = "User id not available"
	msgImagesIncomplete   = "Both document images are required"
	msgSaveFailed         = "Could not save the documents"
	msgSaveTransport      = "Connection error while saving documents"
	msgUserDataMissing    = "User data not available"
	msgRequestFailed      = "Could not request the verification codes"
	msgRequestTransport   = "Connection error while requesting codes"
	msgThrottled          = "Too many code requests, try again later"
	msgTransactionMissing = "Transaction id not available"
	msgCodesIncomplete    = "Enter both complete codes (6 digits)"
	msgConfirmFailed      = "Incorrect code, try again"
	msgConfirmTransport   = "Connection error while confirming codes"
	msgActivated          = "Account activated successfully"
	msgCompletedNoOTP     = "Registration completed successfully"
	msgResent             = "Codes resent successfully"
	msgResendFailed       = "Could not resend the codes"
	msgInvalidReply       = "Unexpected reply from the server"
)
