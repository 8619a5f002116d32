package models

import "fmt"

// Step is the wizard position. Only StepDataConfirmation..StepCodeVerification are valid.
type Step int

const (
	StepDataConfirmation Step = 1
	StepDocumentUpload   Step = 2
	StepCodeVerification Step = 3
)

// FirstStep and LastStep bound the wizard.
const (
	FirstStep = StepDataConfirmation
	LastStep  = StepCodeVerification
)

func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string {
	switch s {
	case StepDataConfirmation:
		return "data-confirmation"
	case StepDocumentUpload:
		return "document-upload"
	case StepCodeVerification:
		return "code-verification"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}
