package contract

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrMalformedOutput = errors.New("model output is malformed")
	ErrNoData          = errors.New("no records found")
	ErrUnknownAgent    = errors.New("unknown agent type")
	ErrPromptMissing   = errors.New("required prompt is missing")
)

// MalformedOutputError keeps the raw model response for inspection when
// structured parsing fails. It matches ErrMalformedOutput under errors.Is.
type MalformedOutputError struct {
	Detail string
	Raw    string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMalformedOutput, e.Detail)
}

func (e *MalformedOutputError) Unwrap() error {
	return ErrMalformedOutput
}

// StepError records a failed workflow step without aborting the run.
type StepError struct {
	Agent   AgentType `json:"agent,omitempty"`
	Message string    `json:"message"`
}

func (e *StepError) Error() string {
	return e.Message
}

func (r DataCollectionRequest) Validate() error {
	if r.Sector == "" {
		return fmt.Errorf("%w: sector is required for data collection", ErrValidation)
	}
	return nil
}

func (r ReportRequest) Validate() error {
	if r.Sector == "" {
		return fmt.Errorf("%w: sector is required for report generation", ErrValidation)
	}
	return nil
}

func (r QARequest) Validate() error {
	if r.Question == "" {
		return fmt.Errorf("%w: question is required", ErrValidation)
	}
	return nil
}
