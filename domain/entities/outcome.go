package entities

import (
	"errors"
	"fmt"
	"time"
)

// Stage is a step of the solve pipeline
type Stage string

const (
	StageNavigate   Stage = "navigate"
	StageDetect     Stage = "detect"
	StageCapture    Stage = "capture"
	StageTranscribe Stage = "transcribe"
	StageSubmit     Stage = "submit"
	StageObserve    Stage = "observe"
)

// OutcomeStatus represents how a run ended
type OutcomeStatus string

const (
	OutcomeDone    OutcomeStatus = "done"
	OutcomeAborted OutcomeStatus = "aborted"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Failure categories. StageError unwraps to one of these.
var (
	ErrNavigation    = errors.New("navigation failed")
	ErrDetection     = errors.New("detection failed")
	ErrCapture       = errors.New("capture failed")
	ErrTranscription = errors.New("transcription failed")
	ErrSubmission    = errors.New("submission failed")
	ErrUnexpected    = errors.New("unexpected error")
)

// CategoryFor - returns the failure category of a stage
func CategoryFor(stage Stage) error {
	switch stage {
	case StageNavigate:
		return ErrNavigation
	case StageDetect:
		return ErrDetection
	case StageCapture:
		return ErrCapture
	case StageTranscribe:
		return ErrTranscription
	case StageSubmit:
		return ErrSubmission
	default:
		return ErrUnexpected
	}
}

// StageError ties an underlying error to the pipeline stage that raised it
type StageError struct {
	Stage    Stage
	Category error
	Err      error
}

// NewStageError - wraps err with the category of stage
func NewStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Category: CategoryFor(stage), Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

// Unwrap exposes both the category and the cause to errors.Is / errors.As
func (e *StageError) Unwrap() []error {
	return []error{e.Category, e.Err}
}

// Outcome is the result of one run
type Outcome struct {
	Status     OutcomeStatus `json:"status"`
	Stage      Stage         `json:"stage,omitempty"`
	Answer     string        `json:"answer,omitempty"`
	Err        error         `json:"-"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Succeeded - reports whether the run completed without failure
func (o Outcome) Succeeded() bool {
	return o.Status != OutcomeFailed
}

// Duration - returns wall time of the run
func (o Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}
