// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Pipeline errors.
	ErrDataGeneration              = errors.New("data generation failed")
	ErrInsufficientMinoritySamples = errors.New("insufficient minority samples")
	ErrTraining                    = errors.New("training failed")

	// Model store errors.
	ErrArtifactMissing = errors.New("model artifact missing")
	ErrArtifactCorrupt = errors.New("model artifact corrupt")

	// Inference errors.
	ErrSchemaMismatch   = errors.New("feature schema mismatch")
	ErrInvalidApplicant = errors.New("invalid applicant")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// NeedsRetrain reports whether err means the persisted model cannot be used
// and a fresh training run may fix it.
func NeedsRetrain(err error) bool {
	return errors.Is(err, ErrArtifactMissing) || errors.Is(err, ErrArtifactCorrupt)
}
