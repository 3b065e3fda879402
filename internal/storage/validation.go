// Package storage persists trained classifiers and their training baselines.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Praneeth9346/CreditRisk/internal/service"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidArtifact = errors.New("invalid artifacts")
)

// validateContext ensures the context is usable.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return ctx.Err()
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateArtifacts ensures a pair is complete and consistent before it is written.
func validateArtifacts(a *service.Artifacts) error {
	if a == nil {
		return fmt.Errorf("%w: artifacts", ErrNilParameter)
	}
	if a.Classifier == nil {
		return fmt.Errorf("%w: missing classifier", ErrInvalidArtifact)
	}
	if a.Baseline == nil {
		return fmt.Errorf("%w: missing baseline", ErrInvalidArtifact)
	}
	if err := a.Classifier.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	rows, cols := a.Baseline.Dims()
	if rows == 0 {
		return fmt.Errorf("%w: empty baseline", ErrInvalidArtifact)
	}
	if cols != len(a.Classifier.Schema) {
		return fmt.Errorf("%w: baseline has %d columns for %d features", ErrInvalidArtifact, cols, len(a.Classifier.Schema))
	}
	return nil
}
