package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stashworks/appraise/internal/service"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRun   = errors.New("invalid run record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRun validates a run record before persisting it.
func validateRun(run *service.RunRecord) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if run.RunAt.IsZero() {
		return fmt.Errorf("%w: missing run time", ErrInvalidRun)
	}
	if run.TotalItems < 0 || run.Priced < 0 || run.Unpriced < 0 {
		return fmt.Errorf("%w: negative counts", ErrInvalidRun)
	}
	if run.Priced+run.Unpriced != run.TotalItems {
		return fmt.Errorf("%w: counts do not sum to total", ErrInvalidRun)
	}
	return nil
}
