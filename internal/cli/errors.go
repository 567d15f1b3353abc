// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/jeranaias/storyexport/internal/config"
	"github.com/jeranaias/storyexport/internal/export"
	"github.com/jeranaias/storyexport/internal/storage"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNotFoundError indicates a story, collection or user was not found
	ExitNotFoundError = 7
)

// ExitError carries a specific exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(err error) error {
	return &ExitError{Code: ExitUsageError, Err: err}
}

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}

	var verrs config.ValidateErrors
	switch {
	case errors.As(err, &verrs):
		return ExitConfigError
	case errors.Is(err, export.ErrUnsupportedFormat), errors.Is(err, storage.ErrInvalid):
		return ExitUsageError
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, export.ErrEmptyBatch):
		return ExitNotFoundError
	}
	return ExitGeneralError
}
