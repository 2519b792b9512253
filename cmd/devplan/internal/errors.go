package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitValidationFailed indicates the plan failed validation
	ExitValidationFailed = 2
	// ExitApplyHalted indicates an apply or rollback halted partway
	ExitApplyHalted = 3
	// ExitSnapshotNotFound indicates the requested snapshot does not exist
	ExitSnapshotNotFound = 4
	// ExitConfigError indicates a configuration error
	ExitConfigError = 10
	// ExitDatabaseError indicates a snapshot database error
	ExitDatabaseError = 12
)

// CLIError represents a CLI-specific error with an exit code
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLIError with the given code and message
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
	}
}

// WrapCLIError creates a new CLIError wrapping an existing error
func WrapCLIError(code int, message string, err error) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// HandleError handles an error and returns the appropriate exit code.
// It also prints the error message to the command's error output.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Explicit CLI errors carry their own exit code.
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil {
			verboseFlag := cmd.Flag("verbose")
			if verboseFlag != nil && verboseFlag.Changed {
				cmd.PrintErrln("Cause:", cliErr.Cause)
			}
		}
		return cliErr.Code
	}

	// Coded errors from the engine, store, and config map onto the
	// documented exit codes. This runs before the bare-cancellation
	// check: a halted apply wraps ctx.Err() and must still exit 3.
	if code, ok := types.CodeOf(err); ok {
		cmd.PrintErrln("Error:", err.Error())
		return mapErrorCode(code)
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitError
	}

	// Generic error
	cmd.PrintErrln("Error:", err)
	return ExitError
}

// mapErrorCode maps devplan error codes to CLI exit codes
func mapErrorCode(code types.ErrorCode) int {
	switch code {
	case types.VALIDATION_FAILED:
		return ExitValidationFailed
	case types.APPLY_HALTED,
		types.ROLLBACK_HALTED,
		types.FILE_WRITE_FAILED:
		return ExitApplyHalted
	case types.SNAPSHOT_NOT_FOUND:
		return ExitSnapshotNotFound
	case types.CONFIG_LOAD_FAILED,
		types.CONFIG_PARSE_FAILED,
		types.CONFIG_VALIDATION_FAILED:
		return ExitConfigError
	case types.DB_OPEN_FAILED,
		types.DB_MIGRATION_FAILED,
		types.DB_QUERY_FAILED,
		types.SNAPSHOT_CONFLICT:
		return ExitDatabaseError
	default:
		return ExitError
	}
}

// IsVerbose checks if verbose mode is enabled via environment variable or flag.
// This is used for panic recovery to determine if stack traces should be shown.
func IsVerbose() bool {
	if os.Getenv("DEVPLAN_VERBOSE") != "" {
		return true
	}

	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}

	return false
}
