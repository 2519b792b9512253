package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorCode_Constants(t *testing.T) {
	tests := []struct {
		name     string
		code     ErrorCode
		expected string
	}{
		// Plan document errors
		{"PLAN_PARSE_FAILED", PLAN_PARSE_FAILED, "PLAN_PARSE_FAILED"},
		{"PLAN_SCHEMA_INVALID", PLAN_SCHEMA_INVALID, "PLAN_SCHEMA_INVALID"},
		{"PLAN_VERSION_UNSUPPORTED", PLAN_VERSION_UNSUPPORTED, "PLAN_VERSION_UNSUPPORTED"},
		{"PHASE_CYCLE", PHASE_CYCLE, "PHASE_CYCLE"},

		// Snapshot errors
		{"SNAPSHOT_NOT_FOUND", SNAPSHOT_NOT_FOUND, "SNAPSHOT_NOT_FOUND"},
		{"SNAPSHOT_CONFLICT", SNAPSHOT_CONFLICT, "SNAPSHOT_CONFLICT"},
		{"SNAPSHOT_CAPTURE_FAILED", SNAPSHOT_CAPTURE_FAILED, "SNAPSHOT_CAPTURE_FAILED"},

		// Filesystem errors
		{"FILE_NOT_FOUND", FILE_NOT_FOUND, "FILE_NOT_FOUND"},
		{"FILE_PERMISSION_DENIED", FILE_PERMISSION_DENIED, "FILE_PERMISSION_DENIED"},
		{"FILE_IO_ERROR", FILE_IO_ERROR, "FILE_IO_ERROR"},
		{"FILE_WRITE_FAILED", FILE_WRITE_FAILED, "FILE_WRITE_FAILED"},
		{"PATH_INVALID", PATH_INVALID, "PATH_INVALID"},

		// Execution errors
		{"APPLY_HALTED", APPLY_HALTED, "APPLY_HALTED"},
		{"ENGINE_BUSY", ENGINE_BUSY, "ENGINE_BUSY"},
		{"ROLLBACK_HALTED", ROLLBACK_HALTED, "ROLLBACK_HALTED"},

		// Database errors
		{"DB_OPEN_FAILED", DB_OPEN_FAILED, "DB_OPEN_FAILED"},
		{"DB_MIGRATION_FAILED", DB_MIGRATION_FAILED, "DB_MIGRATION_FAILED"},
		{"DB_QUERY_FAILED", DB_QUERY_FAILED, "DB_QUERY_FAILED"},

		// Configuration errors
		{"CONFIG_LOAD_FAILED", CONFIG_LOAD_FAILED, "CONFIG_LOAD_FAILED"},
		{"CONFIG_PARSE_FAILED", CONFIG_PARSE_FAILED, "CONFIG_PARSE_FAILED"},
		{"CONFIG_VALIDATION_FAILED", CONFIG_VALIDATION_FAILED, "CONFIG_VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.code) != tt.expected {
				t.Errorf("ErrorCode = %v, want %v", tt.code, tt.expected)
			}
		})
	}
}

func TestDevplanError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DevplanError
		contains []string
	}{
		{
			name: "simple error without cause",
			err:  NewError(CONFIG_LOAD_FAILED, "failed to load configuration"),
			contains: []string{
				"[CONFIG_LOAD_FAILED]",
				"failed to load configuration",
			},
		},
		{
			name: "error with cause",
			err:  WrapError(DB_QUERY_FAILED, "query execution failed", errors.New("database is locked")),
			contains: []string{
				"[DB_QUERY_FAILED]",
				"query execution failed",
				"database is locked",
			},
		},
		{
			name: "retryable error",
			err:  NewRetryableError(DB_QUERY_FAILED, "busy timeout exceeded"),
			contains: []string{
				"[DB_QUERY_FAILED]",
				"busy timeout exceeded",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := tt.err.Error()
			for _, substring := range tt.contains {
				if !strings.Contains(errMsg, substring) {
					t.Errorf("Error() = %v, want to contain %v", errMsg, substring)
				}
			}
		})
	}
}

func TestDevplanError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	wrapped := WrapError(FILE_WRITE_FAILED, "write failed", cause)

	if got := wrapped.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is(wrapped, cause) = false, want true")
	}

	plain := NewError(PLAN_PARSE_FAILED, "parse error")
	if got := plain.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestDevplanError_Is(t *testing.T) {
	err := NewError(SNAPSHOT_NOT_FOUND, "snapshot missing")

	if !errors.Is(err, NewError(SNAPSHOT_NOT_FOUND, "different message")) {
		t.Error("errors with the same code should match")
	}
	if errors.Is(err, NewError(SNAPSHOT_CONFLICT, "snapshot missing")) {
		t.Error("errors with different codes should not match")
	}
	if errors.Is(err, errors.New("snapshot missing")) {
		t.Error("plain errors should not match a coded error")
	}
}

func TestDevplanError_IsThroughWrapping(t *testing.T) {
	inner := NewError(FILE_PERMISSION_DENIED, "cannot open file")
	outer := fmt.Errorf("during apply: %w", inner)

	if !errors.Is(outer, NewError(FILE_PERMISSION_DENIED, "")) {
		t.Error("code match should survive fmt.Errorf wrapping")
	}

	var devplanErr *DevplanError
	if !errors.As(outer, &devplanErr) {
		t.Fatal("errors.As should find the DevplanError")
	}
	if devplanErr.Code != FILE_PERMISSION_DENIED {
		t.Errorf("Code = %v, want FILE_PERMISSION_DENIED", devplanErr.Code)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
		wantOK   bool
	}{
		{"direct coded error", NewError(DB_OPEN_FAILED, "open failed"), DB_OPEN_FAILED, true},
		{"wrapped coded error", fmt.Errorf("ctx: %w", NewError(PATH_INVALID, "bad path")), PATH_INVALID, true},
		{"plain error", errors.New("plain"), "", false},
		{"nil error", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := CodeOf(tt.err)
			if code != tt.wantCode || ok != tt.wantOK {
				t.Errorf("CodeOf() = (%v, %v), want (%v, %v)", code, ok, tt.wantCode, tt.wantOK)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := WrapError(SNAPSHOT_NOT_FOUND, "lookup failed", errors.New("no rows"))

	if !HasCode(err, SNAPSHOT_NOT_FOUND) {
		t.Error("HasCode should match the wrapping code")
	}
	if HasCode(err, DB_QUERY_FAILED) {
		t.Error("HasCode should not match a different code")
	}
	if HasCode(nil, SNAPSHOT_NOT_FOUND) {
		t.Error("HasCode(nil, ...) should be false")
	}
}

func TestDevplanError_Retryable(t *testing.T) {
	if NewError(DB_QUERY_FAILED, "x").Retryable {
		t.Error("NewError should produce non-retryable errors")
	}
	if !NewRetryableError(DB_QUERY_FAILED, "x").Retryable {
		t.Error("NewRetryableError should produce retryable errors")
	}
	if WrapError(DB_QUERY_FAILED, "x", errors.New("y")).Retryable {
		t.Error("WrapError should produce non-retryable errors")
	}
}
