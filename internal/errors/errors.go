package errors

import "fmt"

// ErrorCode represents a Counsel error code.
type ErrorCode string

const (
	ErrNoInput           ErrorCode = "NO_INPUT"           // 400
	ErrFileRead          ErrorCode = "FILE_READ"          // 400
	ErrParse             ErrorCode = "PARSE"              // 400
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrMissingCredential ErrorCode = "MISSING_CREDENTIAL" // 401
	ErrUpstream          ErrorCode = "UPSTREAM"           // 502
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// CounselError represents a structured error with code, status, and details.
type CounselError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CounselError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNoInput creates a 400 error for when no input channel produced a payload.
func NewNoInput() *CounselError {
	return &CounselError{
		Code:    ErrNoInput,
		Status:  400,
		Message: "no input provided: pass JSON via --input-file, stdin, or positional arguments",
	}
}

// NewFileRead creates a 400 error for an unreadable input or prompt file.
func NewFileRead(path string, err error) *CounselError {
	return &CounselError{
		Code:    ErrFileRead,
		Status:  400,
		Message: fmt.Sprintf("could not read file %q: %v", path, err),
		Details: map[string]any{"path": path},
	}
}

// NewParse creates a 400 error for malformed JSON input.
// The preview is a bounded slice of the offending text for debuggability.
func NewParse(preview string, err error) *CounselError {
	return &CounselError{
		Code:    ErrParse,
		Status:  400,
		Message: fmt.Sprintf("invalid JSON input: %v (input: %s)", err, preview),
		Details: map[string]any{"preview": preview},
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CounselError {
	return &CounselError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewMissingCredential creates a 401 error for a missing credential variable.
func NewMissingCredential(envVar string) *CounselError {
	return &CounselError{
		Code:    ErrMissingCredential,
		Status:  401,
		Message: fmt.Sprintf("%s environment variable is not set", envVar),
		Details: map[string]any{"env_var": envVar},
	}
}

// NewUpstream creates a 502 error wrapping a reasoning-service failure.
// The original message is preserved behind a fixed prefix.
func NewUpstream(err error) *CounselError {
	msg := "reasoning service error"
	if err != nil {
		msg = fmt.Sprintf("reasoning service error: %v", err)
	}
	return &CounselError{
		Code:    ErrUpstream,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *CounselError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CounselError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a CounselError with the given code.
func Is(err error, code ErrorCode) bool {
	if cErr, ok := err.(*CounselError); ok {
		return cErr.Code == code
	}
	return false
}
