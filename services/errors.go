package services

import (
	"errors"
	"net/http"
)

// Workflow error codes. The UI switches on the code, not the message;
// "already_claimed" in particular tells the queue view to refresh instead of
// treating the failure as fatal.
const (
	CodeValidation     = "validation_error"
	CodePermission     = "permission_error"
	CodeNotFound       = "not_found"
	CodeInvalidState   = "invalid_state"
	CodeAlreadyClaimed = "already_claimed"
)

// WorkflowError is the structured result every workflow operation returns on
// failure. Store connectivity problems are not WorkflowErrors; controllers
// surface those as a generic 500.
type WorkflowError struct {
	Code    string
	Message string
}

func (e *WorkflowError) Error() string {
	return e.Message
}

// HTTPStatus maps the error code to the status the API responds with.
func (e *WorkflowError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodePermission:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidState, CodeAlreadyClaimed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string) *WorkflowError {
	return &WorkflowError{Code: CodeValidation, Message: message}
}

func NewPermissionError(message string) *WorkflowError {
	return &WorkflowError{Code: CodePermission, Message: message}
}

func NewNotFoundError(message string) *WorkflowError {
	return &WorkflowError{Code: CodeNotFound, Message: message}
}

func NewInvalidStateError(message string) *WorkflowError {
	return &WorkflowError{Code: CodeInvalidState, Message: message}
}

// NewAlreadyClaimedError is a specialization of invalid-state surfaced
// distinctly so a losing coach knows someone else won the claim.
func NewAlreadyClaimedError(message string) *WorkflowError {
	return &WorkflowError{Code: CodeAlreadyClaimed, Message: message}
}

// AsWorkflowError unwraps err into a *WorkflowError if it is one.
func AsWorkflowError(err error) (*WorkflowError, bool) {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr, true
	}
	return nil, false
}

// IsCode reports whether err is a WorkflowError carrying the given code.
func IsCode(err error, code string) bool {
	wfErr, ok := AsWorkflowError(err)
	return ok && wfErr.Code == code
}
