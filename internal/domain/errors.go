package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrorCodeTransient         ErrorCode = "TRANSIENT"
	ErrorCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrorCodeUnauthenticated   ErrorCode = "UNAUTHENTICATED"
	ErrorCodeDuplicateTeamRole ErrorCode = "DUPLICATE_TEAM_ROLE"
	ErrorCodeInvalidRole       ErrorCode = "INVALID_ROLE"
	ErrorCodeBadRequest        ErrorCode = "BAD_REQUEST"
)

type DomainError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Err }

func NotFound(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeNotFound, Message: msg, HTTPStatus: http.StatusNotFound}
}

func Unauthorized(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeUnauthorized, Message: msg, HTTPStatus: http.StatusForbidden}
}

func BadRequest(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeBadRequest, Message: msg, HTTPStatus: http.StatusBadRequest}
}

// Transient wraps a backend failure. Domain errors pass through untouched so a
// NOT_FOUND coming out of a repository is never turned into something retryable.
func Transient(msg string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		msg += " (timeout)"
	}
	return &DomainError{
		Code:       ErrorCodeTransient,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRetryable reports whether the caller may retry the operation that produced err.
func IsRetryable(err error) bool {
	return CodeOf(err) == ErrorCodeTransient
}

func InvalidRole(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeInvalidRole, Message: msg, HTTPStatus: http.StatusBadRequest}
}
