package services

import (
	"errors"
	"fmt"
)

// Code discriminates service failures for API consumers.
type Code string

const (
	CodeValidation        Code = "validation"
	CodeNotFound          Code = "not_found"
	CodeUserNotFound      Code = "user_not_found"
	CodeInviteNotFound    Code = "invite_not_found"
	CodeInviteExpired     Code = "invite_expired"
	CodeInviteUsed        Code = "invite_used"
	CodeConflict          Code = "conflict"
	CodeSelfInvite        Code = "self_invite"
	CodeAlreadyLinked     Code = "already_linked"
	CodeAlreadyPending    Code = "already_pending"
	CodeRoleMismatch      Code = "role_mismatch"
	CodeForbidden         Code = "forbidden"
	CodeUnauthorized      Code = "unauthorized"
	CodeInvalidTransition Code = "invalid_transition"
	CodeRateLimited       Code = "rate_limited"
	CodeInternal          Code = "internal"
)

type ServiceError struct {
	Status  int
	Code    Code
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

// AsServiceError unwraps err into a ServiceError if it carries one.
func AsServiceError(err error) (ServiceError, bool) {
	var serr ServiceError
	if errors.As(err, &serr) {
		return serr, true
	}
	return ServiceError{}, false
}

// HasCode reports whether err is a ServiceError with the given code.
func HasCode(err error, code Code) bool {
	serr, ok := AsServiceError(err)
	return ok && serr.Code == code
}

func ErrNotFound(msg string) error {
	return ServiceError{Status: 404, Code: CodeNotFound, Message: msg}
}

func ErrBadRequest(msg string) error {
	return ServiceError{Status: 400, Code: CodeValidation, Message: msg}
}

func ErrForbidden(msg string) error {
	return ServiceError{Status: 403, Code: CodeForbidden, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Status: 401, Code: CodeUnauthorized, Message: msg}
}

func ErrConflict(code Code, msg string) error {
	return ServiceError{Status: 409, Code: code, Message: msg}
}

func ErrGone(code Code, msg string) error {
	return ServiceError{Status: 410, Code: code, Message: msg}
}

func errWithCode(status int, code Code, msg string) error {
	return ServiceError{Status: status, Code: code, Message: msg}
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
