package domain

import "fmt"

// AppError is a failure reported inside a successful (HTTP 200) payload as
// {code, msg}, as opposed to a DomainError which maps to a transport status.
//
// Only token issuance during sign-in produces one. New code paths should
// return a DomainError instead.
type AppError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("app error %d: %s", e.Code, e.Message)
}

// ErrAppTokenIssue is the soft failure returned when a token cannot be issued
// for an authenticated user.
var ErrAppTokenIssue = &AppError{Code: -1, Message: "user login failed, generate token error"}
