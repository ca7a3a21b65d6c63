package core

import (
	"errors"
	"fmt"

	"desafioconcurso-go/internal/auth"
	"desafioconcurso-go/internal/db"
)

// Kind buckets a failure for user-facing presentation. Every external call
// site catches its own failures and surfaces one of these; nothing propagates
// to a global handler and nothing is retried automatically.
type Kind int

const (
	KindValidation Kind = iota
	KindAuth
	KindPermission
	KindPrecondition
	KindUnavailable
	KindUnknown
)

// Fixed user-facing messages for the non-validation kinds.
const (
	msgPermission  = "Check that you are logged in."
	msgInvalid     = "Check your input."
	msgUnavailable = "Service temporarily unavailable, try again."
	msgUnknown     = "Something went wrong."
)

// UserError pairs a failure with the message shown to the user. The wrapped
// cause stays available for logging.
type UserError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

// validationErr builds a pre-network validation failure.
func validationErr(message string) *UserError {
	return &UserError{Kind: KindValidation, Message: message}
}

// storageErr classifies a repository failure into the taxonomy.
func storageErr(err error) *UserError {
	switch {
	case errors.Is(err, db.ErrPermissionDenied):
		return &UserError{Kind: KindPermission, Message: msgPermission, Err: err}
	case errors.Is(err, db.ErrInvalidArgument):
		return &UserError{Kind: KindPrecondition, Message: msgInvalid, Err: err}
	case errors.Is(err, db.ErrUnavailable):
		return &UserError{Kind: KindUnavailable, Message: msgUnavailable, Err: err}
	default:
		return &UserError{Kind: KindUnknown, Message: msgUnknown, Err: err}
	}
}

// authErr maps a credential failure to its specific user-facing message.
func authErr(err error) *UserError {
	for _, sentinel := range []error{
		auth.ErrUserNotFound,
		auth.ErrWrongPassword,
		auth.ErrInvalidEmail,
		auth.ErrEmailInUse,
		auth.ErrWeakPassword,
	} {
		if errors.Is(err, sentinel) {
			return &UserError{Kind: KindAuth, Message: sentinel.Error(), Err: err}
		}
	}
	return &UserError{Kind: KindUnknown, Message: msgUnknown, Err: err}
}
