package serviceerr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeUnknown        Code = "unknown"
	CodeInvalidRequest Code = "invalid_request"
	CodeNotFound       Code = "not_found"
	CodeConflict       Code = "conflict"
	CodeUnexpected     Code = "unexpected"
	CodeUserError      Code = "user_error"

	// Local consistency codes. These never reach the remote.
	CodeStillProcessing Code = "still_processing"
	CodeNotLoggedIn     Code = "not_logged_in"
	CodeCartNotReady    Code = "cart_not_ready"
	CodeCartFull        Code = "cart_full"
	CodeLimitExceeded   Code = "limit_exceeded"
	CodeInvalidQuantity Code = "invalid_quantity"
	CodeEmptyCart       Code = "empty_cart"
)

func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidRequest, CodeInvalidQuantity, CodeEmptyCart:
		return http.StatusBadRequest
	case CodeNotLoggedIn:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeStillProcessing:
		return http.StatusConflict
	case CodeCartNotReady:
		return http.StatusServiceUnavailable
	case CodeCartFull, CodeLimitExceeded, CodeUserError:
		return http.StatusUnprocessableEntity
	case CodeUnexpected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded error that can be rendered to API consumers.
type Error struct {
	Err         Code
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}

	return string(e.Err) + ": " + e.Description
}

var (
	ErrUnknown         = &Error{Err: CodeUnknown, Description: "unknown error"}
	ErrInvalidRequest  = &Error{Err: CodeInvalidRequest}
	ErrNotFound        = &Error{Err: CodeNotFound, Description: "not found"}
	ErrConflict        = &Error{Err: CodeConflict, Description: "already exists"}
	ErrUnexpected      = &Error{Err: CodeUnexpected, Description: "an unexpected error occurred"}
	ErrUserError       = &Error{Err: CodeUserError, Description: "the request was rejected"}
	ErrStillProcessing = &Error{Err: CodeStillProcessing, Description: "currently processing, unable to proceed"}
	ErrNotLoggedIn     = &Error{Err: CodeNotLoggedIn, Description: "not logged in currently"}
	ErrCartNotReady    = &Error{Err: CodeCartNotReady, Description: "cart is still loading"}
	ErrCartFull        = &Error{Err: CodeCartFull, Description: "maximum cart line count reached"}
	ErrLimitExceeded   = &Error{Err: CodeLimitExceeded, Description: "quantity limit exceeded for this item"}
	ErrInvalidQuantity = &Error{Err: CodeInvalidQuantity, Description: "quantity out of range"}
	ErrEmptyCart       = &Error{Err: CodeEmptyCart, Description: "cart is empty"}
)

// CodeOf returns the code of the first *Error found in the chain of err,
// or CodeUnknown.
func CodeOf(err error) Code {
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Err
	}

	return CodeUnknown
}

// IsLocal reports whether err is a local consistency error, i.e. one that is
// raised before any remote call is issued.
func IsLocal(err error) bool {
	switch CodeOf(err) {
	case CodeStillProcessing, CodeNotLoggedIn, CodeCartNotReady, CodeCartFull,
		CodeLimitExceeded, CodeInvalidQuantity, CodeEmptyCart:
		return true
	default:
		return false
	}
}
