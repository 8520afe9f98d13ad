package commerce

import (
	"strings"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

// Known user error codes.
const (
	CodeTaken                = "TAKEN"
	CodeCustomerDisabled     = "CUSTOMER_DISABLED"
	CodeUnidentifiedCustomer = "UNIDENTIFIED_CUSTOMER"
	CodeTokenInvalid         = "TOKEN_INVALID"
	CodeNotEnoughInStock     = "NOT_ENOUGH_IN_STOCK"
	CodeInvalid              = "INVALID"
)

var userMessages = map[string]string{
	CodeTaken:                "This value is already taken.",
	CodeCustomerDisabled:     "This account is disabled. Check your email to activate it.",
	CodeUnidentifiedCustomer: "Incorrect email or password.",
	CodeTokenInvalid:         "Your session has expired. Please log in again.",
	CodeNotEnoughInStock:     "Not enough items in stock.",
}

// UserError is a structured domain error reported by the commerce API.
type UserError struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserMessage returns a user-facing message for known codes, and the remote
// message otherwise.
func (e UserError) UserMessage() string {
	if msg, ok := userMessages[e.Code]; ok {
		return msg
	}

	return e.Message
}

// UserErrors is a non-empty list of user errors. It matches
// serviceerr.ErrUserError with errors.Is.
type UserErrors []UserError

func (l UserErrors) Error() string {
	if len(l) == 1 {
		return l[0].Message
	}

	msgs := make([]string, 0, len(l))
	for _, e := range l {
		msgs = append(msgs, e.Message)
	}

	return strings.Join(msgs, ", ")
}

func (l UserErrors) Unwrap() error {
	return serviceerr.ErrUserError
}

// First returns the user error that takes priority.
func (l UserErrors) First() UserError {
	if len(l) == 0 {
		return UserError{}
	}

	return l[0]
}

// Code returns the code of the first user error.
func (l UserErrors) Code() string {
	return l.First().Code
}

// UserMessage is the message to present to the user.
func (l UserErrors) UserMessage() string {
	return l.First().UserMessage()
}
