package application

import "fmt"

// ErrorKind classifies a domain failure so the façade can pick a status
// without parsing message text.
type ErrorKind int

const (
	// KindValidation covers malformed or missing input and policy violations.
	KindValidation ErrorKind = iota
	// KindNotFound covers absent accounts or roles.
	KindNotFound
	// KindAuthentication covers credential mismatch and missing accounts
	// during login; callers cannot tell which.
	KindAuthentication
	// KindInvalidToken covers wrong purpose, wrong subject, expiry and
	// malformed tokens; the internal reason is not distinguished outward.
	KindInvalidToken
	// KindPartialFailure marks an operation that persisted part of its
	// effects before failing (account created, role unassigned).
	KindPartialFailure
	// KindUnexpected covers unforeseen collaborator failures.
	KindUnexpected
)

// Error carries an operator-curated message suitable for the response
// envelope. The wrapped cause never reaches the caller's message for
// validation, not-found, authentication and token failures.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func authenticationError(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func invalidTokenError(err error) *Error {
	return &Error{Kind: KindInvalidToken, Message: MsgInvalidToken, Err: err}
}

func partialFailure(msg string, err error) *Error {
	return &Error{Kind: KindPartialFailure, Message: msg, Err: err}
}

func unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: err.Error(), Err: err}
}

// KindOf returns the kind of a domain error, or KindUnexpected for anything
// that did not originate in this package.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnexpected
}

// Outward message catalog. These strings are the compatibility contract with
// existing callers; change them only together with the clients.
const (
	MsgNoAccount          = "No account found."
	MsgUserNotFound       = "User not found."
	MsgInvalidCredentials = "Invalid credentials."
	MsgMissingCredentials = "Email and password must be provided."
	MsgInvalidToken       = "Invalid or expired token."
	MsgAlreadyConfirmed   = "Account is already confirmed."
)
