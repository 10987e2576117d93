package common

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for the transport layer. Callers should use
// errors.Is against the sentinels below or KindOf to obtain the Kind.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindDecode              Kind = "decode"
	KindWriteRejected       Kind = "write_rejected"
	KindOperationFailed     Kind = "operation_failed"
	KindConfirmationTimeout Kind = "confirmation_timeout"
	KindLedgerUnavailable   Kind = "ledger_unavailable"
	KindAuthRejected        Kind = "auth_rejected"
	KindNotFound            Kind = "not_found"
	KindInternal            Kind = "internal"
)

var (
	// Local errors, never reach the ledger.
	ErrValidation = &Error{Kind: KindValidation, Message: "validation error"}
	ErrDecode     = &Error{Kind: KindDecode, Message: "field could not be decrypted"}

	// Ledger errors.
	ErrWriteRejected       = &Error{Kind: KindWriteRejected, Message: "contract call would fail"}
	ErrOperationFailed     = &Error{Kind: KindOperationFailed, Message: "operation failed"}
	ErrConfirmationTimeout = &Error{Kind: KindConfirmationTimeout, Message: "confirmation timeout"}
	ErrLedgerUnavailable   = &Error{Kind: KindLedgerUnavailable, Message: "ledger unavailable"}

	// Policy errors.
	ErrAuthRejected = &Error{Kind: KindAuthRejected, Message: "invalid email or password"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}

	ErrInternal = &Error{Kind: KindInternal, Message: "internal error"}

	// ErrInvalidToken is returned for malformed or badly signed session tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for session tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Error is the tagged error carried from the core to the transport.
//
// Fields lists offending input fields for validation errors. Err holds the
// underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Fields, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so that errors.Is(err, ErrWriteRejected) matches
// any WriteRejected error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldsOf returns the offending fields of a validation error.
func FieldsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// Validation builds a ValidationError naming the offending fields.
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Decode wraps a per-field decryption failure.
func Decode(err error) *Error {
	return &Error{Kind: KindDecode, Message: ErrDecode.Message, Err: err}
}

// WriteRejected reports that speculative execution of method predicts failure.
func WriteRejected(method string, reason error) *Error {
	return &Error{Kind: KindWriteRejected, Message: fmt.Sprintf("contract call %s would fail", method), Err: reason}
}

// OperationFailed reports a ledger failure after or during submission.
func OperationFailed(message string, err error) *Error {
	return &Error{Kind: KindOperationFailed, Message: message, Err: err}
}

// ConfirmationTimeout reports a submitted write whose confirmation did not
// arrive in time. The write may still be included later.
func ConfirmationTimeout(handleID string, err error) *Error {
	return &Error{Kind: KindConfirmationTimeout, Message: "confirmation timeout for " + handleID, Err: err}
}

// LedgerUnavailable reports an unreachable or misbehaving RPC endpoint.
func LedgerUnavailable(err error) *Error {
	return &Error{Kind: KindLedgerUnavailable, Message: ErrLedgerUnavailable.Message, Err: err}
}

// NotFound reports a missing entity.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Surface converts a WriteRejected error into the client-visible
// OperationFailed for op, keeping the rejection reason in the chain. Every
// other error is returned unchanged.
func Surface(op string, err error) error {
	if err == nil || KindOf(err) != KindWriteRejected {
		return err
	}
	return OperationFailed(op+" failed", err)
}
