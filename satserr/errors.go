// Package satserr defines the closed set of error kinds returned by the
// wallet, transaction builder and provider packages.
//
// Every exported operation in this module fails with a *Error whose Kind
// tells the caller whether the failure is bad input (never retry), a
// programming error, or a transient environmental problem.
package satserr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindDerivation
	KindAddress
	KindPsbtBuild
	KindProvider
	KindNetwork
	KindTimeout
	KindBroadcast
	KindInsufficientFunds
)

var kindNames = map[Kind]string{
	KindUnknown:           "UnknownError",
	KindDerivation:        "DerivationError",
	KindAddress:           "AddressError",
	KindPsbtBuild:         "PsbtBuildError",
	KindProvider:          "ProviderError",
	KindNetwork:           "NetworkError",
	KindTimeout:           "TimeoutError",
	KindBroadcast:         "BroadcastError",
	KindInsufficientFunds: "InsufficientFundsError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Retryable reports whether errors of this kind are environmental and may be
// retried. PsbtBuild and InsufficientFunds errors are caused by caller data
// and must never be retried automatically.
func (k Kind) Retryable() bool {
	switch k {
	case KindTimeout, KindProvider, KindBroadcast:
		return true
	default:
		return false
	}
}

// NoAttempt is the Attempt value of errors not produced by a provider chain.
const NoAttempt = -1

// Error is the single concrete error type of the taxonomy.
type Error struct {
	Kind Kind
	Msg  string
	// Attempt is the zero-based provider chain attempt that produced the
	// error, or NoAttempt.
	Attempt int
	// Err is the underlying cause, kept for diagnostics only.
	Err error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrDerivation        = &Error{Kind: KindDerivation, Attempt: NoAttempt}
	ErrAddress           = &Error{Kind: KindAddress, Attempt: NoAttempt}
	ErrPsbtBuild         = &Error{Kind: KindPsbtBuild, Attempt: NoAttempt}
	ErrProvider          = &Error{Kind: KindProvider, Attempt: NoAttempt}
	ErrNetwork           = &Error{Kind: KindNetwork, Attempt: NoAttempt}
	ErrTimeout           = &Error{Kind: KindTimeout, Attempt: NoAttempt}
	ErrBroadcast         = &Error{Kind: KindBroadcast, Attempt: NoAttempt}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds, Attempt: NoAttempt}
)

// New returns an error of the given kind without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Attempt: NoAttempt}
}

// Newf is New with a format string.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap returns an error of the given kind carrying cause.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Attempt: NoAttempt, Err: cause}
}

// Wrapf is Wrap with a format string.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return Wrap(kind, cause, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Attempt != NoAttempt {
		msg = fmt.Sprintf("attempt %d: %s", e.Attempt, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind. Two concrete errors are equal only when they
// are the same value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg == "" && t.Err == nil {
		return t.Kind == e.Kind
	}
	return t == e
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a taxonomy error of a retryable kind.
func IsRetryable(err error) bool {
	return KindOf(err).Retryable()
}

// WithAttempt returns a copy of e tagged with a provider chain attempt.
func (e *Error) WithAttempt(attempt int) *Error {
	cp := *e
	cp.Attempt = attempt
	return &cp
}
