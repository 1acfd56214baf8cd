// Package errors defines the error taxonomy shared by the hookswap client.
//
// Every failure that can reach a workflow boundary is a *ClientError carrying a
// Kind. Callers match on kinds with errors.Is against the predefined sentinels,
// so a wrapped ClientError still compares equal to ErrTimeout, ErrDecode, etc.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a ClientError.
type Kind string

const (
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindInsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	KindEncoding            Kind = "ENCODING"
	KindInvalidSeed         Kind = "INVALID_SEED"
	KindDerivationExhausted Kind = "DERIVATION_EXHAUSTED"
	KindSubmission          Kind = "SUBMISSION"
	KindAlreadyProcessed    Kind = "ALREADY_PROCESSED"
	KindOnChainFailure      Kind = "ON_CHAIN_FAILURE"
	KindTimeout             Kind = "TIMEOUT"
	KindDecode              Kind = "DECODE"
	KindAccountNotFound     Kind = "ACCOUNT_NOT_FOUND"
	KindBusy                Kind = "BUSY"
	KindUnknown             Kind = "UNKNOWN"
)

// ClientError is the concrete error type of the taxonomy.
type ClientError struct {
	// Kind selects the taxonomy bucket.
	Kind Kind

	// Message is a human-readable description.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Logs holds diagnostic log lines returned by the network, verbatim.
	Logs []string

	// Signature is the request identifier the error relates to, when known.
	Signature string
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ClientError of the same kind.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithLogs attaches diagnostic log lines.
func (e *ClientError) WithLogs(logs []string) *ClientError {
	e.Logs = logs
	return e
}

// WithSignature attaches the request identifier.
func (e *ClientError) WithSignature(sig string) *ClientError {
	e.Signature = sig
	return e
}

// New creates a ClientError without a cause.
func New(kind Kind, message string) *ClientError {
	return &ClientError{Kind: kind, Message: message}
}

// Wrap creates a ClientError around cause.
func Wrap(kind Kind, cause error, message string) *ClientError {
	return &ClientError{Kind: kind, Message: message, Cause: cause}
}

// Sentinels for errors.Is. Never mutate them.
var (
	ErrInvalidInput        = New(KindInvalidInput, "invalid input")
	ErrInsufficientBalance = New(KindInsufficientBalance, "insufficient balance")
	ErrEncoding            = New(KindEncoding, "encoding failed")
	ErrInvalidSeed         = New(KindInvalidSeed, "invalid seed")
	ErrDerivationExhausted = New(KindDerivationExhausted, "no valid bump found")
	ErrSubmission          = New(KindSubmission, "submission failed")
	ErrAlreadyProcessed    = New(KindAlreadyProcessed, "transaction already processed")
	ErrOnChainFailure      = New(KindOnChainFailure, "transaction failed on chain")
	ErrTimeout             = New(KindTimeout, "confirmation timeout")
	ErrDecode              = New(KindDecode, "account decode failed")
	ErrAccountNotFound     = New(KindAccountNotFound, "account not found")
	ErrBusy                = New(KindBusy, "operation already in progress")
)

// InvalidInput reports a caller supplied value rejected before any network call.
func InvalidInput(format string, args ...any) *ClientError {
	return New(KindInvalidInput, fmt.Sprintf(format, args...))
}

// InsufficientBalance reports a failed native balance pre-check.
func InsufficientBalance(have, need uint64) *ClientError {
	return New(KindInsufficientBalance, fmt.Sprintf(
		"need at least %s SOL, have %s SOL", formatLamports(need), formatLamports(have)))
}

// Encoding reports a value that cannot be represented in its wire width.
func Encoding(format string, args ...any) *ClientError {
	return New(KindEncoding, fmt.Sprintf(format, args...))
}

// InvalidSeed reports a seed rejected by address derivation.
func InvalidSeed(index, length int) *ClientError {
	return New(KindInvalidSeed, fmt.Sprintf("seed %d is %d bytes, max is 32", index, length))
}

// DerivationExhausted reports that no bump produced an off-curve address.
func DerivationExhausted(cause error) *ClientError {
	return Wrap(KindDerivationExhausted, cause, "no valid bump found")
}

// Submission wraps a transport level failure together with any returned logs.
func Submission(cause error, logs []string) *ClientError {
	return Wrap(KindSubmission, cause, "network rejected transaction").WithLogs(logs)
}

// OnChainFailure reports a transaction accepted by the network but rejected by program logic.
func OnChainFailure(sig string, detail any, logs []string) *ClientError {
	return New(KindOnChainFailure, fmt.Sprintf("%v", detail)).WithSignature(sig).WithLogs(logs)
}

// Timeout reports that confirmation was not observed within the wait window.
func Timeout(sig string, window fmt.Stringer) *ClientError {
	return New(KindTimeout, fmt.Sprintf("not confirmed within %s, outcome unknown", window)).WithSignature(sig)
}

// Decode reports account bytes that do not match the expected schema.
func Decode(account string, format string, args ...any) *ClientError {
	return New(KindDecode, fmt.Sprintf("%s: %s", account, fmt.Sprintf(format, args...)))
}

// KindOf returns the kind of the first ClientError in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// LogsOf returns the diagnostic logs of the first ClientError in err's chain carrying any.
func LogsOf(err error) []string {
	for err != nil {
		var ce *ClientError
		if !errors.As(err, &ce) {
			return nil
		}
		if len(ce.Logs) > 0 {
			return ce.Logs
		}
		err = ce.Cause
	}
	return nil
}

func formatLamports(v uint64) string {
	return fmt.Sprintf("%d.%09d", v/1_000_000_000, v%1_000_000_000)
}
