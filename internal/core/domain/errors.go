package domain

import (
	"fmt"
	"strings"
)

// Kind classifies a DomainError. Kinds are stable and safe to use as metric labels.
type Kind int

const (
	KindInternal Kind = iota
	KindUnknownCommand
	KindWrongArity
	KindNotAnInteger
	KindOverflow
	KindKeyTypeMismatch
	KindSyntax
	KindInvalidExpire
	KindNoAuth
	KindWrongPass
	KindRateLimited
	KindProtocol
	KindMaxClients
)

var kindNames = map[Kind]string{
	KindInternal:        "internal",
	KindUnknownCommand:  "unknown_command",
	KindWrongArity:      "wrong_arity",
	KindNotAnInteger:    "not_an_integer",
	KindOverflow:        "overflow",
	KindKeyTypeMismatch: "key_type_mismatch",
	KindSyntax:          "syntax",
	KindInvalidExpire:   "invalid_expire",
	KindNoAuth:          "no_auth",
	KindWrongPass:       "wrong_pass",
	KindRateLimited:     "rate_limited",
	KindProtocol:        "protocol",
	KindMaxClients:      "max_clients",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "internal"
}

// DomainError is a client-visible error. Code is the reply prefix
// ("ERR", "WRONGTYPE", ...) and Message the text that follows it.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Details string
}

// Error renders the error exactly as it is sent on the wire, without the leading '-'.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return e.Code + " " + e.Message + ": " + e.Details
	}
	return e.Code + " " + e.Message
}

// Is reports whether target is a DomainError of the same kind.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewDomainError creates a new DomainError.
func NewDomainError(kind Kind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// ============================================================================
// Command errors
// ============================================================================

var (
	// ErrNotAnInteger indicates a payload or argument is not a strict base-10 int64.
	ErrNotAnInteger = NewDomainError(KindNotAnInteger, "ERR", "value is not an integer or out of range")

	// ErrOverflow indicates INCR would leave the int64 range.
	ErrOverflow = NewDomainError(KindOverflow, "ERR", "increment or decrement would overflow")

	// ErrWrongType indicates the key holds a value of another kind.
	ErrWrongType = NewDomainError(KindKeyTypeMismatch, "WRONGTYPE", "Operation against a key holding the wrong kind of value")

	// ErrSyntax indicates malformed command options.
	ErrSyntax = NewDomainError(KindSyntax, "ERR", "syntax error")
)

// ============================================================================
// Connection errors
// ============================================================================

var (
	// ErrNoAuth indicates a command was issued before AUTH on a protected server.
	ErrNoAuth = NewDomainError(KindNoAuth, "NOAUTH", "Authentication required.")

	// ErrWrongPass indicates AUTH was given a bad password.
	ErrWrongPass = NewDomainError(KindWrongPass, "WRONGPASS", "invalid username-password pair or user is disabled.")

	// ErrNoPasswordConfigured is returned by AUTH when the server has no password.
	ErrNoPasswordConfigured = NewDomainError(KindSyntax, "ERR",
		"AUTH <password> called without any password configured for the default user. Are you sure your configuration is correct?")

	// ErrRateLimited indicates the client exceeded its command rate.
	ErrRateLimited = NewDomainError(KindRateLimited, "ERR", "rate limit exceeded")

	// ErrProtocol indicates undecodable input. Details carry the reason.
	ErrProtocol = NewDomainError(KindProtocol, "ERR", "Protocol error")

	// ErrMaxClients is sent to a connection refused at the client limit.
	ErrMaxClients = NewDomainError(KindMaxClients, "ERR", "max number of clients reached")

	// ErrInternal wraps unexpected failures.
	ErrInternal = NewDomainError(KindInternal, "ERR", "internal error")
)

// maxUnknownArgsLen bounds how much of the arguments is echoed back for unknown commands.
const maxUnknownArgsLen = 128

// WrongArity returns the error for a command called with the wrong number of arguments.
func WrongArity(command string) *DomainError {
	return NewDomainError(KindWrongArity, "ERR",
		fmt.Sprintf("wrong number of arguments for '%s' command", strings.ToLower(command)))
}

// InvalidExpire returns the error for a non-positive or overflowing expiration.
func InvalidExpire(command string) *DomainError {
	return NewDomainError(KindInvalidExpire, "ERR",
		fmt.Sprintf("invalid expire time in '%s' command", strings.ToLower(command)))
}

// UnknownCommand returns the error for an unrecognized command name.
// The first arguments are echoed back, bounded by maxUnknownArgsLen.
func UnknownCommand(name string, args [][]byte) *DomainError {
	var b strings.Builder
	fmt.Fprintf(&b, "unknown command '%s', with args beginning with: ", truncate(name, maxUnknownArgsLen))
	remaining := maxUnknownArgsLen
	for _, arg := range args {
		if remaining <= 0 {
			break
		}
		s := truncate(string(arg), remaining)
		remaining -= len(s)
		fmt.Fprintf(&b, "'%s' ", s)
	}
	return NewDomainError(KindUnknownCommand, "ERR", b.String())
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
