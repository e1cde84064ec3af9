// Package command turns decoded client requests into keyspace operations.
//
// Parse resolves a command name and its arguments into one of a closed set
// of Command values, validating arity and options up front so that a
// rejected command never touches the keyspace. Dispatcher executes a
// Command against a Store and produces a reply.
package command

import "github.com/yndnr/rosso/internal/storage/memory"

// Command is a parsed, validated client command.
// The set of implementations is closed to this package.
type Command interface {
	// Name is the lowercase command name.
	Name() string
	command()
}

// ExpireKind selects how SET interprets its expiration argument.
type ExpireKind int

const (
	ExpireNone ExpireKind = iota
	ExpireSeconds
	ExpireMilliseconds
	ExpireUnixSeconds
	ExpireUnixMilliseconds
	ExpireKeep
)

// Expiration is the parsed EX/PX/EXAT/PXAT/KEEPTTL option of SET.
type Expiration struct {
	Kind ExpireKind
	N    int64
}

// Get reads a key.
type Get struct {
	Key []byte
}

// Set writes a key.
type Set struct {
	Key        []byte
	Value      []byte
	Expiration Expiration
	Condition  memory.Condition
	ReturnOld  bool
}

// Append extends a key's value.
type Append struct {
	Key   []byte
	Value []byte
}

// Incr increments a key's integer value.
type Incr struct {
	Key []byte
}

// Strlen reads a key's value length.
type Strlen struct {
	Key []byte
}

// TTL reads a key's remaining lifetime in seconds.
type TTL struct {
	Key []byte
}

// PTTL reads a key's remaining lifetime in milliseconds.
type PTTL struct {
	Key []byte
}

// Del removes keys.
type Del struct {
	Keys [][]byte
}

// Exists counts live keys.
type Exists struct {
	Keys [][]byte
}

func (Get) Name() string    { return "get" }
func (Set) Name() string    { return "set" }
func (Append) Name() string { return "append" }
func (Incr) Name() string   { return "incr" }
func (Strlen) Name() string { return "strlen" }
func (TTL) Name() string    { return "ttl" }
func (PTTL) Name() string   { return "pttl" }
func (Del) Name() string    { return "del" }
func (Exists) Name() string { return "exists" }

func (Get) command()    {}
func (Set) command()    {}
func (Append) command() {}
func (Incr) command()   {}
func (Strlen) command() {}
func (TTL) command()    {}
func (PTTL) command()   {}
func (Del) command()    {}
func (Exists) command() {}
