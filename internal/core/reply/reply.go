// Package reply defines the closed set of values a command can produce.
//
// Replies are protocol-neutral; the RESP server is the only encoder.
package reply

import (
	"errors"

	"github.com/yndnr/rosso/internal/core/domain"
)

// Reply is one of SimpleString, BulkString, Integer or Error.
type Reply interface {
	isReply()
}

// SimpleString is a short status line such as "OK" or "PONG".
type SimpleString string

// BulkString is a binary-safe string. Present is false for the nil reply.
type BulkString struct {
	Data    []byte
	Present bool
}

// Integer is a signed 64-bit integer reply.
type Integer int64

// Error is an error reply. Message is the full wire text, prefix included.
type Error struct {
	Kind    domain.Kind
	Message string
}

func (SimpleString) isReply() {}
func (BulkString) isReply()   {}
func (Integer) isReply()      {}
func (Error) isReply()        {}

// Common replies.
var (
	OK   = SimpleString("OK")
	Pong = SimpleString("PONG")
	Nil  = BulkString{}
)

// Bulk returns a present bulk string holding b.
func Bulk(b []byte) BulkString {
	if b == nil {
		b = []byte{}
	}
	return BulkString{Data: b, Present: true}
}

// FromError converts err into an Error reply. Domain errors keep their kind
// and prefix; anything else is reported as "ERR <message>".
func FromError(err error) Error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return Error{Kind: de.Kind, Message: de.Error()}
	}
	return Error{Kind: domain.KindInternal, Message: "ERR " + err.Error()}
}
