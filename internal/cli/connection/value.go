package connection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind identifies the RESP type of a Value.
type Kind int

const (
	KindSimple Kind = iota
	KindError
	KindInteger
	KindBulk
	KindArray
	KindNil
)

// Value is one decoded reply.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Array []Value
}

// Err returns the reply as a Go error when it is an error reply.
func (v Value) Err() error {
	if v.Kind != KindError {
		return nil
	}
	return &ServerError{Message: v.Str}
}

// ServerError is an error reply from the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Prefix returns the first word of the message, e.g. "ERR" or "WRONGTYPE".
func (e *ServerError) Prefix() string {
	prefix, _, _ := strings.Cut(e.Message, " ")
	return prefix
}

// ErrMalformedReply is returned for undecodable server output.
var ErrMalformedReply = errors.New("connection: malformed reply")

const (
	maxReplyBulkLen  = 512 * 1024 * 1024
	maxReplyArrayLen = 1024 * 1024
	maxReplyDepth    = 16
)

// ReadValue decodes one RESP2 reply.
func ReadValue(r *bufio.Reader) (Value, error) {
	return readValue(r, 0)
}

func readValue(r *bufio.Reader, depth int) (Value, error) {
	if depth > maxReplyDepth {
		return Value{}, fmt.Errorf("%w: nesting too deep", ErrMalformedReply)
	}

	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	if len(line) < 3 || line[len(line)-2] != '\r' {
		return Value{}, fmt.Errorf("%w: %q", ErrMalformedReply, line)
	}
	body := line[1 : len(line)-2]

	switch line[0] {
	case '+':
		return Value{Kind: KindSimple, Str: body}, nil
	case '-':
		return Value{Kind: KindError, Str: body}, nil
	case ':':
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: bad integer %q", ErrMalformedReply, body)
		}
		return Value{Kind: KindInteger, Int: n}, nil
	case '$':
		n, err := strconv.Atoi(body)
		if err != nil || n < -1 || n > maxReplyBulkLen {
			return Value{}, fmt.Errorf("%w: bad bulk length %q", ErrMalformedReply, body)
		}
		if n == -1 {
			return Value{Kind: KindNil}, nil
		}
		buf := make([]byte, n+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Value{}, err
		}
		if buf[n] != '\r' || buf[n+1] != '\n' {
			return Value{}, fmt.Errorf("%w: bad bulk terminator", ErrMalformedReply)
		}
		return Value{Kind: KindBulk, Str: string(buf[:n])}, nil
	case '*':
		n, err := strconv.Atoi(body)
		if err != nil || n < -1 || n > maxReplyArrayLen {
			return Value{}, fmt.Errorf("%w: bad array length %q", ErrMalformedReply, body)
		}
		if n == -1 {
			return Value{Kind: KindNil}, nil
		}
		items := make([]Value, 0, min(n, 64))
		for i := 0; i < n; i++ {
			item, err := readValue(r, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{Kind: KindArray, Array: items}, nil
	default:
		return Value{}, fmt.Errorf("%w: unexpected type byte %q", ErrMalformedReply, line[0])
	}
}
