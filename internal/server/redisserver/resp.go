package redisserver

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/rosso/internal/core/reply"
	"github.com/yndnr/rosso/pkg/splitargs"
)

// Protocol limits to prevent DoS attacks.
const (
	// MaxArrayLen limits the number of elements in a RESP array.
	MaxArrayLen = 1024 * 1024

	// MaxBulkLen limits the size of a single bulk string (512MB, as Redis).
	MaxBulkLen = 512 * 1024 * 1024

	// MaxInlineLen limits inline command line length (64KB, as Redis).
	MaxInlineLen = 64 * 1024

	// maxHeaderLen bounds "*<n>" and "$<n>" lines.
	maxHeaderLen = 64

	bulkPrealloc = 64 * 1024
)

var (
	ErrProtocol      = errors.New("resp: protocol error")
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// ProtocolError describes malformed or oversized client input.
// It matches ErrProtocol, and ErrLimitExceeded when Limit is set.
type ProtocolError struct {
	Reason string
	Limit  bool
}

func (e *ProtocolError) Error() string {
	return "resp: " + e.Reason
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol || (e.Limit && target == ErrLimitExceeded)
}

func protocolErr(format string, args ...any) error {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

func limitErr(format string, args ...any) error {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...), Limit: true}
}

// ReadCommand reads one command as a list of arguments, the first being
// the command name. Both RESP arrays of bulk strings and inline commands
// are accepted. An empty command yields (nil, nil).
func ReadCommand(r *bufio.Reader) ([][]byte, error) {
	b, err := r.Peek(1)
	if err != nil {
		return nil, err
	}

	switch b[0] {
	case '*':
		return readArrayCommand(r)
	default:
		// Inline command (telnet, health checks): "PING\r\n", quoting as redis-cli
		line, err := readInlineLine(r)
		if err != nil {
			return nil, err
		}
		parts, err := splitargs.Split(line)
		if err != nil {
			return nil, protocolErr("unbalanced quotes in request")
		}
		if len(parts) == 0 {
			return nil, nil
		}
		out := make([][]byte, 0, len(parts))
		for _, p := range parts {
			out = append(out, []byte(p))
		}
		return out, nil
	}
}

func readArrayCommand(r *bufio.Reader) ([][]byte, error) {
	line, err := readLine(r, maxHeaderLen)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil {
		return nil, protocolErr("invalid multibulk length")
	}
	if n <= 0 {
		return nil, nil
	}
	if n > MaxArrayLen {
		return nil, limitErr("multibulk length %d exceeds limit %d", n, MaxArrayLen)
	}

	// Cap preallocation; a client may announce more than it sends.
	out := make([][]byte, 0, min(n, 64))
	for i := 0; i < n; i++ {
		arg, err := readBulkString(r)
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
	}
	return out, nil
}

func readBulkString(r *bufio.Reader) ([]byte, error) {
	line, err := readLine(r, maxHeaderLen)
	if err != nil {
		return nil, err
	}
	if len(line) == 0 || line[0] != '$' {
		got := "EOF"
		if len(line) > 0 {
			got = string(line[0])
		}
		return nil, protocolErr("expected '$', got '%s'", got)
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil || n < 0 {
		return nil, protocolErr("invalid bulk length")
	}
	if n > MaxBulkLen {
		return nil, limitErr("bulk length %d exceeds limit %d", n, MaxBulkLen)
	}

	// Grow with the data actually received rather than the announced length.
	var buf bytes.Buffer
	buf.Grow(min(n+2, bulkPrealloc))
	if _, err := io.CopyN(&buf, r, int64(n+2)); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	data := buf.Bytes()
	if !bytes.HasSuffix(data, []byte("\r\n")) {
		return nil, protocolErr("invalid bulk terminator")
	}
	return data[:n:n], nil
}

func readLine(r *bufio.Reader, maxLen int) (string, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		if err == nil {
			buf = append(buf, frag...)
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			buf = append(buf, frag...)
			if len(buf) > maxLen {
				return "", limitErr("line length exceeds limit %d", maxLen)
			}
			continue
		}
		return "", err
	}

	if len(buf) > maxLen+2 {
		return "", limitErr("line length exceeds limit %d", maxLen)
	}
	if len(buf) < 2 || buf[len(buf)-2] != '\r' {
		return "", protocolErr("missing CRLF")
	}
	return string(buf[:len(buf)-2]), nil
}

// readInlineLine accepts a bare LF terminator as sent by netcat and telnet.
func readInlineLine(r *bufio.Reader) (string, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		buf = append(buf, frag...)
		if len(buf) > MaxInlineLen+2 {
			return "", limitErr("inline length exceeds limit %d", MaxInlineLen)
		}
		if err == nil {
			break
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return "", err
		}
	}
	return strings.TrimRight(string(buf), "\r\n"), nil
}

// WriteReply encodes r in RESP2.
func WriteReply(w *bufio.Writer, r reply.Reply) error {
	switch v := r.(type) {
	case reply.SimpleString:
		return WriteSimpleString(w, string(v))
	case reply.BulkString:
		if !v.Present {
			return WriteNullBulk(w)
		}
		return WriteBulk(w, v.Data)
	case reply.Integer:
		return WriteInteger(w, int64(v))
	case reply.Error:
		return WriteError(w, v.Message)
	default:
		return WriteError(w, fmt.Sprintf("ERR unsupported reply %T", r))
	}
}

// lineSafe replaces CR and LF so s fits on one protocol line.
func lineSafe(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, s)
}

func WriteSimpleString(w *bufio.Writer, s string) error {
	_, err := w.WriteString("+" + lineSafe(s) + "\r\n")
	return err
}

func WriteError(w *bufio.Writer, s string) error {
	_, err := w.WriteString("-" + lineSafe(s) + "\r\n")
	return err
}

func WriteInteger(w *bufio.Writer, n int64) error {
	_, err := w.WriteString(":" + strconv.FormatInt(n, 10) + "\r\n")
	return err
}

func WriteNullBulk(w *bufio.Writer) error {
	_, err := w.WriteString("$-1\r\n")
	return err
}

func WriteBulk(w *bufio.Writer, b []byte) error {
	if b == nil {
		return WriteNullBulk(w)
	}
	if _, err := w.WriteString("$" + strconv.Itoa(len(b)) + "\r\n"); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}

func normalizeCommandName(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	// Uppercase ASCII without allocating for already uppercased tokens.
	if bytes.ContainsAny(b, "abcdefghijklmnopqrstuvwxyz") {
		return strings.ToUpper(string(b))
	}
	return string(b)
}
