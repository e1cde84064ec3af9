package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/rosso/internal/cli/connection"
)

// Format represents the output format.
type Format string

const (
	FormatHuman Format = "human"
	FormatRaw   Format = "raw"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name. Empty means human.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatHuman:
		return FormatHuman, nil
	case FormatRaw, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want human, raw or json)", s)
	}
}

// Formatter writes replies to an output stream.
type Formatter interface {
	Format(w io.Writer, v connection.Value) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatRaw:
		return RawFormatter{}
	case FormatJSON:
		return JSONFormatter{}
	default:
		return HumanFormatter{}
	}
}

// HumanFormatter renders like redis-cli on a terminal:
// "bar" / (integer) 6 / (nil) / (error) ERR ... / OK.
type HumanFormatter struct{}

func (HumanFormatter) Format(w io.Writer, v connection.Value) error {
	var b strings.Builder
	writeHuman(&b, v, "")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeHuman(b *strings.Builder, v connection.Value, indent string) {
	switch v.Kind {
	case connection.KindSimple:
		b.WriteString(v.Str)
	case connection.KindError:
		b.WriteString("(error) " + v.Str)
	case connection.KindInteger:
		b.WriteString("(integer) " + strconv.FormatInt(v.Int, 10))
	case connection.KindBulk:
		b.WriteString(Quote(v.Str))
	case connection.KindNil:
		b.WriteString("(nil)")
	case connection.KindArray:
		if len(v.Array) == 0 {
			b.WriteString("(empty array)")
			break
		}
		width := len(strconv.Itoa(len(v.Array)))
		for i, item := range v.Array {
			if i > 0 {
				b.WriteString("\n" + indent)
			}
			label := fmt.Sprintf("%*d) ", width, i+1)
			b.WriteString(label)
			// Nested arrays continue under the label.
			if item.Kind == connection.KindArray && len(item.Array) > 0 {
				writeHuman(b, item, indent+strings.Repeat(" ", len(label)))
				continue
			}
			writeHuman(b, item, indent)
		}
		return
	}
	if indent == "" {
		b.WriteString("\n")
	}
}

// Quote renders s in double quotes, escaping non-printable bytes the way
// redis-cli does.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// RawFormatter prints payloads without decoration, one per line, like
// redis-cli --raw.
type RawFormatter struct{}

func (RawFormatter) Format(w io.Writer, v connection.Value) error {
	var b strings.Builder
	writeRaw(&b, v)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRaw(b *strings.Builder, v connection.Value) {
	switch v.Kind {
	case connection.KindSimple, connection.KindError, connection.KindBulk:
		b.WriteString(v.Str)
		b.WriteString("\n")
	case connection.KindInteger:
		b.WriteString(strconv.FormatInt(v.Int, 10))
		b.WriteString("\n")
	case connection.KindNil:
		b.WriteString("\n")
	case connection.KindArray:
		for _, item := range v.Array {
			writeRaw(b, item)
		}
	}
}
