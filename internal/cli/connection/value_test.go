package connection

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"simple", "+OK\r\n", Value{Kind: KindSimple, Str: "OK"}},
		{"error", "-ERR bad\r\n", Value{Kind: KindError, Str: "ERR bad"}},
		{"integer", ":-2\r\n", Value{Kind: KindInteger, Int: -2}},
		{"bulk", "$3\r\nbar\r\n", Value{Kind: KindBulk, Str: "bar"}},
		{"binary bulk", "$4\r\na\r\nb\r\n", Value{Kind: KindBulk, Str: "a\r\nb"}},
		{"empty bulk", "$0\r\n\r\n", Value{Kind: KindBulk, Str: ""}},
		{"nil bulk", "$-1\r\n", Value{Kind: KindNil}},
		{"nil array", "*-1\r\n", Value{Kind: KindNil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadValue(bufio.NewReader(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadValue() error = %v", err)
			}
			if got.Kind != tt.want.Kind || got.Str != tt.want.Str || got.Int != tt.want.Int {
				t.Errorf("ReadValue() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadValue_Array(t *testing.T) {
	input := "*3\r\n$1\r\na\r\n:7\r\n*1\r\n$-1\r\n"
	got, err := ReadValue(bufio.NewReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("ReadValue() error = %v", err)
	}
	if got.Kind != KindArray || len(got.Array) != 3 {
		t.Fatalf("ReadValue() = %+v, want 3-element array", got)
	}
	if got.Array[0].Str != "a" || got.Array[1].Int != 7 {
		t.Errorf("elements = %+v", got.Array)
	}
	if inner := got.Array[2]; inner.Kind != KindArray || inner.Array[0].Kind != KindNil {
		t.Errorf("nested = %+v, want array with nil", inner)
	}
}

func TestReadValue_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown type", "?x\r\n"},
		{"missing CR", "+OK\n"},
		{"bad integer", ":abc\r\n"},
		{"bad bulk length", "$x\r\n"},
		{"bad bulk terminator", "$3\r\nbarXX"},
		{"bad array length", "*-5\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadValue(bufio.NewReader(strings.NewReader(tt.input)))
			if !errors.Is(err, ErrMalformedReply) {
				t.Errorf("ReadValue() error = %v, want ErrMalformedReply", err)
			}
		})
	}
}

func TestReadValue_Truncated(t *testing.T) {
	_, err := ReadValue(bufio.NewReader(strings.NewReader("$5\r\nab")))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadValue() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestValue_Err(t *testing.T) {
	if err := (Value{Kind: KindSimple, Str: "OK"}).Err(); err != nil {
		t.Errorf("Err() on simple = %v, want nil", err)
	}

	err := Value{Kind: KindError, Str: "WRONGPASS invalid username-password pair"}.Err()
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("Err() = %v, want *ServerError", err)
	}
	if se.Prefix() != "WRONGPASS" {
		t.Errorf("Prefix() = %q, want WRONGPASS", se.Prefix())
	}
}
