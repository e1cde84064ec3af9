package command

import (
	"errors"
	"reflect"
	"testing"

	"github.com/yndnr/rosso/internal/core/domain"
	"github.com/yndnr/rosso/internal/storage/memory"
)

func args(s ...string) [][]byte {
	out := make([][]byte, len(s))
	for i, v := range s {
		out[i] = []byte(v)
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		args [][]byte
		want Command
	}{
		{"get", "GET", args("k"), Get{Key: []byte("k")}},
		{"lowercase name", "get", args("k"), Get{Key: []byte("k")}},
		{"mixed case", "InCr", args("c"), Incr{Key: []byte("c")}},
		{"append", "APPEND", args("k", "v"), Append{Key: []byte("k"), Value: []byte("v")}},
		{"strlen", "STRLEN", args("k"), Strlen{Key: []byte("k")}},
		{"ttl", "TTL", args("k"), TTL{Key: []byte("k")}},
		{"pttl", "PTTL", args("k"), PTTL{Key: []byte("k")}},
		{"del", "DEL", args("a", "b"), Del{Keys: args("a", "b")}},
		{"exists", "EXISTS", args("a"), Exists{Keys: args("a")}},
		{"plain set", "SET", args("k", "v"), Set{Key: []byte("k"), Value: []byte("v")}},
		{
			"set ex", "SET", args("k", "v", "ex", "10"),
			Set{Key: []byte("k"), Value: []byte("v"), Expiration: Expiration{ExpireSeconds, 10}},
		},
		{
			"set px nx get", "SET", args("k", "v", "PX", "1500", "NX", "GET"),
			Set{Key: []byte("k"), Value: []byte("v"), Expiration: Expiration{ExpireMilliseconds, 1500},
				Condition: memory.IfNotExists, ReturnOld: true},
		},
		{
			"set exat xx", "SET", args("k", "v", "XX", "EXAT", "1700000000"),
			Set{Key: []byte("k"), Value: []byte("v"), Expiration: Expiration{ExpireUnixSeconds, 1700000000},
				Condition: memory.IfExists},
		},
		{
			"set pxat", "SET", args("k", "v", "pxat", "1700000000000"),
			Set{Key: []byte("k"), Value: []byte("v"), Expiration: Expiration{ExpireUnixMilliseconds, 1700000000000}},
		},
		{
			"set keepttl", "SET", args("k", "v", "KEEPTTL"),
			Set{Key: []byte("k"), Value: []byte("v"), Expiration: Expiration{Kind: ExpireKeep}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.cmd, tt.args)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		args    [][]byte
		wantErr error
		wantMsg string
	}{
		{"unknown", "FOO", args("a"), nil, "ERR unknown command 'FOO', with args beginning with: 'a' "},
		{"get no key", "GET", nil, nil, "ERR wrong number of arguments for 'get' command"},
		{"get extra", "GET", args("a", "b"), nil, "ERR wrong number of arguments for 'get' command"},
		{"set one arg", "SET", args("k"), nil, "ERR wrong number of arguments for 'set' command"},
		{"append one arg", "APPEND", args("k"), nil, "ERR wrong number of arguments for 'append' command"},
		{"incr extra", "INCR", args("a", "b"), nil, "ERR wrong number of arguments for 'incr' command"},
		{"del none", "DEL", nil, nil, "ERR wrong number of arguments for 'del' command"},
		{"set unknown option", "SET", args("k", "v", "FOO"), domain.ErrSyntax, ""},
		{"set nx xx", "SET", args("k", "v", "NX", "XX"), domain.ErrSyntax, ""},
		{"set dup get", "SET", args("k", "v", "GET", "GET"), domain.ErrSyntax, ""},
		{"set ex px", "SET", args("k", "v", "EX", "1", "PX", "1"), domain.ErrSyntax, ""},
		{"set ex keepttl", "SET", args("k", "v", "EX", "1", "KEEPTTL"), domain.ErrSyntax, ""},
		{"set ex missing value", "SET", args("k", "v", "EX"), domain.ErrSyntax, ""},
		{"set ex not integer", "SET", args("k", "v", "EX", "ten"), domain.ErrNotAnInteger, ""},
		{"set ex zero", "SET", args("k", "v", "EX", "0"), nil, "ERR invalid expire time in 'set' command"},
		{"set px negative", "SET", args("k", "v", "PX", "-5"), nil, "ERR invalid expire time in 'set' command"},
		{"set ex overflow", "SET", args("k", "v", "EX", "9223372036854775807"), nil, "ERR invalid expire time in 'set' command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.cmd, tt.args)
			if err == nil {
				t.Fatalf("Parse() = %#v, want error", cmd)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("Parse() error = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	if !Known("set") || !Known("PTTL") {
		t.Error("Known should accept keyspace commands")
	}
	if Known("PING") {
		t.Error("PING is not a keyspace command")
	}
}
