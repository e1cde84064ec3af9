package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactSensitive(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"password key", slog.String("password", "hunter2"), redactedValue},
		{"requirepass key", slog.String("requirepass_hash", "abc"), redactedValue},
		{"auth key", slog.String("Authorization", "Basic x"), redactedValue},
		{"empty sensitive value kept", slog.String("password", ""), ""},
		{"hash value under neutral key", slog.String("value", "$argon2id$v=19$m=1,t=1,p=1$a$b"), redactedValue},
		{"keyspace key kept", slog.String("key", "user:1"), "user:1"},
		{"plain value kept", slog.String("cmd", "get"), "get"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactSensitive(tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("redactSensitive(%v) = %q, want %q", tt.attr, got.Value.String(), tt.want)
			}
		})
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	attr := slog.Group("security", slog.String("requirepass_hash", "$argon2id$x"), slog.String("mode", "on"))
	got := redactSensitive(attr).Value.Group()

	if got[0].Value.String() != redactedValue {
		t.Errorf("nested hash not redacted: %q", got[0].Value.String())
	}
	if got[1].Value.String() != "on" {
		t.Errorf("nested plain value changed: %q", got[1].Value.String())
	}
}

func TestRedaction_ThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	l.Info("auth attempt", "password", "hunter2", "key", "session:1")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("password leaked into log: %s", out)
	}
	if !strings.Contains(out, "session:1") {
		t.Errorf("key name should be logged: %s", out)
	}
}

func TestRedactString(t *testing.T) {
	if got := RedactString("$argon2id$v=19$..."); got != redactedValue {
		t.Errorf("RedactString(hash) = %q", got)
	}
	if got := RedactString("hello"); got != "hello" {
		t.Errorf("RedactString(hello) = %q", got)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"client_secret", true},
		{"auth_header", true},
		{"key", false},
		{"conn_id", false},
	}

	for _, tt := range tests {
		if got := IsSensitiveKey(tt.key); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
