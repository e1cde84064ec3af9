package repl

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewHistory(t *testing.T) {
	h := NewHistory()
	if h.maxSize != defaultHistorySize {
		t.Errorf("maxSize = %d, want %d", h.maxSize, defaultHistorySize)
	}
	if filepath.Base(h.file) != historyFileName {
		t.Errorf("file = %q, want base %q", h.file, historyFileName)
	}
}

func TestHistory_Add(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int
		add     []string
		want    []string
	}{
		{"simple", 10, []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"evicts oldest", 3, []string{"a", "b", "c", "d"}, []string{"b", "c", "d"}},
		{"drops repeats", 10, []string{"a", "a", "b", "a"}, []string{"a", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistoryFile("", tt.maxSize)
			for _, cmd := range tt.add {
				h.Add(cmd)
			}
			if h.Len() != len(tt.want) {
				t.Fatalf("Len() = %d, want %d", h.Len(), len(tt.want))
			}
			for i, want := range tt.want {
				if h.entries[i] != want {
					t.Errorf("entries[%d] = %q, want %q", i, h.entries[i], want)
				}
			}
		})
	}
}

func TestHistory_Get(t *testing.T) {
	h := NewHistoryFile("", 10)
	h.Add("first")
	h.Add("second")

	tests := []struct {
		index int
		want  string
	}{
		{0, "second"},
		{1, "first"},
		{2, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := h.Get(tt.index); got != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history")

	h := NewHistoryFile(path, 10)
	h.Add("SET foo bar")
	h.Add("GET foo")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	loaded := NewHistoryFile(path, 10)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 2 || loaded.Get(0) != "GET foo" || loaded.Get(1) != "SET foo bar" {
		t.Errorf("loaded entries = %v", loaded.entries)
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistoryFile(filepath.Join(t.TempDir(), "missing"), 10)
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistoryFile("", 10)
	h.Add("PING")
	if err := h.Save(); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}
