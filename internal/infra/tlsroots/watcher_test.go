package tlsroots

import (
	"crypto/x509"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/rosso/internal/infra/tlsroots/tlstest"
	"github.com/yndnr/rosso/internal/telemetry/logger"
)

func leafSerial(t *testing.T, w *Watcher) string {
	t.Helper()
	cert, err := w.GetCertificate(nil)
	if err != nil || cert == nil {
		t.Fatalf("GetCertificate() = %v, %v", cert, err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}
	return leaf.SerialNumber.String()
}

func TestNewWatcher(t *testing.T) {
	dir := t.TempDir()
	kp := tlstest.WriteKeyPair(t, dir, "server")

	tests := []struct {
		name     string
		certFile string
		keyFile  string
		wantErr  bool
	}{
		{"valid", kp.CertFile, kp.KeyFile, false},
		{"swapped", kp.KeyFile, kp.CertFile, true},
		{"missing", filepath.Join(dir, "nope.crt"), filepath.Join(dir, "nope.key"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWatcher(tt.certFile, tt.keyFile, WithLogger(logger.Discard()))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWatcher() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && leafSerial(t, w) != kp.Serial.String() {
				t.Error("loaded certificate has the wrong serial")
			}
		})
	}
}

func TestWatcher_Options(t *testing.T) {
	kp := tlstest.WriteKeyPair(t, t.TempDir(), "server")
	log := logger.Discard()

	w, err := NewWatcher(kp.CertFile, kp.KeyFile, WithLogger(log), WithDebounce(200*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if w.logger != log {
		t.Error("WithLogger() option not applied")
	}
	if w.debounce != 200*time.Millisecond {
		t.Errorf("debounce = %v, want 200ms", w.debounce)
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	kp := tlstest.WriteKeyPair(t, t.TempDir(), "server")
	w, err := NewWatcher(kp.CertFile, kp.KeyFile, WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	w.StartAsync()
	time.Sleep(50 * time.Millisecond)
	w.Stop()
	w.Stop()
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	kp := tlstest.WriteKeyPair(t, dir, "server")

	w, err := NewWatcher(kp.CertFile, kp.KeyFile, WithLogger(logger.Discard()), WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	before := leafSerial(t, w)

	w.StartAsync()
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	rotated := tlstest.WriteKeyPair(t, dir, "server")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if got := leafSerial(t, w); got != before {
			if got != rotated.Serial.String() {
				t.Fatalf("serial = %s, want %s", got, rotated.Serial)
			}
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("certificate was not reloaded")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	kp := tlstest.WriteKeyPair(t, dir, "server")

	w, err := NewWatcher(kp.CertFile, kp.KeyFile, WithLogger(logger.Discard()), WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	before := leafSerial(t, w)

	w.StartAsync()
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	tlstest.WriteKeyPair(t, dir, "other")
	time.Sleep(400 * time.Millisecond)

	if got := leafSerial(t, w); got != before {
		t.Errorf("serial changed to %s after unrelated write", got)
	}
}
