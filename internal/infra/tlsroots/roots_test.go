package tlsroots

import (
	"crypto/tls"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/rosso/internal/infra/tlsroots/tlstest"
)

func TestNewPool(t *testing.T) {
	if NewPool().CertPool() == nil {
		t.Fatal("NewPool().CertPool() returned nil")
	}
	if NewEmptyPool().CertPool() == nil {
		t.Fatal("NewEmptyPool().CertPool() returned nil")
	}
}

func TestAddCertPEM(t *testing.T) {
	kp := tlstest.WriteKeyPair(t, t.TempDir(), "ca")
	certPEM, err := os.ReadFile(kp.CertFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	keyPEM, err := os.ReadFile(kp.KeyFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
		anyErr  bool
	}{
		{"certificate", certPEM, nil, false},
		{"certificate after key block", append(append([]byte{}, keyPEM...), certPEM...), nil, false},
		{"empty", nil, ErrNoCertsFound, false},
		{"garbage", []byte("not a certificate"), ErrNoCertsFound, false},
		{"key only", keyPEM, ErrNoCertsFound, false},
		{"invalid certificate", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("junk")}), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEmptyPool().AddCertPEM(tt.data)
			if tt.anyErr {
				if err == nil {
					t.Error("AddCertPEM() expected error")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddCertPEM() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadPool(t *testing.T) {
	kp := tlstest.WriteKeyPair(t, t.TempDir(), "ca")

	if _, err := LoadPool(kp.CertFile); err != nil {
		t.Fatalf("LoadPool() error = %v", err)
	}
	if _, err := LoadPool(filepath.Join(t.TempDir(), "missing.crt")); err == nil {
		t.Error("LoadPool() expected error for missing file")
	}
}

func TestServerConfig(t *testing.T) {
	kp := tlstest.WriteKeyPair(t, t.TempDir(), "server")
	w, err := NewWatcher(kp.CertFile, kp.KeyFile)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	cfg := ServerConfig(w, nil)
	if cfg.ClientAuth != tls.NoClientCert {
		t.Errorf("ClientAuth = %v, want NoClientCert", cfg.ClientAuth)
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x, want TLS 1.2", cfg.MinVersion)
	}
	cert, err := cfg.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil || cert == nil {
		t.Fatalf("GetCertificate() = %v, %v", cert, err)
	}

	pool, err := LoadPool(kp.CertFile)
	if err != nil {
		t.Fatalf("LoadPool() error = %v", err)
	}
	mtls := ServerConfig(w, pool)
	if mtls.ClientAuth != tls.RequireAndVerifyClientCert {
		t.Errorf("ClientAuth = %v, want RequireAndVerifyClientCert", mtls.ClientAuth)
	}
}

func TestClientConfig(t *testing.T) {
	kp := tlstest.WriteKeyPair(t, t.TempDir(), "client")

	cfg := ClientConfig(nil, "localhost")
	if cfg.RootCAs != nil {
		t.Error("RootCAs should be nil to use the system pool")
	}
	if cfg.ServerName != "localhost" {
		t.Errorf("ServerName = %q", cfg.ServerName)
	}

	if err := WithClientCertificate(cfg, kp.CertFile, kp.KeyFile); err != nil {
		t.Fatalf("WithClientCertificate() error = %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Errorf("Certificates = %d, want 1", len(cfg.Certificates))
	}
	if err := WithClientCertificate(cfg, kp.KeyFile, kp.CertFile); err == nil {
		t.Error("WithClientCertificate() expected error for swapped files")
	}
}
