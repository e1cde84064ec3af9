// Package buildinfo provides build information for rosso.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/rosso/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/rosso/internal/infra/buildinfo.Commit=abc123"
//
// When Commit is not injected it falls back to the VCS revision recorded
// by the Go toolchain.
package buildinfo
