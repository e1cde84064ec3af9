// Package repl provides the interactive mode of rosso-cli.
//
//   - repl.go: read-eval-print loop
//   - split.go: quoted argument splitting
//   - completer.go: command name completion and help
//   - history.go: command history persistence
package repl
