// Package command defines the rosso-cli application.
//
// With arguments the CLI sends one command and prints the reply. Without
// arguments it starts the interactive REPL.
package command
