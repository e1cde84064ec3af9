package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/rosso/internal/cli/connection"
	"github.com/yndnr/rosso/internal/cli/output"
	"github.com/yndnr/rosso/pkg/splitargs"
)

// DefaultPrompt is shown before each input line.
const DefaultPrompt = "rosso> "

// Executor sends one command to the server.
type Executor interface {
	Do(args ...string) (connection.Value, error)
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	formatter output.Formatter
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(r *REPL) { r.prompt = prompt }
}

// WithHistory sets the history store. Nil disables history.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// New creates a new REPL instance.
func New(exec Executor, formatter output.Formatter, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    DefaultPrompt,
		exec:      exec,
		formatter: formatter,
		completer: NewCompleter(),
		history:   NewHistory(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit or end of input,
// and the error when the connection to the server is lost.
func (r *REPL) Run() error {
	if r.history != nil {
		_ = r.history.Load()
		defer func() { _ = r.history.Save() }()
	}

	reader := bufio.NewReader(r.input)
	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil

		line = strings.TrimSpace(line)
		if line != "" {
			stop, execErr := r.handleLine(line)
			if execErr != nil {
				return execErr
			}
			if stop {
				return nil
			}
		}
		if eof {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

func (r *REPL) handleLine(line string) (bool, error) {
	if r.history != nil {
		r.history.Add(line)
	}

	args, err := splitargs.Split(line)
	if err != nil {
		fmt.Fprintf(r.output, "Invalid argument(s): %v\n", err)
		return false, nil
	}
	if len(args) == 0 {
		return false, nil
	}

	switch strings.ToLower(args[0]) {
	// The connection is closed by the caller, so QUIT is not sent.
	case "exit", "quit":
		return true, nil
	case "help":
		r.printHelp(args[1:])
		return false, nil
	}

	v, err := r.exec.Do(args...)
	if err != nil {
		return false, fmt.Errorf("connection lost: %w", err)
	}
	return false, r.formatter.Format(r.output, v)
}

func (r *REPL) printHelp(topic []string) {
	if len(topic) > 0 {
		if usage, ok := r.completer.Usage(topic[0]); ok {
			fmt.Fprintln(r.output, usage)
			return
		}
		fmt.Fprintf(r.output, "No help for %q\n", topic[0])
		return
	}
	for _, name := range r.completer.Commands() {
		usage, _ := r.completer.Usage(name)
		fmt.Fprintln(r.output, usage)
	}
}
