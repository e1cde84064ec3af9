package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rosso/internal/cli/connection"
	"github.com/yndnr/rosso/internal/cli/output"
	"github.com/yndnr/rosso/internal/cli/repl"
	"github.com/yndnr/rosso/internal/infra/buildinfo"
	"github.com/yndnr/rosso/internal/infra/tlsroots"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:            "rosso-cli",
		Usage:           "command-line client for rosso-server",
		UsageText:       "rosso-cli [options] [command [arg ...]]",
		Version:         buildinfo.String(),
		Flags:           globalFlags(),
		HideHelpCommand: true,
		Action:          run,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address (host:port)",
			EnvVars: []string{"ROSSO_CLI_SERVER"},
			Value:   connection.DefaultAddr,
		},
		&cli.StringFlag{
			Name:    "pass",
			Aliases: []string{"a"},
			Usage:   "password sent with AUTH after connecting",
			EnvVars: []string{"ROSSO_CLI_PASSWORD"},
		},
		&cli.StringFlag{
			Name:  "user",
			Usage: "user name sent with AUTH",
		},
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "print raw replies without type decoration",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print replies as JSON",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "dial and per-command timeout",
			Value: 5 * time.Second,
		},
		&cli.BoolFlag{
			Name:  "tls",
			Usage: "connect using TLS",
		},
		&cli.StringFlag{
			Name:  "cacert",
			Usage: "CA certificate file to verify the server (default system roots)",
		},
		&cli.StringFlag{
			Name:  "cert",
			Usage: "client certificate file for servers that verify clients",
		},
		&cli.StringFlag{
			Name:  "key",
			Usage: "client private key file",
		},
		&cli.StringFlag{
			Name:  "sni",
			Usage: "server name for TLS verification (default host of --server)",
		},
		&cli.StringFlag{
			Name:    "history-file",
			Usage:   "REPL history file (default ~/.rosso_cli_history)",
			EnvVars: []string{"ROSSO_CLI_HISTFILE"},
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server      string
	User        string
	Password    string
	Format      output.Format
	Timeout     time.Duration
	HistoryFile string

	TLS        bool
	CACert     string
	ClientCert string
	ClientKey  string
	ServerName string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	if c.Bool("raw") && c.Bool("json") {
		return nil, errors.New("--raw and --json are mutually exclusive")
	}
	format := output.FormatHuman
	switch {
	case c.Bool("raw"):
		format = output.FormatRaw
	case c.Bool("json"):
		format = output.FormatJSON
	}
	return &GlobalFlags{
		Server:      c.String("server"),
		User:        c.String("user"),
		Password:    c.String("pass"),
		Format:      format,
		Timeout:     c.Duration("timeout"),
		HistoryFile: c.String("history-file"),
		TLS:         c.Bool("tls"),
		CACert:      c.String("cacert"),
		ClientCert:  c.String("cert"),
		ClientKey:   c.String("key"),
		ServerName:  c.String("sni"),
	}, nil
}

func run(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	client, err := dial(c.Context, flags)
	if err != nil {
		return err
	}
	defer client.Close()

	if flags.Password != "" {
		if err := client.Auth(flags.User, flags.Password); err != nil {
			return fmt.Errorf("auth failed: %w", err)
		}
	}

	formatter := output.NewFormatter(flags.Format)

	if c.NArg() > 0 {
		v, err := client.Do(c.Args().Slice()...)
		if err != nil {
			return err
		}
		return formatter.Format(c.App.Writer, v)
	}

	history := repl.NewHistory()
	if flags.HistoryFile != "" {
		history = repl.NewHistoryFile(flags.HistoryFile, 0)
	}
	r := repl.New(client, formatter,
		repl.WithIO(inputOf(c), c.App.Writer),
		repl.WithPrompt(promptFor(client.Addr())),
		repl.WithHistory(history),
	)
	return r.Run()
}

func dial(ctx context.Context, flags *GlobalFlags) (*connection.Client, error) {
	if !flags.TLS {
		return connection.Dial(ctx, flags.Server, flags.Timeout)
	}

	var roots *tlsroots.Pool
	if flags.CACert != "" {
		var err error
		if roots, err = tlsroots.LoadPool(flags.CACert); err != nil {
			return nil, err
		}
	}
	serverName := flags.ServerName
	if serverName == "" {
		if host, _, err := net.SplitHostPort(flags.Server); err == nil {
			serverName = host
		}
	}
	cfg := tlsroots.ClientConfig(roots, serverName)
	if flags.ClientCert != "" || flags.ClientKey != "" {
		if err := tlsroots.WithClientCertificate(cfg, flags.ClientCert, flags.ClientKey); err != nil {
			return nil, err
		}
	}
	return connection.DialTLS(ctx, flags.Server, flags.Timeout, cfg)
}

func inputOf(c *cli.Context) io.Reader {
	if c.App.Reader != nil {
		return c.App.Reader
	}
	return os.Stdin
}

// promptFor renders "host:port> " the way redis-cli does.
func promptFor(addr string) string {
	return strings.TrimSpace(addr) + "> "
}

// Run executes the application with args, mapping errors to stderr.
func Run(ctx context.Context, args []string) int {
	app := App()
	if err := app.RunContext(ctx, args); err != nil {
		PrintError("%v", err)
		return 1
	}
	return 0
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
