package redisserver

import (
	"context"
	"strings"
	"time"

	"github.com/yndnr/rosso/internal/core/command"
	"github.com/yndnr/rosso/internal/core/domain"
	"github.com/yndnr/rosso/internal/core/reply"
	"github.com/yndnr/rosso/internal/core/service"
	"github.com/yndnr/rosso/internal/telemetry/logger"
	"github.com/yndnr/rosso/internal/telemetry/metric"
)

// CommandHandler routes commands from a connection: connection-level
// commands are answered here, keyspace commands go to the dispatcher.
type CommandHandler struct {
	dispatcher *command.Dispatcher
	auth       *service.AuthService
	metrics    *metric.Registry
}

// NewCommandHandler creates a new CommandHandler. auth and metrics may be nil.
func NewCommandHandler(dispatcher *command.Dispatcher, auth *service.AuthService, metrics *metric.Registry) *CommandHandler {
	return &CommandHandler{
		dispatcher: dispatcher,
		auth:       auth,
		metrics:    metrics,
	}
}

// connCommands are served without a prior AUTH.
var connCommands = map[string]func(h *CommandHandler, ctx context.Context, conn *Conn, args [][]byte) reply.Reply{
	"PING":   (*CommandHandler).handlePing,
	"AUTH":   (*CommandHandler).handleAuth,
	"QUIT":   (*CommandHandler).handleQuit,
	"CLIENT": (*CommandHandler).handleClient,
}

// Handle executes one command and buffers its reply on conn.
// args[0] is the command name. The returned error comes from writing the
// reply; the connection cannot be used after it.
func (h *CommandHandler) Handle(ctx context.Context, conn *Conn, args [][]byte) error {
	if len(args) == 0 {
		return nil
	}

	start := time.Now()
	name := normalizeCommandName(args[0])
	r := h.execute(ctx, conn, name, args)

	status := metric.StatusOK
	if e, ok := r.(reply.Error); ok {
		status = metric.StatusError
		h.metrics.ObserveError(e.Kind.String())
		logger.L(ctx).Debug("command failed", "cmd", name, "error", e.Message)
	}
	h.metrics.ObserveCommand(metricLabel(name), status, time.Since(start))

	return WriteReply(conn.bw, r)
}

func (h *CommandHandler) execute(ctx context.Context, conn *Conn, name string, args [][]byte) reply.Reply {
	if fn, ok := connCommands[name]; ok {
		return fn(h, ctx, conn, args)
	}

	if h.auth.Enabled() && !conn.GetState().Authenticated {
		return reply.FromError(domain.ErrNoAuth)
	}
	if err := h.auth.CheckRateLimit(conn.ClientIP()); err != nil {
		return reply.FromError(err)
	}

	return h.dispatcher.Dispatch(string(args[0]), args[1:])
}

// metricLabel bounds label cardinality to known command names.
func metricLabel(name string) string {
	if _, ok := connCommands[name]; ok || command.Known(name) {
		return strings.ToLower(name)
	}
	return "unknown"
}

// PING [message]
func (h *CommandHandler) handlePing(_ context.Context, _ *Conn, args [][]byte) reply.Reply {
	switch len(args) {
	case 1:
		return reply.Pong
	case 2:
		return reply.Bulk(args[1])
	default:
		return reply.FromError(domain.WrongArity("ping"))
	}
}

// AUTH [username] password
func (h *CommandHandler) handleAuth(ctx context.Context, conn *Conn, args [][]byte) reply.Reply {
	var username, password string
	switch len(args) {
	case 2:
		password = string(args[1])
	case 3:
		username, password = string(args[1]), string(args[2])
	default:
		return reply.FromError(domain.WrongArity("auth"))
	}

	if err := h.auth.Authenticate(username, password); err != nil {
		conn.setAuthenticated(false)
		logger.L(ctx).Warn("authentication failed", "remote", conn.RemoteAddr().String())
		return reply.FromError(err)
	}

	conn.setAuthenticated(true)
	return reply.OK
}

// QUIT
func (h *CommandHandler) handleQuit(_ context.Context, conn *Conn, _ [][]byte) reply.Reply {
	conn.quitting = true
	return reply.OK
}

// CLIENT subcommand [args...] is accepted for client library handshakes
// (SETNAME, SETINFO) and always answers OK.
func (h *CommandHandler) handleClient(_ context.Context, _ *Conn, args [][]byte) reply.Reply {
	if len(args) < 2 {
		return reply.FromError(domain.WrongArity("client"))
	}
	return reply.OK
}
