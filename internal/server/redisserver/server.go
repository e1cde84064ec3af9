package redisserver

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/rosso/internal/core/command"
	"github.com/yndnr/rosso/internal/core/domain"
	"github.com/yndnr/rosso/internal/core/reply"
	"github.com/yndnr/rosso/internal/core/service"
	"github.com/yndnr/rosso/internal/telemetry/logger"
	"github.com/yndnr/rosso/internal/telemetry/metric"
)

// Config holds the Redis server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadTimeout is the timeout for reading a command once its first byte arrived (default: 30s).
	// Helps prevent slowloris attacks.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a response (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is the timeout for idle connections (default: 5m).
	IdleTimeout time.Duration
	// MaxClients caps concurrently open connections (0 = unlimited).
	MaxClients int
	// TLS, when set, wraps the listener (nil = plaintext).
	TLS *tls.Config
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		MaxClients:   10000,
	}
}

// Server represents the Redis protocol server.
type Server struct {
	cfg     *Config
	handler *CommandHandler
	auth    *service.AuthService
	metrics *metric.Registry
	logger  *slog.Logger

	mu      sync.Mutex
	ln      net.Listener
	conns   map[*Conn]struct{}
	clients map[string]int

	running atomic.Bool
	wg      sync.WaitGroup
}

// ConnState holds the state of a client connection.
type ConnState struct {
	ID            string
	Authenticated bool
	ConnectedAt   time.Time
}

// Conn represents a single Redis client connection.
type Conn struct {
	netConn net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer

	stateMu sync.RWMutex
	state   ConnState

	// quitting is set by QUIT; the connection closes after the reply is flushed.
	quitting bool
	closed   atomic.Bool
}

func newConn(c net.Conn) *Conn {
	return &Conn{
		netConn: c,
		br:      bufio.NewReader(c),
		bw:      bufio.NewWriter(c),
		state: ConnState{
			ID:          ulid.Make().String(),
			ConnectedAt: time.Now(),
		},
	}
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// ClientIP returns the remote host without port.
func (c *Conn) ClientIP() string {
	addr := c.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func (c *Conn) GetState() ConnState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Conn) setAuthenticated(v bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.state.Authenticated = v
}

// New creates a new Redis protocol server.
func New(cfg *Config, dispatcher *command.Dispatcher, auth *service.AuthService, metrics *metric.Registry, log *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "redis")

	return &Server{
		cfg:     cfg,
		handler: NewCommandHandler(dispatcher, auth, metrics),
		auth:    auth,
		metrics: metrics,
		logger:  log,
		conns:   make(map[*Conn]struct{}),
		clients: make(map[string]int),
	}
}

// Start binds the listener and serves connections in the background.
// It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	if s.cfg.TLS != nil {
		ln = tls.NewListener(ln, s.cfg.TLS)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.running.Store(true)

	s.logger.Info("redis server listening", "address", ln.Addr().String(), "tls", s.cfg.TLS != nil)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("redis accept loop stopped", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ConnCount returns the number of open client connections.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Shutdown stops accepting, closes open connections and waits for
// their goroutines to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error

	s.mu.Lock()
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	var delay time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if !isTransientAcceptErr(err) {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				return err
			}

			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay = min(delay*2, maxAcceptDelay)
			}
			s.logger.Warn("accept failed, retrying", "error", err, "delay", delay)

			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil
			case <-t.C:
			}
			continue
		}
		delay = 0

		c := newConn(nc)
		if !s.register(c) {
			s.reject(c)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.unregister(c)
			s.serveConn(ctx, c)
		}()
	}
}

func (s *Server) register(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}
	if s.cfg.MaxClients > 0 && len(s.conns) >= s.cfg.MaxClients {
		return false
	}
	s.conns[c] = struct{}{}
	s.clients[c.ClientIP()]++
	s.metrics.ConnOpened()
	return true
}

func (s *Server) unregister(c *Conn) {
	_ = c.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, c)
	ip := c.ClientIP()
	if s.clients[ip]--; s.clients[ip] <= 0 {
		delete(s.clients, ip)
		s.auth.ReleaseClient(ip)
	}
	s.metrics.ConnClosed()
}

func (s *Server) reject(c *Conn) {
	s.metrics.ConnRejected()
	s.logger.Warn("connection rejected", "remote", c.RemoteAddr().String(), "max_clients", s.cfg.MaxClients)

	_ = c.netConn.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
	_ = WriteReply(c.bw, reply.FromError(domain.ErrMaxClients))
	_ = c.bw.Flush()
	_ = c.Close()
}

func (s *Server) readTimeout() time.Duration {
	if s.cfg.ReadTimeout > 0 {
		return s.cfg.ReadTimeout
	}
	return 30 * time.Second
}

func (s *Server) writeTimeout() time.Duration {
	if s.cfg.WriteTimeout > 0 {
		return s.cfg.WriteTimeout
	}
	return 30 * time.Second
}

func (s *Server) idleTimeout() time.Duration {
	if s.cfg.IdleTimeout > 0 {
		return s.cfg.IdleTimeout
	}
	return 5 * time.Minute
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer c.Close()

	state := c.GetState()
	ctx = logger.WithConnID(ctx, state.ID)
	ctx = logger.WithLogger(ctx, s.logger.With("remote", c.RemoteAddr().String()))
	log := logger.L(ctx)

	log.Debug("client connected")
	defer log.Debug("client disconnected")

	for {
		// First byte: allow idle timeout (connection can stay idle between commands).
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.idleTimeout())); err != nil {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			s.logReadError(log, err)
			return
		}

		// After first byte: tighten to per-command read timeout (slowloris protection).
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.readTimeout())); err != nil {
			return
		}

		args, err := ReadCommand(c.br)
		if err != nil {
			var pe *ProtocolError
			if errors.As(err, &pe) {
				// Close connection on malformed input; the stream can't be resynchronized.
				log.Warn("protocol error", "reason", pe.Reason, "limit", pe.Limit)
				_ = c.netConn.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
				_ = WriteReply(c.bw, reply.FromError(domain.ErrProtocol.WithDetails(pe.Reason)))
				_ = c.bw.Flush()
				return
			}
			s.logReadError(log, err)
			return
		}

		if len(args) > 0 {
			// Large replies flush from inside the writer, so the deadline
			// must be fresh before any reply byte is produced.
			if err := c.netConn.SetWriteDeadline(time.Now().Add(s.writeTimeout())); err != nil {
				return
			}
			if err := s.handler.Handle(ctx, c, args); err != nil {
				log.Debug("write failed", "error", err)
				return
			}
		}

		// Pipelined commands already buffered are answered in one flush.
		if c.br.Buffered() > 0 && !c.quitting {
			continue
		}

		if err := c.netConn.SetWriteDeadline(time.Now().Add(s.writeTimeout())); err != nil {
			return
		}
		if err := c.bw.Flush(); err != nil {
			log.Debug("write failed", "error", err)
			return
		}
		if c.quitting {
			return
		}
	}
}

func (s *Server) logReadError(log *slog.Logger, err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		log.Debug("connection timed out")
		return
	}
	log.Debug("connection read error", "error", err)
}

// isTransientAcceptErr reports whether Accept may succeed if retried,
// such as when the process is out of file descriptors.
func isTransientAcceptErr(err error) bool {
	if errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE) ||
		errors.Is(err, syscall.ENOBUFS) || errors.Is(err, syscall.ENOMEM) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
