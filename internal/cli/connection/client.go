package connection

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:6379"

// Client is a connection to a rosso server.
type Client struct {
	addr    string
	timeout time.Duration

	conn net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer
}

// Dial connects to addr. timeout bounds the dial and every later round trip
// (0 = no limit).
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return NewClient(conn, timeout), nil
}

// DialTLS connects to addr over TLS.
func DialTLS(ctx context.Context, addr string, timeout time.Duration, cfg *tls.Config) (*Client, error) {
	d := tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config:    cfg,
	}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return NewClient(conn, timeout), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, timeout time.Duration) *Client {
	return &Client{
		addr:    conn.RemoteAddr().String(),
		timeout: timeout,
		conn:    conn,
		br:      bufio.NewReader(conn),
		bw:      bufio.NewWriter(conn),
	}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one command and waits for its reply. Error replies are returned
// as a Value of KindError, not as err; err reports transport failures.
func (c *Client) Do(args ...string) (Value, error) {
	if len(args) == 0 {
		return Value{}, fmt.Errorf("empty command")
	}

	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return Value{}, err
		}
	}

	if err := c.writeCommand(args); err != nil {
		return Value{}, fmt.Errorf("send: %w", err)
	}
	v, err := ReadValue(c.br)
	if err != nil {
		return Value{}, fmt.Errorf("read reply: %w", err)
	}
	return v, nil
}

// Auth authenticates the connection. user may be empty.
func (c *Client) Auth(user, password string) error {
	args := []string{"AUTH", password}
	if user != "" {
		args = []string{"AUTH", user, password}
	}
	v, err := c.Do(args...)
	if err != nil {
		return err
	}
	return v.Err()
}

func (c *Client) writeCommand(args []string) error {
	c.bw.WriteString("*" + strconv.Itoa(len(args)) + "\r\n")
	for _, a := range args {
		c.bw.WriteString("$" + strconv.Itoa(len(a)) + "\r\n")
		c.bw.WriteString(a)
		c.bw.WriteString("\r\n")
	}
	return c.bw.Flush()
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
