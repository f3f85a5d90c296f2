// Package backend performs one request/response exchange with an appliance daemon.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

const (
	defaultDialTimeout = 2 * time.Second
	defaultIOTimeout   = 5 * time.Second
	defaultBufferSize  = 4096

	quitCommand = "quit"
)

var (
	// ErrConnect marks a backend socket that could not be established.
	ErrConnect = errors.New("backend unreachable")
	// ErrExchange marks an I/O failure after the socket was established.
	ErrExchange = errors.New("backend exchange failed")
)

// Endpoint identifies one backend daemon.
type Endpoint struct {
	Service string
	Address string
	Port    int
}

// Addr renders host:port.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Service + "@" + e.Addr()
}

// Observer is notified once per finished Call.
type Observer interface {
	Observe(service string, elapsed time.Duration, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(service string, elapsed time.Duration, err error)

func (f ObserverFunc) Observe(service string, elapsed time.Duration, err error) {
	f(service, elapsed, err)
}

// Client opens a fresh connection per Call. Zero values take package defaults.
type Client struct {
	DialTimeout time.Duration
	IOTimeout   time.Duration
	BufferSize  int
	Observer    Observer
}

// Call writes command, reads one bounded reply, then sends quit and drains the acknowledgement.
func (c Client) Call(ctx context.Context, endpoint Endpoint, command string) (string, error) {
	started := time.Now()
	reply, err := c.call(ctx, endpoint, command)
	if c.Observer != nil {
		c.Observer.Observe(endpoint.Service, time.Since(started), err)
	}
	return reply, err
}

func (c Client) call(ctx context.Context, endpoint Endpoint, command string) (string, error) {
	conn, err := c.dial(ctx, endpoint)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	deadline := time.Now().Add(c.ioTimeout())
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("%w: set deadline on %s: %v", ErrExchange, endpoint, err)
	}
	// Cancellation unblocks any pending read or write.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := conn.Write([]byte(command)); err != nil {
		return "", exchangeError(ctx, "write to", endpoint, err)
	}

	buf := make([]byte, c.bufferSize())
	n, err := conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", exchangeError(ctx, "read from", endpoint, err)
	}
	reply := string(buf[:n])

	// The peer may already have hung up; the reply stands either way.
	if _, err := conn.Write([]byte(quitCommand)); err == nil {
		_, _ = conn.Read(buf)
	}

	return reply, nil
}

// exchangeError reports the context error instead of the I/O error when ctx ended the exchange.
func exchangeError(ctx context.Context, op string, endpoint Endpoint, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrExchange, op, endpoint, ctxErr)
	}
	return fmt.Errorf("%w: %s %s: %v", ErrExchange, op, endpoint, err)
}

// Probe checks that endpoint accepts TCP connections without sending a command.
func (c Client) Probe(ctx context.Context, endpoint Endpoint) error {
	conn, err := c.dial(ctx, endpoint)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (c Client) dial(ctx context.Context, endpoint Endpoint) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.dialTimeout()}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint.Addr())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, endpoint, err)
	}
	return conn, nil
}

func (c Client) dialTimeout() time.Duration {
	if c.DialTimeout <= 0 {
		return defaultDialTimeout
	}
	return c.DialTimeout
}

func (c Client) ioTimeout() time.Duration {
	if c.IOTimeout <= 0 {
		return defaultIOTimeout
	}
	return c.IOTimeout
}

func (c Client) bufferSize() int {
	if c.BufferSize <= 0 {
		return defaultBufferSize
	}
	return c.BufferSize
}
