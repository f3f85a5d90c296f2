package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"
)

// ErrRemote marks a command the running instance accepted but could not complete.
var ErrRemote = errors.New("running instance reported failure")

// Send opens a unix-socket request/response roundtrip with a deadline.
func Send(ctx context.Context, path string, req Request, timeout time.Duration) (Response, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return Response{}, fmt.Errorf("set deadline: %w", err)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// Forward relays command to the instance owning path and returns its reply.
// Transport failures come back unwrapped so callers can tell IsUnavailable cases apart.
func Forward(ctx context.Context, path string, command string, timeout time.Duration) (string, error) {
	resp, err := Send(ctx, path, Request{Command: command}, timeout)
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("%w: %s", ErrRemote, resp.Error)
	}
	return resp.Reply, nil
}

// Probe checks whether a responsive owner is currently listening on path.
func Probe(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	_, err := Send(ctx, path, Request{Ping: true}, timeout)
	if err == nil {
		return true, nil
	}
	if IsUnavailable(err) {
		return false, nil
	}
	return false, fmt.Errorf("probe socket: %w", err)
}

// IsUnavailable reports failures meaning nobody owns the socket.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED)
}
