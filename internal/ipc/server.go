package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Handler processes one control-socket request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// CommandHandler answers pings itself and passes commands to dispatch.
func CommandHandler(dispatch func(context.Context, string) (string, error)) Handler {
	return HandlerFunc(func(ctx context.Context, req Request) Response {
		if req.Ping {
			return Response{OK: true}
		}
		if req.Command == "" {
			return Response{OK: false, Error: "missing command"}
		}
		reply, err := dispatch(ctx, req.Command)
		if err != nil {
			return Response{OK: false, Error: err.Error()}
		}
		return Response{OK: true, Reply: reply}
	})
}

// Serve accepts unix-socket clients until context cancellation or listener close.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept control connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()
			serveConn(ctx, c, handler)
		}(conn)
	}
}

func serveConn(ctx context.Context, c net.Conn, handler Handler) {
	enc := json.NewEncoder(c)
	line, err := bufio.NewReader(c).ReadBytes('\n')
	if err != nil {
		_ = enc.Encode(Response{OK: false, Error: fmt.Sprintf("read request: %v", err)})
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		_ = enc.Encode(Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	_ = enc.Encode(handler.Handle(ctx, req))
}
