package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/predicweb/internal/backend"
	"github.com/rbright/predicweb/internal/config"
	"github.com/rbright/predicweb/internal/discovery"
	"github.com/rbright/predicweb/internal/gateway"
	"github.com/rbright/predicweb/internal/health"
	"github.com/rbright/predicweb/internal/httpapi"
	"github.com/rbright/predicweb/internal/ipc"
	"github.com/rbright/predicweb/internal/metrics"
	"github.com/rbright/predicweb/internal/mqttbridge"
	"github.com/rbright/predicweb/internal/route"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
	socketProbe       = 180 * time.Millisecond
	socketRetries     = 8
)

// commandServe runs the HTTP gateway plus every enabled side service until ctx ends.
func (r Runner) commandServe(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	control, socketPath, err := acquireControlSocket(ctx, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enable {
		m = metrics.New()
	}
	var hs *health.Server
	if cfg.Health.Enable {
		names := make([]string, 0, len(route.Services))
		for _, svc := range route.Services {
			names = append(names, string(svc))
		}
		hs = health.NewServer(names...)
	}

	gw := gateway.FromConfig(cfg, observers(m, hs), logger)
	pollInterval := time.Duration(cfg.Poll.IntervalMS) * time.Millisecond

	httpListener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		if control != nil {
			_ = control.Close()
		}
		fmt.Fprintf(r.Stderr, "error: listen %s: %v\n", cfg.Listen, err)
		return 1
	}

	group, groupCtx := errgroup.WithContext(ctx)

	server := &http.Server{
		Handler: httpapi.NewHandler(httpapi.Options{
			Gateway:      gw,
			Metrics:      m,
			MetricsPath:  cfg.Metrics.Path,
			PollInterval: pollInterval,
			CORS:         cfg.CORS,
			StaticDir:    cfg.StaticDir,
			Logger:       logger,
		}),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	group.Go(func() error {
		return serveHTTP(groupCtx, server, httpListener)
	})
	logger.Info("http listening", "addr", httpListener.Addr().String())

	if control != nil {
		group.Go(func() error {
			return ipc.Serve(groupCtx, control, ipc.CommandHandler(gw.Dispatch))
		})
		logger.Info("control socket listening", "path", socketPath)
	}

	if hs != nil {
		healthListener, err := net.Listen("tcp", cfg.Health.Listen)
		if err != nil {
			logger.Error("health listen failed", "addr", cfg.Health.Listen, "error", err.Error())
		} else {
			group.Go(func() error { return hs.Serve(groupCtx, healthListener) })
			logger.Info("grpc health listening", "addr", healthListener.Addr().String())
		}
	}

	if cfg.Discovery.Enable {
		listenAddr := httpListener.Addr().String()
		group.Go(func() error {
			if err := discovery.Advertise(groupCtx, cfg.Discovery.Instance, listenAddr, logger); err != nil {
				logger.Warn("mdns advertisement disabled", "error", err.Error())
			}
			return nil
		})
	}

	if cfg.MQTT.Enable {
		transport, err := mqttbridge.Dial(cfg.MQTT, logger)
		if err != nil {
			logger.Warn("mqtt bridge disabled", "error", err.Error())
		} else {
			bridge := mqttbridge.New(transport, gw, mqttbridge.Options{
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Interval:    pollInterval,
				Logger:      logger,
				OnPoll: func(err error) {
					if m != nil {
						m.StatusPoll("mqtt", err)
					}
				},
			})
			group.Go(func() error { return bridge.Run(groupCtx) })
		}
	}

	if err := group.Wait(); err != nil {
		logger.Error("serve failed", "error", err.Error())
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	logger.Info("serve stopped")
	return 0
}

// acquireControlSocket claims the single-instance socket. A missing XDG_RUNTIME_DIR only
// disables forwarding; another live instance is fatal.
func acquireControlSocket(ctx context.Context, logger *slog.Logger) (net.Listener, string, error) {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		logger.Warn("control socket disabled", "error", err.Error())
		return nil, "", nil
	}
	listener, err := ipc.Acquire(ctx, socketPath, socketProbe, socketRetries)
	if err != nil {
		return nil, "", err
	}
	return listener, socketPath, nil
}

func serveHTTP(ctx context.Context, server *http.Server, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

// observers fans backend outcomes out to metrics and health, whichever are enabled.
func observers(m *metrics.Metrics, hs *health.Server) backend.Observer {
	var list []backend.Observer
	if m != nil {
		list = append(list, m)
	}
	if hs != nil {
		list = append(list, hs)
	}
	if len(list) == 0 {
		return nil
	}
	return backend.ObserverFunc(func(service string, elapsed time.Duration, err error) {
		for _, o := range list {
			o.Observe(service, elapsed, err)
		}
	})
}
