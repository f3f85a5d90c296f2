// Package httpapi exposes the gateway over HTTP and WebSocket.
package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/rbright/predicweb/internal/metrics"
	"github.com/rbright/predicweb/internal/status"
)

const defaultPollInterval = 1500 * time.Millisecond

// Gateway is the request surface the HTTP layer serves.
type Gateway interface {
	Dispatch(ctx context.Context, command string) (string, error)
	GetStatus(ctx context.Context) (string, error)
	Snapshot(ctx context.Context) (status.Snapshot, error)
	GetConfig(resource string) (string, error)
	Inputs() ([]string, error)
	ListPresetSets(property string) ([]string, error)
	ListPresetOptions(property string) ([]string, error)
	ListMacros() ([]string, error)
	AmpliStatus() (string, error)
	Loudspeaker() (string, error)
	UsesEcasound() (bool, error)
}

// Options configures the handler tree.
type Options struct {
	Gateway Gateway
	// Metrics may be nil, which disables the metrics endpoint and HTTP counters.
	Metrics      *metrics.Metrics
	MetricsPath  string
	PollInterval time.Duration
	CORS         bool
	StaticDir    string
	Logger       *slog.Logger
}

type server struct {
	gateway  Gateway
	metrics  *metrics.Metrics
	interval time.Duration
	logger   *slog.Logger
}

// NewHandler builds the full HTTP handler including middleware.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	s := &server{
		gateway:  opts.Gateway,
		metrics:  opts.Metrics,
		interval: interval,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/php/functions.php", s.handleCommand)
	mux.HandleFunc("/api/command", s.handleCommand)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/status/raw", s.handleStatusRaw)
	mux.HandleFunc("GET /api/config/{resource}", s.handleConfig)
	mux.HandleFunc("GET /api/inputs", s.handleInputs)
	mux.HandleFunc("GET /api/presets/sets", s.handlePresetSets)
	mux.HandleFunc("GET /api/presets/options", s.handlePresetOptions)
	mux.HandleFunc("GET /api/macros", s.handleMacros)
	mux.HandleFunc("GET /api/amp", s.handleAmp)
	mux.HandleFunc("GET /api/speaker", s.handleSpeaker)
	mux.HandleFunc("GET /ws/status", s.handleStatusStream)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	if s.metrics != nil {
		path := strings.TrimSpace(opts.MetricsPath)
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, s.metrics.Handler())
	}
	if dir := strings.TrimSpace(opts.StaticDir); dir != "" {
		mux.Handle("/", gzhttp.GzipHandler(http.FileServer(http.Dir(dir))))
	}

	var handler http.Handler = mux
	if opts.CORS {
		handler = withCORS(handler)
	}
	handler = s.withAccessLog(handler)
	return withRequestID(handler)
}
