// Package gateway answers UI requests by routing commands to the appliance daemons
// and reading the appliance configuration resources.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rbright/predicweb/internal/appliance"
	"github.com/rbright/predicweb/internal/backend"
	"github.com/rbright/predicweb/internal/config"
	"github.com/rbright/predicweb/internal/macros"
	"github.com/rbright/predicweb/internal/presets"
	"github.com/rbright/predicweb/internal/route"
	"github.com/rbright/predicweb/internal/status"
)

const (
	commandStatus      = "status"
	commandPlayerState = "player_state"
	commandPlayerMeta  = "player_get_meta"
)

// Caller performs one backend exchange. backend.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, endpoint backend.Endpoint, command string) (string, error)
}

// Options configures a Gateway.
type Options struct {
	Paths  appliance.Paths
	Caller Caller
	// Endpoints holds the static endpoint of each service.
	Endpoints map[route.Service]backend.Endpoint
	// FromAppliance prefers <service>_address / <service>_port from the appliance config.yml.
	FromAppliance bool
	StrictURLs    bool
	Logger        *slog.Logger
}

// Gateway is safe for concurrent use. It keeps no state between calls.
type Gateway struct {
	reader        appliance.Reader
	caller        Caller
	endpoints     map[route.Service]backend.Endpoint
	fromAppliance bool
	strictURLs    bool
	logger        *slog.Logger
}

// New builds a gateway from opts.
func New(opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	caller := opts.Caller
	if caller == nil {
		caller = backend.Client{}
	}
	endpoints := make(map[route.Service]backend.Endpoint, len(opts.Endpoints))
	for svc, ep := range opts.Endpoints {
		ep.Service = string(svc)
		endpoints[svc] = ep
	}
	return &Gateway{
		reader:        appliance.Reader{Paths: opts.Paths},
		caller:        caller,
		endpoints:     endpoints,
		fromAppliance: opts.FromAppliance,
		strictURLs:    opts.StrictURLs,
		logger:        logger,
	}
}

// FromConfig wires a gateway from runtime configuration.
func FromConfig(cfg config.Config, observer backend.Observer, logger *slog.Logger) *Gateway {
	home := cfg.Appliance.Resolved()
	return New(Options{
		Paths: appliance.Paths{
			ConfigFile:      home.ConfigFile,
			InputsFile:      home.InputsFile,
			LoudspeakersDir: home.LoudspeakersDir,
			AmpStateFile:    home.AmpStateFile,
			MacrosDir:       home.MacrosDir,
		},
		Caller: backend.Client{
			DialTimeout: time.Duration(cfg.Backend.DialTimeoutMS) * time.Millisecond,
			IOTimeout:   time.Duration(cfg.Backend.IOTimeoutMS) * time.Millisecond,
			BufferSize:  cfg.Backend.BufferSize,
			Observer:    observer,
		},
		Endpoints: map[route.Service]backend.Endpoint{
			route.ServiceControl: {Address: cfg.Services.Control.Address, Port: cfg.Services.Control.Port},
			route.ServiceAux:     {Address: cfg.Services.Aux.Address, Port: cfg.Services.Aux.Port},
			route.ServicePlayers: {Address: cfg.Services.Players.Address, Port: cfg.Services.Players.Port},
		},
		FromAppliance: cfg.Services.FromAppliance,
		StrictURLs:    cfg.Commands.StrictURLs,
		Logger:        logger,
	})
}

// Reader exposes the appliance reader used by this gateway.
func (g *Gateway) Reader() appliance.Reader {
	return g.reader
}

// Dispatch classifies command and answers it with at most one backend round trip.
func (g *Gateway) Dispatch(ctx context.Context, command string) (string, error) {
	r := route.Classify(command)
	switch r.Kind {
	case route.KindReadFile:
		resource, err := appliance.ParseResource(r.Resource)
		if err != nil {
			return "", err
		}
		return g.reader.Read(resource)
	case route.KindAmpState:
		return g.reader.AmpState()
	case route.KindListMacros:
		names, err := g.ListMacros()
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(names)
		if err != nil {
			return "", fmt.Errorf("encode macros: %w", err)
		}
		return string(data), nil
	}

	if g.strictURLs && route.IsStreamURL(r.Command) {
		if err := route.ValidateStreamURL(r.Command); err != nil {
			return "", err
		}
	}
	return g.forward(ctx, r.Service, r.Command)
}

// GetStatus returns the raw status report of the control daemon.
func (g *Gateway) GetStatus(ctx context.Context) (string, error) {
	return g.forward(ctx, route.ServiceControl, commandStatus)
}

// Snapshot fetches and decodes the status report.
func (g *Gateway) Snapshot(ctx context.Context) (status.Snapshot, error) {
	report, err := g.GetStatus(ctx)
	if err != nil {
		return status.Snapshot{}, err
	}
	return status.Parse(report), nil
}

// GetConfig returns one configuration resource verbatim.
func (g *Gateway) GetConfig(name string) (string, error) {
	resource, err := appliance.ParseResource(name)
	if err != nil {
		return "", err
	}
	return g.reader.Read(resource)
}

// Inputs lists the selectable inputs, ending with "none".
func (g *Gateway) Inputs() ([]string, error) {
	text, err := g.reader.Read(appliance.ResourceInputs)
	if err != nil {
		return nil, err
	}
	return appliance.Inputs(text), nil
}

// ListPresetSets enumerates the sets: block of property in the active speaker profile.
func (g *Gateway) ListPresetSets(property string) ([]string, error) {
	text, err := g.reader.Read(appliance.ResourceSpeaker)
	if err != nil {
		return nil, err
	}
	return presets.Sets(text, property), nil
}

// ListPresetOptions enumerates the inline options of property in the active speaker profile.
func (g *Gateway) ListPresetOptions(property string) ([]string, error) {
	text, err := g.reader.Read(appliance.ResourceSpeaker)
	if err != nil {
		return nil, err
	}
	return presets.Flat(text, property), nil
}

// ListMacros returns the numbered macro entries of the macros directory.
func (g *Gateway) ListMacros() ([]string, error) {
	names, err := macros.ListDir(g.reader.Paths.MacrosDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", appliance.ErrNotFound, err)
		}
		return nil, err
	}
	return names, nil
}

// AmpliStatus returns the cached amplifier state, trimmed.
func (g *Gateway) AmpliStatus() (string, error) {
	state, err := g.reader.AmpState()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(state), nil
}

// PlayerState asks the players daemon for its transport state.
func (g *Gateway) PlayerState(ctx context.Context) (string, error) {
	return g.forward(ctx, route.ServicePlayers, commandPlayerState)
}

// PlayerMeta asks the players daemon for the current track metadata.
func (g *Gateway) PlayerMeta(ctx context.Context) (string, error) {
	return g.forward(ctx, route.ServicePlayers, commandPlayerMeta)
}

// Loudspeaker returns the active loudspeaker name.
func (g *Gateway) Loudspeaker() (string, error) {
	return g.reader.Loudspeaker()
}

// UsesEcasound reports whether the PEQ selector applies to this appliance.
func (g *Gateway) UsesEcasound() (bool, error) {
	return g.reader.UsesEcasound()
}

// Endpoint resolves where service listens. A valid address and port pair from the
// appliance config.yml wins over the static configuration.
func (g *Gateway) Endpoint(service route.Service) backend.Endpoint {
	ep, ok := g.endpoints[service]
	if !ok {
		ep = backend.Endpoint{Service: string(service)}
	}
	if !g.fromAppliance {
		return ep
	}

	text, err := g.reader.Read(appliance.ResourceConfig)
	if err != nil {
		return ep
	}
	address := appliance.Scalar(text, string(service)+"_address")
	port, err := strconv.Atoi(appliance.Scalar(text, string(service)+"_port"))
	if address == "" || err != nil || port < 1 || port > 65535 {
		return ep
	}
	ep.Address = address
	ep.Port = port
	return ep
}

func (g *Gateway) forward(ctx context.Context, service route.Service, command string) (string, error) {
	endpoint := g.Endpoint(service)
	reply, err := g.caller.Call(ctx, endpoint, command)
	if err != nil {
		g.logger.Warn("backend call failed",
			"service", string(service),
			"endpoint", endpoint.Addr(),
			"command", command,
			"error", err.Error(),
		)
		return "", err
	}
	g.logger.Debug("backend call", "service", string(service), "command", command, "reply_bytes", len(reply))
	return reply, nil
}
