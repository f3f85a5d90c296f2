package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rbright/predicweb/internal/cli"
	"github.com/rbright/predicweb/internal/config"
	"github.com/rbright/predicweb/internal/doctor"
	"github.com/rbright/predicweb/internal/gateway"
	"github.com/rbright/predicweb/internal/ipc"
	"github.com/rbright/predicweb/internal/logging"
	"github.com/rbright/predicweb/internal/macros"
	"github.com/rbright/predicweb/internal/status"
	"github.com/rbright/predicweb/internal/version"
)

const (
	binaryName     = "predicweb"
	forwardTimeout = 8 * time.Second
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if parsed.Listen != "" {
		cfgLoaded.Config.Listen = parsed.Listen
	}

	logOpts := logging.Options{Level: cfgLoaded.Config.Logging.Level}
	if parsed.Command == cli.CommandServe {
		logOpts.Mirror = r.Stderr
	}
	logRuntime, err := logging.New(logOpts)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		if parsed.Command != cli.CommandServe {
			fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		}
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandServe:
		return r.commandServe(ctx, cfgLoaded.Config, logger)
	}

	gw := gateway.FromConfig(cfgLoaded.Config, nil, logger)
	switch parsed.Command {
	case cli.CommandStatus:
		return r.commandStatus(ctx, gw)
	case cli.CommandSend:
		return r.commandSend(ctx, gw, parsed.Payload())
	case cli.CommandPresets:
		return r.commandPresets(gw, parsed.Args[0])
	case cli.CommandMacros:
		return r.commandMacros(gw)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandStatus prints the decoded status, preferring the running instance.
func (r Runner) commandStatus(ctx context.Context, gw *gateway.Gateway) int {
	report, err := r.forwardOrDirect(ctx, "status", gw.GetStatus)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	snap := status.Parse(report)
	fields := snap.Fields()
	for _, key := range status.KnownKeys {
		fmt.Fprintf(r.Stdout, "%-15s %s\n", key+":", fields[key])
	}
	return 0
}

func (r Runner) commandSend(ctx context.Context, gw *gateway.Gateway, command string) int {
	reply, err := r.forwardOrDirect(ctx, command, func(ctx context.Context) (string, error) {
		return gw.Dispatch(ctx, command)
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if reply != "" {
		fmt.Fprint(r.Stdout, reply)
		if !strings.HasSuffix(reply, "\n") {
			fmt.Fprintln(r.Stdout)
		}
	}
	return 0
}

// commandPresets lists the sets: block of property, falling back to its inline options.
func (r Runner) commandPresets(gw *gateway.Gateway, property string) int {
	names, err := gw.ListPresetSets(property)
	if err == nil && len(names) == 0 {
		names, err = gw.ListPresetOptions(property)
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(names) == 0 {
		fmt.Fprintf(r.Stderr, "no presets for %s\n", property)
		return 1
	}
	for _, name := range names {
		fmt.Fprintln(r.Stdout, name)
	}
	return 0
}

func (r Runner) commandMacros(gw *gateway.Gateway) int {
	names, err := gw.ListMacros()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	for _, name := range names {
		fmt.Fprintf(r.Stdout, "%s\t%s\n", macros.Slot(name), macros.Label(name))
	}
	return 0
}

// forwardOrDirect relays command to a running instance, or calls direct when none owns the socket.
func (r Runner) forwardOrDirect(ctx context.Context, command string, direct func(context.Context) (string, error)) (string, error) {
	socketPath, err := ipc.RuntimeSocketPath()
	if err == nil {
		reply, handled, err := tryForward(ctx, socketPath, command)
		if handled {
			return reply, err
		}
	}
	return direct(ctx)
}

func tryForward(ctx context.Context, socketPath string, command string) (string, bool, error) {
	reply, err := ipc.Forward(ctx, socketPath, command, forwardTimeout)
	if err == nil {
		return reply, true, nil
	}
	if ipc.IsUnavailable(err) {
		return "", false, nil
	}
	if errors.Is(err, ipc.ErrRemote) {
		return "", true, err
	}
	return "", true, fmt.Errorf("forward command %q: %w", command, err)
}
