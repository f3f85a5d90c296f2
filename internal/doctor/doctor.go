// Package doctor runs readiness diagnostics for config, appliance files, and backend daemons.
package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rbright/predicweb/internal/appliance"
	"github.com/rbright/predicweb/internal/backend"
	"github.com/rbright/predicweb/internal/config"
	"github.com/rbright/predicweb/internal/gateway"
	"github.com/rbright/predicweb/internal/health"
	"github.com/rbright/predicweb/internal/presets"
	"github.com/rbright/predicweb/internal/route"
)

const probeTimeout = 2 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config, appliance, and backend checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("%q not found, using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "control socket directory available", "XDG_RUNTIME_DIR is empty; send/status cannot reach a running instance"))

	gw := gateway.FromConfig(cfg.Config, nil, nil)
	reader := gw.Reader()

	checks = append(checks, checkFile("appliance.config", reader.Paths.ConfigFile))
	checks = append(checks, checkFile("appliance.inputs", reader.Paths.InputsFile))
	checks = append(checks, checkSpeaker(reader))
	checks = append(checks, checkDir("appliance.macros", reader.Paths.MacrosDir))

	client := backend.Client{DialTimeout: probeTimeout}
	for _, svc := range route.Services {
		checks = append(checks, checkBackend(ctx, client, gw.Endpoint(svc)))
	}

	if cfg.Config.Health.Enable {
		checks = append(checks, checkHealth(ctx, cfg.Config.Health.Listen))
	}

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

func checkFile(name string, path string) Check {
	info, err := os.Stat(path)
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	if info.IsDir() {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s is a directory", path)}
	}
	return Check{Name: name, Pass: true, Message: path}
}

func checkDir(name string, path string) Check {
	info, err := os.Stat(path)
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	if !info.IsDir() {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s is not a directory", path)}
	}
	return Check{Name: name, Pass: true, Message: path}
}

// checkSpeaker resolves the active loudspeaker and counts its XO/DRC sets.
func checkSpeaker(reader appliance.Reader) Check {
	text, err := reader.Read(appliance.ResourceSpeaker)
	if err != nil {
		return Check{Name: "appliance.speaker", Pass: false, Message: err.Error()}
	}
	name, _ := reader.Loudspeaker()
	xo := presets.Sets(text, "XO")
	drc := presets.Sets(text, "DRC")
	return Check{
		Name:    "appliance.speaker",
		Pass:    true,
		Message: fmt.Sprintf("%s (%d XO sets, %d DRC sets)", name, len(xo), len(drc)),
	}
}

func checkBackend(ctx context.Context, client backend.Client, endpoint backend.Endpoint) Check {
	name := "backend." + endpoint.Service
	if err := client.Probe(ctx, endpoint); err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("listening at %s", endpoint.Addr())}
}

// checkHealth asks a running instance for its overall gRPC health status.
func checkHealth(ctx context.Context, addr string) Check {
	status, err := health.Check(ctx, addr, "", probeTimeout)
	if err != nil {
		return Check{Name: "health", Pass: false, Message: err.Error()}
	}
	return Check{Name: "health", Pass: status == "serving", Message: fmt.Sprintf("%s at %s", status, addr)}
}
