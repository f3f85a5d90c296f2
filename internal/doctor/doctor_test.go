package doctor

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/predicweb/internal/config"
	"github.com/rbright/predicweb/internal/health"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckEnv(t *testing.T) {
	t.Setenv("TEST_DOCTOR_ENV", "/run/user/1000")

	check := checkEnv(
		"TEST_DOCTOR_ENV",
		func(v string) bool { return strings.TrimSpace(v) != "" },
		"looks good",
		"unexpected",
	)

	require.True(t, check.Pass)
	require.Equal(t, "looks good", check.Message)
}

func TestCheckFileAndDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(file, []byte("loudspeaker: lsp\n"), 0o644))

	require.True(t, checkFile("f", file).Pass)
	require.False(t, checkFile("f", dir).Pass)
	require.False(t, checkFile("f", filepath.Join(dir, "missing")).Pass)

	require.True(t, checkDir("d", dir).Pass)
	require.False(t, checkDir("d", file).Pass)
}

func listenTCP(t *testing.T) (net.Listener, int) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	return listener, listener.Addr().(*net.TCPAddr).Port
}

func writeApplianceTree(t *testing.T, home string) {
	t.Helper()
	base := filepath.Join(home, "pre.di.c")
	require.NoError(t, os.MkdirAll(filepath.Join(base, "config"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "loudspeakers", "lsp"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "clients", "macros"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "config", "config.yml"), []byte("loudspeaker: lsp\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "config", "inputs.yml"), []byte("analog:\n"), 0o644))
	profile := "XO:\n  sets:\n    2-way:\n    3-way:\nDRC:\n  sets:\n    flat:\n"
	require.NoError(t, os.WriteFile(filepath.Join(base, "loudspeakers", "lsp", "speaker.yml"), []byte(profile), 0o644))
}

func findCheck(t *testing.T, report Report, name string) Check {
	t.Helper()
	for _, check := range report.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("check %q not found in %v", name, report.Checks)
	return Check{}
}

func TestRunPassesWithHealthyAppliance(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	home := t.TempDir()
	writeApplianceTree(t, home)
	_, port := listenTCP(t)

	cfg := config.Default()
	cfg.Appliance.Home = home
	cfg.Appliance = cfg.Appliance.Resolved()
	for _, svc := range []*config.ServiceConfig{&cfg.Services.Control, &cfg.Services.Aux, &cfg.Services.Players} {
		*svc = config.ServiceConfig{Address: "127.0.0.1", Port: port}
	}

	report := Run(context.Background(), config.Loaded{Path: "/tmp/config.yaml", Config: cfg, Exists: true})
	require.True(t, report.OK(), report.String())
	require.Contains(t, findCheck(t, report, "appliance.speaker").Message, "lsp (2 XO sets, 1 DRC sets)")
	require.Contains(t, findCheck(t, report, "backend.players").Message, "listening at 127.0.0.1:")
}

func TestRunReportsMissingApplianceAndBackends(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	listener, port := listenTCP(t)
	require.NoError(t, listener.Close())

	cfg := config.Default()
	cfg.Appliance.Home = t.TempDir()
	cfg.Appliance = cfg.Appliance.Resolved()
	cfg.Services.FromAppliance = false
	cfg.Services.Control = config.ServiceConfig{Address: "127.0.0.1", Port: port}

	report := Run(context.Background(), config.Loaded{Path: "/tmp/missing.yaml", Config: cfg})
	require.False(t, report.OK())
	require.Contains(t, findCheck(t, report, "config").Message, "not found")
	require.False(t, findCheck(t, report, "XDG_RUNTIME_DIR").Pass)
	require.False(t, findCheck(t, report, "appliance.config").Pass)
	require.False(t, findCheck(t, report, "appliance.speaker").Pass)
	require.False(t, findCheck(t, report, "appliance.macros").Pass)
	require.False(t, findCheck(t, report, "backend.control").Pass)
}

func TestCheckHealthAgainstRunningServer(t *testing.T) {
	server := health.NewServer("control")
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = server.Serve(ctx, listener) }()

	check := checkHealth(context.Background(), listener.Addr().String())
	require.True(t, check.Pass, check.Message)
	require.Contains(t, check.Message, "serving at")
}

func TestCheckHealthWithoutServerFails(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	check := checkHealth(ctx, addr)
	require.False(t, check.Pass)
}
