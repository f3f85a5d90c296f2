package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	t.Setenv(EnvConfig, "")

	explicit := "/tmp/custom.yaml"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	t.Setenv(EnvConfig, "/etc/predicweb.yaml")
	resolved, err = ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, "/etc/predicweb.yaml", resolved)

	t.Setenv(EnvConfig, "")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "predicweb", "config.yaml"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "predicweb", "config.yaml"), resolved)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default().Listen, loaded.Config.Listen)
	require.Equal(t, "/home/predic/pre.di.c/config/config.yml", loaded.Config.Appliance.ConfigFile)
	require.Len(t, loaded.Warnings, 1)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadResolvesAppliancePaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
appliance:
  home: /srv/predic
  macros_dir: /opt/macros
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)

	a := loaded.Config.Appliance
	require.Equal(t, "/srv/predic/pre.di.c/config/config.yml", a.ConfigFile)
	require.Equal(t, "/srv/predic/pre.di.c/config/inputs.yml", a.InputsFile)
	require.Equal(t, "/srv/predic/pre.di.c/loudspeakers", a.LoudspeakersDir)
	require.Equal(t, "/srv/predic/.ampli", a.AmpStateFile)
	require.Equal(t, "/opt/macros", a.MacrosDir)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 127.0.0.1:8080\n"), 0o600))
	t.Setenv(EnvListen, "0.0.0.0:80")
	t.Setenv(EnvApplianceHome, "/srv/predic")
	t.Setenv(EnvMQTTBroker, "tcp://broker:1883")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:80", loaded.Config.Listen)
	require.Equal(t, "/srv/predic/pre.di.c/config/config.yml", loaded.Config.Appliance.ConfigFile)
	require.Equal(t, "tcp://broker:1883", loaded.Config.MQTT.Broker)
}

func TestLoadRejectsInvalidEnvironmentOverride(t *testing.T) {
	t.Setenv(EnvListen, "nowhere")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), EnvListen)
}

func TestLoadInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
}
