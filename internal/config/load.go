package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment variables that override the file, applied after parsing.
const (
	EnvConfig        = "PREDICWEB_CONFIG"
	EnvListen        = "PREDICWEB_LISTEN"
	EnvApplianceHome = "PREDICWEB_APPLIANCE_HOME"
	EnvMQTTBroker    = "PREDICWEB_MQTT_BROKER"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load reads the config file (defaults when absent), applies environment overrides and
// validates the result. Appliance paths left empty are derived from appliance.home.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}
	loaded := Loaded{Path: path, Config: Default()}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using defaults", path),
		})
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	default:
		loaded.Exists = true
		cfg, warnings, err := Parse(string(content), loaded.Config)
		if err != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
		}
		loaded.Config = cfg
		loaded.Warnings = append(loaded.Warnings, warnings...)
	}

	if overridden := applyEnv(&loaded.Config); len(overridden) > 0 {
		if _, err := Validate(loaded.Config); err != nil {
			return Loaded{}, fmt.Errorf("environment override %s: %w", strings.Join(overridden, ", "), err)
		}
	}
	loaded.Config.Appliance = loaded.Config.Appliance.Resolved()
	return loaded, nil
}

// applyEnv copies non-empty override variables into cfg and returns the names it used.
func applyEnv(cfg *Config) []string {
	var used []string
	set := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
			used = append(used, name)
		}
	}
	set(EnvListen, &cfg.Listen)
	set(EnvApplianceHome, &cfg.Appliance.Home)
	set(EnvMQTTBroker, &cfg.MQTT.Broker)
	return used
}
