package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDir   = "predicweb"
	fileName = "config.yaml"
)

// ResolvePath picks the config file: the --config flag, then $PREDICWEB_CONFIG, then
// $XDG_CONFIG_HOME/predicweb/config.yaml, then ~/.config/predicweb/config.yaml.
func ResolvePath(explicit string) (string, error) {
	for _, candidate := range []string{explicit, os.Getenv(EnvConfig)} {
		if strings.TrimSpace(candidate) != "" {
			return candidate, nil
		}
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, appDir, fileName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}
	return filepath.Join(home, ".config", appDir, fileName), nil
}
