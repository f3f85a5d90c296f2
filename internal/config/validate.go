package config

import (
	"fmt"
	"net"
	"strings"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Listen) == "" {
		return nil, fmt.Errorf("listen must not be empty")
	}
	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		return nil, fmt.Errorf("listen must be host:port: %w", err)
	}
	if strings.TrimSpace(cfg.Appliance.Home) == "" && cfg.Appliance.ConfigFile == "" {
		return nil, fmt.Errorf("appliance.home must not be empty unless appliance.config_file is set")
	}

	services := []struct {
		name string
		svc  ServiceConfig
	}{
		{"control", cfg.Services.Control},
		{"aux", cfg.Services.Aux},
		{"players", cfg.Services.Players},
	}
	for _, s := range services {
		if strings.TrimSpace(s.svc.Address) == "" {
			return nil, fmt.Errorf("services.%s.address must not be empty", s.name)
		}
		if s.svc.Port <= 0 || s.svc.Port > 65535 {
			return nil, fmt.Errorf("services.%s.port must be within 1..65535", s.name)
		}
	}

	if cfg.Backend.DialTimeoutMS <= 0 {
		return nil, fmt.Errorf("backend.dial_timeout_ms must be > 0")
	}
	if cfg.Backend.IOTimeoutMS <= 0 {
		return nil, fmt.Errorf("backend.io_timeout_ms must be > 0")
	}
	if cfg.Backend.BufferSize < 256 {
		return nil, fmt.Errorf("backend.buffer_size must be >= 256")
	}

	if cfg.Poll.IntervalMS <= 0 {
		return nil, fmt.Errorf("poll.interval_ms must be > 0")
	}
	if cfg.Poll.IntervalMS < 500 || cfg.Poll.IntervalMS > 10000 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("poll.interval_ms=%d is outside the usual 500..10000 range", cfg.Poll.IntervalMS),
		})
	}

	level := strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if _, ok := validLogLevels[level]; !ok {
		return nil, fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	if cfg.Metrics.Enable && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return nil, fmt.Errorf("metrics.path must start with '/'")
	}
	if cfg.Health.Enable && strings.TrimSpace(cfg.Health.Listen) == "" {
		return nil, fmt.Errorf("health.listen must not be empty when health.enable=true")
	}
	if cfg.Discovery.Enable && strings.TrimSpace(cfg.Discovery.Instance) == "" {
		return nil, fmt.Errorf("discovery.instance must not be empty when discovery.enable=true")
	}

	if cfg.MQTT.Enable {
		if strings.TrimSpace(cfg.MQTT.Broker) == "" {
			return nil, fmt.Errorf("mqtt.broker must not be empty when mqtt.enable=true")
		}
		if strings.TrimSpace(cfg.MQTT.TopicPrefix) == "" {
			return nil, fmt.Errorf("mqtt.topic_prefix must not be empty when mqtt.enable=true")
		}
		if cfg.MQTT.Password != "" && cfg.MQTT.Username == "" {
			warnings = append(warnings, Warning{Message: "mqtt.password is set without mqtt.username; it will be ignored"})
		}
	}

	if cfg.CORS {
		warnings = append(warnings, Warning{Message: "cors is enabled; any origin may send commands to the appliance"})
	}

	return warnings, nil
}
