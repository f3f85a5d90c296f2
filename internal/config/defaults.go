package config

import "path/filepath"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Listen: ":8080",
		Appliance: ApplianceConfig{
			Home: "/home/predic",
		},
		Services: ServicesConfig{
			FromAppliance: true,
			Control:       ServiceConfig{Address: "localhost", Port: 9999},
			Aux:           ServiceConfig{Address: "localhost", Port: 9988},
			Players:       ServiceConfig{Address: "localhost", Port: 9990},
		},
		Backend: BackendConfig{
			DialTimeoutMS: 2000,
			IOTimeoutMS:   5000,
			BufferSize:    4096,
		},
		Poll:    PollConfig{IntervalMS: 1500},
		Logging: LoggingConfig{Level: "info"},
		Metrics: MetricsConfig{Enable: true, Path: "/metrics"},
		Health:  HealthConfig{Listen: "127.0.0.1:9180"},
		Discovery: DiscoveryConfig{
			Instance: "pre.di.c",
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "predicweb",
			TopicPrefix: "predic",
		},
	}
}

// Resolved fills empty appliance paths from Home using the pre.di.c tree layout.
func (a ApplianceConfig) Resolved() ApplianceConfig {
	base := filepath.Join(a.Home, "pre.di.c")
	if a.ConfigFile == "" {
		a.ConfigFile = filepath.Join(base, "config", "config.yml")
	}
	if a.InputsFile == "" {
		a.InputsFile = filepath.Join(base, "config", "inputs.yml")
	}
	if a.LoudspeakersDir == "" {
		a.LoudspeakersDir = filepath.Join(base, "loudspeakers")
	}
	if a.AmpStateFile == "" {
		a.AmpStateFile = filepath.Join(a.Home, ".ampli")
	}
	if a.MacrosDir == "" {
		a.MacrosDir = filepath.Join(base, "clients", "macros")
	}
	return a
}
