// Package config resolves, parses, validates, and defaults predicweb configuration.
package config

// Config is the fully materialized runtime configuration used by predicweb.
type Config struct {
	Listen    string          `json:"listen" yaml:"listen"`
	StaticDir string          `json:"static_dir" yaml:"static_dir"`
	CORS      bool            `json:"cors" yaml:"cors"`
	Appliance ApplianceConfig `json:"appliance" yaml:"appliance"`
	Services  ServicesConfig  `json:"services" yaml:"services"`
	Backend   BackendConfig   `json:"backend" yaml:"backend"`
	Poll      PollConfig      `json:"poll" yaml:"poll"`
	Commands  CommandsConfig  `json:"commands" yaml:"commands"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Health    HealthConfig    `json:"health" yaml:"health"`
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	MQTT      MQTTConfig      `json:"mqtt" yaml:"mqtt"`
}

// ApplianceConfig locates the appliance files. Empty paths derive from Home.
type ApplianceConfig struct {
	Home            string `json:"home" yaml:"home"`
	ConfigFile      string `json:"config_file" yaml:"config_file"`
	InputsFile      string `json:"inputs_file" yaml:"inputs_file"`
	LoudspeakersDir string `json:"loudspeakers_dir" yaml:"loudspeakers_dir"`
	AmpStateFile    string `json:"amp_state_file" yaml:"amp_state_file"`
	MacrosDir       string `json:"macros_dir" yaml:"macros_dir"`
}

// ServicesConfig holds the static backend endpoints.
type ServicesConfig struct {
	// FromAppliance lets <service>_address / <service>_port in the appliance config.yml
	// override the static endpoints.
	FromAppliance bool          `json:"from_appliance" yaml:"from_appliance"`
	Control       ServiceConfig `json:"control" yaml:"control"`
	Aux           ServiceConfig `json:"aux" yaml:"aux"`
	Players       ServiceConfig `json:"players" yaml:"players"`
}

// ServiceConfig is one backend address.
type ServiceConfig struct {
	Address string `json:"address" yaml:"address"`
	Port    int    `json:"port" yaml:"port"`
}

// BackendConfig bounds each backend exchange.
type BackendConfig struct {
	DialTimeoutMS int `json:"dial_timeout_ms" yaml:"dial_timeout_ms"`
	IOTimeoutMS   int `json:"io_timeout_ms" yaml:"io_timeout_ms"`
	BufferSize    int `json:"buffer_size" yaml:"buffer_size"`
}

// PollConfig controls server-driven status pushes.
type PollConfig struct {
	IntervalMS int `json:"interval_ms" yaml:"interval_ms"`
}

// CommandsConfig controls command admission.
type CommandsConfig struct {
	StrictURLs bool `json:"strict_urls" yaml:"strict_urls"`
}

// LoggingConfig controls the JSONL logger.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enable bool   `json:"enable" yaml:"enable"`
	Path   string `json:"path" yaml:"path"`
}

// HealthConfig controls the gRPC health service.
type HealthConfig struct {
	Enable bool   `json:"enable" yaml:"enable"`
	Listen string `json:"listen" yaml:"listen"`
}

// DiscoveryConfig controls mDNS advertisement of the web UI.
type DiscoveryConfig struct {
	Enable   bool   `json:"enable" yaml:"enable"`
	Instance string `json:"instance" yaml:"instance"`
}

// MQTTConfig controls the optional status/command bridge.
type MQTTConfig struct {
	Enable      bool   `json:"enable" yaml:"enable"`
	Broker      string `json:"broker" yaml:"broker"`
	ClientID    string `json:"client_id" yaml:"client_id"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
