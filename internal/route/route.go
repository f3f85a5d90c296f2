// Package route classifies gateway command strings and picks their destination.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Service names one backend daemon.
type Service string

const (
	ServiceControl Service = "control"
	ServiceAux     Service = "aux"
	ServicePlayers Service = "players"
)

// Services lists every backend, in probe order.
var Services = []Service{ServiceControl, ServiceAux, ServicePlayers}

// Kind says how a classified command is answered.
type Kind string

const (
	// KindForward sends Route.Command to Route.Service.
	KindForward Kind = "forward"
	// KindAmpState reads the amplifier state cached on disk by the aux daemon.
	KindAmpState Kind = "amp_state"
	// KindListMacros enumerates the macro directory.
	KindListMacros Kind = "list_macros"
	// KindReadFile returns one appliance config resource verbatim.
	KindReadFile Kind = "read_file"
)

// Route is the outcome of classifying one command.
type Route struct {
	Kind     Kind
	Service  Service
	Command  string
	Resource string
}

var ErrInvalidURL = errors.New("invalid stream url")

var fileCommands = map[string]string{
	"read_inputs_file":  "inputs",
	"read_config_file":  "config",
	"read_speaker_file": "speaker",
}

// ampCommands also accepts the literal "ampli on"/"ampli off" forms and routes them to aux.
var ampCommands = map[string]string{
	"amplion":   "ampli on",
	"amplioff":  "ampli off",
	"ampli on":  "ampli on",
	"ampli off": "ampli off",
}

// Classify maps command to a Route. Every command resolves; unknown ones go to control.
func Classify(command string) Route {
	if resource, ok := fileCommands[command]; ok {
		return Route{Kind: KindReadFile, Resource: resource, Command: command}
	}
	if forwarded, ok := ampCommands[command]; ok {
		return Route{Kind: KindForward, Service: ServiceAux, Command: forwarded}
	}
	if command == "amplistatus" {
		return Route{Kind: KindAmpState, Command: command}
	}
	if strings.HasPrefix(command, "macro_") {
		return Route{Kind: KindForward, Service: ServiceAux, Command: command}
	}
	if command == "list_macros" {
		return Route{Kind: KindListMacros, Command: command}
	}
	if strings.HasPrefix(command, "player_") {
		return Route{Kind: KindForward, Service: ServicePlayers, Command: command}
	}
	if strings.HasPrefix(command, "http") {
		return Route{Kind: KindForward, Service: ServicePlayers, Command: command}
	}
	return Route{Kind: KindForward, Service: ServiceControl, Command: command}
}

// IsStreamURL reports whether command takes the stream-URL route.
func IsStreamURL(command string) bool {
	return strings.HasPrefix(command, "http")
}

// ValidateStreamURL checks an http(s) URL with a host. Only used in strict mode.
func ValidateStreamURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}
