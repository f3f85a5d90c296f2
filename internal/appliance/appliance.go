// Package appliance reads the preamp's configuration resources and cached device state.
package appliance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resource names one readable configuration file.
type Resource string

const (
	ResourceConfig  Resource = "config"
	ResourceInputs  Resource = "inputs"
	ResourceSpeaker Resource = "speaker"
)

// NoInput is the synthetic trailing entry of every input catalog.
const NoInput = "none"

var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnknownResource = errors.New("unknown resource")
)

// Paths locates the appliance files on disk.
type Paths struct {
	ConfigFile      string
	InputsFile      string
	LoudspeakersDir string
	AmpStateFile    string
	MacrosDir       string
}

// Reader holds no state besides Paths; every call rereads the disk.
type Reader struct {
	Paths Paths
}

// ParseResource accepts "config", "inputs" or "speaker".
func ParseResource(name string) (Resource, error) {
	switch r := Resource(strings.TrimSpace(name)); r {
	case ResourceConfig, ResourceInputs, ResourceSpeaker:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
}

// Read returns the raw text of resource. The speaker resource follows the
// loudspeaker named in the main config.
func (r Reader) Read(resource Resource) (string, error) {
	switch resource {
	case ResourceConfig:
		return readFile(r.Paths.ConfigFile)
	case ResourceInputs:
		return readFile(r.Paths.InputsFile)
	case ResourceSpeaker:
		path, err := r.SpeakerPath()
		if err != nil {
			return "", err
		}
		return readFile(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
}

// Loudspeaker returns the active loudspeaker name from the main config.
func (r Reader) Loudspeaker() (string, error) {
	text, err := r.Read(ResourceConfig)
	if err != nil {
		return "", err
	}
	name := Scalar(text, "loudspeaker")
	if name == "" {
		return "", fmt.Errorf("%w: no loudspeaker in %s", ErrNotFound, r.Paths.ConfigFile)
	}
	return name, nil
}

// SpeakerPath resolves <loudspeakers>/<name>/speaker.yml for the active loudspeaker.
func (r Reader) SpeakerPath() (string, error) {
	name, err := r.Loudspeaker()
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid loudspeaker name %q", ErrNotFound, name)
	}
	return filepath.Join(r.Paths.LoudspeakersDir, name, "speaker.yml"), nil
}

// ConfigScalar reads one key from the main config.
func (r Reader) ConfigScalar(key string) (string, error) {
	text, err := r.Read(ResourceConfig)
	if err != nil {
		return "", err
	}
	return Scalar(text, key), nil
}

// UsesEcasound reports whether the appliance runs the ecasound PEQ stage.
func (r Reader) UsesEcasound() (bool, error) {
	value, err := r.ConfigScalar("load_ecasound")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(value, "true"), nil
}

// AmpState returns the amplifier state last written by the power-switch driver.
func (r Reader) AmpState() (string, error) {
	return readFile(r.Paths.AmpStateFile)
}

// Scalar returns the trimmed value of the last line whose trimmed key equals key.
func Scalar(text string, key string) string {
	result := ""
	for _, line := range strings.Split(text, "\n") {
		k, v, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == key {
			result = strings.TrimSpace(v)
		}
	}
	return result
}

// Inputs lists the zero-indent "name:" declarations of the inputs resource, then NoInput.
func Inputs(text string) []string {
	inputs := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || line[0] == ' ' || !strings.HasSuffix(line, ":") {
			continue
		}
		inputs = append(inputs, strings.TrimSuffix(line, ":"))
	}
	return append(inputs, NoInput)
}

func readFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: path not configured", ErrNotFound)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
