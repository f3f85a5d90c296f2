// Package status decodes the control service's key:value status report.
package status

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Known report keys.
const (
	KeyLevel         = "level"
	KeyBalance       = "balance"
	KeyBass          = "bass"
	KeyTreble        = "treble"
	KeyInput         = "input"
	KeyXOSet         = "XO_set"
	KeyDRCSet        = "DRC_set"
	KeyPEQSet        = "PEQ_set"
	KeyMuted         = "muted"
	KeyMono          = "mono"
	KeyLoudnessTrack = "loudness_track"
)

// KnownKeys lists the report keys the UI renders, in display order.
var KnownKeys = []string{
	KeyLevel,
	KeyBalance,
	KeyBass,
	KeyTreble,
	KeyInput,
	KeyXOSet,
	KeyDRCSet,
	KeyPEQSet,
	KeyMuted,
	KeyMono,
	KeyLoudnessTrack,
}

// Decode returns the trimmed value of the last report line whose key equals key.
//
// The value is the second ':'-separated field of the line. Lines without a ':' are skipped.
// A missing key or an empty report yields "".
func Decode(report string, key string) string {
	result := ""
	for _, line := range strings.Split(report, "\n") {
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		if fields[0] == key {
			result = fields[1]
		}
	}
	return strings.TrimSpace(result)
}

// Snapshot is one decoded status report. It is never mutated after Parse returns.
type Snapshot struct {
	keys   []string
	values map[string]string
}

// Parse decodes every key present in report. Later duplicates override earlier ones
// but keep the position of the first occurrence.
func Parse(report string) Snapshot {
	s := Snapshot{values: make(map[string]string)}
	for _, line := range strings.Split(report, "\n") {
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		key := fields[0]
		if key == "" {
			continue
		}
		if _, seen := s.values[key]; !seen {
			s.keys = append(s.keys, key)
		}
		s.values[key] = strings.TrimSpace(fields[1])
	}
	return s
}

// Get returns the value for key, or "" when the report did not carry it.
func (s Snapshot) Get(key string) string {
	return s.values[key]
}

// Has reports whether the report carried key.
func (s Snapshot) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns report keys in order of first appearance.
func (s Snapshot) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of distinct keys.
func (s Snapshot) Len() int { return len(s.keys) }

// Level returns the volume in dB; ok is false when the report has no numeric level.
func (s Snapshot) Level() (float64, bool) { return s.number(KeyLevel) }

// Balance returns the left/right balance offset.
func (s Snapshot) Balance() (float64, bool) { return s.number(KeyBalance) }

// Bass returns the bass tone control in dB.
func (s Snapshot) Bass() (float64, bool) { return s.number(KeyBass) }

// Treble returns the treble tone control in dB.
func (s Snapshot) Treble() (float64, bool) { return s.number(KeyTreble) }

// Input returns the selected input name, or "" when absent.
func (s Snapshot) Input() string { return s.Get(KeyInput) }

// XOSet returns the active crossover preset.
func (s Snapshot) XOSet() string { return s.Get(KeyXOSet) }

// DRCSet returns the active room-correction preset.
func (s Snapshot) DRCSet() string { return s.Get(KeyDRCSet) }

// PEQSet returns the active parametric EQ preset.
func (s Snapshot) PEQSet() string { return s.Get(KeyPEQSet) }

// Muted is true only for the literal report value "true".
func (s Snapshot) Muted() bool { return s.Get(KeyMuted) == "true" }

// Mono is true only for the literal report value "true".
func (s Snapshot) Mono() bool { return s.Get(KeyMono) == "true" }

// LoudnessTrack reports whether loudness compensation follows the level.
func (s Snapshot) LoudnessTrack() bool { return s.Get(KeyLoudnessTrack) == "true" }

func (s Snapshot) number(key string) (float64, bool) {
	v, err := strconv.ParseFloat(s.Get(key), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Equal reports whether both snapshots carry the same keys and values.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for k, v := range s.values {
		ov, ok := other.values[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Fields returns every known key (empty when absent) plus any extra keys the report carried.
func (s Snapshot) Fields() map[string]string {
	out := make(map[string]string, len(KnownKeys)+len(s.values))
	for _, k := range KnownKeys {
		out[k] = s.values[k]
	}
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// MarshalJSON renders Fields as a JSON object.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Fields())
}
