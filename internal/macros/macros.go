// Package macros lists the user macro scripts shown as numbered UI buttons.
package macros

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ListDir reads dir and filters its entry names through List.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read macros dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return List(names), nil
}

// List drops "." and ".." plus any entry whose text before the first '_' is not numeric.
// The order of entries is kept; the numeric prefix is the button slot.
func List(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, name := range entries {
		if name == "." || name == ".." {
			continue
		}
		if _, ok := slotOf(name); !ok {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Slot returns the numeric prefix of a macro name, e.g. "3" for "3_goodnight".
func Slot(name string) string {
	slot, _ := slotOf(name)
	return slot
}

// Label returns the text after the slot prefix, e.g. "goodnight" for "3_goodnight".
func Label(name string) string {
	_, label, _ := strings.Cut(name, "_")
	return label
}

func slotOf(name string) (string, bool) {
	prefix, _, _ := strings.Cut(name, "_")
	if strings.TrimSpace(prefix) == "" {
		return "", false
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	return prefix, true
}
