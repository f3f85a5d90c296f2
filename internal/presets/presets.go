// Package presets enumerates preset names from a loudspeaker profile without a YAML parser.
//
// The profile dialect nests with leading spaces. A property block either holds a `sets:`
// child whose own children are preset names, or carries its options inline as
// `PEQ: {flat:0, bump1:3}`.
package presets

import "strings"

// Sets returns the names nested under the `sets:` child of property, in order of appearance.
func Sets(text string, property string) []string {
	names := make([]string, 0)
	header := property + ":"

	inProperty := false
	inSets := false
	indentOfSets := 0

	for _, line := range strings.Split(text, "\n") {
		if !inProperty {
			if strings.ReplaceAll(strings.TrimSpace(line), " ", "") == header {
				inProperty = true
			}
			continue
		}

		if !inSets {
			if strings.Contains(line, "sets:") {
				inSets = true
				indentOfSets = Indent(line)
			}
			continue
		}

		if Indent(line) <= indentOfSets {
			break
		}
		names = append(names, keyOf(line))
	}

	return names
}

// Flat returns the inline option names of property. Only the header line is read, unless
// it opens a `{` that closes on a later line; then lines are read until the `}`.
func Flat(text string, property string) []string {
	options := make([]string, 0)
	header := property + ":"

	inProperty := false
	for _, line := range strings.Split(text, "\n") {
		if !inProperty {
			if !strings.HasPrefix(line, header) {
				continue
			}
			inProperty = true
			line = strings.TrimPrefix(line, header)
			if !strings.Contains(line, "{") {
				return appendOptions(options, line)
			}
		}

		closed := strings.Contains(line, "}")
		line = strings.Replace(line, "{", "", 1)
		line = strings.Replace(line, "}", "", 1)
		options = appendOptions(options, line)
		if closed {
			break
		}
	}

	return options
}

func appendOptions(options []string, line string) []string {
	for _, field := range strings.Split(line, ",") {
		if name := keyOf(field); name != "" {
			options = append(options, name)
		}
	}
	return options
}

// Indent counts leading spaces; an all-space line counts its full length.
func Indent(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

func keyOf(s string) string {
	key, _, _ := strings.Cut(s, ":")
	return strings.TrimSpace(key)
}
