package appliance

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}

func fixture(t *testing.T) Reader {
	t.Helper()
	root := t.TempDir()
	paths := Paths{
		ConfigFile:      filepath.Join(root, "config", "config.yml"),
		InputsFile:      filepath.Join(root, "config", "inputs.yml"),
		LoudspeakersDir: filepath.Join(root, "loudspeakers"),
		AmpStateFile:    filepath.Join(root, ".ampli"),
		MacrosDir:       filepath.Join(root, "macros"),
	}
	writeFile(t, paths.ConfigFile, "loudspeaker: SeasFlat\nload_ecasound: True\ncontrol_port: 9999\n")
	writeFile(t, paths.InputsFile, "analog:\n  in_ports: system:capture_1\nspotify:\n  gain: 0\n")
	writeFile(t, filepath.Join(paths.LoudspeakersDir, "SeasFlat", "speaker.yml"), "XO:\n  sets:\n    mp:\n")
	return Reader{Paths: paths}
}

func TestScalarLastOccurrenceWins(t *testing.T) {
	text := "loudspeaker: A\n  nested: x\nloudspeaker:B\n"
	require.Equal(t, "B", Scalar(text, "loudspeaker"))
	require.Equal(t, "x", Scalar(text, "nested"))
	require.Equal(t, "", Scalar(text, "missing"))
	require.Equal(t, "", Scalar("", "loudspeaker"))
}

func TestScalarKeepsColonsInValue(t *testing.T) {
	require.Equal(t, "system:capture_1", Scalar("in_ports: system:capture_1", "in_ports"))
}

func TestInputsAppendsNone(t *testing.T) {
	text := "analog:\n  in_ports: a\nspotify:\nkey: value\n indented:\n"
	require.Equal(t, []string{"analog", "spotify", NoInput}, Inputs(text))
	require.Equal(t, []string{NoInput}, Inputs(""))
}

func TestReadResources(t *testing.T) {
	reader := fixture(t)

	text, err := reader.Read(ResourceInputs)
	require.NoError(t, err)
	require.Contains(t, text, "spotify:")

	speaker, err := reader.Read(ResourceSpeaker)
	require.NoError(t, err)
	require.Equal(t, "XO:\n  sets:\n    mp:\n", speaker)

	name, err := reader.Loudspeaker()
	require.NoError(t, err)
	require.Equal(t, "SeasFlat", name)

	eca, err := reader.UsesEcasound()
	require.NoError(t, err)
	require.True(t, eca)
}

func TestReadMissingResourceIsNotFound(t *testing.T) {
	reader := fixture(t)
	require.NoError(t, os.Remove(reader.Paths.InputsFile))

	_, err := reader.Read(ResourceInputs)
	require.True(t, errors.Is(err, ErrNotFound))

	_, err = reader.AmpState()
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestSpeakerNeedsLoudspeaker(t *testing.T) {
	reader := fixture(t)
	writeFile(t, reader.Paths.ConfigFile, "fs: 44100\n")

	_, err := reader.Read(ResourceSpeaker)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestSpeakerRejectsPathEscape(t *testing.T) {
	reader := fixture(t)
	writeFile(t, reader.Paths.ConfigFile, "loudspeaker: ../../etc\n")

	_, err := reader.SpeakerPath()
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestAmpState(t *testing.T) {
	reader := fixture(t)
	writeFile(t, reader.Paths.AmpStateFile, "on\n")

	state, err := reader.AmpState()
	require.NoError(t, err)
	require.Equal(t, "on\n", state)
}

func TestParseResource(t *testing.T) {
	r, err := ParseResource("speaker")
	require.NoError(t, err)
	require.Equal(t, ResourceSpeaker, r)

	_, err = ParseResource("passwd")
	require.True(t, errors.Is(err, ErrUnknownResource))
}
