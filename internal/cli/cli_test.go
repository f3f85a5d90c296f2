package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithConfigAndListen(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/predicweb.yaml", "--listen", ":9000", "serve"})
	require.NoError(t, err)
	require.Equal(t, CommandServe, parsed.Command)
	require.Equal(t, "/tmp/predicweb.yaml", parsed.ConfigPath)
	require.Equal(t, ":9000", parsed.Listen)
	require.False(t, parsed.ShowHelp)
}

func TestParseSendKeepsNegativeNumbers(t *testing.T) {
	parsed, err := Parse([]string{"send", "level", "-15"})
	require.NoError(t, err)
	require.Equal(t, CommandSend, parsed.Command)
	require.Equal(t, []string{"level", "-15"}, parsed.Args)
	require.Equal(t, "level -15", parsed.Payload())
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
		wantPath string
		wantArgs []string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "version flag",
			args:     []string{"--version"},
			wantCmd:  CommandVersion,
			wantHelp: false,
		},
		{
			name:    "config after command",
			args:    []string{"status", "--config", "/tmp/cfg"},
			wantErr: "unexpected arguments after command",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "missing listen address",
			args:    []string{"--listen"},
			wantErr: "requires an address",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"toggle"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:    "send without payload",
			args:    []string{"send"},
			wantErr: "requires arguments",
		},
		{
			name:    "presets without property",
			args:    []string{"presets"},
			wantErr: "takes 1 argument",
		},
		{
			name:    "presets with two properties",
			args:    []string{"presets", "XO", "DRC"},
			wantErr: "takes 1 argument",
		},
		{
			name:     "presets with config",
			args:     []string{"--config", "/tmp/cfg", "presets", "XO"},
			wantCmd:  CommandPresets,
			wantPath: "/tmp/cfg",
			wantArgs: []string{"XO"},
		},
		{
			name:    "macros",
			args:    []string{"macros"},
			wantCmd: CommandMacros,
		},
		{
			name:     "send url",
			args:     []string{"send", "http://radio.example/stream"},
			wantCmd:  CommandSend,
			wantArgs: []string{"http://radio.example/stream"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
			if tc.wantArgs == nil {
				require.Empty(t, parsed.Args)
			} else {
				require.Equal(t, tc.wantArgs, parsed.Args)
			}
		})
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("predicweb")
	require.Contains(t, text, "serve")
	require.Contains(t, text, "send COMMAND")
	require.Contains(t, text, "presets PROPERTY")
	require.Contains(t, text, "doctor")
	require.Contains(t, text, "--config PATH")
	require.Contains(t, text, "--listen ADDR")
}
