package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandServe   Command = "serve"
	CommandStatus  Command = "status"
	CommandSend    Command = "send"
	CommandPresets Command = "presets"
	CommandMacros  Command = "macros"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

// argCounts says how many positional arguments follow each command; -1 means one or more.
var argCounts = map[Command]int{
	CommandServe:   0,
	CommandStatus:  0,
	CommandSend:    -1,
	CommandPresets: 1,
	CommandMacros:  0,
	CommandDoctor:  0,
	CommandVersion: 0,
	CommandHelp:    0,
}

type Parsed struct {
	Command    Command
	Args       []string
	ConfigPath string
	Listen     string
	ShowHelp   bool
}

// Payload joins the positional arguments into one gateway command.
func (p Parsed) Payload() string {
	return strings.Join(p.Args, " ")
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case "--listen":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--listen requires an address")
			}
			parsed.Listen = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			want, ok := argCounts[cmd]
			if !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			rest := args[i+1:]
			switch {
			case want == -1 && len(rest) == 0:
				return Parsed{}, fmt.Errorf("command %q requires arguments", arg)
			case want == 0 && len(rest) > 0:
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			case want > 0 && len(rest) != want:
				return Parsed{}, fmt.Errorf("command %q takes %d argument(s)", arg, want)
			}

			parsed.Command = cmd
			parsed.Args = append([]string(nil), rest...)
			parsed.ShowHelp = cmd == CommandHelp
			return parsed, nil
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--listen ADDR] <command> [args]

Commands:
  serve              Run the HTTP gateway in the foreground
  status             Print the decoded preamp status
  send COMMAND...    Send one command (e.g. "level -15", "amplion", "player_play")
  presets PROPERTY   List the presets of XO, DRC or PEQ for the active loudspeaker
  macros             List the user macros
  doctor             Run configuration and appliance checks
  version            Print version information
  help               Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/predicweb/config.yaml)
  --listen ADDR   HTTP listen address, overrides the config file
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
