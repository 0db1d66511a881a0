package shell

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"

	"github.com/user154lt/ELK-BLEDOM-Command-Util/device"
)

const helpText = `
Commands:
  on | off                                   - Switch the strip
  colour <rrggbb> | colour <r> <g> <b>       - Static colour, channels 0-255
  pattern <0-28>                             - Built-in pattern
  speed <0-100>                              - Pattern speed
  brightness <0-100>                         - Brightness
  mic on|off                                 - Microphone (set an eq afterwards)
  eq classic|soft|dynamic|disco              - Microphone EQ mode
  sensitivity <0-100>                        - Microphone sensitivity
  sync                                       - Set the device clock to now
  timer set|clear on|off <HH:MM[:SS]> [days] - Schedule, days like mon,fri or weekdays
  wires <order>                              - Wire colour order, e.g. grb
  raw <hex>                                  - Send a prebuilt 9-byte frame
  help                                       - Show this help
  quit                                       - Exit`

// Shell reads commands from a readline prompt and hands them to a Sender.
type Shell struct {
	sender device.Sender
	log    logrus.FieldLogger
	rl     *readline.Instance
	out    io.Writer
	once   sync.Once
}

// New creates a Shell on the process terminal.
func New(sender device.Sender, log logrus.FieldLogger) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bledom> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(sender, log, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(sender device.Sender, log logrus.FieldLogger, out io.Writer) *Shell {
	return &Shell{sender: sender, log: log, out: out}
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("on"),
	readline.PcItem("off"),
	readline.PcItem("colour"),
	readline.PcItem("pattern"),
	readline.PcItem("speed"),
	readline.PcItem("brightness"),
	readline.PcItem("mic", readline.PcItem("on"), readline.PcItem("off")),
	readline.PcItem("eq",
		readline.PcItem("classic"), readline.PcItem("soft"),
		readline.PcItem("dynamic"), readline.PcItem("disco"),
	),
	readline.PcItem("sensitivity"),
	readline.PcItem("sync"),
	readline.PcItem("timer",
		readline.PcItem("set", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem("clear", readline.PcItem("on"), readline.PcItem("off")),
	),
	readline.PcItem("wires"),
	readline.PcItem("raw"),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

// Stdout returns a writer that does not garble the prompt. Point the logger
// here while the shell runs.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Close releases the terminal. A pending Readline returns, which ends Run.
func (s *Shell) Close() {
	s.once.Do(func() {
		if s.rl != nil {
			s.rl.Close()
		}
	})
}

// Run starts the interactive command loop. It returns when the user quits,
// input ends, or ctx is cancelled; cancel is called in the first two cases.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.Close()

	fmt.Fprintln(s.out, helpText)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.Execute(line) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs a single line. It returns false once the user asked to quit.
func (s *Shell) Execute(line string) bool {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return true
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
		return true
	case "quit", "exit", "q":
		return false
	}

	cmd, err := Parse(line)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return true
	}

	if err := s.sender.WriteCommand(cmd); err != nil {
		s.log.WithError(err).WithField("command", device.Name(cmd)).Warn("command failed")
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return true
	}
	fmt.Fprintf(s.out, "OK %s\n", device.Name(cmd))
	return true
}
