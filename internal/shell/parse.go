// Package shell implements the interactive bledom prompt.
package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/user154lt/ELK-BLEDOM-Command-Util/device"
	"github.com/user154lt/ELK-BLEDOM-Command-Util/internal/config"
	"github.com/user154lt/ELK-BLEDOM-Command-Util/protocol"
)

// ErrUsage wraps every parse failure caused by the shape of the input.
var ErrUsage = errors.New("usage")

// ErrUnknownCommand is returned for a command word Parse does not know.
var ErrUnknownCommand = errors.New("unknown command")

func usage(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrUsage}, args...)...)
}

// Parse turns one line of input into a device command. Numeric values are
// not range checked here; that is the encoder's job.
func Parse(line string) (device.Command, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return nil, usage("%v", err)
	}
	if len(words) == 0 {
		return nil, usage("empty command")
	}

	name, args := strings.ToLower(words[0]), words[1:]
	switch name {
	case "on", "off":
		if err := nargs(args, 0, name); err != nil {
			return nil, err
		}
		return device.PowerCommand{On: name == "on"}, nil

	case "colour", "color", "c":
		return parseColour(args)

	case "pattern", "p":
		n, err := intArg(args, "pattern <0-28>")
		if err != nil {
			return nil, err
		}
		return device.PatternCommand{Pattern: n}, nil

	case "speed":
		n, err := intArg(args, "speed <0-100>")
		if err != nil {
			return nil, err
		}
		return device.SpeedCommand{Speed: n}, nil

	case "brightness", "b":
		n, err := intArg(args, "brightness <0-100>")
		if err != nil {
			return nil, err
		}
		return device.BrightnessCommand{Brightness: n}, nil

	case "mic":
		on, err := onOff(args, "mic on|off")
		if err != nil {
			return nil, err
		}
		return device.MicCommand{On: on}, nil

	case "eq":
		if err := nargs(args, 1, "eq classic|soft|dynamic|disco"); err != nil {
			return nil, err
		}
		mode, err := protocol.ParseEQMode(args[0])
		if err != nil {
			return nil, usage("%v", err)
		}
		return device.MicEQCommand{Mode: mode}, nil

	case "sensitivity", "sens":
		n, err := intArg(args, "sensitivity <0-100>")
		if err != nil {
			return nil, err
		}
		return device.MicSensitivityCommand{Sensitivity: n}, nil

	case "sync":
		if err := nargs(args, 0, "sync"); err != nil {
			return nil, err
		}
		return device.SyncTimeCommand{}, nil

	case "timer":
		return parseTimer(args)

	case "wires":
		if err := nargs(args, 1, "wires <order, e.g. grb>"); err != nil {
			return nil, err
		}
		order, err := protocol.ParseWireOrder(args[0])
		if err != nil {
			return nil, usage("%v", err)
		}
		return device.WireOrderCommand{Order: order}, nil

	case "raw":
		if len(args) == 0 {
			return nil, usage("raw <hex frame>")
		}
		f, err := protocol.ParseHexFrame(strings.Join(args, ""))
		if err != nil {
			return nil, err
		}
		return device.RawCommand{Frame: f}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

func nargs(args []string, n int, form string) error {
	if len(args) != n {
		return usage("%s", form)
	}
	return nil
}

func intArg(args []string, form string) (int, error) {
	if err := nargs(args, 1, form); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, usage("%s: %q is not a number", form, args[0])
	}
	return n, nil
}

func onOff(args []string, form string) (bool, error) {
	if err := nargs(args, 1, form); err != nil {
		return false, err
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, usage("%s", form)
}

func parseColour(args []string) (device.Command, error) {
	const form = "colour <rrggbb> | colour <r> <g> <b>"
	switch len(args) {
	case 1:
		c, err := device.ColourCommandFromHex(args[0])
		if err != nil {
			return nil, usage("%s: %v", form, err)
		}
		return c, nil
	case 3:
		var vals [3]int
		for i, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return nil, usage("%s: %q is not a number", form, a)
			}
			vals[i] = n
		}
		return device.ColourCommand{Red: vals[0], Green: vals[1], Blue: vals[2]}, nil
	}
	return nil, usage("%s", form)
}

// timer set|clear on|off HH:MM[:SS] [days]
func parseTimer(args []string) (device.Command, error) {
	const form = "timer set|clear on|off <HH:MM[:SS]> [days]"
	if len(args) != 3 && len(args) != 4 {
		return nil, usage("%s", form)
	}

	var cmd device.TimingCommand
	switch strings.ToLower(args[0]) {
	case "set":
		cmd.Set = true
	case "clear":
	default:
		return nil, usage("%s", form)
	}

	on, err := onOff(args[1:2], form)
	if err != nil {
		return nil, err
	}
	cmd.On = on

	cmd.Hour, cmd.Minute, cmd.Second, err = config.ParseClock(args[2])
	if err != nil {
		return nil, usage("%v", err)
	}

	cmd.Days = protocol.Daily
	if len(args) == 4 {
		if cmd.Days, err = protocol.ParseWeekdays(args[3]); err != nil {
			return nil, usage("%v", err)
		}
	}
	return cmd, nil
}
