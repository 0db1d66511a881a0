package device

import (
	"fmt"

	"github.com/user154lt/ELK-BLEDOM-Command-Util/protocol"
)

// Command is anything that can be turned into a device frame. The encoder
// passed in decides how out-of-range values are handled.
type Command interface {
	Encode(enc protocol.Encoder) (protocol.Frame, error)
}

// Name returns a short lowercase label for cmd, used in logs.
func Name(cmd Command) string {
	if n, ok := cmd.(interface{ name() string }); ok {
		return n.name()
	}
	return fmt.Sprintf("%T", cmd)
}

// PowerCommand switches the LEDs on or off.
type PowerCommand struct {
	On bool
}

func (c PowerCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.Power(c.On), nil
}

func (c PowerCommand) name() string { return "power" }

// ColourCommand provides updates to the LED controller with new RGB values.
// Each channel is 0-255.
type ColourCommand struct {
	Red   int
	Green int
	Blue  int
}

func (c ColourCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.Colour(c.Red, c.Green, c.Blue)
}

func (c ColourCommand) name() string { return "colour" }

// ColourCommandFromHex accepts a hex string - i.e. "FF00EE" - and generates
// a `ColourCommand`.
func ColourCommandFromHex(h string) (ColourCommand, error) {
	rgb, err := protocol.ParseHexColour(h)
	if err != nil {
		return ColourCommand{}, err
	}
	return ColourCommand{rgb.Red, rgb.Green, rgb.Blue}, nil
}

// ColourCommandFromValues accepts raw RGB byte values, and generates a
// `ColourCommand`.
func ColourCommandFromValues(red, green, blue uint8) ColourCommand {
	return ColourCommand{int(red), int(green), int(blue)}
}

// BrightnessCommand provides control of the output brightness for the managed
// LEDs, in percent.
type BrightnessCommand struct {
	Brightness int
}

func (c BrightnessCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.Brightness(c.Brightness)
}

func (c BrightnessCommand) name() string { return "brightness" }

// BrightnessCommandFromValue accepts a raw uint8/byte representing the desired
// brightness. Range of values is 0-100; anything above is capped.
func BrightnessCommandFromValue(brightness uint8) BrightnessCommand {
	if brightness > protocol.MaxPercent {
		brightness = protocol.MaxPercent
	}

	return BrightnessCommand{int(brightness)}
}

// PatternCommand runs one of the built-in patterns, 0-28.
type PatternCommand struct {
	Pattern int
}

func (c PatternCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.Pattern(c.Pattern)
}

func (c PatternCommand) name() string { return "pattern" }

// SpeedCommand sets how fast a pattern plays, in percent.
type SpeedCommand struct {
	Speed int
}

func (c SpeedCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.Speed(c.Speed)
}

func (c SpeedCommand) name() string { return "speed" }

// MicCommand switches the microphone. Follow it with a MicEQCommand, the
// strip ignores sound until an EQ mode is set.
type MicCommand struct {
	On bool
}

func (c MicCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.Mic(c.On), nil
}

func (c MicCommand) name() string { return "mic" }

type MicEQCommand struct {
	Mode protocol.EQMode
}

func (c MicEQCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.MicEQ(c.Mode)
}

func (c MicEQCommand) name() string { return "eq" }

type MicSensitivityCommand struct {
	Sensitivity int
}

func (c MicSensitivityCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.MicSensitivity(c.Sensitivity)
}

func (c MicSensitivityCommand) name() string { return "sensitivity" }

// SyncTimeCommand sets the device clock from the encoder's clock at the
// moment it is encoded.
type SyncTimeCommand struct{}

func (SyncTimeCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.SyncTime()
}

func (SyncTimeCommand) name() string { return "sync" }

// TimingCommand installs (Set) or removes a scheduled ON or OFF event.
type TimingCommand struct {
	Hour   int
	Minute int
	Second int
	Days   protocol.Weekdays
	On     bool
	Set    bool
}

func (c TimingCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.Timing(c.Hour, c.Minute, c.Second, c.Days, c.On, c.Set)
}

func (c TimingCommand) name() string { return "timer" }

// WireOrderCommand remaps which colour each physical wire carries.
type WireOrderCommand struct {
	Order [3]protocol.Wire
}

func (c WireOrderCommand) Encode(enc protocol.Encoder) (protocol.Frame, error) {
	return enc.WireOrder(c.Order[0], c.Order[1], c.Order[2])
}

func (c WireOrderCommand) name() string { return "wires" }

// RawCommand sends a pre-built frame untouched.
type RawCommand struct {
	Frame protocol.Frame
}

func (c RawCommand) Encode(protocol.Encoder) (protocol.Frame, error) {
	if !c.Frame.Valid() {
		return protocol.Frame{}, protocol.ErrMalformedFrame
	}
	return c.Frame, nil
}

func (c RawCommand) name() string { return "raw" }
