package protocol

import (
	"fmt"
	"time"
)

// Policy decides what happens to integer inputs outside their bounds.
type Policy int

const (
	// Reject fails the call with a *RangeError.
	Reject Policy = iota
	// Clamp moves the value to the nearest bound.
	Clamp
)

func (p Policy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Clamp:
		return "clamp"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts "reject" or "clamp".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "reject", "":
		return Reject, nil
	case "clamp":
		return Clamp, nil
	}
	return Reject, fmt.Errorf("unknown policy %q", s)
}

// Encoder builds frames. The same Policy applies to every command. A nil
// Clock falls back to SystemClock.
//
// On error the returned Frame is the zero Frame.
type Encoder struct {
	Policy Policy
	Clock  Clock
}

// DefaultEncoder rejects out-of-range input and reads the system clock.
var DefaultEncoder = Encoder{Policy: Reject, Clock: SystemClock}

func (e Encoder) check(field string, v, lo, hi int) (byte, error) {
	if v < lo || v > hi {
		if e.Policy != Clamp {
			return 0, &RangeError{Field: field, Value: v, Min: lo, Max: hi}
		}
		if v < lo {
			v = lo
		} else {
			v = hi
		}
	}
	return byte(v), nil
}

func flag(on bool) byte {
	if on {
		return 1
	}
	return 0
}

// Power switches the strip on or off. The flag appears twice, at offsets 3
// and 5; the device requires both.
func (e Encoder) Power(on bool) Frame {
	f := flag(on)
	return newFrame(0x04, OpPower, [5]byte{f, 0x00, f, Reserved, 0x00})
}

// Colour sets a static colour. Each channel is 0..255.
func (e Encoder) Colour(red, green, blue int) (Frame, error) {
	r, err := e.check("red", red, 0, MaxChannel)
	if err != nil {
		return Frame{}, err
	}
	g, err := e.check("green", green, 0, MaxChannel)
	if err != nil {
		return Frame{}, err
	}
	b, err := e.check("blue", blue, 0, MaxChannel)
	if err != nil {
		return Frame{}, err
	}
	return newFrame(0x07, OpColour, [5]byte{0x03, r, g, b, 0x10}), nil
}

// Pattern selects one of the 29 built-in patterns, 0..28.
func (e Encoder) Pattern(pattern int) (Frame, error) {
	p, err := e.check("pattern", pattern, 0, MaxPattern)
	if err != nil {
		return Frame{}, err
	}
	return newFrame(0x05, OpMode, [5]byte{p + modeBase, 0x03, Reserved, Reserved, 0x00}), nil
}

// Speed sets the pattern speed in percent.
func (e Encoder) Speed(speed int) (Frame, error) {
	return e.percent("speed", OpSpeed, speed)
}

// Brightness sets the output brightness in percent.
func (e Encoder) Brightness(brightness int) (Frame, error) {
	return e.percent("brightness", OpBrightness, brightness)
}

// MicSensitivity sets how strongly the strip reacts to sound, in percent.
// Start low and raise it as required.
func (e Encoder) MicSensitivity(sensitivity int) (Frame, error) {
	return e.percent("sensitivity", OpMicSensitivity, sensitivity)
}

func (e Encoder) percent(field string, op byte, v int) (Frame, error) {
	b, err := e.check(field, v, 0, MaxPercent)
	if err != nil {
		return Frame{}, err
	}
	return newFrame(0x04, op, [5]byte{b, Reserved, Reserved, Reserved, 0x00}), nil
}

// Mic switches the microphone on or off. Turning it on does nothing visible
// until an EQ mode is sent with MicEQ.
func (e Encoder) Mic(on bool) Frame {
	return newFrame(0x04, OpMic, [5]byte{flag(on), Reserved, Reserved, Reserved, 0x00})
}

// MicEQ picks the microphone EQ mode. Send it after Mic(true).
func (e Encoder) MicEQ(mode EQMode) (Frame, error) {
	m, err := e.check("eq mode", int(mode), int(EQClassic), int(EQDisco))
	if err != nil {
		return Frame{}, err
	}
	return newFrame(0x05, OpMode, [5]byte{m + modeBase, 0x04, Reserved, Reserved, 0x00}), nil
}

// SyncTime sets the device clock from e.Clock. The day byte counts from
// Sunday = 0 to Saturday = 6, unlike the Monday first Timing mask. Clock failures match ErrClockUnavailable.
func (e Encoder) SyncTime() (Frame, error) {
	clock := e.Clock
	if clock == nil {
		clock = SystemClock
	}
	now, err := clock()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrClockUnavailable, err)
	}
	if now.IsZero() {
		return Frame{}, ErrClockUnavailable
	}
	return syncFrame(now), nil
}

func syncFrame(t time.Time) Frame {
	return newFrame(0x07, OpSyncTime, [5]byte{
		byte(t.Hour()), byte(t.Minute()), byte(t.Second()), dayIndex(t), Reserved,
	})
}

// Timing sets (set = true) or clears (set = false) a scheduled ON or OFF
// event at hour:minute:second on the selected days.
//
// The device inverts the on/off byte: offset 6 is 0x00 for an ON time and
// 0x01 for an OFF time. Keep it that way.
//
// Offset 7 is the weekday mask OR'ed with 0x80 when setting.
func (e Encoder) Timing(hour, minute, second int, days Weekdays, on, set bool) (Frame, error) {
	h, err := e.check("hour", hour, 0, MaxHour)
	if err != nil {
		return Frame{}, err
	}
	m, err := e.check("minute", minute, 0, MaxMinute)
	if err != nil {
		return Frame{}, err
	}
	s, err := e.check("second", second, 0, MaxSecond)
	if err != nil {
		return Frame{}, err
	}

	kind := byte(0x01)
	if on {
		kind = 0x00
	}
	var setMask byte
	if set {
		setMask = 0x80
	}
	return newFrame(0x08, OpTiming, [5]byte{h, m, s, kind, setMask | days.Mask()}), nil
}

// WireOrder tells the controller which colour each physical wire carries,
// left to right. Duplicates are sent as given.
func (e Encoder) WireOrder(first, second, third Wire) (Frame, error) {
	var out [3]byte
	for i, w := range [3]Wire{first, second, third} {
		b, err := e.check(fmt.Sprintf("wire %d", i+1), int(w), int(WireRed), int(WireBlue))
		if err != nil {
			return Frame{}, err
		}
		out[i] = b
	}
	return newFrame(0x06, OpWireOrder, [5]byte{out[0], out[1], out[2], Reserved, 0x00}), nil
}

// Package level shorthands using DefaultEncoder.

func Power(on bool) Frame { return DefaultEncoder.Power(on) }
func Colour(red, green, blue int) (Frame, error) { return DefaultEncoder.Colour(red, green, blue) }
func Pattern(pattern int) (Frame, error) { return DefaultEncoder.Pattern(pattern) }
func Speed(speed int) (Frame, error) { return DefaultEncoder.Speed(speed) }
func Brightness(brightness int) (Frame, error) { return DefaultEncoder.Brightness(brightness) }
func Mic(on bool) Frame { return DefaultEncoder.Mic(on) }
func MicEQ(mode EQMode) (Frame, error) { return DefaultEncoder.MicEQ(mode) }
func MicSensitivity(s int) (Frame, error) { return DefaultEncoder.MicSensitivity(s) }
func SyncTime() (Frame, error) { return DefaultEncoder.SyncTime() }

func Timing(hour, minute, second int, days Weekdays, on, set bool) (Frame, error) {
	return DefaultEncoder.Timing(hour, minute, second, days, on, set)
}

func WireOrder(first, second, third Wire) (Frame, error) {
	return DefaultEncoder.WireOrder(first, second, third)
}
