package protocol

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Input bounds.
const (
	MaxChannel = 255
	MaxPattern = 28
	MaxPercent = 100
	MaxHour    = 23
	MaxMinute  = 59
	MaxSecond  = 59
	modeBase   = 128
)

// RGB is a colour as three 0..255 channels.
type RGB struct {
	Red   int
	Green int
	Blue  int
}

// ParseHexColour accepts "ff0080", "#ff0080" or "0xff0080".
func ParseHexColour(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("colour %q: want 6 hex digits", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return RGB{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return RGB{int(b[0]), int(b[1]), int(b[2])}, nil
}

// EQMode picks how the strip reacts to the microphone.
type EQMode int

const (
	EQClassic EQMode = iota
	EQSoft
	EQDynamic
	EQDisco
)

var eqNames = []string{"classic", "soft", "dynamic", "disco"}

func (m EQMode) String() string {
	if m >= EQClassic && m <= EQDisco {
		return eqNames[m]
	}
	return "EQMode(" + strconv.Itoa(int(m)) + ")"
}

// ParseEQMode accepts a mode name or its number.
func ParseEQMode(s string) (EQMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range eqNames {
		if s == name {
			return EQMode(i), nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown eq mode %q", s)
	}
	return EQMode(n), nil
}

// Wire names the colour driven by one of the three signal wires.
type Wire int

const (
	WireRed Wire = iota + 1
	WireGreen
	WireBlue
)

// ParseWireOrder reads a three letter order such as "grb": the colour of the
// first, second and third physical wire. Repeated letters are accepted.
func ParseWireOrder(s string) ([3]Wire, error) {
	var order [3]Wire
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != len(order) {
		return order, fmt.Errorf("wire order %q: want three of r, g, b", s)
	}
	for i, c := range s {
		switch c {
		case 'r':
			order[i] = WireRed
		case 'g':
			order[i] = WireGreen
		case 'b':
			order[i] = WireBlue
		default:
			return [3]Wire{}, fmt.Errorf("wire order %q: unknown colour %q", s, c)
		}
	}
	return order, nil
}
