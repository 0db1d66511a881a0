package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// FrameSize is the length of every frame sent to the device.
	FrameSize = 9

	StartMarker byte = 0x7E
	EndMarker   byte = 0xEF
	// Reserved fills payload bytes the device ignores.
	Reserved byte = 0xFF
)

// Opcodes, found at offset 2 of a frame.
const (
	OpBrightness     byte = 0x01
	OpSpeed          byte = 0x02
	OpMode           byte = 0x03 // pattern and mic EQ, told apart by offset 4
	OpPower          byte = 0x04
	OpColour         byte = 0x05
	OpMicSensitivity byte = 0x06
	OpMic            byte = 0x07
	OpWireOrder      byte = 0x81
	OpTiming         byte = 0x82
	OpSyncTime       byte = 0x83
)

// Frame is a single device command. The zero Frame is not valid and is what
// the encoder returns alongside an error.
type Frame [FrameSize]byte

func newFrame(length, opcode byte, payload [5]byte) Frame {
	return Frame{
		StartMarker, length, opcode,
		payload[0], payload[1], payload[2], payload[3], payload[4],
		EndMarker,
	}
}

// Bytes returns a copy of the frame suitable for handing to a transport.
func (f Frame) Bytes() []byte {
	b := make([]byte, FrameSize)
	copy(b, f[:])
	return b
}

// Opcode returns the byte identifying the operation.
func (f Frame) Opcode() byte {
	return f[2]
}

// Valid reports whether the frame carries both markers.
func (f Frame) Valid() bool {
	return f[0] == StartMarker && f[FrameSize-1] == EndMarker
}

// String renders the frame as lowercase space separated hex, e.g.
// "7e 04 04 01 00 01 ff 00 ef".
func (f Frame) String() string {
	parts := make([]string, FrameSize)
	for i, b := range f {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

// ParseFrame checks that b is a complete frame and returns it.
func ParseFrame(b []byte) (Frame, error) {
	var f Frame
	if len(b) != FrameSize {
		return f, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedFrame, len(b), FrameSize)
	}
	copy(f[:], b)
	if !f.Valid() {
		return Frame{}, fmt.Errorf("%w: bad markers %02x..%02x", ErrMalformedFrame, b[0], b[FrameSize-1])
	}
	return f, nil
}

// ParseHexFrame parses a frame written as hex. Whitespace, colons and an
// optional 0x prefix per byte are ignored.
func ParseHexFrame(s string) (Frame, error) {
	s = strings.ToLower(s)
	s = strings.NewReplacer("0x", "", ":", "", " ", "", "\t", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return ParseFrame(b)
}
