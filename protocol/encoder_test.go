package protocol

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertFramed(t *testing.T, f Frame) {
	t.Helper()
	assert.Equal(t, StartMarker, f[0], "start marker")
	assert.Equal(t, EndMarker, f[8], "end marker")
	assert.Len(t, f.Bytes(), FrameSize)
}

func TestPower(t *testing.T) {
	assert.Equal(t, Frame{0x7E, 0x04, 0x04, 0x01, 0x00, 0x01, 0xFF, 0x00, 0xEF}, Power(true))
	assert.Equal(t, Frame{0x7E, 0x04, 0x04, 0x00, 0x00, 0x00, 0xFF, 0x00, 0xEF}, Power(false))
}

func TestColour(t *testing.T) {
	f, err := Colour(255, 0, 128)
	require.NoError(t, err)
	assert.Equal(t, Frame{0x7E, 0x07, 0x05, 0x03, 0xFF, 0x00, 0x80, 0x10, 0xEF}, f)
}

func TestPattern(t *testing.T) {
	f, err := Pattern(0)
	require.NoError(t, err)
	assert.Equal(t, Frame{0x7E, 0x05, 0x03, 0x80, 0x03, 0xFF, 0xFF, 0x00, 0xEF}, f)

	f, err = Pattern(28)
	require.NoError(t, err)
	assert.Equal(t, byte(0x9C), f[3])
}

func TestPercentCommands(t *testing.T) {
	tests := []struct {
		name   string
		encode func(int) (Frame, error)
		opcode byte
	}{
		{"speed", Speed, OpSpeed},
		{"brightness", Brightness, OpBrightness},
		{"sensitivity", MicSensitivity, OpMicSensitivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.encode(42)
			require.NoError(t, err)
			assert.Equal(t, Frame{0x7E, 0x04, tt.opcode, 42, 0xFF, 0xFF, 0xFF, 0x00, 0xEF}, f)

			for _, v := range []int{0, 100} {
				f, err := tt.encode(v)
				require.NoError(t, err)
				assert.Equal(t, byte(v), f[3])
			}
		})
	}
}

func TestMic(t *testing.T) {
	assert.Equal(t, Frame{0x7E, 0x04, 0x07, 0x01, 0xFF, 0xFF, 0xFF, 0x00, 0xEF}, Mic(true))
	assert.Equal(t, Frame{0x7E, 0x04, 0x07, 0x00, 0xFF, 0xFF, 0xFF, 0x00, 0xEF}, Mic(false))

	f, err := MicEQ(EQDisco)
	require.NoError(t, err)
	assert.Equal(t, Frame{0x7E, 0x05, 0x03, 0x83, 0x04, 0xFF, 0xFF, 0x00, 0xEF}, f)

	f, err = MicEQ(EQClassic)
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), f[3])
}

func TestSyncTime(t *testing.T) {
	// 2024-01-07 was a Sunday.
	sunday := time.Date(2024, time.January, 7, 21, 5, 9, 0, time.Local)
	enc := Encoder{Clock: FixedClock(sunday)}

	f, err := enc.SyncTime()
	require.NoError(t, err)
	assert.Equal(t, Frame{0x7E, 0x07, 0x83, 21, 5, 9, 0, 0xFF, 0xEF}, f)

	for offset, want := range []byte{0, 1, 2, 3, 4, 5, 6} {
		enc.Clock = FixedClock(sunday.AddDate(0, 0, offset))
		f, err = enc.SyncTime()
		require.NoError(t, err)
		assert.Equal(t, want, f[6], sunday.AddDate(0, 0, offset).Weekday().String())
	}
}

func TestSyncTimeClockUnavailable(t *testing.T) {
	broken := Encoder{Clock: func() (time.Time, error) { return time.Time{}, errors.New("rtc not set") }}
	f, err := broken.SyncTime()
	assert.ErrorIs(t, err, ErrClockUnavailable)
	assert.NotErrorIs(t, err, ErrOutOfRange)
	assert.False(t, f.Valid())

	zero := Encoder{Clock: FixedClock(time.Time{})}
	_, err = zero.SyncTime()
	assert.ErrorIs(t, err, ErrClockUnavailable)

	f, err = Encoder{}.SyncTime()
	require.NoError(t, err)
	assertFramed(t, f)
}

func TestTiming(t *testing.T) {
	days := Weekdays{true, false, false, false, false, false, true}
	require.Equal(t, byte(65), days.Mask())

	f, err := Timing(7, 30, 0, days, true, true)
	require.NoError(t, err)
	assert.Equal(t, Frame{0x7E, 0x08, 0x82, 7, 30, 0, 0x00, 0xC1, 0xEF}, f)

	f, err = Timing(23, 59, 59, days, false, false)
	require.NoError(t, err)
	assert.Equal(t, Frame{0x7E, 0x08, 0x82, 23, 59, 59, 0x01, 0x41, 0xEF}, f)
}

func TestTimingOnOffInverted(t *testing.T) {
	on, err := Timing(6, 0, 0, Daily, true, true)
	require.NoError(t, err)
	off, err := Timing(6, 0, 0, Daily, false, true)
	require.NoError(t, err)

	assert.Equal(t, byte(0x00), on[6])
	assert.Equal(t, byte(0x01), off[6])
	assert.Equal(t, byte(0xFF), on[7])
}

func TestWireOrder(t *testing.T) {
	f, err := WireOrder(WireGreen, WireRed, WireBlue)
	require.NoError(t, err)
	assert.Equal(t, Frame{0x7E, 0x06, 0x81, 2, 1, 3, 0xFF, 0x00, 0xEF}, f)

	f, err = WireOrder(WireRed, WireRed, WireRed)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1, 1}, f[3:6])

	_, err = WireOrder(0, WireRed, WireBlue)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestRejectPolicy(t *testing.T) {
	tests := []struct {
		name  string
		call  func() (Frame, error)
		field string
	}{
		{"red high", func() (Frame, error) { return Colour(256, 0, 0) }, "red"},
		{"blue negative", func() (Frame, error) { return Colour(0, 0, -1) }, "blue"},
		{"pattern high", func() (Frame, error) { return Pattern(29) }, "pattern"},
		{"pattern negative", func() (Frame, error) { return Pattern(-1) }, "pattern"},
		{"brightness high", func() (Frame, error) { return Brightness(150) }, "brightness"},
		{"brightness negative", func() (Frame, error) { return Brightness(-5) }, "brightness"},
		{"speed huge", func() (Frame, error) { return Speed(math.MaxInt32) }, "speed"},
		{"eq", func() (Frame, error) { return MicEQ(4) }, "eq mode"},
		{"hour", func() (Frame, error) { return Timing(24, 0, 0, Daily, true, true) }, "hour"},
		{"second", func() (Frame, error) { return Timing(0, 0, 60, Daily, true, true) }, "second"},
		{"wire", func() (Frame, error) { return WireOrder(WireRed, 4, WireBlue) }, "wire 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutOfRange)

			var rangeErr *RangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, tt.field, rangeErr.Field)
			assert.Equal(t, Frame{}, f)
			assert.False(t, f.Valid())
		})
	}
}

func TestClampPolicy(t *testing.T) {
	enc := Encoder{Policy: Clamp}

	f, err := enc.Brightness(150)
	require.NoError(t, err)
	assert.Equal(t, byte(100), f[3])

	f, err = enc.Brightness(-5)
	require.NoError(t, err)
	assert.Equal(t, byte(0), f[3])

	f, err = enc.Colour(300, -20, 128)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0x00, 0x80}, f[4:7])

	f, err = enc.Pattern(math.MinInt32)
	require.NoError(t, err)
	assert.Equal(t, byte(128), f[3])

	f, err = enc.Pattern(1000)
	require.NoError(t, err)
	assert.Equal(t, byte(156), f[3])

	f, err = enc.MicEQ(-3)
	require.NoError(t, err)
	assert.Equal(t, byte(128), f[3])

	f, err = enc.Timing(99, -1, 75, Weekdays{}, true, false)
	require.NoError(t, err)
	assert.Equal(t, []byte{23, 0, 59}, f[3:6])

	f, err = enc.WireOrder(0, 9, WireGreen)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 3, 2}, f[3:6])
}

func TestFramesAlwaysFramed(t *testing.T) {
	inputs := []int{math.MinInt32, -1, 0, 1, 3, 28, 59, 100, 255, 256, math.MaxInt32}
	enc := Encoder{Policy: Clamp, Clock: SystemClock}

	for _, v := range inputs {
		frames := []func() (Frame, error){
			func() (Frame, error) { return enc.Colour(v, v, v) },
			func() (Frame, error) { return enc.Pattern(v) },
			func() (Frame, error) { return enc.Speed(v) },
			func() (Frame, error) { return enc.Brightness(v) },
			func() (Frame, error) { return enc.MicEQ(EQMode(v)) },
			func() (Frame, error) { return enc.MicSensitivity(v) },
			func() (Frame, error) { return enc.Timing(v, v, v, Daily, v%2 == 0, v > 0) },
			func() (Frame, error) { return enc.WireOrder(Wire(v), Wire(v), Wire(v)) },
		}
		for _, fn := range frames {
			f, err := fn()
			require.NoError(t, err)
			assertFramed(t, f)
		}
	}

	f, err := enc.SyncTime()
	require.NoError(t, err)
	assertFramed(t, f)
	assertFramed(t, enc.Power(true))
	assertFramed(t, enc.Mic(false))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("clamp")
	require.NoError(t, err)
	assert.Equal(t, Clamp, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Reject, p)

	_, err = ParsePolicy("wrap")
	assert.Error(t, err)
}
