package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user154lt/ELK-BLEDOM-Command-Util/device"
	"github.com/user154lt/ELK-BLEDOM-Command-Util/internal/config"
)

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bledom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))

	cfg, err := loadConfig(path, "debug", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Device.ScanTimeout)

	_, err = loadConfig("", "shouty", 0)
	assert.Error(t, err)
}

func TestApplyStartup(t *testing.T) {
	cfg, err := config.Parse([]byte(`
sync_time_on_connect: false
wire_order: brg
schedules:
  - at: "06:45"
    days: weekend
    event: "off"
`))
	require.NoError(t, err)

	var out bytes.Buffer
	logger, _ := test.NewNullLogger()
	require.NoError(t, applyStartup(cfg, device.NewPrinter(&out, cfg.Encoder()), logger))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"wires: 7e 06 81 03 01 02 ff 00 ef",
		"timer: 7e 08 82 06 2d 00 01 e0 ef",
	}, lines)
}

type fakeShell struct {
	out bytes.Buffer
	ran bool
}

func (f *fakeShell) Stdout() io.Writer { return &f.out }
func (f *fakeShell) Close()            {}

func (f *fakeShell) Run(ctx context.Context, cancel context.CancelFunc) {
	f.ran = true
	cancel()
}

func fakeConnect(cleaned *bool) func(context.Context, *config.Config, *logrus.Logger) (device.Sender, func(), error) {
	return func(_ context.Context, cfg *config.Config, _ *logrus.Logger) (device.Sender, func(), error) {
		return device.NewPrinter(io.Discard, cfg.Encoder()), func() { *cleaned = true }, nil
	}
}

func TestRunCleansUpWhenShellFails(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cleaned := false
	a := app{
		connect: fakeConnect(&cleaned),
		newShell: func(device.Sender, logrus.FieldLogger) (interactive, error) {
			return nil, errors.New("no terminal")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := a.run(ctx, cancel, config.Default(), logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to start shell")
	assert.True(t, cleaned, "connection cleanup skipped")
}

func TestRunConnectFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a := app{
		connect: func(context.Context, *config.Config, *logrus.Logger) (device.Sender, func(), error) {
			return nil, nil, errors.New("scan timed out")
		},
		newShell: func(device.Sender, logrus.FieldLogger) (interactive, error) {
			t.Fatal("shell started without a connection")
			return nil, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.EqualError(t, a.run(ctx, cancel, config.Default(), logger), "scan timed out")
}

func TestRunShell(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cleaned := false
	sh := &fakeShell{}
	a := app{
		connect: fakeConnect(&cleaned),
		newShell: func(device.Sender, logrus.FieldLogger) (interactive, error) {
			return sh, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.run(ctx, cancel, config.Default(), logger))
	assert.True(t, sh.ran)
	assert.True(t, cleaned)
	assert.Error(t, ctx.Err())
}
