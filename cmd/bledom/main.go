// Command bledom controls an ELK-BLEDOM LED strip from an interactive prompt.
//
// Usage:
//
//	bledom [-config bledom.yaml] [-log-level debug] [-timeout 30s] [-dry-run]
//
// With -dry-run no Bluetooth adapter is used and every frame is printed as
// hex instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user154lt/ELK-BLEDOM-Command-Util/device"
	"github.com/user154lt/ELK-BLEDOM-Command-Util/internal/config"
	"github.com/user154lt/ELK-BLEDOM-Command-Util/internal/shell"
)

func handleTermination(log logrus.FieldLogger, cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("received SIGTERM, performing graceful shutdown")
		cancel()
	}()
}

func loadConfig(path, level string, timeout time.Duration) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if level != "" {
		cfg.LogLevel = level
	}
	if timeout > 0 {
		cfg.Device.ScanTimeout = timeout
	}
	return cfg, cfg.Validate()
}

// interactive is the part of *shell.Shell that run drives.
type interactive interface {
	Stdout() io.Writer
	Close()
	Run(ctx context.Context, cancel context.CancelFunc)
}

// app wires a sender and a shell together. The fields are swapped out in
// tests.
type app struct {
	// connect returns the sender and a cleanup that must run before exit.
	connect  func(ctx context.Context, cfg *config.Config, log *logrus.Logger) (device.Sender, func(), error)
	newShell func(sender device.Sender, log logrus.FieldLogger) (interactive, error)
}

func newApp(dryRun bool) app {
	a := app{connect: connectBLE, newShell: startShell}
	if dryRun {
		a.connect = printFrames
	}
	return a
}

func connectBLE(ctx context.Context, cfg *config.Config, log *logrus.Logger) (device.Sender, func(), error) {
	d := device.NewBleDomRGBController(ctx, device.Options{
		NamePrefix: cfg.Device.NamePrefix,
		Encoder:    cfg.Encoder(),
		Logger:     log,
	})
	if err := d.Connect(cfg.Device.ScanTimeout); err != nil {
		d.Stop()
		return nil, nil, fmt.Errorf("unable to connect to device: %w", err)
	}

	// Don't terminate until device has been cleanly shutdown
	return d, func() {
		log.Info("waiting for device disconnection")
		d.Stop()
		d.Done()
	}, nil
}

func printFrames(_ context.Context, cfg *config.Config, log *logrus.Logger) (device.Sender, func(), error) {
	log.Info("dry run: frames are printed, nothing is sent")
	return device.NewPrinter(os.Stdout, cfg.Encoder()), func() {}, nil
}

func startShell(sender device.Sender, log logrus.FieldLogger) (interactive, error) {
	sh, err := shell.New(sender, log)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// run returns once the shell exits. The connection cleanup has run by then,
// whatever the outcome.
func (a app) run(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, log *logrus.Logger) error {
	sender, cleanup, err := a.connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := applyStartup(cfg, sender, log); err != nil {
		log.WithError(err).Error("startup commands failed")
	}

	sh, err := a.newShell(sender, log)
	if err != nil {
		return fmt.Errorf("unable to start shell: %w", err)
	}
	log.SetOutput(sh.Stdout())

	go func() {
		<-ctx.Done()
		sh.Close()
	}()
	sh.Run(ctx, cancel)
	return nil
}

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	timeout := flag.Duration("timeout", 0, "Device scan timeout")
	dryRun := flag.Bool("dry-run", false, "Print frames instead of sending them")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *logLevel, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bledom: %v\n", err)
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetLevel(cfg.Level())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, cancel := context.WithCancel(context.Background())
	handleTermination(logger, cancel)

	err = newApp(*dryRun).run(ctx, cancel, cfg, logger)
	cancel()
	if err != nil {
		logger.WithError(err).Error("bledom stopped")
		os.Exit(1)
	}
}

// applyStartup sends the configured time sync, wire order and schedules.
func applyStartup(cfg *config.Config, sender device.Sender, log logrus.FieldLogger) error {
	cmds, err := cfg.StartupCommands()
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		if err := sender.WriteCommand(cmd); err != nil {
			return fmt.Errorf("%s: %w", device.Name(cmd), err)
		}
		log.WithField("command", device.Name(cmd)).Debug("startup command sent")
	}
	return nil
}
