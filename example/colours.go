// Command colours cycles an ELK-BLEDOM strip through a fixed palette, one
// colour per second, dimming and brightening between rounds.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user154lt/ELK-BLEDOM-Command-Util/device"
)

var palette = []device.ColourCommand{
	device.ColourCommandFromValues(0x80, 0x00, 0x00),
	device.ColourCommandFromValues(0x80, 0x80, 0x00),
	device.ColourCommandFromValues(0x80, 0x00, 0x80),
	device.ColourCommandFromValues(0x00, 0x80, 0x00),
	device.ColourCommandFromValues(0x00, 0x80, 0x80),
	device.ColourCommandFromValues(0x00, 0x00, 0x80),
}

func gracefulTermination(cancel context.CancelFunc, d *device.BleDom) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logrus.Info("SIGTERM received, performing graceful shutdown")
		cancel()
		d.Stop()
	}()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	d := device.NewBleDomRGBController(ctx, device.Options{})

	if err := d.Connect(time.Minute); err != nil {
		logrus.WithError(err).Fatal("unable to connect")
	}

	gracefulTermination(cancel, d)

	// Don't terminate until device has been cleanly shutdown
	defer func() {
		logrus.Info("waiting for device disconnection")
		d.Done()
		logrus.Info("device disconnected: terminating app")
	}()

	// Configure state polling; retrieve state every 30 seconds and log it.
	d.PollState(30*time.Second, func(state []byte) {
		logrus.WithField("state", state).Info("received latest state from device")
	})

	for _, cmd := range []device.Command{
		device.PowerCommand{On: true},
		device.SyncTimeCommand{},
		device.BrightnessCommandFromValue(96),
	} {
		if err := d.WriteCommand(cmd); err != nil {
			logrus.WithError(err).Warn("setup command failed")
		}
	}

	i := 1
	brightness := 96
	t := time.NewTimer(time.Second)
	for {
		select {
		case <-ctx.Done():
			logrus.Info("context cancelled: stopping commands")
			t.Stop()
			return
		case <-t.C:
			cmd := palette[i%len(palette)]
			logrus.WithFields(logrus.Fields{"red": cmd.Red, "green": cmd.Green, "blue": cmd.Blue}).Info("changing colour")
			if err := d.WriteCommand(cmd); err != nil {
				logrus.WithError(err).Warn("colour command failed")
			}

			if i%len(palette) == 0 {
				brightness = 106 - brightness // swap between 96% and 10%
				if err := d.WriteCommand(device.BrightnessCommand{Brightness: brightness}); err != nil {
					logrus.WithError(err).Warn("brightness command failed")
				}
			}

			i = i + 1
			t.Reset(time.Second)
		}
	}
}
