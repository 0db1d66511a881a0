// Package config loads the YAML configuration for the bledom command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/user154lt/ELK-BLEDOM-Command-Util/device"
	"github.com/user154lt/ELK-BLEDOM-Command-Util/protocol"
)

// Config is the top level configuration file.
type Config struct {
	LogLevel          string     `yaml:"log_level"`
	Policy            string     `yaml:"policy"`
	Device            Device     `yaml:"device"`
	SyncTimeOnConnect bool       `yaml:"sync_time_on_connect"`
	WireOrder         string     `yaml:"wire_order"`
	Schedules         []Schedule `yaml:"schedules"`
}

// Device holds discovery settings.
type Device struct {
	NamePrefix  string        `yaml:"name_prefix"`
	ScanTimeout time.Duration `yaml:"scan_timeout"`
}

// Schedule is one timer entry installed on the controller at startup.
type Schedule struct {
	At    string `yaml:"at"`    // HH:MM or HH:MM:SS
	Days  string `yaml:"days"`  // see protocol.ParseWeekdays; empty means daily
	Event string `yaml:"event"` // "on" or "off"
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:          "info",
		Policy:            protocol.Reject.String(),
		SyncTimeOnConnect: true,
		Device: Device{
			NamePrefix:  device.BLEDOM_DeviceNamePrefix,
			ScanTimeout: time.Minute,
		},
	}
}

// Load reads path on top of Default. Unknown keys are an error.
func Load(path string) (*Config, error) {
	logrus.WithField("path", path).Debug("loading config file")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every field that is parsed later, including encoding each
// schedule with the configured policy.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := protocol.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if c.Device.ScanTimeout <= 0 {
		return fmt.Errorf("device.scan_timeout must be positive, got %s", c.Device.ScanTimeout)
	}
	if c.WireOrder != "" {
		if _, err := protocol.ParseWireOrder(c.WireOrder); err != nil {
			return fmt.Errorf("wire_order: %w", err)
		}
	}
	enc := c.Encoder()
	for i, s := range c.Schedules {
		cmd, err := s.Command()
		if err == nil {
			_, err = cmd.Encode(enc)
		}
		if err != nil {
			return fmt.Errorf("schedules[%d]: %w", i, err)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Encoder builds the protocol encoder for the configured policy.
func (c *Config) Encoder() protocol.Encoder {
	p, _ := protocol.ParsePolicy(c.Policy)
	return protocol.Encoder{Policy: p, Clock: protocol.SystemClock}
}

// StartupCommands lists the commands to send right after connecting: time
// sync, wire order, then every schedule in file order.
func (c *Config) StartupCommands() ([]device.Command, error) {
	var cmds []device.Command
	if c.SyncTimeOnConnect {
		cmds = append(cmds, device.SyncTimeCommand{})
	}
	if c.WireOrder != "" {
		order, err := protocol.ParseWireOrder(c.WireOrder)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, device.WireOrderCommand{Order: order})
	}
	for _, s := range c.Schedules {
		cmd, err := s.Command()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Command turns the entry into a timer set command.
func (s Schedule) Command() (device.TimingCommand, error) {
	h, m, sec, err := ParseClock(s.At)
	if err != nil {
		return device.TimingCommand{}, err
	}
	days := protocol.Daily
	if strings.TrimSpace(s.Days) != "" {
		if days, err = protocol.ParseWeekdays(s.Days); err != nil {
			return device.TimingCommand{}, err
		}
	}

	var on bool
	switch s.Event {
	case "on":
		on = true
	case "off":
	default:
		return device.TimingCommand{}, fmt.Errorf("event must be \"on\" or \"off\", got %q", s.Event)
	}
	return device.TimingCommand{Hour: h, Minute: m, Second: sec, Days: days, On: on, Set: true}, nil
}

// ParseClock reads "HH:MM" or "HH:MM:SS". Ranges are left to the encoder.
func ParseClock(s string) (hour, minute, second int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("time %q: want HH:MM or HH:MM:SS", s)
	}

	vals := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("time %q: %w", s, err)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}
