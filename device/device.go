package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/user154lt/ELK-BLEDOM-Command-Util/protocol"
)

const (
	// Service UUID - Sourced from DuoCol Android APK
	BLEDOM_ServiceUUID = "0000fff0-0000-1000-8000-00805f9b34fb"
	// Characteristic UUID - Sourced from DuoCol Android APK
	BLEDOM_CharacteristicUUID = "0000fff3-0000-1000-8000-00805f9b34fb"
	// Expected BLE Name Prefix - the device doesn't advertise it's true
	// services, so we identify the beginning of their advertised *name*
	BLEDOM_DeviceNamePrefix = "ELK"
)

var (
	// ErrScanTimeout occurs when the user provided timeout duration elapses
	// before the adapter has correctly identified a device from scanning.
	ErrScanTimeout = errors.New("timed out attempting to discover device")
	// ErrServiceNotAvailable occurs when the connected device - i.e. the one
	// identified via scanning that matches the expected device name - does not
	// implement the expected service UUID.
	ErrServiceNotAvailable = errors.New("device does not implement required service")
	// ErrCharacteristicNotAvailable occurs when the connected device *does*
	// implement the expected the service UUID, but the expected characteristic
	// UUID is not available.
	ErrCharacteristicNotAvailable = errors.New("unable to access required characteristic on device")
	// ErrNotConnected is returned by writes issued before Connect succeeded.
	ErrNotConnected = errors.New("device not connected")
	// ErrStopped is returned by writes issued after Stop.
	ErrStopped = errors.New("device connection stopped")
	// ErrAlreadyConnected is returned by Connect once a connection exists.
	ErrAlreadyConnected = errors.New("device already connected")
)

// Sender accepts commands for a device. BleDom sends them over Bluetooth,
// Printer writes them out as hex.
type Sender interface {
	WriteCommand(cmd Command) error
}

// Options contains general - and *optional* - configuration settings for the
// `BleDom` device. This includes things such as the Bluetooth adapter to use,
// the parameters for the underlying Bluetooth connection attempt, and the
// encoder policy applied to every command.
type Options struct {
	Adapter    *bluetooth.Adapter
	ConnParams bluetooth.ConnectionParams
	NamePrefix string
	Encoder    protocol.Encoder
	Logger     logrus.FieldLogger
}

// characteristic is the part of bluetooth.DeviceCharacteristic we use.
type characteristic interface {
	WriteWithoutResponse(p []byte) (int, error)
	Read(data []byte) (int, error)
}

type connection interface {
	Disconnect() error
}

var (
	_ characteristic = (*bluetooth.DeviceCharacteristic)(nil)
	_ connection     = (*bluetooth.Device)(nil)
)

type writeRequest struct {
	frame  protocol.Frame
	result chan error
}

// BleDom represents a ELK-BLEDOM device.
type BleDom struct {
	opts           *Options
	log            logrus.FieldLogger
	ctx            context.Context
	cancel         context.CancelFunc
	device         connection
	characteristic characteristic
	pollCh         chan Poller
	commandCh      chan writeRequest
	ready          chan struct{}
	finished       chan struct{}
	attachOnce     sync.Once
}

// NewBleDomRGBController creates a new `BleDom`, and - due to internal state -
// is the only way to actually create one.
func NewBleDomRGBController(parentCtx context.Context, opts Options) *BleDom {
	if opts.NamePrefix == "" {
		opts.NamePrefix = BLEDOM_DeviceNamePrefix
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	ctx, cancel := context.WithCancel(parentCtx)
	return &BleDom{
		opts: &opts, log: opts.Logger.WithField("component", "bledom"),
		ctx: ctx, cancel: cancel,
		pollCh: make(chan Poller), commandCh: make(chan writeRequest),
		ready: make(chan struct{}), finished: make(chan struct{}),
	}
}

// Connect handles the initial connection to the BLE device, it may return an
// error for any one of it's multiple failure points. After Connect has been
// called (and ran successfully without error) the device will be ready for
// sending commands to.
func (b *BleDom) Connect(timeout time.Duration) error {
	if b.connected() {
		return ErrAlreadyConnected
	}

	if b.opts.Adapter == nil {
		b.opts.Adapter = bluetooth.DefaultAdapter
	}

	// Enable adapter
	if err := b.opts.Adapter.Enable(); err != nil {
		return fmt.Errorf("enable adapter: %w", err)
	}

	devCh := make(chan bluetooth.ScanResult, 1)
	go func() {
		b.log.WithField("prefix", b.opts.NamePrefix).Info("scanning for device")
		if err := b.opts.Adapter.Scan(
			func(adapter *bluetooth.Adapter, res bluetooth.ScanResult) {
				b.log.WithFields(logrus.Fields{
					"address": res.Address.String(), "rssi": res.RSSI, "name": res.LocalName(),
				}).Debug("found device")

				if strings.HasPrefix(res.LocalName(), b.opts.NamePrefix) {
					adapter.StopScan()
					select {
					case devCh <- res:
					default:
					}
				}
			}); err != nil {
			b.log.WithError(err).Error("unable to scan via adapter")
		}
	}()

	var device *bluetooth.Device
	select {
	case res := <-devCh:
		d, err := b.opts.Adapter.Connect(res.Address, b.opts.ConnParams)
		if err != nil {
			return fmt.Errorf("connect %s: %w", res.Address.String(), err)
		}

		b.log.WithField("address", res.Address.String()).Info("connected")
		device = d
	case <-time.After(timeout):
		b.opts.Adapter.StopScan()
		return ErrScanTimeout
	case <-b.ctx.Done():
		b.opts.Adapter.StopScan()
		return ErrStopped
	}

	serviceUUID, _ := bluetooth.ParseUUID(BLEDOM_ServiceUUID)
	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("discover services: %w", err)
	} else if len(services) == 0 {
		device.Disconnect()
		return ErrServiceNotAvailable
	}

	characteristicUUID, _ := bluetooth.ParseUUID(BLEDOM_CharacteristicUUID)
	characteristics, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{
		characteristicUUID,
	})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("discover characteristics: %w", err)
	} else if len(characteristics) == 0 {
		device.Disconnect()
		return ErrCharacteristicNotAvailable
	}

	if err := b.attach(device, &characteristics[0]); err != nil {
		device.Disconnect()
		return err
	}
	return nil
}

func (b *BleDom) connected() bool {
	select {
	case <-b.ready:
		return true
	default:
		return false
	}
}

// attach hands the connection to the interact loop. Only the first call
// takes effect.
func (b *BleDom) attach(device connection, char characteristic) error {
	err := ErrAlreadyConnected
	b.attachOnce.Do(func() {
		b.device = device
		b.characteristic = char
		close(b.ready)
		go b.interact()
		err = nil
	})
	return err
}

// Poller is a consumer-provided callback function used for handling state
// monitoring via `PollState`.
type Poller func([]byte)

// PollState will call `cb` at an interval of `d`, providing access to the
// latest state of the connected device.
func (b *BleDom) PollState(d time.Duration, cb Poller) {
	go func() {
		t := time.NewTimer(d)

		for {
			select {
			case <-b.ctx.Done():
				t.Stop()
				return
			case <-t.C:
				select {
				case b.pollCh <- cb:
				case <-b.ctx.Done():
					return
				}
				t.Reset(d)
			}
		}
	}()
}

// WriteCommand encodes cmd with the configured encoder and dispatches it to
// the device. Encoding errors are returned before anything is sent.
func (b *BleDom) WriteCommand(cmd Command) error {
	frame, err := cmd.Encode(b.opts.Encoder)
	if err != nil {
		return fmt.Errorf("encode %s: %w", Name(cmd), err)
	}

	b.log.WithFields(logrus.Fields{"command": Name(cmd), "frame": frame.String()}).Debug("writing command")
	return b.WriteFrame(frame)
}

// WriteFrame dispatches a frame to the device and waits for the write to be
// handed to the adapter.
func (b *BleDom) WriteFrame(frame protocol.Frame) error {
	if !b.connected() {
		return ErrNotConnected
	}

	req := writeRequest{frame: frame, result: make(chan error, 1)}
	select {
	case <-b.ctx.Done():
		return ErrStopped
	case b.commandCh <- req:
	}

	select {
	case <-b.ctx.Done():
		return ErrStopped
	case err := <-req.result:
		return err
	}
}

// Stop terminates the device connection and prevents any further operations.
// Note that any pending operations may still execute.
func (b *BleDom) Stop() {
	b.cancel()
}

// Done blocks until the device connection has been gracefully terminated.
func (b *BleDom) Done() {
	<-b.ctx.Done()
	if b.connected() {
		<-b.finished
	}
}

func (b *BleDom) interact() {
	defer close(b.finished)

	for {
		select {
		case <-b.ctx.Done():
			if err := b.device.Disconnect(); err != nil {
				b.log.WithError(err).Warn("disconnect failed")
			}
			b.log.Info("disconnected")
			return
		case pollReq := <-b.pollCh:
			data := make([]byte, 16)
			n, err := b.characteristic.Read(data)
			if err != nil {
				b.log.WithError(err).Warn("unable to read characteristic")
				continue
			}
			pollReq(data[:n])
		case req := <-b.commandCh:
			_, err := b.characteristic.WriteWithoutResponse(req.frame.Bytes())
			if err != nil {
				b.log.WithError(err).WithField("frame", req.frame.String()).Warn("write failed")
				err = fmt.Errorf("write characteristic: %w", err)
			}
			req.result <- err
		}
	}
}
