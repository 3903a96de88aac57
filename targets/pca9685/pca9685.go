// Package pca9685 drives user outputs on a PCA9685 16-channel I2C PWM
// expander. All LEDs share one prescaler, so every analog output on the
// chip must use the same frequency.
package pca9685

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"tinygo.org/x/drivers"

	"auxout/core"
)

// DefaultAddress is the chip address with A0-A5 tied low
const DefaultAddress = 0x40

// OscillatorFrequency is the internal oscillator (Hz)
const OscillatorFrequency = 25000000

// Counter resolution of every LED output
const counterBits = 12

// LEDs on one chip
const NumLEDs = 16

// Registers
const (
	regMode1    = 0x00
	regMode2    = 0x01
	regLED0     = 0x06
	regPrescale = 0xFE

	mode1Sleep   = 0x10
	mode1AutoInc = 0x20
	mode2OutDrv  = 0x04

	ledFull = 0x10 // bit 4 of ON_H / OFF_H
)

var (
	// ErrFrequencyConflict is returned when a second frequency is requested on the shared prescaler
	ErrFrequencyConflict = errors.New("pca9685: prescaler already set to a different frequency")

	// ErrFrequencyRange is returned for frequencies the prescaler cannot produce
	ErrFrequencyRange = errors.New("pca9685: frequency out of range")
)

type ledChannel struct {
	bits  uint8
	led   uint8
	bound bool
}

// Dev is a PCA9685 acting as a core.PWMTimer and a source of core.Pins
type Dev struct {
	mu   sync.Mutex
	bus  drivers.I2C
	addr uint16

	frequency uint32
	channels  map[core.Channel]*ledChannel
	pool      *core.ChannelPool
}

// compile-time checks for the core interfaces
var (
	_ core.PWMTimer = &Dev{}
	_ core.TimerPin = &Pin{}
)

// New creates a device on the given bus. Call Init before use.
func New(bus drivers.I2C, addr uint16) *Dev {
	return &Dev{
		bus:      bus,
		addr:     addr,
		channels: make(map[core.Channel]*ledChannel),
		pool:     core.NewChannelPool(NumLEDs),
	}
}

// Init wakes the chip with register auto-increment and totem-pole outputs
func (d *Dev) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writeReg(regMode1, mode1AutoInc); err != nil {
		return fmt.Errorf("pca9685: init: %w", err)
	}
	if err := d.writeReg(regMode2, mode2OutDrv); err != nil {
		return fmt.Errorf("pca9685: init: %w", err)
	}
	return nil
}

// BusClock reports the oscillator frequency for resolution derivation.
// Resolutions above 12 bits are scaled down on write.
func (d *Dev) BusClock() uint32 {
	return OscillatorFrequency
}

// Configure sets the shared prescaler on first use. Later channels must
// ask for the same frequency.
func (d *Dev) Configure(ch core.Channel, frequency uint32, bits uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frequency == 0 {
		prescale, err := prescaleFor(frequency)
		if err != nil {
			return err
		}
		if err := d.setPrescale(prescale); err != nil {
			return err
		}
		d.frequency = frequency
	} else if d.frequency != frequency {
		return fmt.Errorf("channel %d at %dHz: %w (%dHz)", ch, frequency, ErrFrequencyConflict, d.frequency)
	}

	d.channels[ch] = &ledChannel{bits: bits}
	return nil
}

// Bind routes a channel to an LED output
func (d *Dev) Bind(pin core.NativePin, ch core.Channel) error {
	if pin >= NumLEDs {
		return fmt.Errorf("pca9685: no LED %d", pin)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.channels[ch]
	if !ok {
		return fmt.Errorf("pca9685: channel %d not configured", ch)
	}
	c.led = uint8(pin)
	c.bound = true
	return nil
}

// Write sets a channel's duty numerator (0 to 1<<bits)
func (d *Dev) Write(ch core.Channel, duty uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.channels[ch]
	if !ok || !c.bound {
		return fmt.Errorf("pca9685: channel %d not bound", ch)
	}
	return d.setCounts(c.led, scaleCounts(duty, c.bits))
}

// setFull drives an LED fully on or off
func (d *Dev) setFull(led uint8, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if on {
		return d.setCounts(led, 1<<counterBits)
	}
	return d.setCounts(led, 0)
}

// setCounts writes the ON/OFF registers of one LED. 0 and 4096 use the
// full-off and full-on bits.
func (d *Dev) setCounts(led uint8, counts uint32) error {
	var onH, offL, offH byte
	switch {
	case counts == 0:
		offH = ledFull
	case counts >= 1<<counterBits:
		onH = ledFull
	default:
		offL = byte(counts)
		offH = byte(counts >> 8)
	}
	return d.writeReg(regLED0+4*led, 0, onH, offL, offH)
}

func (d *Dev) setPrescale(prescale uint8) error {
	// the prescaler is only writable in sleep
	if err := d.writeReg(regMode1, mode1AutoInc|mode1Sleep); err != nil {
		return err
	}
	if err := d.writeReg(regPrescale, prescale); err != nil {
		return err
	}
	return d.writeReg(regMode1, mode1AutoInc)
}

func (d *Dev) writeReg(reg uint8, data ...byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, reg)
	buf = append(buf, data...)
	return d.bus.Tx(d.addr, buf, nil)
}

// prescaleFor returns round(osc / (4096 * f)) - 1, valid in 3..255
func prescaleFor(frequency uint32) (uint8, error) {
	if frequency == 0 {
		return 0, core.ErrInvalidFrequency
	}
	div := uint64(frequency) << counterBits
	p := (uint64(OscillatorFrequency)+div/2)/div - 1
	if p < 3 || p > 255 {
		return 0, fmt.Errorf("%dHz: %w", frequency, ErrFrequencyRange)
	}
	return uint8(p), nil
}

// scaleCounts converts a numerator of 1<<bits to 12-bit counts
func scaleCounts(duty uint32, bits uint8) uint32 {
	if bits >= counterBits {
		return duty >> (bits - counterBits)
	}
	return duty << (counterBits - bits)
}

// Pin returns LED output n as a core.Pin
func (d *Dev) Pin(n uint8) core.Pin {
	return &Pin{dev: d, led: n}
}

// Resolve maps "pca9685.N" names to LED pins
func (d *Dev) Resolve(name string) (core.Pin, error) {
	if core.IsNoPin(name) {
		return core.NoPin, nil
	}
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "pca9685.")
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || n >= NumLEDs {
		return nil, fmt.Errorf("pin %q: %w", name, core.ErrBadPinName)
	}
	return d.Pin(uint8(n)), nil
}

// Pin is one LED output of the chip used as an on/off pin or a PWM pin
type Pin struct {
	dev *Dev
	led uint8
}

func (p *Pin) Undefined() bool { return false }

// SetAttr accepts output; LED pins are always outputs
func (p *Pin) SetAttr(attr core.PinAttr) error {
	if attr != core.PinAttrOutput {
		return fmt.Errorf("pin %s: unsupported attribute %d", p.Name(), attr)
	}
	return nil
}

func (p *Pin) Off() error { return p.dev.setFull(p.led, false) }

func (p *Pin) Write(on bool) error { return p.dev.setFull(p.led, on) }

func (p *Pin) Name() string { return "pca9685." + strconv.Itoa(int(p.led)) }

func (p *Pin) Native(core.PinCapability) (core.NativePin, error) {
	return core.NativePin(p.led), nil
}

// PWMTimer returns the chip, so analog outputs on LED pins program the
// expander rather than the board timer
func (p *Pin) PWMTimer() core.PWMTimer { return p.dev }

func (p *Pin) BusClock() uint32 { return p.dev.BusClock() }

// Channels returns the chip's own pool, one channel per LED
func (p *Pin) Channels() core.ChannelAllocator { return p.dev.pool }
