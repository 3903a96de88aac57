//go:build rp2040

package main

import (
	"errors"
	"machine"

	"auxout/core"
)

// PWMChannels is the number of slice outputs (8 slices, A and B)
const PWMChannels = 16

var errSlicePeriod = errors.New("pwm slice already running at another frequency")

// pwmPeripheral abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

type sliceOutput struct {
	frequency uint32
	bits      uint8
	pwm       pwmPeripheral
	output    uint8
	bound     bool
}

// RP2040PWMTimer implements core.PWMTimer on the RP2040 PWM slices.
// GPIO N drives slice (N>>1)&7, output A when even and B when odd.
type RP2040PWMTimer struct {
	channels map[core.Channel]*sliceOutput

	// Key: slice number (0-7), Value: configured period in nanoseconds
	periods map[uint8]uint64
}

// NewRP2040PWMTimer creates a new RP2040 PWM timer driver
func NewRP2040PWMTimer() *RP2040PWMTimer {
	return &RP2040PWMTimer{
		channels: make(map[core.Channel]*sliceOutput),
		periods:  make(map[uint8]uint64),
	}
}

// Configure records frequency and resolution. The slice is programmed
// on Bind, once the pin is known.
func (t *RP2040PWMTimer) Configure(ch core.Channel, frequency uint32, bits uint8) error {
	if frequency == 0 {
		return core.ErrInvalidFrequency
	}
	t.channels[ch] = &sliceOutput{frequency: frequency, bits: bits}
	return nil
}

// Bind programs the pin's slice and routes the output to the pin
func (t *RP2040PWMTimer) Bind(pin core.NativePin, ch core.Channel) error {
	c, ok := t.channels[ch]
	if !ok {
		return errors.New("pwm channel not configured")
	}

	slice := uint8((pin >> 1) & 0x7)
	period := 1000000000 / uint64(c.frequency)
	if existing, ok := t.periods[slice]; ok && existing != period {
		return errSlicePeriod
	}

	pwm := pwmSlice(slice)
	if err := pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
		return err
	}
	output, err := pwm.Channel(machine.Pin(pin))
	if err != nil {
		return err
	}

	t.periods[slice] = period
	c.pwm = pwm
	c.output = output
	c.bound = true
	return nil
}

// Write sets the duty numerator, scaled from 1<<bits to the slice TOP
func (t *RP2040PWMTimer) Write(ch core.Channel, duty uint32) error {
	c, ok := t.channels[ch]
	if !ok || !c.bound {
		return errors.New("pwm channel not bound")
	}

	top := uint64(c.pwm.Top())
	value := (uint64(duty) * top) >> c.bits
	if value > top {
		value = top
	}
	c.pwm.Set(c.output, uint32(value))
	return nil
}

// busClock reports the PWM counter clock, which is the system clock
func busClock() uint32 {
	return machine.CPUFrequency()
}

// pwmSlice returns the peripheral for slice 0-7
func pwmSlice(slice uint8) pwmPeripheral {
	switch slice {
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return machine.PWM0
	}
}
