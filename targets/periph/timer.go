package periph

import (
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"

	"auxout/core"
)

type timerChannel struct {
	frequency physic.Frequency
	bits      uint8
	pin       gpio.PinOut
}

// Timer is a core.PWMTimer over periph's PinOut.PWM. Each channel keeps its
// own frequency and resolution; duty numerators are scaled to gpio.DutyMax.
type Timer struct {
	mu       sync.Mutex
	lookup   Lookup
	channels map[core.Channel]*timerChannel
}

// compile-time check for whether Timer satisfies the core.PWMTimer interface
var _ core.PWMTimer = &Timer{}

// NewTimer returns a timer that finds pins through gpioreg
func NewTimer() *Timer {
	return NewTimerWithLookup(gpioreg.ByName)
}

// NewTimerWithLookup returns a timer over a custom lookup
func NewTimerWithLookup(lookup Lookup) *Timer {
	return &Timer{
		lookup:   lookup,
		channels: make(map[core.Channel]*timerChannel),
	}
}

// Configure records the channel's frequency and resolution
func (t *Timer) Configure(ch core.Channel, frequency uint32, bits uint8) error {
	if frequency == 0 {
		return core.ErrInvalidFrequency
	}
	if bits > core.MaxResolutionBits {
		return fmt.Errorf("channel %d: %d bit resolution unsupported", ch, bits)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.channels[ch] = &timerChannel{
		frequency: physic.Frequency(frequency) * physic.Hertz,
		bits:      bits,
	}
	return nil
}

// Bind attaches the channel to the pin with the given number
func (t *Timer) Bind(pin core.NativePin, ch core.Channel) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.channels[ch]
	if !ok {
		return fmt.Errorf("channel %d not configured", ch)
	}
	p := t.lookup(strconv.Itoa(int(pin)))
	if p == nil {
		return fmt.Errorf("channel %d: no pin %d", ch, pin)
	}
	c.pin = p
	return nil
}

// Write sets the duty numerator (0 to 1<<bits)
func (t *Timer) Write(ch core.Channel, duty uint32) error {
	t.mu.Lock()
	c, ok := t.channels[ch]
	if !ok || c.pin == nil {
		t.mu.Unlock()
		return fmt.Errorf("channel %d not bound", ch)
	}
	pin, frequency, bits := c.pin, c.frequency, c.bits
	t.mu.Unlock()

	return pin.PWM(scaleDuty(duty, bits), frequency)
}

// scaleDuty converts a numerator of 1<<bits to a periph duty
func scaleDuty(duty uint32, bits uint8) gpio.Duty {
	d := (uint64(duty) * uint64(gpio.DutyMax)) >> bits
	if d > uint64(gpio.DutyMax) {
		d = uint64(gpio.DutyMax)
	}
	return gpio.Duty(d)
}
