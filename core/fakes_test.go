package core

import (
	"errors"
	"fmt"
)

// fakePin records every hardware operation
type fakePin struct {
	name   string
	native NativePin
	attr   PinAttr
	level  bool
	writes []bool
	offs   int

	writeErr error
}

func newFakePin(name string, native NativePin) *fakePin {
	return &fakePin{name: name, native: native}
}

func (p *fakePin) Undefined() bool { return false }

func (p *fakePin) SetAttr(attr PinAttr) error {
	p.attr = attr
	return nil
}

func (p *fakePin) Off() error {
	p.offs++
	p.level = false
	return nil
}

func (p *fakePin) Write(on bool) error {
	if p.writeErr != nil {
		return p.writeErr
	}
	p.writes = append(p.writes, on)
	p.level = on
	return nil
}

func (p *fakePin) Name() string { return p.name }

func (p *fakePin) Native(PinCapability) (NativePin, error) { return p.native, nil }

type timerWrite struct {
	ch   Channel
	duty uint32
}

type timerConfig struct {
	frequency uint32
	bits      uint8
}

// fakeTimer records PWM timer programming
type fakeTimer struct {
	configs map[Channel]timerConfig
	binds   map[Channel]NativePin
	writes  []timerWrite

	configureErr error
	writeErr     error
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{
		configs: make(map[Channel]timerConfig),
		binds:   make(map[Channel]NativePin),
	}
}

func (t *fakeTimer) Configure(ch Channel, frequency uint32, bits uint8) error {
	if t.configureErr != nil {
		return t.configureErr
	}
	t.configs[ch] = timerConfig{frequency: frequency, bits: bits}
	return nil
}

func (t *fakeTimer) Bind(pin NativePin, ch Channel) error {
	if _, ok := t.configs[ch]; !ok {
		return fmt.Errorf("channel %d not configured", ch)
	}
	t.binds[ch] = pin
	return nil
}

func (t *fakeTimer) Write(ch Channel, duty uint32) error {
	if _, ok := t.binds[ch]; !ok {
		return fmt.Errorf("channel %d not bound", ch)
	}
	if t.writeErr != nil {
		return t.writeErr
	}
	t.writes = append(t.writes, timerWrite{ch: ch, duty: duty})
	return nil
}

// countingAllocator wraps a pool and counts calls
type countingAllocator struct {
	pool  *ChannelPool
	calls int
}

func (c *countingAllocator) Allocate() (Channel, error) {
	c.calls++
	return c.pool.Allocate()
}

// fakeGPIO is a GPIODriver keeping pin state in a map
type fakeGPIO struct {
	outputs map[GPIOPin]bool
	levels  map[GPIOPin]bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{outputs: make(map[GPIOPin]bool), levels: make(map[GPIOPin]bool)}
}

func (g *fakeGPIO) ConfigureOutput(pin GPIOPin) error {
	g.outputs[pin] = true
	return nil
}

func (g *fakeGPIO) SetPin(pin GPIOPin, value bool) error {
	if !g.outputs[pin] {
		return errors.New("pin not configured as output")
	}
	g.levels[pin] = value
	return nil
}
