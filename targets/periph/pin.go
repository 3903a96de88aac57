// Package periph drives user outputs on Linux boards through periph.io.
package periph

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"auxout/core"
)

// Lookup finds a pin by name or number, like gpioreg.ByName
type Lookup func(name string) gpio.PinIO

// Pin is a core.Pin over a periph GPIO pin
type Pin struct {
	io gpio.PinIO
}

// compile-time check for whether Pin satisfies the core.Pin interface
var _ core.Pin = &Pin{}

// NewPin wraps a periph pin
func NewPin(p gpio.PinIO) *Pin {
	return &Pin{io: p}
}

func (p *Pin) Undefined() bool { return false }

// SetAttr configures the pin as an output, driven low
func (p *Pin) SetAttr(attr core.PinAttr) error {
	if attr != core.PinAttrOutput {
		return fmt.Errorf("pin %s: unsupported attribute %d", p.io.Name(), attr)
	}
	return p.io.Out(gpio.Low)
}

func (p *Pin) Off() error { return p.io.Out(gpio.Low) }

func (p *Pin) Write(on bool) error { return p.io.Out(gpio.Level(on)) }

func (p *Pin) Name() string { return p.io.Name() }

// Native returns the pin number, which the Timer looks up again on Bind
func (p *Pin) Native(core.PinCapability) (core.NativePin, error) {
	n := p.io.Number()
	if n < 0 {
		return 0, fmt.Errorf("pin %s has no number", p.io.Name())
	}
	return core.NativePin(n), nil
}

// Resolver resolves configured pin names through gpioreg
type Resolver struct {
	lookup Lookup
}

// NewResolver returns a resolver over gpioreg.ByName.
// periph's host drivers must be initialized first.
func NewResolver() *Resolver {
	return &Resolver{lookup: gpioreg.ByName}
}

// NewResolverWithLookup returns a resolver over a custom lookup
func NewResolverWithLookup(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve returns core.NoPin for an empty or NO_PIN name
func (r *Resolver) Resolve(name string) (core.Pin, error) {
	if core.IsNoPin(name) {
		return core.NoPin, nil
	}
	p := r.lookup(name)
	if p == nil {
		return nil, fmt.Errorf("pin %q: %w", name, core.ErrBadPinName)
	}
	return NewPin(p), nil
}
