package core

import (
	"fmt"
	"strconv"
	"strings"
)

// PinAttr describes how a pin is configured
type PinAttr uint8

const (
	PinAttrOutput PinAttr = iota + 1
)

// PinCapability selects which native identity of a pin is requested
type PinCapability uint8

const (
	CapGPIO PinCapability = iota + 1
	CapPWM
)

// NativePin is the platform pin identifier handed to timer drivers
type NativePin uint32

// Pin is the abstract physical pin an output owns.
// An undefined pin must be a safe, inert default.
type Pin interface {
	// Undefined reports whether no physical pin is mapped
	Undefined() bool

	// SetAttr configures the pin (direction etc.)
	SetAttr(attr PinAttr) error

	// Off drives the pin to its electrically-off state
	Off() error

	// Write drives the pin high (true) or low (false)
	Write(on bool) error

	// Name returns a human-readable pin name for log messages
	Name() string

	// Native returns the platform identifier for the given capability
	Native(c PinCapability) (NativePin, error)
}

// NoPin is the undefined pin. Every operation is a no-op.
var NoPin Pin = noPin{}

type noPin struct{}

func (noPin) Undefined() bool       { return true }
func (noPin) SetAttr(PinAttr) error { return nil }
func (noPin) Off() error            { return nil }
func (noPin) Write(bool) error      { return nil }
func (noPin) Name() string          { return "NO_PIN" }
func (noPin) Native(PinCapability) (NativePin, error) {
	return 0, ErrUnconfigured
}

// HALPin is a Pin backed by the registered GPIODriver
type HALPin struct {
	num    GPIOPin
	driver GPIODriver
}

// NewHALPin creates a pin on the given driver
func NewHALPin(driver GPIODriver, num GPIOPin) *HALPin {
	return &HALPin{num: num, driver: driver}
}

func (p *HALPin) Undefined() bool { return false }

// SetAttr configures the pin; only output is supported
func (p *HALPin) SetAttr(attr PinAttr) error {
	if attr != PinAttrOutput {
		return fmt.Errorf("pin %s: unsupported attribute %d", p.Name(), attr)
	}
	return p.driver.ConfigureOutput(p.num)
}

func (p *HALPin) Off() error { return p.driver.SetPin(p.num, false) }

func (p *HALPin) Write(on bool) error { return p.driver.SetPin(p.num, on) }

func (p *HALPin) Name() string { return "gpio." + strconv.Itoa(int(p.num)) }

// Native returns the GPIO number for every capability; on the supported
// targets PWM routing is keyed by GPIO number.
func (p *HALPin) Native(PinCapability) (NativePin, error) {
	return NativePin(p.num), nil
}

// PinResolver maps configured pin names to pins
type PinResolver interface {
	Resolve(name string) (Pin, error)
}

// GPIOResolver resolves "gpio.N" style names to HALPins on a driver.
// A nil Driver means the one registered with SetGPIODriver.
type GPIOResolver struct {
	Driver GPIODriver
}

// Resolve returns NoPin for an empty or NO_PIN name
func (r GPIOResolver) Resolve(name string) (Pin, error) {
	if IsNoPin(name) {
		return NoPin, nil
	}
	num, err := ParsePinName(name)
	if err != nil {
		return nil, err
	}
	driver := r.Driver
	if driver == nil {
		driver = MustGPIO()
	}
	return NewHALPin(driver, num), nil
}

// MuxResolver sends names carrying a registered prefix (such as
// "pca9685.") to that resolver and every other name to Default.
type MuxResolver struct {
	Default  PinResolver
	prefixes []string
	targets  []PinResolver
}

// Handle registers r for names starting with prefix (case-insensitive)
func (m *MuxResolver) Handle(prefix string, r PinResolver) {
	m.prefixes = append(m.prefixes, strings.ToLower(prefix))
	m.targets = append(m.targets, r)
}

// Resolve picks the resolver by prefix
func (m *MuxResolver) Resolve(name string) (Pin, error) {
	if IsNoPin(name) {
		return NoPin, nil
	}
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, prefix := range m.prefixes {
		if strings.HasPrefix(lower, prefix) {
			return m.targets[i].Resolve(name)
		}
	}
	if m.Default == nil {
		return nil, fmt.Errorf("invalid pin name %q: %w", name, ErrBadPinName)
	}
	return m.Default.Resolve(name)
}

// IsNoPin reports whether a configured pin name means "no pin"
func IsNoPin(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || strings.EqualFold(name, "NO_PIN")
}

// ParsePinName parses "gpio.12", "gpio12" or "12"
func ParsePinName(name string) (GPIOPin, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "gpio")
	s = strings.TrimPrefix(s, ".")
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid pin name %q: %w", name, ErrBadPinName)
	}
	return GPIOPin(n), nil
}
