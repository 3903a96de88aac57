package core

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// PWMHardware bundles the collaborators an AnalogOutput programs
type PWMHardware struct {
	Timer    PWMTimer
	Channels ChannelAllocator
	BusClock BusClock
}

// defaultChannels is the process-wide pool used when none is injected
var defaultChannels = NewChannelPool(DefaultPWMChannels)

type analogState uint8

const (
	analogNew    analogState = iota
	analogInert              // no pin
	analogReady              // channel allocated and programmed
	analogFailed             // initialization failed, permanently
)

// AnalogOutput is a PWM-modulated output on one timer channel
type AnalogOutput struct {
	number     OutputNumber
	pin        Pin
	frequency  uint32
	resolution uint8
	channel    Channel
	current    uint32
	state      analogState

	hw  PWMHardware
	log logrus.FieldLogger
}

// NewAnalogOutput creates an output. Nothing touches the hardware or the
// channel pool until Init.
func NewAnalogOutput(number OutputNumber, pin Pin, frequency uint32, hw PWMHardware, log logrus.FieldLogger) *AnalogOutput {
	if pin == nil {
		pin = NoPin
	}
	if tp, ok := pin.(TimerPin); ok {
		hw.Timer = tp.PWMTimer()
		hw.BusClock = tp.BusClock
		hw.Channels = tp.Channels()
	}
	if hw.Channels == nil {
		hw.Channels = defaultChannels
	}
	if hw.BusClock == nil {
		hw.BusClock = FixedBusClock(DefaultBusFrequency)
	}
	if log == nil {
		log = Logger()
	}
	return &AnalogOutput{
		number:    number,
		pin:       pin,
		frequency: frequency,
		hw:        hw,
		log:       log,
	}
}

// Init derives the resolution, acquires a channel and programs the timer.
// Failures are logged once and leave the output permanently non-functional.
// Calling Init again has no effect.
func (a *AnalogOutput) Init() error {
	if a.state != analogNew {
		return nil
	}
	if a.pin.Undefined() {
		a.state = analogInert
		return nil
	}

	bits, err := ResolutionBits(a.hw.BusClock(), a.frequency)
	if err != nil {
		a.state = analogFailed
		a.log.Errorf("User Analog Output: %s Freq: %dHz unusable: %v", a.number, a.frequency, err)
		return fmt.Errorf("analog output %s: %w", a.number, err)
	}
	a.resolution = bits

	ch, err := a.hw.Channels.Allocate()
	if err != nil {
		a.state = analogFailed
		a.log.Error("Out of PWM channels")
		return fmt.Errorf("analog output %s: %w", a.number, err)
	}
	a.channel = ch

	if err := a.program(); err != nil {
		a.state = analogFailed
		a.log.Errorf("User Analog Output: %s on Pin: %s setup failed: %v", a.number, a.pin.Name(), err)
		return fmt.Errorf("analog output %s: %w", a.number, err)
	}
	a.current = 0
	a.state = analogReady

	a.log.Infof("User Analog Output: %s on Pin: %s Freq: %dHz", a.number, a.pin.Name(), a.frequency)
	return nil
}

func (a *AnalogOutput) program() error {
	timer := a.hw.Timer
	if timer == nil {
		timer = MustPWM()
	}
	if err := a.pin.SetAttr(PinAttrOutput); err != nil {
		return err
	}
	native, err := a.pin.Native(CapPWM)
	if err != nil {
		return err
	}
	if err := timer.Configure(a.channel, a.frequency, a.resolution); err != nil {
		return err
	}
	if err := timer.Bind(native, a.channel); err != nil {
		return err
	}
	a.hw.Timer = timer
	return timer.Write(a.channel, 0)
}

// SetLevel writes a duty numerator (0 to Denominator()).
// Repeating the last written value is a successful no-op. The value is
// only remembered once the timer accepted it.
func (a *AnalogOutput) SetLevel(numerator uint32) error {
	if a.pin.Undefined() {
		return ErrUnconfigured
	}
	if a.state != analogReady {
		a.log.Errorf("User Analog Output: %s PWM channel error", a.number)
		return ErrNoChannel
	}
	if numerator == a.current {
		return nil
	}
	if err := a.hw.Timer.Write(a.channel, numerator); err != nil {
		return err
	}
	a.current = numerator
	return nil
}

// Number returns the logical output number
func (a *AnalogOutput) Number() OutputNumber { return a.number }

// Pin returns the owned pin
func (a *AnalogOutput) Pin() Pin { return a.pin }

// Frequency returns the configured PWM frequency in Hz
func (a *AnalogOutput) Frequency() uint32 { return a.frequency }

// Resolution returns the derived duty resolution in bits
func (a *AnalogOutput) Resolution() uint8 { return a.resolution }

// Denominator returns the duty value meaning 100%
func (a *AnalogOutput) Denominator() uint32 { return uint32(1) << a.resolution }

// Channel returns the allocated channel and whether one was allocated
func (a *AnalogOutput) Channel() (Channel, bool) {
	return a.channel, a.state == analogReady
}

// Level returns the last written duty numerator
func (a *AnalogOutput) Level() uint32 { return a.current }

// Ready reports whether the output can be driven
func (a *AnalogOutput) Ready() bool { return a.state == analogReady }
