package core

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Bank sizes: four of each, addressed by M62-M65 P0-P3 and M67/M68 E0-E3
const (
	MaxUserDigitalOutputs = 4
	MaxUserAnalogOutputs  = 4
)

// DefaultAnalogFrequency is used when an analog output has no frequency configured
const DefaultAnalogFrequency = 5000

// AnalogSpec describes one analog output slot
type AnalogSpec struct {
	Pin       Pin
	Frequency uint32
}

// UserOutputsConfig lists the pins of each slot. Missing or nil entries are NoPin.
type UserOutputsConfig struct {
	Digital []Pin
	Analog  []AnalogSpec
}

// UserOutputs is the bank of user digital and analog outputs
type UserOutputs struct {
	digital [MaxUserDigitalOutputs]*DigitalOutput
	analog  [MaxUserAnalogOutputs]*AnalogOutput
	log     logrus.FieldLogger
}

// NewUserOutputs creates every slot, digital first then analog, and
// initializes them in index order so channels are handed out
// deterministically. Initialization failures are logged by the outputs
// themselves and returned joined; the bank is usable either way.
func NewUserOutputs(cfg UserOutputsConfig, hw PWMHardware, log logrus.FieldLogger) (*UserOutputs, error) {
	if len(cfg.Digital) > MaxUserDigitalOutputs {
		return nil, fmt.Errorf("%d digital outputs configured, max %d", len(cfg.Digital), MaxUserDigitalOutputs)
	}
	if len(cfg.Analog) > MaxUserAnalogOutputs {
		return nil, fmt.Errorf("%d analog outputs configured, max %d", len(cfg.Analog), MaxUserAnalogOutputs)
	}
	if log == nil {
		log = Logger()
	}

	u := &UserOutputs{log: log}
	var errs []error

	for i := range u.digital {
		pin := NoPin
		if i < len(cfg.Digital) && cfg.Digital[i] != nil {
			pin = cfg.Digital[i]
		}
		u.digital[i] = NewDigitalOutput(OutputNumber(i), pin, log)
		if err := u.digital[i].Init(); err != nil {
			errs = append(errs, err)
		}
	}

	for i := range u.analog {
		spec := AnalogSpec{Pin: NoPin, Frequency: DefaultAnalogFrequency}
		if i < len(cfg.Analog) {
			if cfg.Analog[i].Pin != nil {
				spec.Pin = cfg.Analog[i].Pin
			}
			if cfg.Analog[i].Frequency != 0 {
				spec.Frequency = cfg.Analog[i].Frequency
			}
		}
		u.analog[i] = NewAnalogOutput(OutputNumber(i), spec.Pin, spec.Frequency, hw, log)
		if err := u.analog[i].Init(); err != nil {
			errs = append(errs, err)
		}
	}

	return u, errors.Join(errs...)
}

// Digital returns the digital output in slot n
func (u *UserOutputs) Digital(n int) (*DigitalOutput, bool) {
	if n < 0 || n >= MaxUserDigitalOutputs {
		return nil, false
	}
	return u.digital[n], true
}

// Analog returns the analog output in slot n
func (u *UserOutputs) Analog(n int) (*AnalogOutput, bool) {
	if n < 0 || n >= MaxUserAnalogOutputs {
		return nil, false
	}
	return u.analog[n], true
}

// SetDigital turns digital output n on or off
func (u *UserOutputs) SetDigital(n int, on bool) error {
	d, ok := u.Digital(n)
	if !ok {
		return fmt.Errorf("digital output %d: %w", n, ErrNoSuchOutput)
	}
	if err := d.SetLevel(on); err != nil {
		return fmt.Errorf("digital output %d: %w", n, err)
	}
	return nil
}

// IOControl sets every digital output whose bit is set in mask
func (u *UserOutputs) IOControl(mask uint8, on bool) error {
	var errs []error
	for n := 0; n < MaxUserDigitalOutputs; n++ {
		if mask&(1<<n) == 0 {
			continue
		}
		if err := u.SetDigital(n, on); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetAnalog sets analog output n to a duty percentage (clamped to 0-100)
func (u *UserOutputs) SetAnalog(n int, percent float64) error {
	a, ok := u.Analog(n)
	if !ok {
		return fmt.Errorf("analog output %d: %w", n, ErrNoSuchOutput)
	}
	if err := a.SetLevel(PercentToNumerator(percent, a.Denominator())); err != nil {
		return fmt.Errorf("analog output %d: %w", n, err)
	}
	return nil
}

// PWMControl sets every analog output whose bit is set in mask
func (u *UserOutputs) PWMControl(mask uint8, percent float64) error {
	var errs []error
	for n := 0; n < MaxUserAnalogOutputs; n++ {
		if mask&(1<<n) == 0 {
			continue
		}
		if err := u.SetAnalog(n, percent); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AllOff turns every wired output off through IOControl and PWMControl.
// Unwired slots are left out of the masks so a reset does not log
// channel errors for them.
func (u *UserOutputs) AllOff() {
	var digital, analog uint8
	for n, d := range u.digital {
		if !d.Pin().Undefined() {
			digital |= 1 << n
		}
	}
	for n, a := range u.analog {
		if a.Ready() {
			analog |= 1 << n
		}
	}

	if err := u.IOControl(digital, false); err != nil {
		u.log.Errorf("User Digital Outputs off failed: %v", err)
	}
	if err := u.PWMControl(analog, 0); err != nil {
		u.log.Errorf("User Analog Outputs off failed: %v", err)
	}
}

// PercentToNumerator converts a duty percentage to a numerator of denominator
func PercentToNumerator(percent float64, denominator uint32) uint32 {
	switch {
	case percent <= 0:
		return 0
	case percent >= 100:
		return denominator
	}
	return uint32(percent / 100.0 * float64(denominator))
}

// OutputStatus is a reporting snapshot of one slot
type OutputStatus struct {
	Number     int    `json:"number"`
	Pin        string `json:"pin"`
	Wired      bool   `json:"wired"`
	Frequency  uint32 `json:"frequency,omitempty"`
	Resolution uint8  `json:"resolution,omitempty"`
	Channel    *int   `json:"channel,omitempty"`
	Level      uint32 `json:"level,omitempty"`
}

// Status is a reporting snapshot of the bank
type Status struct {
	Digital []OutputStatus `json:"digital"`
	Analog  []OutputStatus `json:"analog"`
}

// Status returns a snapshot of every slot
func (u *UserOutputs) Status() Status {
	var s Status
	for i, d := range u.digital {
		s.Digital = append(s.Digital, OutputStatus{
			Number: i,
			Pin:    d.Pin().Name(),
			Wired:  !d.Pin().Undefined(),
		})
	}
	for i, a := range u.analog {
		st := OutputStatus{
			Number:    i,
			Pin:       a.Pin().Name(),
			Wired:     a.Ready(),
			Frequency: a.Frequency(),
			Level:     a.Level(),
		}
		if ch, ok := a.Channel(); ok {
			c := int(ch)
			st.Channel = &c
			st.Resolution = a.Resolution()
		}
		s.Analog = append(s.Analog, st)
	}
	return s
}
