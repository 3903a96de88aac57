package core

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DigitalOutput drives a single GPIO pin on or off.
// It caches nothing: the pin's level is the only state.
type DigitalOutput struct {
	number OutputNumber
	pin    Pin
	log    logrus.FieldLogger
}

// NewDigitalOutput creates an output. Nothing touches the hardware until Init.
func NewDigitalOutput(number OutputNumber, pin Pin, log logrus.FieldLogger) *DigitalOutput {
	if pin == nil {
		pin = NoPin
	}
	if log == nil {
		log = Logger()
	}
	return &DigitalOutput{number: number, pin: pin, log: log}
}

// Init configures the pin as an output and forces it off.
// An undefined pin leaves the output inert.
func (d *DigitalOutput) Init() error {
	if d.pin.Undefined() {
		return nil
	}
	if err := d.pin.SetAttr(PinAttrOutput); err != nil {
		return fmt.Errorf("digital output %s: %w", d.number, err)
	}
	if err := d.pin.Off(); err != nil {
		return fmt.Errorf("digital output %s: %w", d.number, err)
	}

	d.log.Infof("User Digital Output: %s on Pin: %s", d.number, d.pin.Name())
	return nil
}

// SetLevel writes the level to the pin. Turning on an output with an
// undefined number fails without touching the hardware.
func (d *DigitalOutput) SetLevel(on bool) error {
	if !d.number.Defined() && on {
		return ErrUndefinedOutput
	}
	return d.pin.Write(on)
}

// Number returns the logical output number
func (d *DigitalOutput) Number() OutputNumber { return d.number }

// Pin returns the owned pin
func (d *DigitalOutput) Pin() Pin { return d.pin }
