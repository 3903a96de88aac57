package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v2"

	"auxout/core"
)

// DigitalOutputConfig is one user digital output slot
type DigitalOutputConfig struct {
	Pin string `yaml:"pin" json:"pin"`
}

// AnalogOutputConfig is one user analog output slot
type AnalogOutputConfig struct {
	Pin       string `yaml:"pin" json:"pin"`
	Frequency uint32 `yaml:"frequency" json:"frequency"` // PWM frequency (Hz)
}

// OutputsConfig lists the user output slots in index order
type OutputsConfig struct {
	Digital []DigitalOutputConfig `yaml:"digital" json:"digital"`
	Analog  []AnalogOutputConfig  `yaml:"analog" json:"analog"`
}

// MachineConfig represents the complete machine configuration
type MachineConfig struct {
	Name         string        `yaml:"name" json:"name"`
	BusFrequency uint32        `yaml:"bus_frequency" json:"bus_frequency"` // Peripheral clock (Hz), 0 = board default
	PWMChannels  int           `yaml:"pwm_channels" json:"pwm_channels"`   // Size of the PWM channel pool
	Outputs      OutputsConfig `yaml:"user_outputs" json:"user_outputs"`
}

// LoadConfig parses a YAML (or JSON) configuration and returns a MachineConfig
func LoadConfig(data []byte) (*MachineConfig, error) {
	var config MachineConfig

	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse machine config: %w", err)
	}

	applyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *MachineConfig) {
	if config.Name == "" {
		config.Name = "auxout"
	}
	if config.PWMChannels == 0 {
		config.PWMChannels = core.DefaultPWMChannels
	}

	for i, analog := range config.Outputs.Analog {
		if analog.Frequency == 0 {
			analog.Frequency = core.DefaultAnalogFrequency
		}
		config.Outputs.Analog[i] = analog
	}
}

// Validate checks limits that do not depend on the board
func Validate(config *MachineConfig) error {
	var errs []error

	if n := len(config.Outputs.Digital); n > core.MaxUserDigitalOutputs {
		errs = append(errs, fmt.Errorf("%d digital outputs configured, max %d", n, core.MaxUserDigitalOutputs))
	}
	if n := len(config.Outputs.Analog); n > core.MaxUserAnalogOutputs {
		errs = append(errs, fmt.Errorf("%d analog outputs configured, max %d", n, core.MaxUserAnalogOutputs))
	}
	if config.PWMChannels < 0 {
		errs = append(errs, fmt.Errorf("pwm_channels must not be negative"))
	}

	return errors.Join(errs...)
}

// Resolve maps the configured pin names to pins
func (c *MachineConfig) Resolve(pins core.PinResolver) (core.UserOutputsConfig, error) {
	var out core.UserOutputsConfig

	for i, d := range c.Outputs.Digital {
		pin, err := pins.Resolve(d.Pin)
		if err != nil {
			return out, fmt.Errorf("digital output %d: %w", i, err)
		}
		out.Digital = append(out.Digital, pin)
	}

	for i, a := range c.Outputs.Analog {
		pin, err := pins.Resolve(a.Pin)
		if err != nil {
			return out, fmt.Errorf("analog output %d: %w", i, err)
		}
		out.Analog = append(out.Analog, core.AnalogSpec{Pin: pin, Frequency: a.Frequency})
	}

	return out, nil
}

// DefaultConfig returns the configuration of a typical ESP32 controller
// with two tool outputs of each kind
func DefaultConfig() *MachineConfig {
	return &MachineConfig{
		Name:         "auxout",
		BusFrequency: core.DefaultBusFrequency,
		PWMChannels:  core.DefaultPWMChannels,
		Outputs: OutputsConfig{
			Digital: []DigitalOutputConfig{
				{Pin: "gpio.26"},
				{Pin: "gpio.27"},
			},
			Analog: []AnalogOutputConfig{
				{Pin: "gpio.4", Frequency: 5000},
				{Pin: "gpio.2", Frequency: 1000},
			},
		},
	}
}
