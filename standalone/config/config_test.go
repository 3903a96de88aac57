package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxout/core"
)

func TestLoadConfigYAML(t *testing.T) {
	data := []byte(`
name: mill
bus_frequency: 125000000
user_outputs:
  digital:
    - pin: gpio.12
    - pin: NO_PIN
  analog:
    - pin: gpio.25
      frequency: 20000
    - pin: gpio.26
`)

	cfg, err := LoadConfig(data)
	require.NoError(t, err)

	assert.Equal(t, "mill", cfg.Name)
	assert.Equal(t, uint32(125000000), cfg.BusFrequency)
	assert.Equal(t, core.DefaultPWMChannels, cfg.PWMChannels)
	require.Len(t, cfg.Outputs.Digital, 2)
	assert.Equal(t, "gpio.12", cfg.Outputs.Digital[0].Pin)
	require.Len(t, cfg.Outputs.Analog, 2)
	assert.Equal(t, uint32(20000), cfg.Outputs.Analog[0].Frequency)
	assert.Equal(t, uint32(core.DefaultAnalogFrequency), cfg.Outputs.Analog[1].Frequency)
}

func TestLoadConfigJSON(t *testing.T) {
	data := []byte(`{"pwm_channels": 16, "user_outputs": {"analog": [{"pin": "gpio.3", "frequency": 50}]}}`)

	cfg, err := LoadConfig(data)
	require.NoError(t, err)
	assert.Equal(t, "auxout", cfg.Name)
	assert.Equal(t, 16, cfg.PWMChannels)
	assert.Equal(t, uint32(50), cfg.Outputs.Analog[0].Frequency)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig([]byte(`user_outputs: {digital: [{pin: a}, {pin: b}, {pin: c}, {pin: d}, {pin: e}]}`))
	assert.Error(t, err)

	_, err = LoadConfig([]byte(`pwm_chanels: 4`))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = LoadConfig([]byte(`pwm_channels: -2`))
	assert.Error(t, err)
}

type fakeResolver map[string]core.Pin

func (f fakeResolver) Resolve(name string) (core.Pin, error) {
	if core.IsNoPin(name) {
		return core.NoPin, nil
	}
	if p, ok := f[name]; ok {
		return p, nil
	}
	return nil, core.ErrBadPinName
}

func TestResolve(t *testing.T) {
	pin := core.NewHALPin(nil, 5)
	cfg := &MachineConfig{Outputs: OutputsConfig{
		Digital: []DigitalOutputConfig{{Pin: ""}, {Pin: "gpio.5"}},
		Analog:  []AnalogOutputConfig{{Pin: "gpio.5", Frequency: 100}},
	}}

	out, err := cfg.Resolve(fakeResolver{"gpio.5": pin})
	require.NoError(t, err)
	assert.True(t, out.Digital[0].Undefined())
	assert.Same(t, pin, out.Digital[1])
	assert.Equal(t, uint32(100), out.Analog[0].Frequency)

	cfg.Outputs.Analog[0].Pin = "gpio.99"
	_, err = cfg.Resolve(fakeResolver{"gpio.5": pin})
	assert.ErrorIs(t, err, core.ErrBadPinName)
}

func TestDefaultConfigValid(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}
