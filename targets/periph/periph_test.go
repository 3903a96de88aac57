package periph

import (
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"auxout/core"
)

func testPins() (map[string]gpio.PinIO, *gpiotest.Pin, *gpiotest.Pin) {
	led := &gpiotest.Pin{N: "GPIO17", Num: 17}
	spindle := &gpiotest.Pin{N: "GPIO18", Num: 18}
	pins := map[string]gpio.PinIO{
		"GPIO17": led, "17": led,
		"GPIO18": spindle, "18": spindle,
	}
	return pins, led, spindle
}

func lookupIn(pins map[string]gpio.PinIO) Lookup {
	return func(name string) gpio.PinIO { return pins[name] }
}

func TestResolver(t *testing.T) {
	pins, led, _ := testPins()
	r := NewResolverWithLookup(lookupIn(pins))

	p, err := r.Resolve("GPIO17")
	require.NoError(t, err)
	assert.Equal(t, "GPIO17", p.Name())

	require.NoError(t, p.SetAttr(core.PinAttrOutput))
	require.NoError(t, p.Write(true))
	assert.Equal(t, gpio.High, led.L)
	require.NoError(t, p.Off())
	assert.Equal(t, gpio.Low, led.L)

	native, err := p.Native(core.CapPWM)
	require.NoError(t, err)
	assert.Equal(t, core.NativePin(17), native)

	none, err := r.Resolve("NO_PIN")
	require.NoError(t, err)
	assert.True(t, none.Undefined())

	_, err = r.Resolve("GPIO99")
	assert.ErrorIs(t, err, core.ErrBadPinName)
}

func TestTimer(t *testing.T) {
	pins, _, spindle := testPins()
	timer := NewTimerWithLookup(lookupIn(pins))

	require.NoError(t, timer.Configure(0, 5000, 13))
	require.NoError(t, timer.Bind(18, 0))
	require.NoError(t, timer.Write(0, 4096))

	assert.Equal(t, gpio.DutyHalf, spindle.D)
	assert.Equal(t, 5000*physic.Hertz, spindle.F)

	require.NoError(t, timer.Write(0, 8192))
	assert.Equal(t, gpio.DutyMax, spindle.D)

	assert.Error(t, timer.Bind(18, 1), "unconfigured channel")
	assert.Error(t, timer.Write(1, 1))
	require.NoError(t, timer.Configure(2, 100, 8))
	assert.Error(t, timer.Bind(99, 2), "unknown pin")
	assert.ErrorIs(t, timer.Configure(3, 0, 8), core.ErrInvalidFrequency)
}

func TestAnalogOutputOnPeriph(t *testing.T) {
	pins, _, spindle := testPins()
	log, hook := logtest.NewNullLogger()

	pin, err := NewResolverWithLookup(lookupIn(pins)).Resolve("GPIO18")
	require.NoError(t, err)

	out := core.NewAnalogOutput(0, pin, 1000, core.PWMHardware{
		Timer:    NewTimerWithLookup(lookupIn(pins)),
		Channels: core.NewChannelPool(2),
		BusClock: core.FixedBusClock(19200000),
	}, log)
	require.NoError(t, out.Init())
	assert.Equal(t, uint8(14), out.Resolution())
	assert.Equal(t, gpio.Duty(0), spindle.D)

	require.NoError(t, out.SetLevel(out.Denominator()/4))
	assert.Equal(t, gpio.DutyMax/4, spindle.D)
	assert.Equal(t, "User Analog Output: 0 on Pin: GPIO18 Freq: 1000Hz", hook.LastEntry().Message)
}
