package standalone

import (
	"errors"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxout/core"
	"auxout/standalone/config"
)

type fakeGPIO struct {
	levels map[core.GPIOPin]bool
}

func (g *fakeGPIO) ConfigureOutput(pin core.GPIOPin) error { return nil }

func (g *fakeGPIO) SetPin(pin core.GPIOPin, value bool) error {
	g.levels[pin] = value
	return nil
}

type fakeTimer struct {
	duty map[core.Channel]uint32
}

func (t *fakeTimer) Configure(core.Channel, uint32, uint8) error { return nil }
func (t *fakeTimer) Bind(core.NativePin, core.Channel) error     { return nil }
func (t *fakeTimer) Write(ch core.Channel, duty uint32) error {
	t.duty[ch] = duty
	return nil
}

type stopSync struct{ err error }

func (s stopSync) Synchronize() error { return s.err }

const testConfig = `
name: test
pwm_channels: 1
user_outputs:
  digital:
    - pin: gpio.12
    - pin: gpio.13
  analog:
    - pin: gpio.25
      frequency: 5000
    - pin: gpio.26
      frequency: 5000
`

func newTestManager(t *testing.T) (*Manager, *fakeGPIO, *fakeTimer, *logtest.Hook) {
	t.Helper()
	mgr, err := NewManager([]byte(testConfig))
	require.NoError(t, err)

	log, hook := logtest.NewNullLogger()
	mgr.SetLogger(log)

	gpio := &fakeGPIO{levels: make(map[core.GPIOPin]bool)}
	timer := &fakeTimer{duty: make(map[core.Channel]uint32)}
	require.NoError(t, mgr.Initialize(Hardware{
		Pins:  core.GPIOResolver{Driver: gpio},
		Timer: timer,
	}))
	return mgr, gpio, timer, hook
}

func feed(t *testing.T, mgr *Manager, input string) []error {
	t.Helper()
	var errs []error
	for i := 0; i < len(input); i++ {
		if err := mgr.ProcessByte(input[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func TestManagerInitialize(t *testing.T) {
	mgr, gpio, _, hook := newTestManager(t)

	assert.False(t, gpio.levels[12])
	assert.False(t, gpio.levels[13])

	// second analog output finds the single channel taken
	var errorsLogged int
	for _, e := range hook.AllEntries() {
		if strings.Contains(e.Message, "Out of PWM channels") {
			errorsLogged++
		}
	}
	assert.Equal(t, 1, errorsLogged)

	assert.Error(t, mgr.Initialize(Hardware{Pins: core.GPIOResolver{}}))
}

func TestManagerStream(t *testing.T) {
	mgr, gpio, timer, _ := newTestManager(t)
	require.NoError(t, mgr.Start())
	assert.Equal(t, "test ready\n", string(mgr.GetOutput()))

	errs := feed(t, mgr, "M64 P1\nM67 E0 Q50\r\n\nM68 E1 Q50\nM62\n")
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], core.ErrNoChannel)

	assert.True(t, gpio.levels[13])
	assert.Equal(t, uint32(4096), timer.duty[0])

	out := string(mgr.GetOutput())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ok", lines[0])
	assert.Equal(t, "ok", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "error: "))
	assert.True(t, strings.HasPrefix(lines[3], "error: "))

	assert.Nil(t, mgr.GetOutput())
}

func TestManagerEmergencyStop(t *testing.T) {
	mgr, gpio, timer, _ := newTestManager(t)
	require.NoError(t, mgr.Start())

	require.NoError(t, mgr.ProcessLine("M64 P0"))
	require.NoError(t, mgr.SetAnalog(0, 100))
	assert.True(t, gpio.levels[12])
	assert.Equal(t, uint32(8192), timer.duty[0])

	mgr.EmergencyStop()
	assert.False(t, mgr.IsRunning())
	assert.False(t, gpio.levels[12])
	assert.Zero(t, timer.duty[0])
}

func TestManagerStatus(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	require.NoError(t, mgr.SetDigital(1, true))

	s, err := mgr.Status()
	require.NoError(t, err)
	assert.True(t, s.Analog[0].Wired)
	assert.False(t, s.Analog[1].Wired)
	assert.ErrorIs(t, mgr.SetDigital(4, true), core.ErrNoSuchOutput)
}

func TestManagerSynchronizer(t *testing.T) {
	mgr, err := NewManagerWithConfig(config.DefaultConfig())
	require.NoError(t, err)
	log, _ := logtest.NewNullLogger()
	mgr.SetLogger(log)

	gpio := &fakeGPIO{levels: make(map[core.GPIOPin]bool)}
	require.NoError(t, mgr.Initialize(Hardware{
		Pins:  core.GPIOResolver{Driver: gpio},
		Timer: &fakeTimer{duty: make(map[core.Channel]uint32)},
		Sync:  stopSync{err: errors.New("alarm")},
	}))

	assert.EqualError(t, mgr.ProcessLine("M62 P0"), "alarm")
	assert.False(t, gpio.levels[26])
	assert.NoError(t, mgr.ProcessLine("M64 P0"))
	assert.True(t, gpio.levels[26])
}

func TestManagerNotInitialized(t *testing.T) {
	mgr, err := NewManagerWithConfig(config.DefaultConfig())
	require.NoError(t, err)

	assert.Error(t, mgr.ProcessLine("M64 P0"))
	assert.Error(t, mgr.Start())
	_, err = mgr.Status()
	assert.Error(t, err)
	mgr.EmergencyStop()

	_, err = NewManagerWithConfig(nil)
	assert.Error(t, err)
}
