package standalone

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"auxout/core"
	"auxout/standalone/config"
	"auxout/standalone/gcode"
)

// Hardware is what a board provides to the manager
type Hardware struct {
	Pins     core.PinResolver
	Timer    core.PWMTimer
	BusClock core.BusClock      // nil: use the configured bus_frequency, else the default
	Sync     gcode.Synchronizer // nil: no motion queue to wait on
}

// Manager coordinates all standalone mode components
type Manager struct {
	mu sync.Mutex

	config      *config.MachineConfig
	parser      *gcode.Parser
	interpreter *gcode.Interpreter
	outputs     *core.UserOutputs
	channels    *core.ChannelPool
	log         logrus.FieldLogger

	// Serial interface
	inputBuffer  []byte
	outputBuffer []byte

	// Status
	initialized bool
	running     bool
}

// NewManager creates a new standalone mode manager
func NewManager(configData []byte) (*Manager, error) {
	cfg, err := config.LoadConfig(configData)
	if err != nil {
		return nil, err
	}

	return NewManagerWithConfig(cfg)
}

// NewManagerWithConfig creates a manager with an existing config
func NewManagerWithConfig(cfg *config.MachineConfig) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	mgr := &Manager{
		config:       cfg,
		parser:       gcode.NewParser(),
		log:          core.Logger(),
		inputBuffer:  make([]byte, 0, 256),
		outputBuffer: make([]byte, 0, 256),
	}

	return mgr, nil
}

// SetLogger replaces the logger used for output configuration messages.
// Must be called before Initialize.
func (m *Manager) SetLogger(log logrus.FieldLogger) {
	m.log = log
}

// Initialize builds the user output bank on the board's hardware
func (m *Manager) Initialize(hw Hardware) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return errors.New("already initialized")
	}
	if hw.Pins == nil {
		return errors.New("no pin resolver")
	}

	pins, err := m.config.Resolve(hw.Pins)
	if err != nil {
		return err
	}

	busClock := hw.BusClock
	if busClock == nil {
		hz := m.config.BusFrequency
		if hz == 0 {
			hz = core.DefaultBusFrequency
		}
		busClock = core.FixedBusClock(hz)
	}

	m.channels = core.NewChannelPool(m.config.PWMChannels)

	// Output init failures are already logged and leave the slot inert;
	// they do not stop the machine from starting.
	outputs, err := core.NewUserOutputs(pins, core.PWMHardware{
		Timer:    hw.Timer,
		Channels: m.channels,
		BusClock: busClock,
	}, m.log)
	if outputs == nil {
		return err
	}
	if err != nil {
		m.log.Debugf("user outputs degraded: %v", err)
	}

	m.outputs = outputs
	m.interpreter = gcode.NewInterpreter(outputs, hw.Sync)

	m.initialized = true
	return nil
}

// ProcessLine processes a line of G-code
func (m *Manager) ProcessLine(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processLine(line)
}

func (m *Manager) processLine(line string) error {
	if !m.initialized {
		return errors.New("manager not initialized")
	}

	cmd, err := m.parser.ParseLine(line)
	if err != nil {
		return err
	}

	if cmd != nil {
		if err := m.interpreter.Execute(cmd); err != nil {
			return err
		}
	}

	return nil
}

// ProcessByte processes a single byte of input (for serial streaming).
// Each completed line is answered with "ok" or "error: <reason>".
func (m *Manager) ProcessByte(b byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b != '\n' && b != '\r' {
		m.inputBuffer = append(m.inputBuffer, b)
		return nil
	}

	line := string(m.inputBuffer)
	m.inputBuffer = m.inputBuffer[:0]

	// Remove trailing whitespace
	for len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		line = line[:len(line)-1]
	}
	if len(line) == 0 {
		return nil
	}

	if err := m.processLine(line); err != nil {
		m.sendResponse(fmt.Sprintf("error: %v\n", err))
		return err
	}
	m.sendResponse("ok\n")
	return nil
}

// SendResponse queues a response to be sent to the host
func (m *Manager) SendResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendResponse(response)
}

func (m *Manager) sendResponse(response string) {
	m.outputBuffer = append(m.outputBuffer, response...)
}

// GetOutput returns any pending output and clears the buffer
func (m *Manager) GetOutput() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.outputBuffer) == 0 {
		return nil
	}

	output := make([]byte, len(m.outputBuffer))
	copy(output, m.outputBuffer)
	m.outputBuffer = m.outputBuffer[:0]
	return output
}

// Start begins standalone operation
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return errors.New("manager not initialized")
	}

	m.running = true
	m.sendResponse(m.config.Name + " ready\n")
	return nil
}

// Stop halts all operation
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
}

// IsRunning returns whether the manager is running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Status returns a snapshot of the user outputs
func (m *Manager) Status() (core.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return core.Status{}, errors.New("manager not initialized")
	}
	return m.outputs.Status(), nil
}

// SetDigital drives a digital output directly, bypassing G-code
func (m *Manager) SetDigital(n int, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return errors.New("manager not initialized")
	}
	return m.outputs.SetDigital(n, on)
}

// SetAnalog drives an analog output directly, bypassing G-code
func (m *Manager) SetAnalog(n int, percent float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return errors.New("manager not initialized")
	}
	return m.outputs.SetAnalog(n, percent)
}

// EmergencyStop halts operation and turns every output off
func (m *Manager) EmergencyStop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false
	if m.outputs != nil {
		m.outputs.AllOff()
	}
}
