package core

// Channel identifies a hardware PWM channel (a timer/comparator unit)
type Channel uint8

// PWMTimer is the abstract PWM timer interface that analog outputs use.
// Platform-specific implementations handle actual hardware control.
type PWMTimer interface {
	// Configure programs a channel's timer for the given frequency (Hz)
	// and duty resolution (bits). Duty values are then 0 to 1<<bits.
	Configure(ch Channel, frequency uint32, bits uint8) error

	// Bind routes the channel's waveform to a native pin
	Bind(pin NativePin, ch Channel) error

	// Write sets the channel's duty numerator
	Write(ch Channel, duty uint32) error
}

// Global singleton used by firmware targets.
var pwmTimer PWMTimer

// SetPWMTimer is called by target-specific code to register its timer driver.
func SetPWMTimer(t PWMTimer) {
	pwmTimer = t
}

// MustPWM returns the configured timer driver or panics if missing.
func MustPWM() PWMTimer {
	if pwmTimer == nil {
		panic("PWM timer not configured")
	}
	return pwmTimer
}

// TimerPin is implemented by pins wired to their own PWM timer, such as
// the outputs of an I2C expander. An AnalogOutput on such a pin programs
// that timer, derives its resolution from that timer's clock and takes
// its channel from that timer's allocator instead of the board pool.
type TimerPin interface {
	Pin
	PWMTimer() PWMTimer
	BusClock() uint32
	Channels() ChannelAllocator
}
