package core

import "errors"

var (
	// ErrUnconfigured is returned when an output has no physical pin
	ErrUnconfigured = errors.New("output has no pin")

	// ErrUndefinedOutput is returned when turning on an output whose number is undefined
	ErrUndefinedOutput = errors.New("output number undefined")

	// ErrOutOfChannels is returned by an allocator with no free PWM channels
	ErrOutOfChannels = errors.New("out of PWM channels")

	// ErrNoChannel is returned when writing to an analog output that failed to get a channel
	ErrNoChannel = errors.New("PWM channel error")

	// ErrInvalidFrequency is returned for a zero PWM frequency
	ErrInvalidFrequency = errors.New("invalid PWM frequency")

	// ErrFrequencyTooHigh is returned when the PWM frequency exceeds the bus clock
	ErrFrequencyTooHigh = errors.New("PWM frequency above bus clock")

	// ErrNoSuchOutput is returned for an output index outside the bank
	ErrNoSuchOutput = errors.New("no such output")

	// ErrBadPinName is returned for an unparseable pin name
	ErrBadPinName = errors.New("bad pin name")
)
