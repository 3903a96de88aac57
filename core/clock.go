package core

// DefaultBusFrequency is the ESP32 APB clock (80 MHz)
const DefaultBusFrequency = 80000000

// BusClock returns the peripheral bus clock frequency in Hz
type BusClock func() uint32

// FixedBusClock returns a BusClock that always reports hz
func FixedBusClock(hz uint32) BusClock {
	return func() uint32 { return hz }
}

// MaxResolutionBits caps the duty resolution of any PWM channel
const MaxResolutionBits = 16

// ResolutionBits returns the largest r such that 2^r <= bus/pwm,
// capped at MaxResolutionBits. The search is integer-only so the
// boundary is exact.
func ResolutionBits(busFrequency, pwmFrequency uint32) (uint8, error) {
	if pwmFrequency == 0 {
		return 0, ErrInvalidFrequency
	}
	ratio := busFrequency / pwmFrequency
	if ratio == 0 {
		return 0, ErrFrequencyTooHigh
	}

	var bits uint8
	for bits < MaxResolutionBits && uint32(1)<<(bits+1) <= ratio {
		bits++
	}
	return bits, nil
}
