package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionBitsExamples(t *testing.T) {
	tests := []struct {
		bus, pwm uint32
		bits     uint8
	}{
		{80000000, 5000, 13},    // ratio 16000
		{80000000, 80000000, 0}, // ratio 1
		{80000000, 1000, 16},    // ratio 80000, capped
		{80000000, 1, 16},
		{80000000, 40000000, 1},
		{16384, 1, 14}, // exact power of two
		{16383, 1, 13},
		{65536, 1, 16},
		{131072, 1, 16},
	}

	for _, test := range tests {
		bits, err := ResolutionBits(test.bus, test.pwm)
		require.NoError(t, err)
		assert.Equal(t, test.bits, bits, "bus=%d pwm=%d", test.bus, test.pwm)
	}
}

func TestResolutionBitsBounds(t *testing.T) {
	const bus = 80000000
	for pwm := uint32(1); pwm <= bus; pwm = pwm*3 + 7 {
		bits, err := ResolutionBits(bus, pwm)
		require.NoError(t, err)

		ratio := uint64(bus / pwm)
		assert.LessOrEqual(t, bits, uint8(MaxResolutionBits))
		assert.LessOrEqual(t, uint64(1)<<bits, ratio, "pwm=%d", pwm)
		if bits < MaxResolutionBits {
			assert.Less(t, ratio, uint64(1)<<(bits+1), "pwm=%d", pwm)
		}
	}
}

func TestResolutionBitsInvalid(t *testing.T) {
	_, err := ResolutionBits(80000000, 0)
	assert.ErrorIs(t, err, ErrInvalidFrequency)

	_, err = ResolutionBits(80000000, 80000001)
	assert.ErrorIs(t, err, ErrFrequencyTooHigh)
}

func TestFixedBusClock(t *testing.T) {
	assert.Equal(t, uint32(DefaultBusFrequency), FixedBusClock(DefaultBusFrequency)())
}
