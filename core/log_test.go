package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogWriter(t *testing.T) {
	var lines []string
	SetLogWriter(func(s string) { lines = append(lines, s) })
	defer SetLogWriter(nil)

	Logger().Info("hello")
	Logger().Debug("hidden")

	SetDebugEnabled(true)
	defer SetDebugEnabled(false)
	assert.True(t, IsDebugEnabled())
	Logger().Debug("shown")

	assert.Equal(t, []string{
		`level=info msg=hello`,
		`level=debug msg=shown`,
	}, lines)
}
