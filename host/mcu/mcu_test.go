package mcu

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPort answers with a fixed byte stream and records writes
type scriptedPort struct {
	in     *bytes.Reader
	out    bytes.Buffer
	closed bool
}

func newScriptedPort(responses string) *scriptedPort {
	return &scriptedPort{in: bytes.NewReader([]byte(responses))}
}

func (p *scriptedPort) Read(b []byte) (int, error)  { return p.in.Read(b) }
func (p *scriptedPort) Write(b []byte) (int, error) { return p.out.Write(b) }
func (p *scriptedPort) Close() error                { p.closed = true; return nil }
func (p *scriptedPort) Flush() error                { return nil }

func TestSendLineOK(t *testing.T) {
	port := newScriptedPort("auxout ready\r\nok\n")
	m := NewMCU()
	m.ConnectPort(port)

	info, err := m.SendLine("  M64 P0 ")
	require.NoError(t, err)
	assert.Equal(t, []string{"auxout ready"}, info)
	assert.Equal(t, "M64 P0\n", port.out.String())
}

func TestSendLineError(t *testing.T) {
	port := newScriptedPort("error: missing parameter P\n")
	m := NewMCU()
	m.ConnectPort(port)

	_, err := m.SendLine("M64")
	require.ErrorIs(t, err, ErrCommand)
	assert.Contains(t, err.Error(), "missing parameter P")
}

func TestSendLineSequence(t *testing.T) {
	port := newScriptedPort("ok\nok\n")
	m := NewMCU()
	m.ConnectPort(port)

	_, err := m.SendLine("M64 P1")
	require.NoError(t, err)
	_, err = m.SendLine("M65 P1")
	require.NoError(t, err)
	assert.Equal(t, "M64 P1\nM65 P1\n", port.out.String())
}

func TestSendLineTimeout(t *testing.T) {
	m := NewMCU()
	m.SetTimeout(10 * time.Millisecond)
	m.ConnectPort(newScriptedPort("o"))

	_, err := m.SendLine("M2")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestNotConnected(t *testing.T) {
	m := NewMCU()
	assert.False(t, m.IsConnected())

	_, err := m.SendLine("M2")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, m.Close())
}

func TestClose(t *testing.T) {
	port := newScriptedPort("")
	m := NewMCU()
	m.ConnectPort(port)
	assert.True(t, m.IsConnected())

	require.NoError(t, m.Close())
	assert.True(t, port.closed)
	assert.False(t, m.IsConnected())
}
