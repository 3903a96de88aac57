// Package mcu talks to a controller running the output firmware over its
// line-oriented G-code console.
package mcu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"auxout/host/serial"
)

// DefaultResponseTimeout bounds the wait for "ok" or "error"
const DefaultResponseTimeout = 2 * time.Second

var (
	// ErrNotConnected is returned when sending without a port
	ErrNotConnected = errors.New("not connected")

	// ErrTimeout is returned when no terminating response arrived in time
	ErrTimeout = errors.New("timed out waiting for response")

	// ErrCommand is wrapped around an "error: ..." response
	ErrCommand = errors.New("command failed")
)

// MCU represents a connection to an output controller
type MCU struct {
	port    serial.Port
	reader  *bufio.Reader
	timeout time.Duration

	// Partial line carried across read timeouts
	pending []byte
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU() *MCU {
	return &MCU{timeout: DefaultResponseTimeout}
}

// Connect connects to an MCU via serial port
func (m *MCU) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects to an MCU with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	m.ConnectPort(port)

	// Give the controller time to start if it just enumerated
	time.Sleep(100 * time.Millisecond)
	return nil
}

// ConnectPort uses an already open port
func (m *MCU) ConnectPort(port serial.Port) {
	m.port = port
	m.reader = bufio.NewReader(port)
	m.pending = m.pending[:0]
}

// SetTimeout changes the response timeout
func (m *MCU) SetTimeout(d time.Duration) {
	m.timeout = d
}

// Close closes the connection to the MCU
func (m *MCU) Close() error {
	if m.port == nil {
		return nil
	}
	err := m.port.Close()
	m.port = nil
	m.reader = nil
	return err
}

// IsConnected returns whether a port is open
func (m *MCU) IsConnected() bool {
	return m.port != nil
}

// SendLine sends one G-code line and waits for "ok" or "error: ...".
// Other lines received before the answer (banners, log lines) are returned.
func (m *MCU) SendLine(line string) ([]string, error) {
	if m.port == nil {
		return nil, ErrNotConnected
	}

	line = strings.TrimSpace(line)
	if _, err := io.WriteString(m.port, line+"\n"); err != nil {
		return nil, fmt.Errorf("write %q: %w", line, err)
	}

	var info []string
	deadline := time.Now().Add(m.timeout)
	for {
		resp, err := m.readLine(deadline)
		if err != nil {
			return info, err
		}
		switch {
		case resp == "ok":
			return info, nil
		case strings.HasPrefix(resp, "error:"):
			reason := strings.TrimSpace(strings.TrimPrefix(resp, "error:"))
			return info, fmt.Errorf("%s: %w: %s", line, ErrCommand, reason)
		case resp != "":
			info = append(info, resp)
		}
	}
}

// readLine returns the next line without its terminator. Read timeouts
// from the port are retried until the deadline.
func (m *MCU) readLine(deadline time.Time) (string, error) {
	for {
		b, err := m.reader.ReadByte()
		if err == io.EOF {
			if time.Now().After(deadline) {
				return "", ErrTimeout
			}
			continue
		}
		if err != nil {
			return "", err
		}

		if b == '\n' || b == '\r' {
			line := string(m.pending)
			m.pending = m.pending[:0]
			if line == "" {
				continue
			}
			return line, nil
		}
		m.pending = append(m.pending, b)
	}
}
