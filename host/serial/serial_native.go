//go:build !wasm

package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// tarmPort wraps the tarm/serial implementation
type tarmPort struct {
	*serial.Port
	device string
}

// Open opens a native serial port. A zero Baud uses the default rate.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Device == "" {
		return nil, errors.New("no serial device given")
	}

	baud := cfg.Baud
	if baud == 0 {
		baud = DefaultConfig(cfg.Device).Baud
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &tarmPort{Port: port, device: cfg.Device}, nil
}

func (p *tarmPort) String() string { return p.device }
