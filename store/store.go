package store

import (
	"errors"
	"io"

	"auxout/standalone/config"
)

// ErrNotFound is returned when nothing has been stored yet
var ErrNotFound = errors.New("not found")

// Store describes a persistent storage engine for daemon configuration.
type Store interface {
	MachineConfig() (*config.MachineConfig, error)
	PutMachineConfig(c *config.MachineConfig) error

	io.Closer
}
