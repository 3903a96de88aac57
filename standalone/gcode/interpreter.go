package gcode

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMissingParameter is returned when a required word is absent
	ErrMissingParameter = errors.New("missing parameter")

	// ErrParameterRange is returned when an output index is not a small non-negative integer
	ErrParameterRange = errors.New("parameter out of range")
)

// Outputs is the user output bank the interpreter drives
type Outputs interface {
	SetDigital(n int, on bool) error
	SetAnalog(n int, percent float64) error
	AllOff()
}

// Synchronizer waits until previously queued motion has completed.
// Synchronized output commands (M62, M63, M67) call it before acting.
type Synchronizer interface {
	Synchronize() error
}

// Interpreter executes G-code commands
type Interpreter struct {
	outputs Outputs
	sync    Synchronizer
}

// NewInterpreter creates a new G-code interpreter.
// sync may be nil when there is no motion queue to wait on; M62, M63
// and M67 then act immediately, like M64, M65 and M68.
func NewInterpreter(outputs Outputs, sync Synchronizer) *Interpreter {
	return &Interpreter{
		outputs: outputs,
		sync:    sync,
	}
}

// Execute executes a parsed G-code command.
// Commands other than the output and program-end M-codes are ignored.
func (interp *Interpreter) Execute(cmd *Command) error {
	if cmd == nil || cmd.Type != 'M' {
		return nil
	}

	switch cmd.Number {
	case 2, 30: // M2/M30 - Program end
		interp.outputs.AllOff()
	case 62: // M62 - Digital output on, synchronized with motion
		return interp.doDigital(cmd, true, true)
	case 63: // M63 - Digital output off, synchronized with motion
		return interp.doDigital(cmd, false, true)
	case 64: // M64 - Digital output on, immediate
		return interp.doDigital(cmd, true, false)
	case 65: // M65 - Digital output off, immediate
		return interp.doDigital(cmd, false, false)
	case 67: // M67 - Analog output, synchronized with motion
		return interp.doAnalog(cmd, true)
	case 68: // M68 - Analog output, immediate
		return interp.doAnalog(cmd, false)
	}

	return nil
}

// doDigital executes M62-M65 P<n>
func (interp *Interpreter) doDigital(cmd *Command, on, synchronized bool) error {
	n, err := outputIndex(cmd, 'P')
	if err != nil {
		return err
	}
	if err := interp.synchronize(synchronized); err != nil {
		return err
	}
	return interp.outputs.SetDigital(n, on)
}

// doAnalog executes M67/M68 E<n> Q<percent>
func (interp *Interpreter) doAnalog(cmd *Command, synchronized bool) error {
	n, err := outputIndex(cmd, 'E')
	if err != nil {
		return err
	}
	if !cmd.HasParameter('Q') {
		return fmt.Errorf("%s: Q: %w", cmd.Code(), ErrMissingParameter)
	}
	if err := interp.synchronize(synchronized); err != nil {
		return err
	}
	return interp.outputs.SetAnalog(n, cmd.GetParameter('Q', 0))
}

func (interp *Interpreter) synchronize(synchronized bool) error {
	if !synchronized || interp.sync == nil {
		return nil
	}
	return interp.sync.Synchronize()
}

// outputIndex reads an output number word, which must be a non-negative integer
func outputIndex(cmd *Command, word byte) (int, error) {
	if !cmd.HasParameter(word) {
		return 0, fmt.Errorf("%s: %c: %w", cmd.Code(), word, ErrMissingParameter)
	}
	v := cmd.GetParameter(word, 0)
	if v < 0 || v != math.Trunc(v) || v > 255 {
		return 0, fmt.Errorf("%s: %c%g: %w", cmd.Code(), word, v, ErrParameterRange)
	}
	return int(v), nil
}
