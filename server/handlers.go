package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"auxout/core"
	"auxout/standalone/config"
	"auxout/standalone/gcode"
	"auxout/store"
)

// Body of PUT /outputs/digital/:n
type digitalRequest struct {
	On bool `json:"on"`
}

// Body of PUT /outputs/analog/:n
type analogRequest struct {
	Percent float64 `json:"percent"`
}

func (s *Server) getOutputs(res http.ResponseWriter, req *http.Request) {
	status, err := s.Controller.Status()
	if err != nil {
		respond(res, err, http.StatusServiceUnavailable)
		return
	}

	respond(res, status, http.StatusOK)
}

func (s *Server) putDigital(res http.ResponseWriter, req *http.Request) {
	n, err := outputParam(req)
	if err != nil {
		respond(res, err, http.StatusNotFound)
		return
	}

	var body digitalRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respond(res, err, http.StatusUnprocessableEntity)
		return
	}

	if err := s.Controller.SetDigital(n, body.On); err != nil {
		s.Logger.WithField("output", n).Warnf("set digital: %s", err)
		respond(res, err, statusFor(err))
		return
	}

	respond(res, nil, http.StatusNoContent)
}

func (s *Server) putAnalog(res http.ResponseWriter, req *http.Request) {
	n, err := outputParam(req)
	if err != nil {
		respond(res, err, http.StatusNotFound)
		return
	}

	var body analogRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respond(res, err, http.StatusUnprocessableEntity)
		return
	}

	if err := s.Controller.SetAnalog(n, body.Percent); err != nil {
		s.Logger.WithField("output", n).Warnf("set analog: %s", err)
		respond(res, err, statusFor(err))
		return
	}

	respond(res, nil, http.StatusNoContent)
}

// postGCode runs a text body line by line and stops at the first failure
func (s *Server) postGCode(res http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(io.LimitReader(req.Body, 64*1024))
	if err != nil {
		respond(res, err, http.StatusBadRequest)
		return
	}

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := s.Controller.ProcessLine(line); err != nil {
			s.Logger.WithField("line", line).Warnf("gcode: %s", err)
			respond(res, err, statusFor(err))
			return
		}
	}

	respond(res, nil, http.StatusNoContent)
}

func (s *Server) getConfig(res http.ResponseWriter, req *http.Request) {
	c, err := s.Store.MachineConfig()
	if errors.Is(err, store.ErrNotFound) {
		respond(res, err, http.StatusNotFound)
		return
	}
	if err != nil {
		respond(res, err, http.StatusInternalServerError)
		return
	}

	respond(res, c, http.StatusOK)
}

// putConfig stores a machine config; it takes effect on the next start
func (s *Server) putConfig(res http.ResponseWriter, req *http.Request) {
	data, err := io.ReadAll(io.LimitReader(req.Body, 64*1024))
	if err != nil {
		respond(res, err, http.StatusBadRequest)
		return
	}

	c, err := config.LoadConfig(data)
	if err != nil {
		respond(res, err, http.StatusUnprocessableEntity)
		return
	}

	if err := s.Store.PutMachineConfig(c); err != nil {
		respond(res, err, http.StatusInternalServerError)
		return
	}

	respond(res, nil, http.StatusNoContent)
}

func (s *Server) allOff(res http.ResponseWriter, req *http.Request) {
	s.Controller.EmergencyStop()
	s.Logger.Info("all outputs off")

	respond(res, nil, http.StatusNoContent)
}

func outputParam(req *http.Request) (int, error) {
	params := httprouter.ParamsFromContext(req.Context())
	n, err := strconv.Atoi(params.ByName("n"))
	if err != nil || n < 0 {
		return 0, core.ErrNoSuchOutput
	}
	return n, nil
}

// statusFor maps output and command errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNoSuchOutput):
		return http.StatusNotFound
	case errors.Is(err, gcode.ErrMissingParameter),
		errors.Is(err, gcode.ErrParameterRange),
		errors.Is(err, gcode.ErrBadNumber),
		errors.Is(err, gcode.ErrUnclosedComment):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoChannel),
		errors.Is(err, core.ErrUnconfigured),
		errors.Is(err, core.ErrUndefinedOutput):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
