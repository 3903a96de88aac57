// Package server is the HTTP control and status API of the output daemon.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"auxout/core"
	"auxout/store"
)

// Controller is the part of the standalone manager the API drives
type Controller interface {
	Status() (core.Status, error)
	ProcessLine(line string) error
	SetDigital(n int, on bool) error
	SetAnalog(n int, percent float64) error
	EmergencyStop()
}

type Server struct {
	Addr string

	Store      store.Store
	Controller Controller
	Logger     *logrus.Logger
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := httprouter.New()

	mux.HandlerFunc(http.MethodGet, "/outputs", s.getOutputs)
	mux.HandlerFunc(http.MethodPut, "/outputs/digital/:n", s.putDigital)
	mux.HandlerFunc(http.MethodPut, "/outputs/analog/:n", s.putAnalog)
	mux.HandlerFunc(http.MethodPost, "/gcode", s.postGCode)

	mux.HandlerFunc(http.MethodGet, "/config", s.getConfig)
	mux.HandlerFunc(http.MethodPut, "/config", s.putConfig)

	mux.HandlerFunc(http.MethodPost, "/rpc/allOff", s.allOff)

	return mux
}

// Run serves the API until ctx is done. Outputs are switched off on the way out.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       time.Second * 15,
		ReadHeaderTimeout: time.Second * 15,
		IdleTimeout:       time.Second * 30,
		MaxHeaderBytes:    4096,
	}

	listenErrs := make(chan error, 1)
	go func() {
		s.Logger.WithField("addr", s.Addr).Info("serving http")
		listenErrs <- httpServer.ListenAndServe()
	}()

	defer s.Controller.EmergencyStop()

	select {
	case err := <-listenErrs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
