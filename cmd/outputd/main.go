package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"auxout/core"
	"auxout/server"
	"auxout/standalone"
	"auxout/standalone/config"
	"auxout/store"
	"auxout/targets/pca9685"
	"auxout/targets/periph"
)

var (
	addr       = flag.String("addr", ":8080", "HTTP listen address")
	dbPath     = flag.String("db", "auxout.db", "Config database path")
	configPath = flag.String("config", "", "Machine config file (YAML or JSON); stored on start")
	i2cBus     = flag.String("i2c", "", "I2C bus of a PCA9685 expander (empty: none)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	if _, err := host.Init(); err != nil {
		logger.Fatalf("unable to initialize periph host drivers: %s", err)
	}

	db, err := store.OpenBBolt(*dbPath, 0666, nil)
	if err != nil {
		logger.Fatal(err)
	}
	defer db.Close()

	cfg, err := machineConfig(db, logger)
	if err != nil {
		logger.Fatal(err)
	}

	pins := &core.MuxResolver{Default: periph.NewResolver()}
	if *i2cBus != "" {
		bus, err := i2creg.Open(*i2cBus)
		if err != nil {
			logger.Fatalf("unable to open i2c bus %q: %s", *i2cBus, err)
		}
		defer bus.Close()

		dev := pca9685.New(bus, pca9685.DefaultAddress)
		if err := dev.Init(); err != nil {
			logger.Fatal(err)
		}
		pins.Handle("pca9685.", dev)
	}

	manager, err := standalone.NewManagerWithConfig(cfg)
	if err != nil {
		logger.Fatal(err)
	}
	manager.SetLogger(logger)

	err = manager.Initialize(standalone.Hardware{
		Pins:  pins,
		Timer: periph.NewTimer(),
	})
	if err != nil {
		logger.Fatal(err)
	}
	if err := manager.Start(); err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.Server{Addr: *addr, Store: db, Controller: manager, Logger: logger}
	if err := srv.Run(ctx); err != nil {
		logger.Error(err)
	}
}

// machineConfig prefers the -config file, then the stored config, then
// the built-in default
func machineConfig(db store.Store, logger *logrus.Logger) (*config.MachineConfig, error) {
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg, err := config.LoadConfig(data)
		if err != nil {
			return nil, err
		}
		if err := db.PutMachineConfig(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg, err := db.MachineConfig()
	if errors.Is(err, store.ErrNotFound) {
		logger.Warn("no stored machine config, using default")
		return config.DefaultConfig(), nil
	}
	return cfg, err
}
