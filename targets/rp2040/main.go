//go:build rp2040

package main

import (
	"machine"
	"time"

	"auxout/core"
	"auxout/standalone"
	"auxout/standalone/config"
	"auxout/targets/pca9685"
)

func main() {
	InitUSB()
	core.SetLogWriter(func(line string) {
		USBWriteBytes([]byte(line + "\n"))
	})

	gpioDriver := NewRPGPIODriver()
	core.SetGPIODriver(gpioDriver)
	pwmTimer := NewRP2040PWMTimer()
	core.SetPWMTimer(pwmTimer)

	pins := &core.MuxResolver{Default: core.GPIOResolver{Driver: gpioDriver}}

	// The expander is optional; boards without one only get native pins
	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz}); err == nil {
		dev := pca9685.New(i2c, pca9685.DefaultAddress)
		if err := dev.Init(); err == nil {
			pins.Handle("pca9685.", dev)
		} else {
			core.Logger().Debugf("no pca9685: %v", err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.PWMChannels = PWMChannels

	manager, err := standalone.NewManagerWithConfig(cfg)
	if err != nil {
		fatal()
	}
	err = manager.Initialize(standalone.Hardware{
		Pins:     pins,
		Timer:    pwmTimer,
		BusClock: busClock,
	})
	if err != nil {
		core.Logger().Errorf("initialize: %v", err)
		fatal()
	}
	if err := manager.Start(); err != nil {
		fatal()
	}

	for {
		// Process USB input; errors are already answered on the wire
		for USBAvailable() > 0 {
			data, err := USBRead()
			if err != nil {
				break
			}
			_ = manager.ProcessByte(data)
		}

		if output := manager.GetOutput(); len(output) > 0 {
			USBWriteBytes(output)
		}

		time.Sleep(100 * time.Microsecond)
	}
}

// fatal flashes the LED rapidly forever
func fatal() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
