// windbridge-host attaches to the bridge MCU, decodes its TX20
// datagrams and republishes the wind readings over MQTT.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"windbridge/host/bridge"
	"windbridge/host/config"
	"windbridge/host/serial"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	device := flag.String("device", "", "serial device (overrides config)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			logger.Fatal("failed to load config", zap.Error(err), zap.String("path", *configPath))
		}
	}
	if *device != "" {
		cfg.Device = *device
	}

	port, err := serial.Open(&serial.Config{
		Device: cfg.Device,
		Baud:   cfg.Baud,
	})
	if err != nil {
		logger.Fatal("failed to open serial port", zap.Error(err), zap.String("device", cfg.Device))
	}
	defer port.Close()

	var pub bridge.Publisher
	if cfg.MQTT.Broker != "" {
		mqttPub, err := bridge.NewMQTTPublisher(cfg.MQTT, logger)
		if err != nil {
			logger.Fatal("failed to connect to mqtt broker", zap.Error(err))
		}
		defer mqttPub.Close()
		pub = mqttPub
	} else {
		logger.Info("no mqtt broker configured, logging readings only")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("bridge starting", zap.String("device", cfg.Device))

	b := bridge.New(port, pub, logger)
	if err := b.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("bridge stopped", zap.Error(err))
		os.Exit(1)
	}
}
