package config

import (
	"encoding/json"
	"os"
)

// Config is the host bridge configuration
type Config struct {
	// Serial device the MCU is attached to
	Device string `json:"device"`
	Baud   int    `json:"baud"`

	MQTT MQTTConfig `json:"mqtt"`
}

// MQTTConfig configures the telemetry publisher. An empty Broker
// disables publishing; readings are still logged.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	Port     int    `json:"port"`
	Topic    string `json:"topic"`
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"client_id"`
}

// Load parses a JSON configuration and fills in defaults
func Load(jsonData []byte) (*Config, error) {
	var cfg Config

	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// LoadFile reads and parses a JSON configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(cfg *Config) {
	if cfg.Device == "" {
		cfg.Device = "/dev/ttyACM0"
	}
	if cfg.Baud == 0 {
		cfg.Baud = 115200
	}

	if cfg.MQTT.Port == 0 {
		cfg.MQTT.Port = 1883
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "windbridge/wind"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "windbridge"
	}
}
