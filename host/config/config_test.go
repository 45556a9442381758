package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load([]byte(`{}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Device != "/dev/ttyACM0" {
		t.Errorf("Default device is %q", cfg.Device)
	}
	if cfg.Baud != 115200 {
		t.Errorf("Default baud is %d", cfg.Baud)
	}
	if cfg.MQTT.Port != 1883 {
		t.Errorf("Default MQTT port is %d", cfg.MQTT.Port)
	}
	if cfg.MQTT.Topic != "windbridge/wind" {
		t.Errorf("Default MQTT topic is %q", cfg.MQTT.Topic)
	}
	if cfg.MQTT.ClientID != "windbridge" {
		t.Errorf("Default MQTT client id is %q", cfg.MQTT.ClientID)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load([]byte(`{
		"device": "/dev/ttyUSB1",
		"baud": 9600,
		"mqtt": {"broker": "mqtt.local", "port": 8883, "topic": "weather/wind"}
	}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Device != "/dev/ttyUSB1" {
		t.Errorf("Device is %q", cfg.Device)
	}
	if cfg.Baud != 9600 {
		t.Errorf("Baud is %d", cfg.Baud)
	}
	if cfg.MQTT.Broker != "mqtt.local" {
		t.Errorf("Broker is %q", cfg.MQTT.Broker)
	}
	if cfg.MQTT.Port != 8883 {
		t.Errorf("Port is %d", cfg.MQTT.Port)
	}
	if cfg.MQTT.Topic != "weather/wind" {
		t.Errorf("Topic is %q", cfg.MQTT.Topic)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	if _, err := Load([]byte(`{device:`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
