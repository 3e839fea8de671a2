package config

import (
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	SensorReal       = "real"
	SensorSimulation = "simulation"

	DisplayConsole = "console"
	DisplayOLED    = "oled"
)

type AccelerometerConfig struct {
	Enabled bool `json:"enabled"`
	Address int  `json:"address"`
	RangeG  int  `json:"range_g"`
}

type ColorConfig struct {
	Enabled       bool    `json:"enabled"`
	Address       int     `json:"address"`
	Gain          int     `json:"gain"`
	IntegrationMs float64 `json:"integration_ms"`
}

type DisplayConfig struct {
	Type    string `json:"type"`
	Address int    `json:"address"`
}

type MQTTConfig struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
}

type ControlConfig struct {
	MQTT *MQTTConfig `json:"mqtt,omitempty"`
}

type Config struct {
	I2CBus         string              `json:"i2c_bus"`
	SensorType     string              `json:"sensor_type"`
	PollIntervalMs int                 `json:"poll_interval_ms"`
	Accelerometer  AccelerometerConfig `json:"accelerometer"`
	Color          ColorConfig         `json:"color"`
	Display        DisplayConfig       `json:"display"`
	Control        ControlConfig       `json:"control"`
	LogLevel       string              `json:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		I2CBus:         "1",
		SensorType:     SensorReal,
		PollIntervalMs: 500,
		Accelerometer:  AccelerometerConfig{Enabled: true, Address: 0x68, RangeG: 2},
		Color:          ColorConfig{Enabled: true, Address: 0x29, Gain: 4, IntegrationMs: 24},
		Display:        DisplayConfig{Type: DisplayConsole, Address: 0x3c},
		LogLevel:       "info",
	}
}

// PollInterval returns the sensor poll interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Load loads configuration from a JSON file (optional) and command line
// arguments. Flags override values present in the JSON file.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("accel-color-monitor", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to JSON config file")
	flagI2CBus := fs.String("i2c-bus", "", "I2C bus (e.g., '1' -> /dev/i2c-1)")
	flagSensorType := fs.String("sensor-type", "", "sensor type: real|simulation")
	flagInterval := fs.Int("poll-interval-ms", -1, "Sensor poll interval in ms")
	flagAccAddr := fs.String("accel-address", "", "Accelerometer I2C address (decimal or 0x hex)")
	flagAccRange := fs.Int("accel-range", -1, "Accelerometer full scale in g (2,4,8,16)")
	flagColorAddr := fs.String("color-address", "", "Color sensor I2C address (decimal or 0x hex)")
	flagColorGain := fs.Int("color-gain", -1, "Color sensor gain (1,4,16,60)")
	flagSensors := fs.String("sensors", "", "Comma-separated enabled sensors e.g. accelerometer,color")
	flagDisplay := fs.String("display", "", "display type: console|oled")
	flagDisplayAddr := fs.String("display-address", "", "OLED I2C address (decimal or 0x hex)")
	flagMQTTServer := fs.String("mqtt-server", "", "MQTT server for remote quit commands (tcp://host:port)")
	flagMQTTUser := fs.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := fs.String("mqtt-pass", "", "MQTT password")
	flagClientID := fs.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := fs.String("mqtt-topic", "", "MQTT command topic")
	flagLogLevel := fs.String("log-level", "", "log level: debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, errors.Wrap(err, "parse config")
		}
	}

	if *flagI2CBus != "" {
		cfg.I2CBus = *flagI2CBus
	}
	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if *flagInterval != -1 {
		cfg.PollIntervalMs = *flagInterval
	}
	if *flagAccAddr != "" {
		v, err := parseIntOrHex(*flagAccAddr)
		if err != nil {
			return cfg, errors.Wrap(err, "accel-address")
		}
		cfg.Accelerometer.Address = v
	}
	if *flagAccRange != -1 {
		cfg.Accelerometer.RangeG = *flagAccRange
	}
	if *flagColorAddr != "" {
		v, err := parseIntOrHex(*flagColorAddr)
		if err != nil {
			return cfg, errors.Wrap(err, "color-address")
		}
		cfg.Color.Address = v
	}
	if *flagColorGain != -1 {
		cfg.Color.Gain = *flagColorGain
	}
	if *flagSensors != "" {
		enabled := map[string]bool{}
		for _, p := range parseCSV(*flagSensors) {
			enabled[strings.ToLower(p)] = true
		}
		cfg.Accelerometer.Enabled = enabled["accelerometer"]
		cfg.Color.Enabled = enabled["color"]
	}
	if *flagDisplay != "" {
		cfg.Display.Type = *flagDisplay
	}
	if *flagDisplayAddr != "" {
		v, err := parseIntOrHex(*flagDisplayAddr)
		if err != nil {
			return cfg, errors.Wrap(err, "display-address")
		}
		cfg.Display.Address = v
	}
	// mqtt flags create the control section if the file did not
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" {
		if cfg.Control.MQTT == nil {
			cfg.Control.MQTT = &MQTTConfig{}
		}
		m := cfg.Control.MQTT
		if *flagMQTTServer != "" {
			m.Server = *flagMQTTServer
		}
		if *flagMQTTUser != "" {
			m.Username = *flagMQTTUser
		}
		if *flagMQTTPass != "" {
			m.Password = *flagMQTTPass
		}
		if *flagClientID != "" {
			m.ClientID = *flagClientID
		}
		if *flagTopic != "" {
			m.Topic = *flagTopic
		}
	}
	if *flagLogLevel != "" {
		cfg.LogLevel = *flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values the drivers cannot cope with.
func (c Config) Validate() error {
	if c.PollIntervalMs <= 0 {
		return errors.New("poll-interval-ms must be > 0")
	}
	switch c.SensorType {
	case SensorReal, SensorSimulation:
	default:
		return errors.Errorf("unknown sensor type %q", c.SensorType)
	}
	switch c.Display.Type {
	case DisplayConsole, DisplayOLED:
	default:
		return errors.Errorf("unknown display type %q", c.Display.Type)
	}
	switch c.Accelerometer.RangeG {
	case 2, 4, 8, 16:
	default:
		return errors.Errorf("accelerometer range must be 2, 4, 8 or 16 g, got %d", c.Accelerometer.RangeG)
	}
	switch c.Color.Gain {
	case 1, 4, 16, 60:
	default:
		return errors.Errorf("color gain must be 1, 4, 16 or 60, got %d", c.Color.Gain)
	}
	if c.Color.IntegrationMs < 2.4 || c.Color.IntegrationMs > 614.4 {
		return errors.Errorf("color integration time out of range: %v ms", c.Color.IntegrationMs)
	}
	if m := c.Control.MQTT; m != nil && m.Server != "" && m.Topic == "" {
		return errors.New("mqtt control requires a topic")
	}
	return nil
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
