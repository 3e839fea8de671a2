package main

import (
	"context"
	"flag"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ericogr/accel-color-monitor/pkg/config"
	ctlmqtt "github.com/ericogr/accel-color-monitor/pkg/control/mqtt"
	"github.com/ericogr/accel-color-monitor/pkg/output"
	"github.com/ericogr/accel-color-monitor/pkg/output/console"
	"github.com/ericogr/accel-color-monitor/pkg/output/oled"
	"github.com/ericogr/accel-color-monitor/pkg/sensor"
	"github.com/ericogr/accel-color-monitor/pkg/shared"
	"github.com/ericogr/accel-color-monitor/pkg/stop"
	"github.com/ericogr/accel-color-monitor/pkg/supervisor"
	"github.com/ericogr/accel-color-monitor/pkg/worker"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	if err := run(context.Background(), cfg); err != nil {
		log.Fatal().Err(err).Msg("monitor failed")
	}
	log.Info().Msg("all workers finished, exiting")
}

// run wires the shared state and workers and blocks until a stop request.
// Sensors that fail to start are reported but do not make run fail.
func run(ctx context.Context, cfg config.Config) error {
	stopper := stop.New()
	accSlot := shared.NewSlot[sensor.Acceleration]()
	colorSlot := shared.NewSlot[sensor.Color]()
	ready := shared.NewReadiness()

	sink, err := initOutput(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warn().Err(err).Msg("display close failed")
		}
	}()

	sup := supervisor.New(stopper)
	acc, color := initDrivers(cfg)
	if acc != nil {
		sup.Add("accelerometer", worker.NewSensor("accelerometer", acc, accSlot, ready, stopper, cfg.PollInterval()))
	}
	if color != nil {
		sup.Add("color", worker.NewSensor("color", color, colorSlot, ready, stopper, cfg.PollInterval()))
	}
	sup.Add("display", worker.NewDisplay(accSlot, colorSlot, ready, stopper, sink))

	if m := cfg.Control.MQTT; m != nil && m.Server != "" {
		l, err := ctlmqtt.NewListener(*m, stopper)
		if err != nil {
			log.Warn().Err(err).Msg("remote commands unavailable")
		} else {
			sup.Add("mqtt-control", l)
		}
	}

	log.Info().
		Str("sensor_type", cfg.SensorType).
		Dur("poll_interval", cfg.PollInterval()).
		Str("display", cfg.Display.Type).
		Msg("starting sensing application")

	if err := sup.Run(ctx); err != nil {
		log.Warn().Err(err).Msg("running with degraded sensors")
	}
	return nil
}

// initDrivers returns the enabled drivers; a disabled sensor is nil.
func initDrivers(cfg config.Config) (sensor.Driver[sensor.Acceleration], sensor.Driver[sensor.Color]) {
	var acc sensor.Driver[sensor.Acceleration]
	var color sensor.Driver[sensor.Color]
	switch cfg.SensorType {
	case config.SensorSimulation:
		if cfg.Accelerometer.Enabled {
			acc = sensor.NewFakeAccelerometer()
		}
		if cfg.Color.Enabled {
			color = sensor.NewFakeColor()
		}
	default:
		if cfg.Accelerometer.Enabled {
			acc = sensor.NewMPU6050(cfg.I2CBus, cfg.Accelerometer)
		}
		if cfg.Color.Enabled {
			color = sensor.NewTCS34725(cfg.I2CBus, cfg.Color)
		}
	}
	return acc, color
}

func initOutput(cfg config.Config) (output.Sink, error) {
	switch cfg.Display.Type {
	case config.DisplayOLED:
		s, err := oled.NewOLED(cfg.I2CBus, uint16(cfg.Display.Address))
		if err != nil {
			return nil, errors.Wrap(err, "init oled display")
		}
		return s, nil
	default:
		return console.NewConsole(), nil
	}
}
