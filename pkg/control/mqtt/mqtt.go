// Package mqtt lets a remote client stop the monitor by publishing a quit
// command on an MQTT topic.
package mqtt

import (
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ericogr/accel-color-monitor/pkg/config"
)

const (
	// defaults
	DefaultServer   = "tcp://localhost:1883"
	DefaultClientID = "accel-color-monitor"
	DefaultTopic    = "accel-color-monitor/command"

	disconnectQuiesceMs = 250
	subscribeTimeout    = 5 * time.Second
)

// Stopper is the stop flag as seen by the listener.
type Stopper interface {
	RequestStop() bool
	Done() <-chan struct{}
}

// Listener subscribes to a command topic and requests a stop when a quit
// command arrives.
type Listener struct {
	client  mqtt.Client
	topic   string
	stopper Stopper
}

func NewListener(cfg config.MQTTConfig, stopper Stopper) (*Listener, error) {
	cfg = withDefaults(cfg)
	l := &Listener{topic: cfg.Topic, stopper: stopper}

	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	// resubscribe after a reconnect, the session is not persistent
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		if err := l.subscribe(c); err != nil {
			log.Error().Err(err).Str("topic", l.topic).Msg("mqtt subscribe failed")
		}
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, errors.Wrap(token.Error(), "mqtt connect")
	}
	l.client = client
	log.Info().Str("server", cfg.Server).Str("topic", cfg.Topic).Msg("listening for remote commands")
	return l, nil
}

// Run keeps the subscription alive until a stop is requested, from any
// source, then disconnects.
func (l *Listener) Run() error {
	<-l.stopper.Done()
	return l.Close()
}

func (l *Listener) Close() error {
	if l.client == nil {
		return nil
	}
	if token := l.client.Unsubscribe(l.topic); token.WaitTimeout(subscribeTimeout) && token.Error() != nil {
		log.Warn().Err(token.Error()).Msg("mqtt unsubscribe failed")
	}
	l.client.Disconnect(disconnectQuiesceMs)
	l.client = nil
	return nil
}

func (l *Listener) subscribe(c mqtt.Client) error {
	token := c.Subscribe(l.topic, 1, l.onMessage)
	if !token.WaitTimeout(subscribeTimeout) {
		return errors.Errorf("subscribe to %q timed out", l.topic)
	}
	return errors.Wrapf(token.Error(), "subscribe to %q", l.topic)
}

func (l *Listener) onMessage(_ mqtt.Client, msg mqtt.Message) {
	l.handle(msg.Topic(), msg.Payload())
}

func (l *Listener) handle(topic string, payload []byte) {
	cmd := strings.ToLower(strings.TrimSpace(string(payload)))
	switch cmd {
	case "quit", "stop", "q":
		if l.stopper.RequestStop() {
			log.Info().Str("topic", topic).Str("command", cmd).Msg("stop requested remotely")
		}
	default:
		log.Warn().Str("topic", topic).Str("command", cmd).Msg("unknown remote command")
	}
}

func withDefaults(cfg config.MQTTConfig) config.MQTTConfig {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	return cfg
}
