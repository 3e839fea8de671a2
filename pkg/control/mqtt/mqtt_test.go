package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericogr/accel-color-monitor/pkg/config"
	"github.com/ericogr/accel-color-monitor/pkg/stop"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestHandleCommands(t *testing.T) {
	tests := []struct {
		payload string
		stops   bool
	}{
		{"quit", true},
		{" STOP\n", true},
		{"q", true},
		{"status", false},
		{"", false},
	}
	for _, tt := range tests {
		c := stop.New()
		l := &Listener{topic: DefaultTopic, stopper: c}
		l.onMessage(nil, fakeMessage{topic: DefaultTopic, payload: []byte(tt.payload)})
		assert.Equal(t, tt.stops, c.ShouldStop(), "payload %q", tt.payload)
	}
}

func TestRepeatedQuitIsHarmless(t *testing.T) {
	c := stop.New()
	l := &Listener{topic: DefaultTopic, stopper: c}
	l.handle(DefaultTopic, []byte("quit"))
	l.handle(DefaultTopic, []byte("quit"))
	assert.True(t, c.ShouldStop())
}

func TestRunReturnsOnStop(t *testing.T) {
	c := stop.New()
	l := &Listener{topic: DefaultTopic, stopper: c}
	done := make(chan error, 1)
	go func() { done <- l.Run() }()

	c.RequestStop()
	assert.NoError(t, <-done)
}

func TestWithDefaults(t *testing.T) {
	got := withDefaults(config.MQTTConfig{})
	assert.Equal(t, DefaultServer, got.Server)
	assert.Equal(t, DefaultClientID, got.ClientID)
	assert.Equal(t, DefaultTopic, got.Topic)

	got = withDefaults(config.MQTTConfig{Server: "tcp://pi:1883", ClientID: "pi", Topic: "pi/cmd"})
	assert.Equal(t, config.MQTTConfig{Server: "tcp://pi:1883", ClientID: "pi", Topic: "pi/cmd"}, got)
}
