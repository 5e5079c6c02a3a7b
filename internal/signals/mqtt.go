package signals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"heating_card/internal/models"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopicPrefix is where signals are published; the signal type is
// appended (heating-card/signals/hass-action).
const DefaultTopicPrefix = "heating-card/signals"

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// MQTTConfig holds the broker settings.
type MQTTConfig struct {
	Broker      string // tcp://host:1883
	ClientID    string
	TopicPrefix string
}

// MQTTSink publishes signals to an MQTT broker.
type MQTTSink struct {
	client paho.Client
	prefix string
}

// NewMQTTSink connects to the broker.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = "heating-card"
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return newMQTTSink(client, cfg.TopicPrefix), nil
}

func newMQTTSink(client paho.Client, prefix string) *MQTTSink {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &MQTTSink{client: client, prefix: strings.TrimSuffix(prefix, "/")}
}

// Topic returns the topic a signal type is published on.
func (m *MQTTSink) Topic(signalType string) string {
	return m.prefix + "/" + signalType
}

// Emit publishes the signal with QoS 0, not retained.
func (m *MQTTSink) Emit(ctx context.Context, s models.Signal) error {
	payload, err := FormatPayload(s)
	if err != nil {
		return fmt.Errorf("format signal: %w", err)
	}
	token := m.client.Publish(m.Topic(s.Type), 0, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish %s: timeout", s.Type)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", s.Type, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (m *MQTTSink) IsConnected() bool {
	return m.client.IsConnected()
}

// Close disconnects from the broker.
func (m *MQTTSink) Close() error {
	m.client.Disconnect(1000) // 1 second quiesce
	return nil
}
