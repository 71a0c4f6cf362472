// Package mqttsink publishes samples as JSON to an MQTT broker
package mqttsink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	ConnectTimeout    = 10 * time.Second
	DisconnectQuiesce = 250 // ms

	// ProviderPlaceholder in a topic is replaced by the provider name
	ProviderPlaceholder = "{provider}"
)

var ErrPublishTimeout = errors.New("mqtt publish was not acknowledged in time")

type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Retained bool
}

// publisher is the part of mqtt.Client the sink needs
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

type Sink struct {
	client   publisher
	topic    string
	qos      byte
	retained bool
}

// Connect dials the broker and returns a ready sink
func Connect(conf Config) (*Sink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(conf.Broker).
		SetClientID(conf.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(ConnectTimeout)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", zap.String("broker", conf.Broker), zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(ConnectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", conf.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", conf.Broker, err)
	}

	log.Info("mqtt sink connected", zap.String("broker", conf.Broker), zap.String("topic", conf.Topic))
	return newSink(client, conf), nil
}

func newSink(client publisher, conf Config) *Sink {
	return &Sink{
		client:   client,
		topic:    conf.Topic,
		qos:      conf.QoS,
		retained: conf.Retained,
	}
}

// Topic returns the topic samples of provider are published on
func (s *Sink) Topic(provider string) string {
	return strings.ReplaceAll(s.topic, ProviderPlaceholder, provider)
}

func (s *Sink) OnLocationChanged(ctx context.Context, loc location.Location) error {
	payload, err := json.Marshal(loc)
	if err != nil {
		return err
	}

	token := s.client.Publish(s.Topic(loc.Provider), s.qos, s.retained, payload)

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublishTimeout, ctx.Err())
	}
}

func (s *Sink) Close() error {
	s.client.Disconnect(DisconnectQuiesce)
	return nil
}
