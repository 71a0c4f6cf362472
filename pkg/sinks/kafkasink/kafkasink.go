// Package kafkasink writes samples as JSON messages to a Kafka topic
package kafkasink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Config struct {
	Brokers []string
	Topic   string
}

// messageWriter is the part of kafka.Writer the sink needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Sink struct {
	writer messageWriter
}

// New creates a sink for the given topic, brokers are dialed lazily on the first write
func New(conf Config) *Sink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(conf.Brokers...),
		Topic:        conf.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	log.Info("kafka sink created", zap.Strings("brokers", conf.Brokers), zap.String("topic", conf.Topic))
	return &Sink{writer: w}
}

// Message builds the kafka message for loc, keyed by provider so samples of
// one provider stay ordered within a partition
func Message(loc location.Location) (kafka.Message, error) {
	data, err := json.Marshal(loc)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(loc.Provider),
		Value: data,
	}, nil
}

func (s *Sink) OnLocationChanged(ctx context.Context, loc location.Location) error {
	msg, err := Message(loc)
	if err != nil {
		return err
	}

	return s.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages and closes the connection
func (s *Sink) Close() error {
	return s.writer.Close()
}
