package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/config"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
)

var ErrNoBrokers = errors.New("kafka: no brokers configured")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AlertPublisher forwards emitted alerts and recommendations to a Kafka topic,
// keyed by throttle key so one key always lands on one partition.
type AlertPublisher struct {
	writer messageWriter
}

func NewAlertPublisher(cfg config.KafkaConfig) (*AlertPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.AlertTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &AlertPublisher{writer: w}, nil
}

// Deliver writes one alert and blocks until the broker acknowledges it.
func (p *AlertPublisher) Deliver(ctx context.Context, a models.Alert) error {
	msg, err := alertMessage(a)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write alert %s: %w", a.Key, err)
	}
	return nil
}

func (p *AlertPublisher) Close() error {
	return p.writer.Close()
}

func alertMessage(a models.Alert) (kafka.Message, error) {
	value, err := json.Marshal(a)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode alert: %w", err)
	}
	return kafka.Message{
		Key:   []byte(a.Key),
		Value: value,
		Time:  a.CreatedAt,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(a.Kind)},
		},
	}, nil
}
