package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fathima-sithara/quickchat/internal/models"
)

// Publisher fans persisted messages out to downstream consumers
// (notifications, analytics). Delivery is fire-and-forget from the router's
// point of view.
type Publisher interface {
	MessageSent(ctx context.Context, m *models.Message)
}

type KafkaPublisher struct {
	writer *kafkago.Writer
	log    *zap.SugaredLogger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.SugaredLogger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		Async:        true,
	}
	return &KafkaPublisher{writer: w, log: log}
}

func (p *KafkaPublisher) MessageSent(ctx context.Context, m *models.Message) {
	b, err := json.Marshal(m)
	if err != nil {
		p.log.Errorw("event marshal", "err", err)
		return
	}
	msg := kafkago.Message{
		Key:   []byte(m.ReceiverID),
		Value: b,
		Time:  m.CreatedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warnw("publish message.sent", "message", m.ID, "err", err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
