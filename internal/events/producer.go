package events

import (
	"context"
	"encoding/json"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes order lifecycle events, best-effort. A nil *Producer is
// valid and publishes nothing, so event delivery never affects a request's
// outcome and the service runs without brokers configured.
type Producer struct {
	w              *kafkago.Writer
	createdTopic   string
	confirmedTopic string
	logger         *zap.Logger
}

func NewProducer(brokers []string, createdTopic, confirmedTopic string, logger *zap.Logger) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		Async:        true,
	}
	w.Completion = func(msgs []kafkago.Message, err error) {
		if err != nil {
			logger.Warn("event publish failed", zap.Error(err), zap.Int("messages", len(msgs)))
		}
	}
	return &Producer{
		w:              w,
		createdTopic:   createdTopic,
		confirmedTopic: confirmedTopic,
		logger:         logger,
	}
}

func (p *Producer) OrderCreated(ctx context.Context, payload OrderCreatedPayload) {
	if p == nil {
		return
	}
	p.publish(ctx, p.createdTopic, payload.OrderID, TypeOrderCreated, payload)
}

func (p *Producer) OrderConfirmed(ctx context.Context, orderID int64) {
	if p == nil {
		return
	}
	p.publish(ctx, p.confirmedTopic, orderID, TypeOrderConfirmed, OrderConfirmedPayload{OrderID: orderID})
}

// publish keys messages by order id so all events of one order keep order
// within a partition.
func (p *Producer) publish(ctx context.Context, topic string, orderID int64, eventType string, payload any) {
	env, err := newEnvelope(eventType, payload)
	if err != nil {
		p.logger.Warn("marshal event payload", zap.Error(err), zap.String("event_type", eventType))
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Warn("marshal event envelope", zap.Error(err), zap.String("event_type", eventType))
		return
	}
	err = p.w.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(orderID, 10)),
		Value: value,
	})
	if err != nil {
		p.logger.Warn("enqueue event", zap.Error(err), zap.String("event_type", eventType))
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.w.Close()
}
