package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// checkinPublisher hands a check-in notification to the push delivery worker.
type checkinPublisher interface {
	PublishCheckin(ctx context.Context, msg checkinMessage) error
	Close() error
}

// checkinMessage is the JSON the delivery worker consumes. It carries the
// subscription and the VAPID public key it was made against; the worker signs
// with the private half it reads from app_settings.
type checkinMessage struct {
	UserID       string            `json:"user_id"`
	Endpoint     string            `json:"endpoint"`
	Keys         map[string]string `json:"keys"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	VAPIDKey     string            `json:"vapid_public_key"`
	VAPIDSubject string            `json:"vapid_subject"`
	RequestedAt  time.Time         `json:"requested_at"`
}

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaCheckinPublisher writes one message per check-in, keyed by user so a
// user's notifications stay ordered on one partition.
type kafkaCheckinPublisher struct {
	writer messageWriter
}

func newKafkaCheckinPublisher(brokers []string, topic string) *kafkaCheckinPublisher {
	return &kafkaCheckinPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}}
}

func (p *kafkaCheckinPublisher) PublishCheckin(ctx context.Context, msg checkinMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode check-in: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.UserID),
		Value: payload,
		Time:  msg.RequestedAt,
	})
}

func (p *kafkaCheckinPublisher) Close() error {
	return p.writer.Close()
}
