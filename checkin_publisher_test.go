package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	messages []kafka.Message
	closed   bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaCheckinPublisher_WritesKeyedJSON(t *testing.T) {
	writer := &stubWriter{}
	publisher := &kafkaCheckinPublisher{writer: writer}

	msg := checkinMessage{
		UserID:      "user-1",
		Endpoint:    "https://push.example.com/abc",
		Keys:        map[string]string{"p256dh": "k", "auth": "a"},
		Title:       checkinTitle,
		Body:        checkinBody,
		VAPIDKey:    "pub",
		RequestedAt: statsClock,
	}
	require.NoError(t, publisher.PublishCheckin(context.Background(), msg))

	require.Len(t, writer.messages, 1)
	require.Equal(t, []byte("user-1"), writer.messages[0].Key)
	require.Equal(t, statsClock, writer.messages[0].Time)

	var decoded checkinMessage
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	require.Equal(t, msg, decoded)

	require.NoError(t, publisher.Close())
	require.True(t, writer.closed)
}

func TestNewKafkaCheckinPublisher(t *testing.T) {
	publisher := newKafkaCheckinPublisher([]string{"localhost:9092"}, "push.checkins")

	writer, ok := publisher.writer.(*kafka.Writer)
	require.True(t, ok)
	require.Equal(t, "push.checkins", writer.Topic)
	require.Equal(t, kafka.RequireAll, writer.RequiredAcks)
	require.NoError(t, publisher.Close())
}
