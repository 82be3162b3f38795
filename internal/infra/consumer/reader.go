package consumer

import (
	"context"

	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=reader.go -destination=mock/reader_mock.go -package=mock

// KafkaReader kafka.Reader 的子集，方便測試替換
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaReader 建立 consumer group reader
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		StartOffset:    kafka.LastOffset,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: 0,
	})
}
