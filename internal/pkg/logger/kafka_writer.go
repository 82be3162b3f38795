package logger

import (
	"context"
	"encoding/binary"
	"errors"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrWriterNotInit = errors.New("kafka log writer is not init")

// MessageWriter kafka.Writer 的子集
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaWriter 把 zerolog 的輸出送到 kafka topic
type KafkaWriter struct {
	w       MessageWriter
	timeout time.Duration
	logId   atomic.Int64
}

func NewKafkaWriter(brokers []string, topic string) *KafkaWriter {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		// 設置較短的超時時間以快速發現問題
		WriteTimeout: 5 * time.Second,
		MaxAttempts:  3,
		Async:        true,
	}
	return NewKafkaWriterWith(w)
}

func NewKafkaWriterWith(w MessageWriter) *KafkaWriter {
	return &KafkaWriter{w: w, timeout: 5 * time.Second}
}

func (kw *KafkaWriter) Write(p []byte) (n int, err error) {
	if kw == nil || kw.w == nil {
		return 0, ErrWriterNotInit
	}

	id := kw.logId.Add(1)
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))

	// zerolog 會重複使用 p 的底層 buffer
	value := make([]byte, len(p))
	copy(value, p)

	ctx, cancel := context.WithTimeout(context.Background(), kw.timeout)
	defer cancel()
	if err := kw.w.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (kw *KafkaWriter) Close() error {
	if kw == nil || kw.w == nil {
		return nil
	}
	return kw.w.Close()
}
