package logger

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeMessageWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeMessageWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeMessageWriter) Close() error {
	f.closed = true
	return nil
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: FormatJSON, Service: "shopcore"}, &buf)

	l.Info().Msg("dropped")
	l.Warn().Str("cart", "c1").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "kept", line["message"])
	require.Equal(t, "shopcore", line["service"])
	require.Equal(t, "c1", line["cart"])
}

func TestKafkaWriterFanOut(t *testing.T) {
	var buf bytes.Buffer
	fake := &fakeMessageWriter{}
	kw := NewKafkaWriterWith(fake)

	l := New(Config{Level: "info", Format: FormatJSON}, &buf, kw)
	l.Info().Msg("first")
	l.Info().Msg("second")

	require.Contains(t, buf.String(), "first")
	require.Len(t, fake.msgs, 2)
	require.Equal(t, uint64(1), binary.BigEndian.Uint64(fake.msgs[0].Key))
	require.Equal(t, uint64(2), binary.BigEndian.Uint64(fake.msgs[1].Key))
	require.Contains(t, string(fake.msgs[0].Value), "first")
	require.Contains(t, string(fake.msgs[1].Value), "second")

	require.NoError(t, kw.Close())
	require.True(t, fake.closed)
}

func TestKafkaWriterErrors(t *testing.T) {
	var nilWriter *KafkaWriter
	_, err := nilWriter.Write([]byte("x"))
	require.ErrorIs(t, err, ErrWriterNotInit)

	boom := errors.New("broker down")
	kw := NewKafkaWriterWith(&fakeMessageWriter{err: boom})
	n, err := kw.Write([]byte("x"))
	require.ErrorIs(t, err, boom)
	require.Zero(t, n)
}
