package logger

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	msgs []kafka.Message
	err  error
}

func (p *recordingProducer) Produce(ctx context.Context, msgs ...kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *recordingProducer) Close(time.Duration) error { return nil }

func TestNewLoggerWritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := New("order", "debug", &buf)

	l.Info().Str("payment_id", "pay-1").Msg("checkout completed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "order", line["service"])
	require.Equal(t, "pay-1", line["payment_id"])
	require.Equal(t, "checkout completed", line["message"])
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("cart", "warn", &buf)

	l.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	l.Warn().Msg("kept")
	require.NotZero(t, buf.Len())
}

func TestKafkaWriter(t *testing.T) {
	p := &recordingProducer{}
	w := NewKafkaWriter(p)

	line := []byte(`{"level":"info"}`)
	n, err := w.Write(line)
	require.NoError(t, err)
	require.Equal(t, len(line), n)

	// caller may reuse its buffer
	line[2] = 'X'

	_, err = w.Write([]byte(`{"level":"warn"}`))
	require.NoError(t, err)

	require.Len(t, p.msgs, 2)
	require.Equal(t, `{"level":"info"}`, string(p.msgs[0].Value))
	require.Equal(t, uint64(1), binary.BigEndian.Uint64(p.msgs[0].Key))
	require.Equal(t, uint64(2), binary.BigEndian.Uint64(p.msgs[1].Key))
}

func TestKafkaWriterPropagatesProducerError(t *testing.T) {
	w := NewKafkaWriter(&recordingProducer{err: producer.ErrBufferFull})

	n, err := w.Write([]byte("x"))
	require.Zero(t, n)
	require.True(t, errors.Is(err, producer.ErrBufferFull))
}
