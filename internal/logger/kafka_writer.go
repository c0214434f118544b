package logger

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/segmentio/kafka-go"
)

// produceTimeout bounds how long a log line waits for room in the producer
// buffer before it is dropped.
const produceTimeout = 200 * time.Millisecond

// KafkaWriter is an io.Writer that ships every log line to kafka.
// Keys are a running sequence so lines spread over partitions.
type KafkaWriter struct {
	producer producer.Producer
	seq      atomic.Uint64
}

func NewKafkaWriter(p producer.Producer) *KafkaWriter {
	return &KafkaWriter{producer: p}
}

func (w *KafkaWriter) Write(p []byte) (int, error) {
	if w == nil || w.producer == nil {
		return 0, fmt.Errorf("kafka log writer is not init")
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, w.seq.Add(1))

	// zerolog reuses p after Write returns
	value := make([]byte, len(p))
	copy(value, p)

	ctx, cancel := context.WithTimeout(context.Background(), produceTimeout)
	defer cancel()
	if err := w.producer.Produce(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return 0, err
	}
	return len(p), nil
}
