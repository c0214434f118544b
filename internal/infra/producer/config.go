package producer

import (
	"time"

	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers       []string
	Topic         string
	BatchSize     int
	BufferSize    int
	FlushInterval time.Duration
	WriteTimeout  time.Duration
	RetryLimit    int
	RetryDelay    time.Duration
}

func (c *Config) setDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 10000
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.RetryLimit <= 0 {
		c.RetryLimit = 1
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 100 * time.Millisecond
	}
}

// NewKafkaWriter builds the segmentio writer backing a producer. Batching is
// done by the producer so the writer flushes whatever it is handed.
func NewKafkaWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  1,
		RequiredAcks: kafka.RequireOne,
	}
}
