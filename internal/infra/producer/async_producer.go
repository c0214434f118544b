package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Producer 寫入固定topic, 由Config設置
type Producer interface {
	Produce(ctx context.Context, msgs ...kafka.Message) error
	Close(waitTime time.Duration) error
}

type ProducerError struct {
	Message kafka.Message
	Err     error
}

type Option func(*AsyncProducer)

func WithSuccessHandler(f func(kafka.Message)) Option {
	return func(p *AsyncProducer) {
		p.onSuccess = f
	}
}

func WithFailureHandler(f func(ProducerError)) Option {
	return func(p *AsyncProducer) {
		p.onFailure = f
	}
}

// AsyncProducer buffers messages in a channel and writes them in batches from
// a single goroutine, flushing when a batch is full or the flush interval
// elapses. Produce only waits when the buffer is full.
type AsyncProducer struct {
	cfg       Config
	writer    Writer
	logger    *zerolog.Logger
	onSuccess func(kafka.Message)
	onFailure func(ProducerError)

	mu      sync.RWMutex
	running bool
	msgCh   chan kafka.Message
	stopped chan struct{}
}

func NewAsyncProducer(w Writer, cfg Config, logger *zerolog.Logger, opts ...Option) (*AsyncProducer, error) {
	if w == nil || len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, ErrInvalidParameter
	}
	cfg.setDefaults()

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	p := &AsyncProducer{
		cfg:    cfg,
		writer: w,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *AsyncProducer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.msgCh = make(chan kafka.Message, p.cfg.BufferSize)
	p.stopped = make(chan struct{})
	go p.run(p.msgCh, p.stopped)
}

// Produce enqueues msgs, waiting for room while the buffer is full. If ctx
// ends first the messages not yet enqueued are dropped and the error wraps
// both ErrBufferFull and ctx.Err().
func (p *AsyncProducer) Produce(ctx context.Context, msgs ...kafka.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return ErrProducerClosed
	}

	for i, msg := range msgs {
		select {
		case p.msgCh <- msg:
			continue
		default:
		}
		// buffer 滿了, 等 run 消化或 ctx 結束
		select {
		case p.msgCh <- msg:
		case <-ctx.Done():
			return fmt.Errorf("%w: dropped %d of %d messages: %w", ErrBufferFull, len(msgs)-i, len(msgs), ctx.Err())
		}
	}
	return nil
}

func (p *AsyncProducer) run(msgCh <-chan kafka.Message, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Message, 0, p.cfg.BatchSize)
	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				// channel 已關閉, 處理殘留資料
				p.flush(batch)
				return
			}
			batch = append(batch, msg)
			if len(batch) >= p.cfg.BatchSize {
				p.flush(batch)
				batch = make([]kafka.Message, 0, p.cfg.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				p.flush(batch)
				batch = make([]kafka.Message, 0, p.cfg.BatchSize)
			}
		}
	}
}

func (p *AsyncProducer) flush(batch []kafka.Message) {
	if len(batch) == 0 {
		return
	}

	if err := p.writeWithRetry(batch); err != nil {
		p.logger.Error().Err(err).Str("topic", p.cfg.Topic).Int("messages", len(batch)).Msg("kafka producer write failed")
		if p.onFailure != nil {
			for _, msg := range batch {
				p.onFailure(ProducerError{Message: msg, Err: err})
			}
		}
		return
	}

	if p.onSuccess != nil {
		for _, msg := range batch {
			p.onSuccess(msg)
		}
	}
}

// retry with delay RetryDelay * 2^attempt, fatal broker errors stop early
func (p *AsyncProducer) writeWithRetry(batch []kafka.Message) error {
	var err error
	for attempt := 0; attempt < p.cfg.RetryLimit; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.WriteTimeout)
		err = p.writer.WriteMessages(ctx, batch...)
		cancel()
		if err == nil {
			return nil
		}
		if isFatal(err) {
			return err
		}
		if attempt < p.cfg.RetryLimit-1 {
			time.Sleep(p.cfg.RetryDelay * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("write %d messages after %d attempts: %w", len(batch), p.cfg.RetryLimit, err)
}

// Close stops accepting messages, waits up to waitTime for the buffer to be
// drained and closes the writer.
func (p *AsyncProducer) Close(waitTime time.Duration) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.msgCh)
	stopped := p.stopped
	p.mu.Unlock()

	var err error
	select {
	case <-stopped:
	case <-time.After(waitTime):
		err = ErrCloseTimeout
	}
	return errors.Join(err, p.writer.Close())
}
