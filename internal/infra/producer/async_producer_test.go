package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	mock_producer "github.com/RoyceAzure/lab/storefront/internal/infra/producer/mock"
	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() Config {
	return Config{
		Brokers:       []string{"localhost:9092"},
		Topic:         "test",
		BatchSize:     10,
		BufferSize:    1000,
		FlushInterval: 20 * time.Millisecond,
		RetryLimit:    3,
		RetryDelay:    time.Millisecond,
	}
}

func generateTestMessages(n int) []kafka.Message {
	msgs := make([]kafka.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(fmt.Sprintf("key-%d", i)),
			Value: []byte(fmt.Sprintf("message %d", i)),
		})
	}
	return msgs
}

type collector struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (c *collector) add(msgs ...kafka.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msgs...)
}

func (c *collector) keys() map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make(map[string]struct{}, len(c.msgs))
	for _, m := range c.msgs {
		res[string(m.Key)] = struct{}{}
	}
	return res
}

func TestNewAsyncProducerInvalidParameter(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)

	_, err := NewAsyncProducer(writer, Config{Topic: "test"}, nil)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewAsyncProducer(writer, Config{Brokers: []string{"localhost:9092"}}, nil)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestAsyncProducerDeliversAllMessages(t *testing.T) {
	testCases := []struct {
		name     string
		testMsgs int
	}{
		{name: "less than one batch", testMsgs: 3},
		{name: "several batches", testMsgs: 95},
		{name: "big data", testMsgs: 2000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			writer := mock_producer.NewMockWriter(ctrl)

			written := &collector{}
			succeeded := &collector{}
			writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, msgs ...kafka.Message) error {
					written.add(msgs...)
					return nil
				}).AnyTimes()
			writer.EXPECT().Close().Return(nil).Times(1)

			p, err := NewAsyncProducer(writer, testConfig(), nil, WithSuccessHandler(func(m kafka.Message) {
				succeeded.add(m)
			}))
			require.NoError(t, err)
			p.Start()

			msgs := generateTestMessages(tc.testMsgs)
			require.NoError(t, p.Produce(context.Background(), msgs...))
			require.NoError(t, p.Close(5*time.Second))

			require.Len(t, written.keys(), tc.testMsgs)
			require.Len(t, succeeded.keys(), tc.testMsgs)
		})
	}
}

func TestAsyncProducerWaitsForRoomWhenBufferFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)

	written := &collector{}
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, msgs ...kafka.Message) error {
			// 寫得比 Produce 慢, buffer 一定會滿
			time.Sleep(time.Millisecond)
			written.add(msgs...)
			return nil
		}).AnyTimes()
	writer.EXPECT().Close().Return(nil)

	cfg := testConfig()
	cfg.BufferSize = 2
	cfg.BatchSize = 5
	p, err := NewAsyncProducer(writer, cfg, nil)
	require.NoError(t, err)
	p.Start()

	require.NoError(t, p.Produce(context.Background(), generateTestMessages(200)...))
	require.NoError(t, p.Close(5*time.Second))
	require.Len(t, written.keys(), 200)
}

func TestAsyncProducerGivesUpWhenContextEnds(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)

	release := make(chan struct{})
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, msgs ...kafka.Message) error {
			<-release
			return nil
		}).AnyTimes()
	writer.EXPECT().Close().Return(nil)

	cfg := testConfig()
	cfg.BufferSize = 1
	cfg.BatchSize = 1
	p, err := NewAsyncProducer(writer, cfg, nil)
	require.NoError(t, err)
	p.Start()

	// 第一則被 run 取走卡在 writer, 第二則填滿 buffer, 第三則等不到位置
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = p.Produce(ctx, generateTestMessages(3)...)
	require.ErrorIs(t, err, ErrBufferFull)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, p.Close(5*time.Second))
}

func TestAsyncProducerRetriesTemporaryErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)

	var mu sync.Mutex
	attempts := 0
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, msgs ...kafka.Message) error {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			if attempts < 3 {
				return errors.New("temporary failed")
			}
			return nil
		}).Times(3)
	writer.EXPECT().Close().Return(nil)

	failed := &collector{}
	p, err := NewAsyncProducer(writer, testConfig(), nil, WithFailureHandler(func(pe ProducerError) {
		failed.add(pe.Message)
	}))
	require.NoError(t, err)
	p.Start()

	require.NoError(t, p.Produce(context.Background(), generateTestMessages(1)...))
	require.NoError(t, p.Close(5*time.Second))
	require.Empty(t, failed.keys())
}

func TestAsyncProducerFatalErrorStopsRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)

	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(kafka.TopicAuthorizationFailed).Times(1)
	writer.EXPECT().Close().Return(nil)

	cfg := testConfig()
	cfg.FlushInterval = time.Minute

	failed := &collector{}
	var errs []error
	p, err := NewAsyncProducer(writer, cfg, nil, WithFailureHandler(func(pe ProducerError) {
		errs = append(errs, pe.Err)
		failed.add(pe.Message)
	}))
	require.NoError(t, err)
	p.Start()

	require.NoError(t, p.Produce(context.Background(), generateTestMessages(2)...))
	require.NoError(t, p.Close(5*time.Second))
	require.Len(t, failed.keys(), 2)
	for _, e := range errs {
		require.ErrorIs(t, e, kafka.TopicAuthorizationFailed)
	}
}

func TestAsyncProducerRejectsAfterClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	writer.EXPECT().Close().Return(nil)

	p, err := NewAsyncProducer(writer, testConfig(), nil)
	require.NoError(t, err)

	require.ErrorIs(t, p.Produce(context.Background(), generateTestMessages(1)...), ErrProducerClosed)

	p.Start()
	require.NoError(t, p.Close(time.Second))
	require.NoError(t, p.Close(time.Second))
	require.ErrorIs(t, p.Produce(context.Background(), generateTestMessages(1)...), ErrProducerClosed)
}

func TestCheckoutEventPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)

	written := &collector{}
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, msgs ...kafka.Message) error {
			written.add(msgs...)
			return nil
		}).AnyTimes()
	writer.EXPECT().Close().Return(nil)

	p, err := NewAsyncProducer(writer, testConfig(), nil)
	require.NoError(t, err)
	p.Start()

	publisher := NewCheckoutEventPublisher(p)
	checkout := &model.Checkout{
		PaymentID:     "pay-1",
		CustomerLink:  42,
		State:         model.CheckoutCompleted,
		DeclaredTotal: decimal.NewFromInt(20),
		CartCleared:   true,
		Lines: []model.CheckoutLine{
			{PaymentID: "pay-1", LineNo: 1, ProductLink: 7, Quantity: 2, Price: decimal.NewFromInt(10), OrderID: 11, StockOutcome: model.StockOutcomeDecremented},
		},
	}
	require.NoError(t, publisher.PublishCheckout(context.Background(), checkout))

	// 非事件狀態不發送
	checkout.State = model.CheckoutStockAdjusted
	require.NoError(t, publisher.PublishCheckout(context.Background(), checkout))

	require.NoError(t, p.Close(5*time.Second))

	written.mu.Lock()
	defer written.mu.Unlock()
	require.Len(t, written.msgs, 1)
	msg := written.msgs[0]
	require.Equal(t, "pay-1", string(msg.Key))
	require.Equal(t, eventTypeHeader, msg.Headers[0].Key)
	require.Equal(t, string(CheckoutCompletedEvent), string(msg.Headers[0].Value))

	var event CheckoutEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	require.Equal(t, "pay-1", event.AggregateID)
	require.Equal(t, int64(42), event.CustomerID)
	require.Len(t, event.Lines, 1)
	require.Equal(t, model.StockOutcomeDecremented, event.Lines[0].Stock)
	require.True(t, event.Lines[0].Price.Equal(decimal.NewFromInt(10)))
}
