package bus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
)

func TestTryPublishDropsWhenFull(t *testing.T) {
	q := NewTickQueue(2)

	require.NoError(t, q.TryPublish(model.Tick{Code: "KRW-BTC"}))
	require.NoError(t, q.TryPublish(model.Tick{Code: "KRW-ETH"}))
	require.ErrorIs(t, q.TryPublish(model.Tick{Code: "KRW-XRP"}), ErrQueueFull)
}

func TestRunConsumesInOrder(t *testing.T) {
	q := NewTickQueue(4)
	require.NoError(t, q.TryPublish(model.Tick{Code: "KRW-BTC", TradePrice: decimal.NewFromInt(1)}))
	require.NoError(t, q.TryPublish(model.Tick{Code: "KRW-BTC", TradePrice: decimal.NewFromInt(2)}))
	q.Close()

	var got []int64
	q.Run(t.Context(), func(tick model.Tick) {
		got = append(got, tick.TradePrice.IntPart())
	})

	assert.Equal(t, []int64{1, 2}, got)
}

func TestPublishAfterCloseFails(t *testing.T) {
	q := NewTickQueue(1)
	q.Close()

	require.ErrorIs(t, q.TryPublish(model.Tick{}), ErrQueueClosed)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	q := NewTickQueue(1)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(ctx, func(model.Tick) {})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not stop on cancel")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	q := NewTickQueue(1)
	q.Close()
	q.Close()
}

func TestCloseDuringPublishBurst(t *testing.T) {
	q := NewTickQueue(1)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if err := q.TryPublish(model.Tick{Code: "KRW-BTC"}); errors.Is(err, ErrQueueClosed) {
					return
				}
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.Close()
	wg.Wait()

	require.ErrorIs(t, q.TryPublish(model.Tick{}), ErrQueueClosed)
}
