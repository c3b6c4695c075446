package exchange

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"main/internal/model"
)

// StreamTicks opens one websocket connection, subscribes to the given
// markets and forwards every tick. Malformed frames are logged and
// skipped; a closed connection ends the returned channel. The stream
// does not resubscribe on its own, callers re-invoke with the new
// market set. The returned stop releases the subscription and unblocks
// any delivery still in flight.
func (c *Client) StreamTicks(ctx context.Context, marketIDs []string) (<-chan model.Tick, func(), error) {
	wss := ws.New(ctx, c.wsURL)
	if err := wss.Start(ctx); err != nil {
		return nil, nil, errors.Wrap(err, "start tick stream")
	}

	payload := []any{
		map[string]string{"ticket": uuid.NewString()},
		map[string]any{"type": "ticker", "codes": marketIDs},
	}
	if err := wss.WriteJSON(payload); err != nil {
		wss.Close()
		return nil, nil, errors.Wrap(err, "subscribe tick stream").With("markets", marketIDs)
	}

	ch, cancel := wss.Subscribe()
	out := make(chan model.Tick)
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			cancel()
			wss.Close()
		})
	}

	go func() {
		defer close(out)
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case <-done:
				return
			case m, ok := <-ch:
				if !ok {
					return
				}

				tick, ok := ws.ReadMessage[model.Tick](m)
				if !ok || tick.Type != "ticker" {
					logs.Warnf("skip malformed tick frame")
					continue
				}

				if !deliver(ctx, done, out, tick) {
					return
				}
			}
		}
	}()

	return out, stop, nil
}

// deliver blocks until the tick is accepted, the stream is stopped or
// the context ends.
func deliver(ctx context.Context, done <-chan struct{}, out chan<- model.Tick, tick model.Tick) bool {
	select {
	case out <- tick:
		return true
	case <-ctx.Done():
		return false
	case <-done:
		return false
	}
}
