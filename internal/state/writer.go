package state

import (
	"context"
	"strings"

	"main/pkg/exception"
)

const writerQueueCap = 512

type writerMsg struct {
	line  string
	flush bool
}

// Writer adapts the Store's log ring into an io.Writer so any log sink
// can be pointed at the dashboard. Lines are handed off to a background
// goroutine; a full queue rejects the write instead of blocking the
// logging caller.
type Writer struct {
	store *Store
	queue chan writerMsg
}

func NewWriter(ctx context.Context, store *Store) *Writer {
	w := &Writer{
		store: store,
		queue: make(chan writerMsg, writerQueueCap),
	}

	go w.run(ctx)
	return w
}

func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-w.queue:
			if msg.flush {
				w.store.FlushLogs()
				continue
			}
			w.store.AppendLog(msg.line)
		}
	}
}

func (w *Writer) Write(p []byte) (int, error) {
	line := strings.TrimSpace(string(p))
	if line == "" {
		return len(p), nil
	}

	select {
	case w.queue <- writerMsg{line: line}:
		return len(p), nil
	default:
		return 0, exception.ErrLogQueueFull
	}
}

// Flush schedules a log ring clear.
func (w *Writer) Flush() error {
	select {
	case w.queue <- writerMsg{flush: true}:
		return nil
	default:
		return exception.ErrLogQueueFull
	}
}
