package obs

import "sync/atomic"

// Metrics collects lightweight counters for the background loops and
// the order path. All methods are safe for concurrent use and safe on a
// nil receiver so wiring stays optional in tests.
type Metrics struct {
	ticksConsumed  atomic.Uint64
	streamRestarts atomic.Uint64
	candleSweeps   atomic.Uint64
	ordersPlaced   atomic.Uint64
	orderFailures  atomic.Uint64
	queueDrops     atomic.Uint64
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	TicksConsumed  uint64
	StreamRestarts uint64
	CandleSweeps   uint64
	OrdersPlaced   uint64
	OrderFailures  uint64
	QueueDrops     uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) AddTick() {
	if m != nil {
		m.ticksConsumed.Add(1)
	}
}

func (m *Metrics) AddStreamRestart() {
	if m != nil {
		m.streamRestarts.Add(1)
	}
}

func (m *Metrics) AddCandleSweep() {
	if m != nil {
		m.candleSweeps.Add(1)
	}
}

func (m *Metrics) AddOrderPlaced() {
	if m != nil {
		m.ordersPlaced.Add(1)
	}
}

func (m *Metrics) AddOrderFailure() {
	if m != nil {
		m.orderFailures.Add(1)
	}
}

func (m *Metrics) AddQueueDrop() {
	if m != nil {
		m.queueDrops.Add(1)
	}
}

func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		TicksConsumed:  m.ticksConsumed.Load(),
		StreamRestarts: m.streamRestarts.Load(),
		CandleSweeps:   m.candleSweeps.Load(),
		OrdersPlaced:   m.ordersPlaced.Load(),
		OrderFailures:  m.orderFailures.Load(),
		QueueDrops:     m.queueDrops.Load(),
	}
}
