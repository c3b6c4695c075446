package state

import (
	"fmt"
	"sync"
	"time"

	"main/internal/model"
)

// AppState is a point-in-time view of everything the engine knows.
// Maps and slices inside a snapshot are shared between snapshots and
// must never be mutated in place; every change goes through a Store
// update that installs freshly-built values.
type AppState struct {
	IsShutdown  bool
	MarketIDs   []string
	Candles     map[string][]model.Candle
	LastTicks   map[string]model.Tick
	Accounts    map[string]model.Account
	LastBuyTime map[string]time.Time
	LogMessages []string
}

const defaultLogCap = 256

// Store holds the authoritative AppState behind one reader/writer
// guard. Writers compute a new value for exactly one field and install
// it while holding the lock, so readers never observe a torn field.
type Store struct {
	mu     sync.RWMutex
	state  AppState
	logCap int
}

func NewStore() *Store {
	return &Store{
		state: AppState{
			MarketIDs:   []string{},
			Candles:     map[string][]model.Candle{},
			LastTicks:   map[string]model.Tick{},
			Accounts:    map[string]model.Account{},
			LastBuyTime: map[string]time.Time{},
			LogMessages: []string{},
		},
		logCap: defaultLogCap,
	}
}

// Snapshot returns the current AppState by cheap shared reference.
func (s *Store) Snapshot() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) IsShutdown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsShutdown
}

func (s *Store) SetShutdown(shutdown bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsShutdown = shutdown
}

func (s *Store) MarketIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.MarketIDs
}

func (s *Store) SetMarketIDs(marketIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.MarketIDs = marketIDs
}

func (s *Store) UpdateMarketIDs(transform func(ids []string) []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.MarketIDs = transform(s.state.MarketIDs)
}

func (s *Store) Candles() map[string][]model.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Candles
}

// UpdateCandles installs the transform result as the new candle map.
// The transform must treat its argument as read-only and return a new
// map when it changes anything.
func (s *Store) UpdateCandles(transform func(candles map[string][]model.Candle) map[string][]model.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Candles = transform(s.state.Candles)
}

// PutCandles replaces one market's candle history.
func (s *Store) PutCandles(marketID string, candles []model.Candle) {
	s.UpdateCandles(func(prev map[string][]model.Candle) map[string][]model.Candle {
		next := make(map[string][]model.Candle, len(prev)+1)
		for id, history := range prev {
			next[id] = history
		}
		next[marketID] = candles
		return next
	})
}

func (s *Store) LastTicks() map[string]model.Tick {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LastTicks
}

func (s *Store) UpdateLastTicks(transform func(ticks map[string]model.Tick) map[string]model.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastTicks = transform(s.state.LastTicks)
}

// PutTick replaces the retained tick for one market.
func (s *Store) PutTick(tick model.Tick) {
	s.UpdateLastTicks(func(prev map[string]model.Tick) map[string]model.Tick {
		next := make(map[string]model.Tick, len(prev)+1)
		for code, t := range prev {
			next[code] = t
		}
		next[tick.Code] = tick
		return next
	})
}

func (s *Store) Accounts() map[string]model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Accounts
}

func (s *Store) SetAccounts(accounts map[string]model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Accounts = accounts
}

// UpdateAccounts atomically replaces the accounts map with the
// transform result. A transform error leaves the current map installed,
// so ledger validation and mutation happen under one lock window.
func (s *Store) UpdateAccounts(transform func(accounts map[string]model.Account) (map[string]model.Account, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := transform(s.state.Accounts)
	if err != nil {
		return err
	}

	s.state.Accounts = next
	return nil
}

func (s *Store) LastBuyTimes() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LastBuyTime
}

// SetLastBuyTime records when a market was last bought.
func (s *Store) SetLastBuyTime(marketID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]time.Time, len(s.state.LastBuyTime)+1)
	for id, t := range s.state.LastBuyTime {
		next[id] = t
	}
	next[marketID] = at
	s.state.LastBuyTime = next
}

func (s *Store) LogMessages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LogMessages
}

// AppendLog prepends one line to the capped log ring, newest first.
func (s *Store) AppendLog(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.LogMessages
	keep := len(prev)
	if keep >= s.logCap {
		keep = s.logCap - 1
	}

	next := make([]string, 0, keep+1)
	next = append(next, line)
	next = append(next, prev[:keep]...)
	s.state.LogMessages = next
}

// Logf formats one operational line into the log ring.
func (s *Store) Logf(format string, args ...any) {
	s.AppendLog(fmt.Sprintf(format, args...))
}

// FlushLogs clears the log ring.
func (s *Store) FlushLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LogMessages = []string{}
}
