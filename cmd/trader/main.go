package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	osignal "os/signal"
	"strconv"
	"sync"
	"syscall"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/exchange"
	"main/internal/exchange/simulate"
	"main/internal/model"
	"main/internal/noti"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/signal"
	"main/internal/state"
	"main/internal/updater"
	"main/pkg/limiter"
)

func main() {
	if err := run(); err != nil {
		log.Printf("trader: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config")
	flag.Parse()

	ctx, stop := osignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		return err
	}

	if stopProfiler := startProfiling(loaded.Profiling); stopProfiler != nil {
		defer stopProfiler()
	}

	store := state.NewStore()
	metrics := obs.NewMetrics()
	log.SetOutput(io.MultiWriter(os.Stderr, state.NewWriter(ctx, store)))

	svc := buildService(loaded, store)
	sender, err := buildSender(loaded.Telegram)
	if err != nil {
		return err
	}

	cfg := signal.Config{
		QuoteCurrency: loaded.QuoteCurrency,
		BuyPrice:      loaded.BuyPrice,
		MinPrice:      loaded.MinPrice,
		FeeFactor:     loaded.FeeFactor,
		VolumeFactor:  loaded.VolumeFactor,
		VolumeGate:    loaded.VolumeGate,
		ShortWindow:   loaded.ShortWindow,
		LongWindow:    loaded.LongWindow,
		Cooldown:      loaded.Cooldown,
	}
	buyer := signal.NewBuyer(svc, store, sender, metrics, cfg)
	seller := signal.NewSeller(svc, store, sender, metrics, cfg)
	queue := bus.NewTickQueue(loaded.TickQueueCapacity)

	var wg sync.WaitGroup
	runLoop := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	runLoop(updater.NewMarkets(svc, store, loaded.QuoteCurrency, loaded.MarketRefresh).Run)
	runLoop(updater.NewCandles(svc, store, metrics, loaded.CandleUnit, loaded.CandleCount).Run)
	runLoop(updater.NewAccounts(svc, store).Run)
	runLoop(updater.NewTicker(svc, store, queue, metrics).Run)

	logs.Infof("trader started, quote: %s, simulate: %t", loaded.QuoteCurrency, loaded.Simulate)
	queue.Run(ctx, func(model.Tick) {
		snap := store.Snapshot()
		seller.Process(ctx, snap)
		buyer.Process(ctx, snap)
	})

	store.SetShutdown(true)
	// publishers must be gone before the queue channel closes
	wg.Wait()
	queue.Close()
	logs.Info("trader stopped")
	return nil
}

func buildService(loaded ops.Loaded, store *state.Store) exchange.Service {
	var svc exchange.Service = exchange.New(
		loaded.Credentials.AccessKey,
		loaded.Credentials.SecretKey,
		limiter.New(loaded.Quotas),
	)
	if loaded.Simulate {
		svc = simulate.NewWithSeed(loaded.SimulateSeed, svc, store, loaded.QuoteCurrency, loaded.FeeFactor)
	}
	return svc
}

func buildSender(cfg ops.TelegramConfig) (noti.Sender, error) {
	if cfg.Token == "" {
		return noti.Discard{}, nil
	}
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse telegram chat id").With("chatId", cfg.ChatID)
	}
	return noti.NewTelegram(cfg.Token, chatID), nil
}

func startProfiling(cfg ops.ProfilingConfig) func() {
	if !cfg.Enabled {
		return nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "upbit/trader",
		ServerAddress:   cfg.ServerAddress,
		Logger:          emptyLogger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		logs.Errorf("start profiler, err: %+v", err)
		return nil
	}
	return func() {
		_ = profiler.Stop()
	}
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
