package ops

import (
	"encoding/json"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/internal/model/enum"
	"main/pkg/exception"
	"main/pkg/limiter"
)

const (
	_envAccessKey = "UPBIT_ACCESS_KEY"
	_envSecretKey = "UPBIT_SECRET_KEY"
)

// FileConfig mirrors the JSON config layout. Zero values fall back to
// the defaults in resolve, so a minimal file (or an empty one) runs the
// engine with the stock strategy parameters.
type FileConfig struct {
	QuoteCurrency        string          `json:"quoteCurrency"`
	BuyPrice             decimal.Decimal `json:"buyPrice"`
	MinPrice             decimal.Decimal `json:"minPrice"`
	FeeFactor            decimal.Decimal `json:"feeFactor"`
	VolumeFactor         decimal.Decimal `json:"volumeFactor"`
	VolumeGate           bool            `json:"volumeGate"`
	ShortWindow          int             `json:"shortWindow"`
	LongWindow           int             `json:"longWindow"`
	CooldownSeconds      int             `json:"cooldownSeconds"`
	CandleCount          int             `json:"candleCount"`
	CandleUnit           uint8           `json:"candleUnit"`
	MarketRefreshSeconds int             `json:"marketRefreshSeconds"`
	TickQueueCapacity    int             `json:"tickQueueCapacity"`
	Simulate             SimulateConfig  `json:"simulate"`
	Limits               LimitsConfig    `json:"limits"`
	Profiling            ProfilingConfig `json:"profiling"`
	Telegram             TelegramConfig  `json:"telegram"`
}

// SimulateConfig controls the dummy-ledger decorator.
type SimulateConfig struct {
	Enabled bool            `json:"enabled"`
	Seed    decimal.Decimal `json:"seed"`
}

// LimitsConfig overrides the per-group request quotas.
type LimitsConfig struct {
	Quotation *QuotaConfig `json:"quotation"`
	Account   *QuotaConfig `json:"account"`
	Order     *QuotaConfig `json:"order"`
}

// QuotaConfig is one group's raw request quota before the safety
// margin is applied.
type QuotaConfig struct {
	PerSecond int `json:"perSecond"`
	PerMinute int `json:"perMinute"`
}

// ProfilingConfig enables continuous profiling.
type ProfilingConfig struct {
	Enabled       bool   `json:"enabled"`
	ServerAddress string `json:"serverAddress"`
}

// TelegramConfig enables trade notifications.
type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID string `json:"chatId"`
}

// Credentials are the exchange API keys, taken from the environment
// rather than the config file.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Credentials       Credentials
	QuoteCurrency     string
	BuyPrice          decimal.Decimal
	MinPrice          decimal.Decimal
	FeeFactor         decimal.Decimal
	VolumeFactor      decimal.Decimal
	VolumeGate        bool
	ShortWindow       int
	LongWindow        int
	Cooldown          time.Duration
	CandleCount       int
	CandleUnit        enum.MinuteUnit
	MarketRefresh     time.Duration
	TickQueueCapacity int
	Simulate          bool
	SimulateSeed      decimal.Decimal
	Quotas            map[limiter.Group]limiter.Quota
	Profiling         ProfilingConfig
	Telegram          TelegramConfig
}

// Load reads a JSON config file, resolves defaults and pulls the API
// credentials from the environment. An empty path loads defaults only.
func Load(path string) (Loaded, error) {
	var cfg FileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Loaded{}, errors.Wrap(err, "read config").With("path", path)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Loaded{}, errors.Wrap(err, "parse config").With("path", path)
		}
	}

	creds, err := loadCredentials()
	if err != nil {
		return Loaded{}, err
	}

	return resolve(cfg, creds)
}

func loadCredentials() (Credentials, error) {
	creds := Credentials{
		AccessKey: os.Getenv(_envAccessKey),
		SecretKey: os.Getenv(_envSecretKey),
	}
	if creds.AccessKey == "" {
		return Credentials{}, errors.Wrap(exception.ErrInvalidArgument, "missing env "+_envAccessKey)
	}
	if creds.SecretKey == "" {
		return Credentials{}, errors.Wrap(exception.ErrInvalidArgument, "missing env "+_envSecretKey)
	}
	return creds, nil
}

func resolve(cfg FileConfig, creds Credentials) (Loaded, error) {
	loaded := Loaded{
		Credentials:       creds,
		QuoteCurrency:     cfg.QuoteCurrency,
		BuyPrice:          cfg.BuyPrice,
		MinPrice:          cfg.MinPrice,
		FeeFactor:         cfg.FeeFactor,
		VolumeFactor:      cfg.VolumeFactor,
		VolumeGate:        cfg.VolumeGate,
		ShortWindow:       cfg.ShortWindow,
		LongWindow:        cfg.LongWindow,
		Cooldown:          time.Duration(cfg.CooldownSeconds) * time.Second,
		CandleCount:       cfg.CandleCount,
		CandleUnit:        enum.MinuteUnit(cfg.CandleUnit),
		MarketRefresh:     time.Duration(cfg.MarketRefreshSeconds) * time.Second,
		TickQueueCapacity: cfg.TickQueueCapacity,
		Simulate:          cfg.Simulate.Enabled,
		SimulateSeed:      cfg.Simulate.Seed,
		Quotas:            resolveQuotas(cfg.Limits),
		Profiling:         cfg.Profiling,
		Telegram:          cfg.Telegram,
	}

	if loaded.QuoteCurrency == "" {
		loaded.QuoteCurrency = "KRW"
	}
	if loaded.BuyPrice.IsZero() {
		loaded.BuyPrice = decimal.NewFromInt(100_000)
	}
	if loaded.MinPrice.IsZero() {
		loaded.MinPrice = decimal.NewFromInt(1_000)
	}
	if loaded.FeeFactor.IsZero() {
		loaded.FeeFactor = decimal.NewFromFloat(0.0005)
	}
	if loaded.VolumeFactor.IsZero() {
		loaded.VolumeFactor = decimal.NewFromFloat(2.0)
	}
	if loaded.ShortWindow <= 0 {
		loaded.ShortWindow = 5
	}
	if loaded.LongWindow <= 0 {
		loaded.LongWindow = 20
	}
	if loaded.Cooldown <= 0 {
		loaded.Cooldown = time.Minute
	}
	if loaded.CandleCount <= 0 {
		loaded.CandleCount = 200
	}
	if cfg.CandleUnit == 0 {
		loaded.CandleUnit = enum.Minute1
	}
	if loaded.MarketRefresh <= 0 {
		loaded.MarketRefresh = time.Minute
	}
	if loaded.TickQueueCapacity <= 0 {
		loaded.TickQueueCapacity = 1024
	}
	if loaded.SimulateSeed.IsZero() {
		loaded.SimulateSeed = decimal.NewFromInt(1_000_000)
	}

	if loaded.ShortWindow >= loaded.LongWindow {
		return Loaded{}, errors.Wrap(exception.ErrInvalidArgument, "short window must be below long window").
			With("short", loaded.ShortWindow).
			With("long", loaded.LongWindow)
	}
	if !loaded.CandleUnit.IsAvailable() {
		return Loaded{}, errors.Wrap(exception.ErrInvalidArgument, "unsupported candle unit").
			With("unit", cfg.CandleUnit)
	}
	if loaded.Telegram.Token != "" && loaded.Telegram.ChatID == "" {
		return Loaded{}, errors.Wrap(exception.ErrInvalidArgument, "telegram chatId is required with a token")
	}

	return loaded, nil
}

func resolveQuotas(cfg LimitsConfig) map[limiter.Group]limiter.Quota {
	quotas := limiter.DefaultQuotas()
	for group, override := range map[limiter.Group]*QuotaConfig{
		limiter.GroupQuotation: cfg.Quotation,
		limiter.GroupAccount:   cfg.Account,
		limiter.GroupOrder:     cfg.Order,
	} {
		if override == nil {
			continue
		}
		quotas[group] = limiter.Quota{
			PerSecond: override.PerSecond,
			PerMinute: override.PerMinute,
		}
	}
	return quotas
}
