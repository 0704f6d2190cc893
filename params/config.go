package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Server struct {
	Port    int
	DataDir string
}

type Queue struct {
	// MaxConcurrentOrders bounds how many orders execute simultaneously.
	MaxConcurrentOrders int
	// OrdersPerMinute is the admission ceiling over a rolling one-minute
	// window. Jobs over the ceiling wait, they are never rejected.
	OrdersPerMinute int
	// MaxRetries is the total attempt budget per order. The executor's
	// per-order retry counter and the scheduler's per-job attempts are
	// aligned to this single value.
	MaxRetries int
	// BackoffBase is the first retry delay; subsequent delays double.
	BackoffBase time.Duration
}

// Delay is a [Min, Max] range for simulated venue latency.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

// Venue holds the simulation parameters for one liquidity venue.
type Venue struct {
	Name         string
	VarianceMin  float64 // price variance band around the shared base price
	VarianceMax  float64
	Fee          float64 // fee fraction taken off gross output
	LiquidityMin float64 // liquidity depth sampling range
	LiquidityMax float64
}

type Dex struct {
	QuoteDelay     Delay
	ExecutionDelay Delay
	BasePrice      float64
	Venues         []Venue
}

type Config struct {
	Server Server
	Queue  Queue
	Dex    Dex
}

func Default() Config {
	return Config{
		Server: Server{
			Port:    3000,
			DataDir: "data",
		},
		Queue: Queue{
			MaxConcurrentOrders: 10,
			OrdersPerMinute:     100,
			MaxRetries:          3,
			BackoffBase:         2 * time.Second,
		},
		Dex: Dex{
			QuoteDelay:     Delay{Min: 150 * time.Millisecond, Max: 300 * time.Millisecond},
			ExecutionDelay: Delay{Min: 2 * time.Second, Max: 3 * time.Second},
			BasePrice:      1.0,
			Venues: []Venue{
				{Name: "raydium", VarianceMin: 0.98, VarianceMax: 1.02, Fee: 0.003, LiquidityMin: 100000, LiquidityMax: 500000},
				{Name: "meteora", VarianceMin: 0.97, VarianceMax: 1.03, Fee: 0.002, LiquidityMin: 80000, LiquidityMax: 450000},
			},
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.Server.DataDir = dir
	}

	if v := os.Getenv("MAX_CONCURRENT_ORDERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Queue.MaxConcurrentOrders = n
		}
	}
	if v := os.Getenv("ORDERS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Queue.OrdersPerMinute = n
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Queue.MaxRetries = n
		}
	}
	if v := os.Getenv("RETRY_BACKOFF_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Queue.BackoffBase = time.Duration(ms) * time.Millisecond
		}
	}

	if v := os.Getenv("DEX_QUOTE_DELAY_MIN_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Dex.QuoteDelay.Min = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("DEX_QUOTE_DELAY_MAX_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Dex.QuoteDelay.Max = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("DEX_EXECUTION_DELAY_MIN_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Dex.ExecutionDelay.Min = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("DEX_EXECUTION_DELAY_MAX_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Dex.ExecutionDelay.Max = time.Duration(ms) * time.Millisecond
		}
	}

	return cfg
}
