package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"StockPulse/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"CHAT_ID"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
	DataSource struct {
		Provider    string  `yaml:"provider" envconfig:"PROVIDER"` // yahoo, finance-go or mock
		BaseURL     string  `yaml:"base_url" envconfig:"BASE_URL"`
		Concurrency int     `yaml:"concurrency" envconfig:"CONCURRENCY"`
		RateLimit   float64 `yaml:"rate_limit" envconfig:"RATE_LIMIT"` // requests per second, 0 = unlimited
	} `yaml:"data_source" envconfig:"DATA_SOURCE"`
	Watchlist struct {
		Symbols   []string `yaml:"symbols" envconfig:"SYMBOLS"`
		StateFile string   `yaml:"state_file" envconfig:"STATE_FILE"`
	} `yaml:"watchlist" envconfig:"WATCHLIST"`
	Trend struct {
		// Tolerance applied to the upper Bollinger band; required.
		Tolerance float64 `yaml:"tolerance" envconfig:"TOLERANCE"`
		Timeframe string  `yaml:"timeframe" envconfig:"TIMEFRAME"`
	} `yaml:"trend" envconfig:"TREND"`
	Movers struct {
		TopN int `yaml:"top_n" envconfig:"TOP_N"`
	} `yaml:"movers" envconfig:"MOVERS"`
	Upload struct {
		SymbolColumn string   `yaml:"symbol_column" envconfig:"SYMBOL_COLUMN"`
		SheetHosts   []string `yaml:"sheet_hosts" envconfig:"SHEET_HOSTS"`
	} `yaml:"upload" envconfig:"UPLOAD"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron" envconfig:"SCAN_CRON"`
	} `yaml:"schedule" envconfig:"SCHEDULE"`
	Server struct {
		Addr string `yaml:"addr" envconfig:"ADDR"`
	} `yaml:"server" envconfig:"SERVER"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database" envconfig:"DATABASE"`
	Log struct {
		Level  string `yaml:"level" envconfig:"LEVEL"`
		Pretty bool   `yaml:"pretty" envconfig:"PRETTY"`
	} `yaml:"log" envconfig:"LOG"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then a .env file, then applies environment
// variable overrides such as TREND_TOLERANCE or DATA_SOURCE_PROVIDER.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Concurrency == 0 {
		cfg.DataSource.Concurrency = 4
	}
	if len(cfg.Watchlist.Symbols) == 0 {
		cfg.Watchlist.Symbols = []string{"RELIANCE.NS", "INFY.NS", "TCS.NS", "HDFCBANK.NS"}
	}
	if cfg.Watchlist.StateFile == "" {
		cfg.Watchlist.StateFile = "data/watchlist.json"
	}
	if cfg.Trend.Timeframe == "" {
		cfg.Trend.Timeframe = "1 Month"
	}
	if cfg.Movers.TopN == 0 {
		cfg.Movers.TopN = 5
	}
	if cfg.Upload.SymbolColumn == "" {
		cfg.Upload.SymbolColumn = "Symbol"
	}
	if len(cfg.Upload.SheetHosts) == 0 {
		cfg.Upload.SheetHosts = []string{"docs.google.com"}
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 */15 9-15 * * 1-5"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Trend.Tolerance <= 0 {
		return fmt.Errorf("trend.tolerance is required and must be positive (e.g. 1.0 or 0.98)")
	}
	if c.Trend.Tolerance > 1.5 {
		return fmt.Errorf("trend.tolerance %.2f is out of range", c.Trend.Tolerance)
	}
	switch c.DataSource.Provider {
	case "yahoo", "finance-go", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, finance-go, mock", c.DataSource.Provider)
	}
	if c.DataSource.Concurrency < 1 {
		return fmt.Errorf("data_source.concurrency must be positive")
	}
	if c.DataSource.RateLimit < 0 {
		return fmt.Errorf("data_source.rate_limit must not be negative")
	}
	if c.Movers.TopN < 1 {
		return fmt.Errorf("movers.top_n must be positive")
	}
	if _, err := model.LookupTimeframe(c.Trend.Timeframe); err != nil {
		return fmt.Errorf("trend.timeframe: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether Telegram delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// DefaultTimeframe returns the configured timeframe.
func (c *Config) DefaultTimeframe() model.Timeframe {
	tf, err := model.LookupTimeframe(c.Trend.Timeframe)
	if err != nil {
		return model.Timeframes[3]
	}
	return tf
}
