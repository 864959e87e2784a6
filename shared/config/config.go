package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// MonitorConfig controls the polling cycle and the ledger.
type MonitorConfig struct {
	PollCron             string  `mapstructure:"poll_cron"`
	HistoryCap           int     `mapstructure:"history_cap"`
	TrailingWindowHours  int     `mapstructure:"trailing_window_hours"`
	MinLiquidityUSD      float64 `mapstructure:"min_liquidity_usd"`
	FetchTimeoutSeconds  int     `mapstructure:"fetch_timeout_seconds"`
	EnrichTimeoutSeconds int     `mapstructure:"enrich_timeout_seconds"`
	RunOnStart           bool    `mapstructure:"run_on_start"`
}

// RiskConfig controls scoring weights and classification bands.
type RiskConfig struct {
	Profile   string `mapstructure:"profile"` // "hard" or "soft" honeypot weighting
	LowMax    int    `mapstructure:"low_max"`
	MediumMax int    `mapstructure:"medium_max"`
}

// AlertsConfig controls risk-alert deduplication.
type AlertsConfig struct {
	CooldownMinutes int `mapstructure:"cooldown_minutes"`
	RetentionHours  int `mapstructure:"retention_hours"`
}

// TelegramConfig carries the notification target.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config defines the global configuration structure.
type Config struct {
	App struct {
		Port        string `mapstructure:"port"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"app"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`

	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Telegram TelegramConfig `mapstructure:"telegram"`

	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
}

var (
	globalConfig *Config
	configLock   sync.RWMutex
)

// LoadConfig loads configuration from the specified file path and merges it
// with environment variables. A missing file is not fatal; defaults apply.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	viper.BindEnv("app.port", "PORT")
	viper.BindEnv("app.environment", "ENVIRONMENT")
	viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	viper.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("monitor.poll_cron", "POLL_CRON")
	viper.BindEnv("monitor.run_on_start", "RUN_ON_START")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.environment", "production")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("monitor.poll_cron", "@every 45s")
	viper.SetDefault("monitor.history_cap", 150)
	viper.SetDefault("monitor.trailing_window_hours", 24)
	viper.SetDefault("monitor.min_liquidity_usd", 5000.0)
	viper.SetDefault("monitor.fetch_timeout_seconds", 15)
	viper.SetDefault("monitor.enrich_timeout_seconds", 10)
	viper.SetDefault("risk.profile", "hard")
	viper.SetDefault("risk.low_max", 6)
	viper.SetDefault("risk.medium_max", 12)
	viper.SetDefault("alerts.cooldown_minutes", 60)
	viper.SetDefault("alerts.retention_hours", 24)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file %s: %v", path, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the monitoring engine cannot run with.
func (c *Config) Validate() error {
	if c.Monitor.HistoryCap <= 0 {
		return fmt.Errorf("monitor.history_cap must be positive, got %d", c.Monitor.HistoryCap)
	}
	if c.Monitor.TrailingWindowHours <= 0 {
		return fmt.Errorf("monitor.trailing_window_hours must be positive, got %d", c.Monitor.TrailingWindowHours)
	}
	if c.Risk.LowMax >= c.Risk.MediumMax {
		return fmt.Errorf("risk.low_max (%d) must be below risk.medium_max (%d)", c.Risk.LowMax, c.Risk.MediumMax)
	}
	if c.Risk.Profile != "hard" && c.Risk.Profile != "soft" {
		return fmt.Errorf("risk.profile must be \"hard\" or \"soft\", got %q", c.Risk.Profile)
	}
	if c.Alerts.CooldownMinutes <= 0 {
		return fmt.Errorf("alerts.cooldown_minutes must be positive, got %d", c.Alerts.CooldownMinutes)
	}
	return nil
}

// TrailingWindow returns the lookback window for the trailing return.
func (c *Config) TrailingWindow() time.Duration {
	return time.Duration(c.Monitor.TrailingWindowHours) * time.Hour
}

// CooldownWindow returns the minimum gap between identical risk alerts.
func (c *Config) CooldownWindow() time.Duration {
	return time.Duration(c.Alerts.CooldownMinutes) * time.Minute
}

// SetGlobalConfig sets the loaded configuration globally.
func SetGlobalConfig(cfg *Config) {
	configLock.Lock()
	defer configLock.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig retrieves the globally set configuration.
func GetGlobalConfig() *Config {
	configLock.RLock()
	defer configLock.RUnlock()
	return globalConfig
}
