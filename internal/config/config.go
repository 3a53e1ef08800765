package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"fuel-receipts/internal/logging"
	"fuel-receipts/internal/receipts"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	Server     ServerConfig     `mapstructure:"server"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Generation GenerationConfig `mapstructure:"generation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Export     ExportConfig     `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"`
}

// ProviderConfig covers the historical fuel price API.
type ProviderConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	HistoricalPath string        `mapstructure:"historical_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LookbackDays   int           `mapstructure:"lookback_days"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// GenerationConfig holds request defaults and synthesis bounds.
type GenerationConfig struct {
	FallbackRate decimal.Decimal    `mapstructure:"fallback_rate"`
	MaxAttempts  int                `mapstructure:"max_attempts"`
	MonthlyCap   decimal.Decimal    `mapstructure:"monthly_cap"`
	MinAmount    decimal.Decimal    `mapstructure:"min_amount"`
	MaxAmount    decimal.Decimal    `mapstructure:"max_amount"`
	Location     string             `mapstructure:"location"`
	TelNo        string             `mapstructure:"tel_no"`
	Stations     []receipts.Station `mapstructure:"stations"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// ArchiveConfig governs the periodic price archive refresh.
type ArchiveConfig struct {
	Enabled         bool           `mapstructure:"enabled"`
	Interval        time.Duration  `mapstructure:"interval"`
	StartupDelay    time.Duration  `mapstructure:"startup_delay"`
	Locations       []string       `mapstructure:"locations"`
	APIKey          string         `mapstructure:"api_key"`
	Concurrency     int            `mapstructure:"concurrency"`
	AdvisoryLockKey int64          `mapstructure:"advisory_lock_key"`
	Telegram        TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes where archive alerts are sent.
type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int    `mapstructure:"max_data_points"`
	OutputDir     string `mapstructure:"output_dir"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FUELRECEIPTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "fuelreceipts")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.mode", "release")

	v.SetDefault("provider.base_url", "https://fuel.indianapi.in")
	v.SetDefault("provider.historical_path", "/historical_fuel_price")
	v.SetDefault("provider.request_timeout", "15s")
	v.SetDefault("provider.lookback_days", 400)

	v.SetDefault("generation.fallback_rate", "94.72")
	v.SetDefault("generation.max_attempts", 100)
	v.SetDefault("generation.monthly_cap", "25000")
	v.SetDefault("generation.min_amount", "3000")
	v.SetDefault("generation.max_amount", "7000")
	v.SetDefault("generation.location", "delhi")
	v.SetDefault("generation.tel_no", "1503339")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.ping_timeout", "5s")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.interval", "24h")
	v.SetDefault("archive.startup_delay", "0s")
	v.SetDefault("archive.locations", []string{"delhi"})
	v.SetDefault("archive.concurrency", 4)
	v.SetDefault("archive.advisory_lock_key", int64(0x6675656c))
	v.SetDefault("archive.telegram.enabled", false)
	v.SetDefault("archive.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("archive.telegram.timeout", "10s")

	v.SetDefault("export.max_data_points", 100000)
	v.SetDefault("export.output_dir", ".")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			stringToDecimalHookFunc(),
		)
	}
}

// stringToDecimalHookFunc lets money values be written as strings or numbers.
func stringToDecimalHookFunc() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(decimal.Decimal{}) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(v))
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case float64:
			return decimal.NewFromFloat(v), nil
		}
		return data, nil
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Provider.RequestTimeout <= 0 {
		return fmt.Errorf("provider.request_timeout must be greater than zero")
	}
	if c.Provider.LookbackDays <= 0 {
		return fmt.Errorf("provider.lookback_days must be greater than zero")
	}
	if !c.Generation.FallbackRate.IsPositive() {
		return fmt.Errorf("generation.fallback_rate must be greater than zero")
	}
	if c.Generation.MaxAttempts <= 0 {
		return fmt.Errorf("generation.max_attempts must be greater than zero")
	}
	for i, st := range c.Generation.Stations {
		if strings.TrimSpace(st.Name) == "" {
			return fmt.Errorf("generation.stations[%d].name must be set", i)
		}
	}
	if c.Archive.Enabled {
		if c.Archive.Interval <= 0 {
			return fmt.Errorf("archive.interval must be greater than zero")
		}
		if len(c.Archive.Locations) == 0 {
			return fmt.Errorf("archive.locations must not be empty")
		}
		if c.Archive.APIKey == "" {
			return fmt.Errorf("archive.api_key is required when archive is enabled")
		}
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required when archive is enabled")
		}
	}
	if c.Archive.Telegram.Enabled {
		if c.Archive.Telegram.BotToken == "" {
			return fmt.Errorf("archive.telegram.bot_token must be set")
		}
		if c.Archive.Telegram.ChatID == "" {
			return fmt.Errorf("archive.telegram.chat_id must be set")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}

// Catalog returns configured stations, or the built-in list when none are set.
func (c *Config) Catalog() []receipts.Station {
	if len(c.Generation.Stations) == 0 {
		return receipts.DefaultCatalog()
	}
	out := make([]receipts.Station, len(c.Generation.Stations))
	copy(out, c.Generation.Stations)
	return out
}
