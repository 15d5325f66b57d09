package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr         string
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		// предел на запрос целиком, включая транзакцию в базе
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN            string
		MaxConns       int32         `mapstructure:"max_conns"`
		ConnectRetries uint64        `mapstructure:"connect_retries"`
		QueryTimeout   time.Duration `mapstructure:"query_timeout"`
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	// Telegram опционален: без токена уведомления о малых остатках не шлются
	Telegram struct {
		Token       string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
	} `mapstructure:"telegram"`

	Inventory struct {
		LowStockThreshold float64 `mapstructure:"low_stock_threshold"`
		AllowNegative     bool    `mapstructure:"allow_negative"`
	} `mapstructure:"inventory"`
}

func Load(path string) (Config, error) {
	// .env не обязателен
	_ = gotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	// APP_POSTGRES_DSN -> postgres.dsn
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.request_timeout", 15*time.Second)
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.connect_retries", 5)
	v.SetDefault("postgres.query_timeout", 5*time.Second)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("inventory.low_stock_threshold", 0)
	v.SetDefault("inventory.allow_negative", true)
	// ключи без дефолта не видны AutomaticEnv при Unmarshal
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		errs = append(errs, errors.New("postgres.dsn is required"))
	}
	if c.Postgres.QueryTimeout <= 0 {
		errs = append(errs, errors.New("postgres.query_timeout must be > 0"))
	}
	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, errors.New("http.request_timeout must be > 0"))
	}
	if c.Postgres.MaxConns <= 0 {
		errs = append(errs, errors.New("postgres.max_conns must be > 0"))
	}
	if c.Inventory.LowStockThreshold < 0 {
		errs = append(errs, errors.New("inventory.low_stock_threshold must be >= 0"))
	}
	if c.Telegram.Token != "" && c.Telegram.AdminChatID == 0 {
		errs = append(errs, errors.New("telegram.admin_chat_id is required when telegram.token is set"))
	}
	return errors.Join(errs...)
}

func (c Config) IsDev() bool { return c.App.Env == "dev" }
