package config

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Загрузка конфигурации из config.yaml через cleanenv

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	CoinMarketCap CoinMarketCapConfig `yaml:"coinmarketcap"`
	Cache         CacheConfig         `yaml:"cache"`
	Query         QueryConfig         `yaml:"query"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	Telegram      TelegramConfig      `yaml:"telegram"`
	Logger        LoggerConfig        `yaml:"logger"`
}

type ServerConfig struct {
	Enabled         bool          `yaml:"enabled" env:"HTTP_ENABLED" env-default:"true"`
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled" env-default:"true"`
	Interval time.Duration `yaml:"interval" env:"REFRESH_INTERVAL" env-default:"15m"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"` // debug|info|warn|error
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"` // text|json
}

type CoinMarketCapConfig struct {
	BaseURL      string        `yaml:"base_url" env:"CMC_BASE_URL" env-default:"https://api.coinmarketcap.com"`
	ImageBaseURL string        `yaml:"image_base_url" env:"CMC_IMAGE_BASE_URL" env-default:"https://files.coinmarketcap.com"`
	PageURL      string        `yaml:"page_url" env-default:"https://coinmarketcap.com/currencies/"`
	Timeout      time.Duration `yaml:"timeout" env-default:"30s"`
	UserAgent    string        `yaml:"user_agent" env-default:"coin-ticker-service/1.0"`
	Locale       string        `yaml:"locale" env:"CMC_LOCALE" env-default:"en"`
}

type CacheConfig struct {
	Root        string        `yaml:"root" env:"CACHE_ROOT"` // пусто - os.UserCacheDir()
	Namespace   string        `yaml:"namespace" env-default:"coinmarketcap"`
	Workers     int           `yaml:"workers" env-default:"40"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
	DefaultIcon string        `yaml:"default_icon" env:"DEFAULT_ICON" env-default:"emblem-money.svg"`
}

type QueryConfig struct {
	Trigger  string `yaml:"trigger" env-default:"cmc "`
	MaxItems int    `yaml:"max_items" env-default:"50"` // 0 - без ограничения
}

type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled" env:"POSTGRES_ENABLED" env-default:"false"`
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DBName          string        `yaml:"dbname" env:"POSTGRES_DB" env-default:"coins"`
	SSLMode         string        `yaml:"sslmode" env-default:"disable"`
	Timeout         time.Duration `yaml:"timeout" env-default:"5s"`
	MaxConns        int32         `yaml:"max_conns" env-default:"4"`
	MinConns        int32         `yaml:"min_conns" env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"30m"`
}

type TelegramConfig struct {
	Enabled         bool          `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
	Token           string        `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	LongPollTimeout time.Duration `yaml:"long_poll_timeout" env-default:"10s"`
	MaxItems        int           `yaml:"max_items" env-default:"10"`
}

// CacheDir - каталог иконок: <root>/<namespace>
func (c CacheConfig) CacheDir() (string, error) {
	root := c.Root
	if root == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		root = dir
	}
	return filepath.Join(root, c.Namespace), nil
}

// LoadConfig - читает конфиг из файла (если путь задан), затем из переменных окружения.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// Read from environment variables
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FetchConfigPath - путь из флага -c либо из CONFIG_PATH
func FetchConfigPath() string {
	var res string
	flag.StringVar(&res, "c", "", "config file path")
	flag.Parse()
	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
