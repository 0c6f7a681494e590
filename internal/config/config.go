package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the service configuration. Values come from the environment,
// optionally seeded from a YAML file named by CONFIG_PATH.
type Config struct {
	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8080"`
	DataDir  string `yaml:"data_dir" env:"DATA_DIR" env-default:"./data"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`

	PrivatBankURL string `yaml:"privatbank_url" env:"PRIVATBANK_URL" env-default:"https://api.privatbank.ua/p24api/pubinfo?exchange&coursid=5"`
	MonoBankURL   string `yaml:"monobank_url" env:"MONOBANK_URL" env-default:"https://api.monobank.ua/bank/currency"`

	FetchInterval time.Duration `yaml:"fetch_interval" env:"FETCH_INTERVAL" env-default:"1h"`
	RetryAttempts uint64        `yaml:"retry_attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	RetryBackoff  time.Duration `yaml:"retry_backoff" env:"RETRY_BACKOFF" env-default:"5s"`
}

// MustLoad reads the configuration or exits the process
func MustLoad() *Config {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			log.Fatalf("failed to read config file %s: %v", path, err)
		}
		return &cfg
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to read config from environment: %v", err)
	}

	return &cfg
}
