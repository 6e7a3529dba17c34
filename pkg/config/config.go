package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/emailam/Petzania-sub000/pkg/utils"
)

type Config struct {
	Env       string    `yaml:"env" env:"ENV" env-default:"local"`
	Postgres  PG        `yaml:"postgres"`
	Kafka     Kafka     `yaml:"kafka"`
	Redis     Redis     `yaml:"redis"`
	Outbox    Outbox    `yaml:"outbox"`
	Publisher Publisher `yaml:"publisher"`
}

type PG struct {
	URL string `yaml:"url" env:"DB_URL"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	GroupID string   `yaml:"group_id" env:"KAFKA_GROUP_ID"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Outbox struct {
	RelayInterval   time.Duration `yaml:"relay_interval" env:"OUTBOX_RELAY_INTERVAL" env-default:"5m"`
	BatchSize       int           `yaml:"batch_size" env:"OUTBOX_BATCH_SIZE" env-default:"100"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"OUTBOX_CLEANUP_INTERVAL" env-default:"24h"`
	Retention       time.Duration `yaml:"retention" env:"OUTBOX_RETENTION" env-default:"168h"`
}

type Publisher struct {
	MaxAttempts    int           `yaml:"max_attempts" env:"PUBLISH_MAX_ATTEMPTS" env-default:"3"`
	BackoffBase    time.Duration `yaml:"backoff_base" env:"PUBLISH_BACKOFF_BASE" env-default:"1s"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout" env:"PUBLISH_ATTEMPT_TIMEOUT" env-default:"2s"`
}

func MustLoad() *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exists: %v\n", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return &cfg
}
