package config

import (
	"github.com/caarlos0/env/v11"
)

// Config holds everything not supplied on the command line. Run parameters
// (bucket, prefixes, sampling rate) are flags; deployment concerns live here.
type Config struct {
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"minio"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT"   envDefault:"localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL"    envDefault:"false"`

	LedgerPath string `env:"LEDGER_PATH" envDefault:"frame-sampler-ledger.txt"`
	LedgerDSN  string `env:"LEDGER_DSN"` // when set, the ledger lives in Postgres

	Sampler string `env:"SAMPLER" envDefault:"ffmpeg"` // ffmpeg | mpeg

	RabbitMQURL      string `env:"RABBITMQ_URL"` // optional status events
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"frames.sampler"`

	SMTPHost    string `env:"SMTP_HOST"    envDefault:"localhost"`
	SMTPPort    int    `env:"SMTP_PORT"    envDefault:"1025"`
	SMTPFrom    string `env:"SMTP_FROM"    envDefault:"noreply@cdmx-vision.local"`
	NotifyEmail string `env:"NOTIFY_EMAIL"` // optional mail on abandoned videos

	MetricsPort    int    `env:"METRICS_PORT"    envDefault:"8083"`
	JaegerEndpoint string `env:"JAEGER_ENDPOINT" envDefault:"http://localhost:4318/v1/traces"`
	LogLevel       string `env:"LOG_LEVEL"       envDefault:"info"`

	TempDir string `env:"TEMP_DIR" envDefault:"/tmp/frame-sampler"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
