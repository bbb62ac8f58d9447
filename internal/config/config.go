package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Service struct {
	Environment  string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort      string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host         string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
	WebhookToken string `envconfig:"ALMA_WEBHOOK_TOKEN"`
}

type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

type Consumer struct {
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

// Shift holds the default analytics parameters. They are passed explicitly
// into the engine per query so concurrent queries with different windows
// never share state.
type Shift struct {
	StartTime        string  `envconfig:"SHIFT_START_TIME" default:"07:00"`
	EndTime          string  `envconfig:"SHIFT_END_TIME" default:"15:00"`
	ThresholdMinutes float64 `envconfig:"SHIFT_THRESHOLD_MINUTES" default:"30"`
	ActivityPreset   string  `envconfig:"SHIFT_ACTIVITY_PRESET" default:"operativa"`
	EventQueryLimit  int     `envconfig:"SHIFT_EVENT_QUERY_LIMIT" default:"10000"`
}

// AlmaDB holds the credentials for the direct ALMA SQL Server sync.
// The connector stays in "pending configuration" state until all
// required fields are provided by the warehouse software vendor.
type AlmaDB struct {
	Host     string `envconfig:"ALMA_DB_HOST"`
	Port     string `envconfig:"ALMA_DB_PORT" default:"1433"`
	User     string `envconfig:"ALMA_DB_USER"`
	Password string `envconfig:"ALMA_DB_PASSWORD"`
	Database string `envconfig:"ALMA_DB_NAME"`
}

// Configured reports whether every required sync credential is present.
func (a AlmaDB) Configured() bool {
	return a.Host != "" && a.User != "" && a.Password != "" && a.Database != ""
}

// MissingFields returns the names of unset required sync credentials.
func (a AlmaDB) MissingFields() []string {
	var missing []string
	if a.Host == "" {
		missing = append(missing, "ALMA_DB_HOST")
	}
	if a.User == "" {
		missing = append(missing, "ALMA_DB_USER")
	}
	if a.Password == "" {
		missing = append(missing, "ALMA_DB_PASSWORD")
	}
	if a.Database == "" {
		missing = append(missing, "ALMA_DB_NAME")
	}
	return missing
}

type Config struct {
	Service    Service
	ClickHouse ClickHouse
	SQS        SQS
	Consumer   Consumer
	Shift      Shift
	AlmaDB     AlmaDB
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
