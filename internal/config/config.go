package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-playground/validator/v10"
	"github.com/shiftledger/shiftledger/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment     DeploymentConfig     `validate:"required"`
	Server         ServerConfig         `validate:"required"`
	Logging        LoggingConfig        `validate:"required"`
	Postgres       PostgresConfig       `validate:"required"`
	ClickHouse     ClickHouseConfig     `validate:"required"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Sentry         SentryConfig         `mapstructure:"sentry"`
	Billing        BillingConfig        `validate:"required"`
	Ingestion      IngestionConfig      `validate:"required"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Source         SourceConfig         `mapstructure:"source"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `validate:"required"`
	Port                   int    `validate:"required"`
	User                   string `validate:"required"`
	Password               string
	DBName                 string `validate:"required"`
	SSLMode                string `default:"disable"`
	MaxOpenConns           int    `default:"20"`
	MaxIdleConns           int    `default:"10"`
	ConnMaxLifetimeMinutes int    `default:"30"`
}

type ClickHouseConfig struct {
	Address  string `validate:"required"`
	TLS      bool
	Username string
	Password string
	Database string `validate:"required"`
}

type CacheConfig struct {
	Enabled bool `default:"true"`
}

type SentryConfig struct {
	Enabled     bool    `default:"false"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" default:"1.0"`
}

// BillingConfig drives billing period generation. Periods are anchored to a
// fixed weekday and span exactly 14 days; 26 of them cover a fiscal year.
type BillingConfig struct {
	AnchorWeekday  time.Weekday `mapstructure:"anchor_weekday"`
	PeriodDays     int          `mapstructure:"period_days" default:"14" validate:"required"`
	PeriodsPerYear int          `mapstructure:"periods_per_year" default:"26" validate:"required"`
}

// IngestionConfig bounds how batch runs fetch from the scheduling API.
// MaxFetchWindowDays is the documented upstream query limit; requested
// ranges are decomposed into SubwindowDays-sized chronological windows.
type IngestionConfig struct {
	MaxFetchWindowDays int `mapstructure:"max_fetch_window_days" default:"31" validate:"required"`
	SubwindowDays      int `mapstructure:"subwindow_days" default:"7" validate:"required"`
	RegionParallelism  int `mapstructure:"region_parallelism" default:"4" validate:"required"`
	SourceMaxRetries   int `mapstructure:"source_max_retries" default:"5"`
}

// SourceConfig locates the upstream data exports consumed by the file-based
// source. The live API client is a separate deployable.
type SourceConfig struct {
	Dir string `mapstructure:"dir" default:"./data"`
}

type ReconciliationConfig struct {
	// RevisionSuffixPattern strips trailing revision letters from document
	// ids before ledger lookups, e.g. "10234A" matches ledger row "10234".
	RevisionSuffixPattern string `mapstructure:"revision_suffix_pattern" default:"[A-Za-z]+$"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shiftledger")

	v.SetEnvPrefix("SHIFTLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopenconns", 20)
	v.SetDefault("postgres.maxidleconns", 10)
	v.SetDefault("postgres.connmaxlifetimeminutes", 30)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("billing.anchor_weekday", int(time.Sunday))
	v.SetDefault("billing.period_days", 14)
	v.SetDefault("billing.periods_per_year", 26)
	v.SetDefault("ingestion.max_fetch_window_days", 31)
	v.SetDefault("ingestion.subwindow_days", 7)
	v.SetDefault("ingestion.region_parallelism", 4)
	v.SetDefault("ingestion.source_max_retries", 5)
	v.SetDefault("reconciliation.revision_suffix_pattern", "[A-Za-z]+$")
	v.SetDefault("source.dir", "./data")
	v.SetDefault("sentry.sample_rate", 1.0)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Ingestion.SubwindowDays > c.Ingestion.MaxFetchWindowDays {
		return fmt.Errorf("ingestion subwindow (%d days) exceeds the upstream fetch cap (%d days)",
			c.Ingestion.SubwindowDays, c.Ingestion.MaxFetchWindowDays)
	}
	return nil
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c ClickHouseConfig) GetClientOptions() *clickhouse.Options {
	options := &clickhouse.Options{
		Addr: []string{c.Address},
		Auth: clickhouse.Auth{
			Database: c.Database,
			Username: c.Username,
			Password: c.Password,
		},
	}

	if c.TLS {
		options.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return options
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Cache:      CacheConfig{Enabled: true},
		Billing: BillingConfig{
			AnchorWeekday:  time.Sunday,
			PeriodDays:     14,
			PeriodsPerYear: 26,
		},
		Ingestion: IngestionConfig{
			MaxFetchWindowDays: 31,
			SubwindowDays:      7,
			RegionParallelism:  4,
			SourceMaxRetries:   5,
		},
		Reconciliation: ReconciliationConfig{
			RevisionSuffixPattern: "[A-Za-z]+$",
		},
		Source: SourceConfig{Dir: "./data"},
	}
}
