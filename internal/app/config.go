package app

import (
	"time"

	"github.com/yungbote/bmu-faultfinder/internal/data/db"
	"github.com/yungbote/bmu-faultfinder/internal/observability"
	"github.com/yungbote/bmu-faultfinder/internal/platform/envutil"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

const (
	JobStoreMemory   = "memory"
	JobStoreSQLite   = db.DriverSQLite
	JobStorePostgres = db.DriverPostgres
)

type Config struct {
	ServiceName string
	Environment string
	Version     string

	Port            string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// CatalogStrict refuses to boot on an invalid embedded dataset.
	CatalogStrict bool

	JobStore string
	DB       db.Config

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisJobChannel string

	Tracing observability.TracingConfig
}

func LoadConfig(log *logger.Logger) Config {
	jobStore := envutil.String("JOBLOG_STORE", JobStoreMemory, log)
	serviceName := envutil.String("OTEL_SERVICE_NAME", observability.DefaultServiceName, log)
	environment := envutil.String("APP_ENV", "development", log)
	version := envutil.String("APP_VERSION", "dev", log)
	strict := envutil.Bool("CATALOG_STRICT", true, log)
	return Config{
		ServiceName: serviceName,
		Environment: environment,
		Version:     version,

		Port:            envutil.String("PORT", "3000", log),
		CORSOrigins:     envutil.List("CORS_ALLOW_ORIGINS", []string{"*"}, log),
		ReadTimeout:     envutil.Duration("HTTP_READ_TIMEOUT", 10*time.Second, log),
		WriteTimeout:    envutil.Duration("HTTP_WRITE_TIMEOUT", 15*time.Second, log),
		IdleTimeout:     envutil.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second, log),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 10*time.Second, log),

		CatalogStrict: strict,

		JobStore: jobStore,
		DB: db.Config{
			Driver:           jobStore,
			SQLitePath:       envutil.String("SQLITE_PATH", "bmu-faultfinder.db", log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "bmu_faultfinder", log),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", log),
		},

		RedisAddr:       envutil.String("REDIS_ADDR", "", log),
		RedisPassword:   envutil.String("REDIS_PASSWORD", "", log),
		RedisDB:         envutil.Int("REDIS_DB", 0, log),
		RedisJobChannel: envutil.String("REDIS_JOB_CHANNEL", "bmu-jobs", log),

		Tracing: observability.TracingConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: serviceName,
			Environment: environment,
			Version:     version,
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			Headers:     observability.ParseOTLPHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1, log),
			JobStore:    jobStore,
			Strict:      strict,
		},
	}
}

func (c Config) Addr() string { return ":" + c.Port }
