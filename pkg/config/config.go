package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"recolhe/pkg/logger"
)

type Config struct {
	Port     string
	LogLevel string

	LedgerBackend string
	LedgerPath    string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Timezone string
	Location *time.Location

	DailyLimit        int
	SearchHorizonDays int

	CollectionDays    []CollectionDay
	CollectionPeriods []string

	SessionTTL time.Duration

	WhatsAppAppSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		Port:     getEnvStr(EnvPort, DefaultPort),
		LogLevel: getEnvStr(EnvLogLevel, DefaultLogLevel),

		LedgerBackend: getEnvStr(EnvLedgerBackend, DefaultLedgerBackend),
		LedgerPath:    getEnvStr(EnvLedgerPath, DefaultLedgerPath),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Timezone: getEnvStr(EnvTimezone, DefaultTimezone),

		DailyLimit:        getEnvNum(EnvDailyLimit, DefaultDailyLimit),
		SearchHorizonDays: getEnvNum(EnvSearchHorizonDays, DefaultSearchHorizonDays),

		CollectionDays:    DefaultCollectionDays,
		CollectionPeriods: DefaultCollectionPeriods,

		SessionTTL: getEnvDuration(EnvSessionTTL, DefaultSessionTTL),

		WhatsAppAppSecret: getEnvStr(EnvWhatsAppAppSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		cfg.Log.Fatal("Failed to load timezone", "timezone", cfg.Timezone, "error", err)
	}
	cfg.Location = loc

	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.LedgerBackend != LedgerBackendFile && cfg.LedgerBackend != LedgerBackendMongo {
		errors = append(errors, fmt.Sprintf("LedgerBackend must be %q or %q, got: %s", LedgerBackendFile, LedgerBackendMongo, cfg.LedgerBackend))
	}

	if cfg.LedgerBackend == LedgerBackendFile && cfg.LedgerPath == "" {
		errors = append(errors, "LedgerPath cannot be empty for the file backend")
	}

	if cfg.LedgerBackend == LedgerBackendMongo {
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty for the mongo backend")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty for the mongo backend")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	}

	if cfg.DailyLimit <= 0 {
		errors = append(errors, fmt.Sprintf("DailyLimit must be positive, got: %d", cfg.DailyLimit))
	}
	if cfg.SearchHorizonDays <= 0 {
		errors = append(errors, fmt.Sprintf("SearchHorizonDays must be positive, got: %d", cfg.SearchHorizonDays))
	}
	if len(cfg.CollectionDays) == 0 {
		errors = append(errors, "CollectionDays cannot be empty")
	}
	if len(cfg.CollectionPeriods) == 0 {
		errors = append(errors, "CollectionPeriods cannot be empty")
	}

	if cfg.SessionTTL < 0 {
		errors = append(errors, fmt.Sprintf("SessionTTL cannot be negative, got: %s", cfg.SessionTTL))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	dayNames := make([]string, 0, len(cfg.CollectionDays))
	for _, day := range cfg.CollectionDays {
		dayNames = append(dayNames, day.Name)
	}

	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"ledger_backend", cfg.LedgerBackend,
		"ledger_path", cfg.LedgerPath,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"timezone", cfg.Timezone,
		"daily_limit", cfg.DailyLimit,
		"search_horizon_days", cfg.SearchHorizonDays,
		"collection_days", dayNames,
		"collection_periods", cfg.CollectionPeriods,
		"session_ttl", cfg.SessionTTL,
		"whatsapp_secret_set", cfg.WhatsAppAppSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
