package config

import "time"

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	LedgerBackendFile  = "file"
	LedgerBackendMongo = "mongo"

	DefaultLedgerBackend = LedgerBackendFile
	DefaultLedgerPath    = "agendamentos.json"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "recolhe"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultTimezone = "America/Sao_Paulo"

	DefaultDailyLimit        = 10
	DefaultSearchHorizonDays = 30

	// Sessions never expire unless a TTL is configured.
	DefaultSessionTTL = 0

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// CollectionDay names a weekday eligible for collection appointments.
type CollectionDay struct {
	Name    string
	Weekday time.Weekday
}

// DefaultCollectionDays is the weekly collection pattern. Exactly these
// weekdays are eligible collection days; every other day has zero capacity.
var DefaultCollectionDays = []CollectionDay{
	{Name: "segunda", Weekday: time.Monday},
	{Name: "quarta", Weekday: time.Wednesday},
	{Name: "sexta", Weekday: time.Friday},
}

// DefaultCollectionPeriods are the accepted day periods, in menu order.
var DefaultCollectionPeriods = []string{"manhã", "tarde", "noite"}
