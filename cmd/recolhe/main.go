package main

import (
	"context"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/mongo"

	"recolhe/internal/agenda/events"
	agendahandler "recolhe/internal/agenda/handler"
	"recolhe/internal/agenda/repository"
	"recolhe/internal/agenda/service"
	"recolhe/internal/agenda/validator"
	"recolhe/internal/dialog"
	dialoghandler "recolhe/internal/dialog/handler"
	"recolhe/internal/dialog/session"
	"recolhe/pkg/app"
	"recolhe/pkg/config"
	"recolhe/pkg/kafka"
	kafka_config "recolhe/pkg/kafka/config"
)

const serviceName = "recolhe"

func main() {
	cfg := config.Load(serviceName)
	log := cfg.Log
	log.Info("Starting collection scheduling service")

	application := app.NewApplication(cfg)

	ledgerRepo, readiness := initLedger(cfg, application)
	publisher := initPublisher(cfg, application)

	appointmentValidator := validator.NewAppointmentValidator(cfg.CollectionPeriods, log)
	agendaService := service.NewAgendaService(ledgerRepo, appointmentValidator, publisher, cfg)

	sessions := session.NewInMemoryStore(cfg.SessionTTL)
	application.OnShutdown("session store", sessions.Stop)
	if cfg.SessionTTL > 0 {
		log.Info("Session expiry enabled", "ttl", cfg.SessionTTL)
	}

	engine := dialog.NewEngine(agendaService, sessions, cfg)

	application.SetApp(
		agendahandler.NewHealthHandler(readiness, log),
		dialoghandler.NewWebhookHandler(engine, log),
		agendahandler.NewAppointmentHandler(agendaService, log),
	)
	application.Run()
}

func initLedger(cfg *config.Config, application *app.Application) (repository.LedgerRepository, agendahandler.ReadinessCheck) {
	log := cfg.Log

	if cfg.LedgerBackend == config.LedgerBackendMongo {
		client, err := repository.ConnectMongo(cfg.MongoURI, cfg.MongoConnTimeout)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		log.Info("Successfully connected to MongoDB")

		application.OnShutdown("mongo client", func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("Failed to disconnect from MongoDB", "error", err)
			}
		})

		return repository.NewMongoLedgerRepository(client, cfg.MongoDatabaseName, log), mongoReadiness(client)
	}

	log.Info("Using file ledger", "path", cfg.LedgerPath)
	return repository.NewFileLedgerRepository(cfg.LedgerPath, log), fileReadiness(cfg.LedgerPath)
}

func mongoReadiness(client *mongo.Client) agendahandler.ReadinessCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}
}

// fileReadiness verifies the ledger directory exists, since the atomic
// replace on save needs to create a temp file next to the ledger.
func fileReadiness(path string) agendahandler.ReadinessCheck {
	return func(ctx context.Context) error {
		_, err := os.Stat(filepath.Dir(path))
		return err
	}
}

func initPublisher(cfg *config.Config, application *app.Application) service.EventPublisher {
	log := cfg.Log

	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.Enabled() {
		log.Info("Kafka publishing disabled, no brokers configured")
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg)
	if err != nil {
		log.Fatal("Failed to create Kafka producer", "error", err)
	}
	log.Info("Kafka producer initialized", "topic", kafkaCfg.Topic, "brokers", kafkaCfg.Brokers)

	application.OnShutdown("kafka producer", func() {
		if err := producer.Close(); err != nil {
			log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	return events.NewKafkaPublisher(producer, serviceName)
}
