package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"recolhe/pkg/logger"
	"recolhe/pkg/model"
)

const (
	CollectionName = "LedgerDays"

	mongoOpTimeout = 10 * time.Second
)

type ledgerDay struct {
	Date         string              `bson:"_id"`
	Appointments []model.Appointment `bson:"appointments"`
}

// mongoLedgerRepository keeps one document per date bucket but honors the
// same whole-ledger contract as the file backend: Load reads the full
// collection, Save replaces it as a unit.
type mongoLedgerRepository struct {
	collection *mongo.Collection
	log        *logger.Logger
}

func NewMongoLedgerRepository(client *mongo.Client, databaseName string, log *logger.Logger) LedgerRepository {
	return &mongoLedgerRepository{
		collection: client.Database(databaseName).Collection(CollectionName),
		log:        log,
	}
}

// ConnectMongo dials and pings the server; ledger storage is unusable
// without it, so failures are returned for the caller to treat as fatal.
func ConnectMongo(uri string, connTimeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

func (r *mongoLedgerRepository) Load(ctx context.Context) model.Ledger {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		r.log.Error("Failed to load ledger from mongo, treating as empty", "error", err)
		return model.Ledger{}
	}
	defer cursor.Close(ctx)

	var days []ledgerDay
	if err := cursor.All(ctx, &days); err != nil {
		r.log.Error("Failed to decode ledger from mongo, treating as empty", "error", err)
		return model.Ledger{}
	}

	ledger := model.Ledger{}
	for _, day := range days {
		ledger[day.Date] = day.Appointments
	}
	return ledger
}

// Save upserts every date bucket in one bulk write and only then prunes the
// buckets absent from the new ledger. At no point is the collection empty
// while appointments exist, so a crash mid-save or a concurrent Load never
// observes a torn ledger.
func (r *mongoLedgerRepository) Save(ctx context.Context, ledger model.Ledger) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	models, pruneFilter := ledgerWriteModels(ledger)

	if len(models) > 0 {
		if _, err := r.collection.BulkWrite(ctx, models); err != nil {
			return fmt.Errorf("failed to write ledger collection: %w", err)
		}
	}

	if _, err := r.collection.DeleteMany(ctx, pruneFilter); err != nil {
		return fmt.Errorf("failed to prune ledger collection: %w", err)
	}

	return nil
}

// ledgerWriteModels builds one ReplaceOne upsert per date bucket plus the
// filter deleting every bucket the new ledger no longer contains. An empty
// ledger yields no upserts and a prune filter matching everything.
func ledgerWriteModels(ledger model.Ledger) ([]mongo.WriteModel, bson.M) {
	dates := make([]string, 0, len(ledger))
	models := make([]mongo.WriteModel, 0, len(ledger))

	for date, appointments := range ledger {
		dates = append(dates, date)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": date}).
			SetReplacement(ledgerDay{Date: date, Appointments: appointments}).
			SetUpsert(true))
	}

	return models, bson.M{"_id": bson.M{"$nin": dates}}
}

func (r *mongoLedgerRepository) AppointmentsOn(ctx context.Context, date string) []model.Appointment {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var day ledgerDay
	err := r.collection.FindOne(ctx, bson.M{"_id": date}).Decode(&day)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			r.log.Error("Failed to read date bucket from mongo", "date", date, "error", err)
		}
		return []model.Appointment{}
	}

	if day.Appointments == nil {
		return []model.Appointment{}
	}
	return day.Appointments
}
