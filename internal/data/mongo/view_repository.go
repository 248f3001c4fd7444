// Package mongo provides the MongoDB implementation of the view record
// store. View records are append-heavy, non-authoritative markers, so they
// live outside the transactional Postgres store.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finflow-payment-approval/internal/domain/view"
)

const (
	// ViewCollectionName is the name of the view record collection in MongoDB
	ViewCollectionName = "payment_views"
)

// ViewRepository implements the view.Repository interface for MongoDB
type ViewRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewViewRepository creates a new MongoDB view record repository
func NewViewRepository(logger *slog.Logger, db *mongo.Database) view.Repository {
	return &ViewRepository{
		db:     db,
		logger: logger,
	}
}

// Append stores one view record. Repeat calls for the same (payment, user)
// pair insert additional records; idempotency is semantic, not structural.
func (r *ViewRepository) Append(ctx context.Context, record *view.Record) error {
	collection := r.db.Collection(ViewCollectionName)

	_, err := collection.InsertOne(ctx, record)
	if err != nil {
		r.logger.Error("Failed to append view record",
			"payment_id", record.PaymentID,
			"user_id", record.UserID,
			"error", err)
		return fmt.Errorf("failed to append view record: %w", err)
	}

	return nil
}

// ListByPaymentID returns every view record for a payment, oldest first
func (r *ViewRepository) ListByPaymentID(ctx context.Context, paymentID int64) ([]*view.Record, error) {
	collection := r.db.Collection(ViewCollectionName)

	filter := bson.M{"payment_id": paymentID}
	opts := options.Find().SetSort(bson.D{{Key: "viewed_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list view records", "payment_id", paymentID, "error", err)
		return nil, fmt.Errorf("failed to list view records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*view.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode view records", "payment_id", paymentID, "error", err)
		return nil, fmt.Errorf("failed to decode view records: %w", err)
	}

	return records, nil
}

// LatestByUser returns the most recent view time per user for a payment
func (r *ViewRepository) LatestByUser(ctx context.Context, paymentID int64) (map[int64]time.Time, error) {
	collection := r.db.Collection(ViewCollectionName)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"payment_id": paymentID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":       "$user_id",
			"viewed_at": bson.M{"$max": "$viewed_at"},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate latest views", "payment_id", paymentID, "error", err)
		return nil, fmt.Errorf("failed to aggregate latest views: %w", err)
	}
	defer cursor.Close(ctx)

	latest := make(map[int64]time.Time)
	for cursor.Next(ctx) {
		var row struct {
			UserID   int64     `bson:"_id"`
			ViewedAt time.Time `bson:"viewed_at"`
		}
		if err := cursor.Decode(&row); err != nil {
			r.logger.Error("Failed to decode latest view row", "payment_id", paymentID, "error", err)
			return nil, fmt.Errorf("failed to decode latest view row: %w", err)
		}
		latest[row.UserID] = row.ViewedAt
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over latest views: %w", err)
	}

	return latest, nil
}
