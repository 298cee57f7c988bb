// Package audit keeps the append-only trail of booking lifecycle events
// consumed from Kafka and serves it per booking.
package audit

import (
	"context"
	"fmt"

	"rentals/pkg/config"
	"rentals/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Booking_events"
)

type EventRepository interface {
	// Append stores event once. Redelivered events report inserted=false.
	Append(ctx context.Context, event *model.BookingEvent) (inserted bool, err error)
	FindByBooking(ctx context.Context, bookingID string, limit int, offset int64) ([]*model.BookingEvent, error)
	CountByBooking(ctx context.Context, bookingID string) (int64, error)
}

type mongoEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventRepository(cfg *config.Config) EventRepository {
	return &mongoEventRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoEventRepository) Append(ctx context.Context, event *model.BookingEvent) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": event.EventID},
		bson.M{"$setOnInsert": insertFields(event)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to append booking event: %w", err)
	}
	return result.UpsertedCount > 0, nil
}

func (r *mongoEventRepository) FindByBooking(ctx context.Context, bookingID string, limit int, offset int64) ([]*model.BookingEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}, {Key: "recorded_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bookingFilter(bookingID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*model.BookingEvent{}
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode booking events: %w", err)
	}
	return events, nil
}

func (r *mongoEventRepository) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bookingFilter(bookingID))
	if err != nil {
		return 0, fmt.Errorf("failed to count booking events: %w", err)
	}
	return count, nil
}

func bookingFilter(bookingID string) bson.M {
	return bson.M{"booking_id": bookingID}
}

// insertFields is every field of event except _id, which the upsert filter sets.
func insertFields(event *model.BookingEvent) bson.M {
	fields := bson.M{
		"type":        event.Type,
		"property_id": event.PropertyID,
		"actor_id":    event.ActorID,
		"occurred_at": event.OccurredAt,
		"recorded_at": event.RecordedAt,
	}
	if event.BookingID != "" {
		fields["booking_id"] = event.BookingID
	}
	if event.FromStatus != "" {
		fields["from_status"] = event.FromStatus
	}
	if event.ToStatus != "" {
		fields["to_status"] = event.ToStatus
	}
	if len(event.RejectedIDs) > 0 {
		fields["rejected_ids"] = event.RejectedIDs
	}
	return fields
}
