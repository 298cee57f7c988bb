package repository

import (
	"context"
	"errors"
	"fmt"
	propertieserrors "rentals/internal/properties/errors"
	"rentals/pkg/config"
	mongotx "rentals/pkg/db/mongo"
	"rentals/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Properties"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *model.Property) error
	FindByID(ctx context.Context, id string) (*model.Property, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Property, error)
	Count(ctx context.Context) (int64, error)
	FindByOwner(ctx context.Context, owner string, limit int, offset int64) ([]*model.Property, error)
	CountByOwner(ctx context.Context, owner string) (int64, error)
	ListIDsByOwner(ctx context.Context, owner string) ([]string, error)
	UpdateDetails(ctx context.Context, id string, update *model.PropertyUpdate, now time.Time) (*model.Property, error)
	Delete(ctx context.Context, id string) error

	// MarkBooked points the property at bookingID if it is free or already
	// points there. Any other state returns ErrNotAvailable.
	MarkBooked(ctx context.Context, id string, bookingID string, userID string, now time.Time) (*model.Property, error)
	// ReleaseIfActive frees the property only while bookingID is its active booking.
	ReleaseIfActive(ctx context.Context, id string, bookingID string, now time.Time) (bool, error)
	Release(ctx context.Context, id string, now time.Time) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout leaves session contexts untouched so calls stay inside the transaction.
func (r *mongoPropertyRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.IsSessionContext(ctx) {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoPropertyRepository) Create(ctx context.Context, property *model.Property) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, property)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		property.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var property model.Property
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, propertieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	return &property, nil
}

func (r *mongoPropertyRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []*model.Property{}
	if err = cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}

	return properties, nil
}

func (r *mongoPropertyRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

func (r *mongoPropertyRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Property, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *mongoPropertyRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *mongoPropertyRepository) FindByOwner(ctx context.Context, owner string, limit int, offset int64) ([]*model.Property, error) {
	return r.find(ctx, bson.M{"owner": owner}, limit, offset)
}

func (r *mongoPropertyRepository) CountByOwner(ctx context.Context, owner string) (int64, error) {
	return r.count(ctx, bson.M{"owner": owner})
}

func (r *mongoPropertyRepository) ListIDsByOwner(ctx context.Context, owner string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner properties: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode owner properties: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}

func (r *mongoPropertyRepository) UpdateDetails(ctx context.Context, id string, update *model.PropertyUpdate, now time.Time) (*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": now}
	unset := bson.M{}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		setOrUnset(set, unset, "description", *update.Description)
	}
	if update.City != nil {
		set["city"] = *update.City
	}
	if update.Address != nil {
		set["address"] = *update.Address
	}
	if update.PricePerNight != nil {
		set["price_per_night"] = *update.PricePerNight
	}
	if update.Bedrooms != nil {
		set["bedrooms"] = *update.Bedrooms
	}
	if update.ContactPhone != nil {
		setOrUnset(set, unset, "contact_phone", *update.ContactPhone)
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, doc, propertieserrors.ErrNotFound)
}

func setOrUnset(set, unset bson.M, field, value string) {
	if value == "" {
		unset[field] = ""
		return
	}
	set[field] = value
}

func (r *mongoPropertyRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	if result.DeletedCount == 0 {
		return propertieserrors.ErrNotFound
	}

	return nil
}

func (r *mongoPropertyRepository) MarkBooked(ctx context.Context, id string, bookingID string, userID string, now time.Time) (*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id": oid,
		"$or": bson.A{
			bson.M{"active_booking": nil, "is_available": true},
			bson.M{"active_booking": bookingID},
		},
	}
	update := bson.M{"$set": bson.M{
		"is_available":   false,
		"booked_by":      userID,
		"active_booking": bookingID,
		"updated_at":     now,
	}}

	return r.findOneAndUpdate(ctx, filter, update, propertieserrors.ErrNotAvailable)
}

func (r *mongoPropertyRepository) ReleaseIfActive(ctx context.Context, id string, bookingID string, now time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return false, err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid, "active_booking": bookingID}, releaseUpdate(now))
	if err != nil {
		return false, fmt.Errorf("failed to release property: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *mongoPropertyRepository) Release(ctx context.Context, id string, now time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, releaseUpdate(now))
	if err != nil {
		return fmt.Errorf("failed to release property: %w", err)
	}
	if result.MatchedCount == 0 {
		return propertieserrors.ErrNotFound
	}
	return nil
}

func releaseUpdate(now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"is_available":   true,
		"booked_by":      nil,
		"active_booking": nil,
		"updated_at":     now,
	}}
}

func (r *mongoPropertyRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, missErr error) (*model.Property, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var property model.Property
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, missErr
		}
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	return &property, nil
}

func (r *mongoPropertyRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
