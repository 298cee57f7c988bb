package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI         = "mongodb://localhost:27017"
	DefaultDatabaseName     = "rentals"
	ConnectionTimeout       = 10 * time.Second
	PropertiesCollection    = "Properties"
	BookingsCollection      = "Bookings"
	BookingEventsCollection = "Booking_events"
)

// MongoHelper gives tests direct access to the service database.
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
		DBName:   dbName,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanData removes documents but keeps the migrated collections, validators and indexes.
func (m *MongoHelper) CleanData(t *testing.T) {
	t.Helper()
	for _, name := range []string{PropertiesCollection, BookingsCollection, BookingEventsCollection} {
		m.CleanCollection(t, name)
	}
}

func (m *MongoHelper) CleanCollection(t *testing.T, collectionName string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(collectionName).DeleteMany(ctx, bson.M{}); err != nil {
		t.Fatalf("failed to clean collection %s: %v", collectionName, err)
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// EndBooking moves a booking's end date into the past so the owner can reset availability.
func (m *MongoHelper) EndBooking(t *testing.T, bookingID string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		t.Fatalf("invalid booking id %q: %v", bookingID, err)
	}

	ended := time.Now().UTC().Add(-time.Hour)
	update := bson.M{"$set": bson.M{"start_date": ended.Add(-24 * time.Hour), "end_date": ended}}
	res, err := m.Database.Collection(BookingsCollection).UpdateByID(ctx, oid, update)
	if err != nil {
		t.Fatalf("failed to end booking %s: %v", bookingID, err)
	}
	if res.MatchedCount != 1 {
		t.Fatalf("booking %s not found", bookingID)
	}
}
