package repository

import (
	"context"
	"fmt"

	bookingserrors "turfbook/internal/bookings/errors"
	migrations "turfbook/internal/migrations/mongo"
	"turfbook/pkg/config"
	"turfbook/pkg/db"
	mongoutil "turfbook/pkg/db/mongo"
	"turfbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var bookingSort = bson.D{
	{Key: "booking_date", Value: 1},
	{Key: "time_slot", Value: 1},
	{Key: "created_at", Value: 1},
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// NewMongoBookingRepository expects the partial unique slot index created by
// the migration job; without it Create cannot detect a taken slot.
func NewMongoBookingRepository(cfg *config.Config, database *mongo.Database) BookingRepository {
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: database.Collection(migrations.BookingsCollection),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		if mongoutil.IsDuplicateKey(err) {
			return bookingserrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var booking model.Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		if mongoutil.IsNoDocuments(err) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) FindByTurf(ctx context.Context, turfID string) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"turf_id": turfID})
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bookingSort))
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// FindByOwner joins bookings to the owner's turfs with $lookup.
func (r *mongoBookingRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: migrations.TurfsCollection},
			{Key: "localField", Value: "turf_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "turf"},
		}}},
		{{Key: "$match", Value: bson.M{"turf.owner_id": ownerID}}},
		{{Key: "$project", Value: bson.M{"turf": 0}}},
		{{Key: "$sort", Value: bookingSort}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate owner bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": model.StatusConfirmed}
	update := bson.M{"$set": bson.M{"status": model.StatusCanceled}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !mongoutil.IsNoDocuments(err) {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, bookingserrors.ErrAlreadyCanceled
}

func (r *mongoBookingRepository) CountByTurf(ctx context.Context, turfID string) (int64, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"turf_id": turfID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}
