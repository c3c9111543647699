package repository

import (
	"context"
	"fmt"

	turfserrors "turfbook/internal/turfs/errors"
	migrations "turfbook/internal/migrations/mongo"
	"turfbook/pkg/config"
	"turfbook/pkg/db"
	mongoutil "turfbook/pkg/db/mongo"
	"turfbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTurfRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTurfRepository(cfg *config.Config, database *mongo.Database) TurfRepository {
	return &mongoTurfRepository{
		cfg:        cfg,
		collection: database.Collection(migrations.TurfsCollection),
	}
}

func (r *mongoTurfRepository) Create(ctx context.Context, turf *model.Turf) error {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, turf); err != nil {
		return fmt.Errorf("failed to create turf: %w", err)
	}
	return nil
}

func (r *mongoTurfRepository) FindByID(ctx context.Context, id string) (*model.Turf, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var turf model.Turf
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&turf); err != nil {
		if mongoutil.IsNoDocuments(err) {
			return nil, turfserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find turf: %w", err)
	}
	return &turf, nil
}

func (r *mongoTurfRepository) FindAll(ctx context.Context, limit int) ([]*model.Turf, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoTurfRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Turf, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"owner_id": ownerID}, opts)
}

func (r *mongoTurfRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Turf, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find turfs: %w", err)
	}
	defer cursor.Close(ctx)

	turfs := []*model.Turf{}
	if err = cursor.All(ctx, &turfs); err != nil {
		return nil, fmt.Errorf("failed to decode turfs: %w", err)
	}
	return turfs, nil
}

// Delete relies on the caller having checked for bookings; Mongo has no
// foreign keys.
func (r *mongoTurfRepository) Delete(ctx context.Context, id string) (*model.Turf, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var turf model.Turf
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&turf); err != nil {
		if mongoutil.IsNoDocuments(err) {
			return nil, turfserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete turf: %w", err)
	}
	return &turf, nil
}
