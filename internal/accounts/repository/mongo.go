package repository

import (
	"context"
	"fmt"

	accountserrors "turfbook/internal/accounts/errors"
	migrations "turfbook/internal/migrations/mongo"
	"turfbook/pkg/config"
	"turfbook/pkg/db"
	mongoutil "turfbook/pkg/db/mongo"
	"turfbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPrincipalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	kind       model.Kind
}

func NewMongoPrincipalRepository(cfg *config.Config, database *mongo.Database, kind model.Kind) PrincipalRepository {
	name := migrations.UsersCollection
	if kind == model.KindOwner {
		name = migrations.OwnersCollection
	}
	return &mongoPrincipalRepository{
		cfg:        cfg,
		collection: database.Collection(name),
		kind:       kind,
	}
}

func (r *mongoPrincipalRepository) Create(ctx context.Context, principal *model.Principal) error {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, principal); err != nil {
		if mongoutil.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %v", accountserrors.ErrDuplicate, err)
		}
		return fmt.Errorf("failed to create %s: %w", r.kind, err)
	}
	return nil
}

func (r *mongoPrincipalRepository) FindByID(ctx context.Context, id string) (*model.Principal, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoPrincipalRepository) FindByEmail(ctx context.Context, email string) (*model.Principal, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoPrincipalRepository) findOne(ctx context.Context, filter bson.M) (*model.Principal, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var principal model.Principal
	if err := r.collection.FindOne(ctx, filter).Decode(&principal); err != nil {
		if mongoutil.IsNoDocuments(err) {
			return nil, accountserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s: %w", r.kind, err)
	}
	principal.Kind = r.kind
	return &principal, nil
}

func (r *mongoPrincipalRepository) ExistsByIdentity(ctx context.Context, username, email, phoneNo string) (bool, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{"username": username},
		{"email": email},
		{"phone_no": phoneNo},
	}}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check %s identity: %w", r.kind, err)
	}
	return count > 0, nil
}

func (r *mongoPrincipalRepository) Update(ctx context.Context, id string, changes *model.PrincipalChanges) (*model.Principal, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	set := bson.M{}
	if changes.FullName != nil {
		set["full_name"] = *changes.FullName
	}
	if changes.Username != nil {
		set["username"] = *changes.Username
	}
	if changes.PhoneNo != nil {
		set["phone_no"] = *changes.PhoneNo
	}
	if changes.PasswordHash != nil {
		set["password_hash"] = *changes.PasswordHash
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var principal model.Principal
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&principal)
	if err != nil {
		switch {
		case mongoutil.IsNoDocuments(err):
			return nil, accountserrors.ErrNotFound
		case mongoutil.IsDuplicateKey(err):
			return nil, fmt.Errorf("%w: %v", accountserrors.ErrDuplicate, err)
		}
		return nil, fmt.Errorf("failed to update %s: %w", r.kind, err)
	}
	principal.Kind = r.kind
	return &principal, nil
}

func (r *mongoPrincipalRepository) SetRefreshToken(ctx context.Context, id, refreshToken string) error {
	return r.updateToken(ctx, accountserrors.ErrNotFound, bson.M{"_id": id}, refreshToken)
}

func (r *mongoPrincipalRepository) SwapRefreshToken(ctx context.Context, id, current, next string) error {
	return r.updateToken(ctx, accountserrors.ErrTokenMismatch, bson.M{"_id": id, "refresh_token": current}, next)
}

func (r *mongoPrincipalRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.updateToken(ctx, accountserrors.ErrNotFound, bson.M{"_id": id}, nil)
}

func (r *mongoPrincipalRepository) updateToken(ctx context.Context, noMatch error, filter bson.M, value any) error {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"refresh_token": value}})
	if err != nil {
		return fmt.Errorf("failed to update %s refresh token: %w", r.kind, err)
	}
	if result.MatchedCount == 0 {
		return noMatch
	}
	return nil
}

