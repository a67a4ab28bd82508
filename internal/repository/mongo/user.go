package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Sagar-1103/taskify/internal/domain"
	"github.com/Sagar-1103/taskify/pkg/database"
	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
)

// UserRepository implements repository.UserRepository using MongoDB.
type UserRepository struct {
	collection *mongo.Collection
	tracer     *database.QueryTracer
}

// NewUserRepository creates a new MongoDB-backed user repository.
func NewUserRepository(db *mongo.Database, tracer *database.QueryTracer) *UserRepository {
	return &UserRepository{collection: db.Collection(UsersCollection), tracer: tracer}
}

// Create inserts a new user document.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	ctx, end := r.tracer.Start(ctx, "CreateUser", "users.insertOne")
	defer func() { end(err) }()

	if _, err = r.collection.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists(MsgDuplicateEmail)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "GetUserByID", bson.D{{Key: "_id", Value: id}})
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "GetUserByEmail", bson.D{{Key: "email", Value: email}})
}

// Update replaces the profile, password hash and token version of a user.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (err error) {
	ctx, end := r.tracer.Start(ctx, "UpdateUser", "users.updateOne")
	defer func() { end(err) }()

	u.UpdatedAt = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: u.ID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "name", Value: u.Name},
			{Key: "email", Value: u.Email},
			{Key: "password", Value: u.PasswordHash},
			{Key: "tokenVersion", Value: u.TokenVersion},
			{Key: "updatedAt", Value: u.UpdatedAt},
		}}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists(MsgDuplicateEmail)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetRefreshToken stores the refresh token digest, or unsets the field when
// tokenHash is empty.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id, tokenHash string) (err error) {
	ctx, end := r.tracer.Start(ctx, "SetRefreshToken", "users.updateOne")
	defer func() { end(err) }()

	now := time.Now().UTC()
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "refreshToken", Value: tokenHash},
		{Key: "updatedAt", Value: now},
	}}}
	if tokenHash == "" {
		update = bson.D{
			{Key: "$unset", Value: bson.D{{Key: "refreshToken", Value: ""}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
		}
	}

	res, err := r.collection.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, op string, filter bson.D) (_ *domain.User, err error) {
	ctx, end := r.tracer.Start(ctx, op, "users.findOne")
	defer func() { end(err) }()

	var u domain.User
	if err = r.collection.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
