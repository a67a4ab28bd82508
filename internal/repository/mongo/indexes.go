package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes both collections rely on. It is
// idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *slog.Logger) error {
	users := []mongo.IndexModel{{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}}
	tasks := []mongo.IndexModel{{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("userId_createdAt"),
	}}

	for _, ix := range []struct {
		collection string
		models     []mongo.IndexModel
	}{
		{UsersCollection, users},
		{TasksCollection, tasks},
	} {
		names, err := db.Collection(ix.collection).Indexes().CreateMany(ctx, ix.models)
		if err != nil {
			return fmt.Errorf("create %s indexes: %w", ix.collection, err)
		}
		logger.InfoContext(ctx, "indexes ensured", slog.String("collection", ix.collection), slog.Any("indexes", names))
	}
	return nil
}
