package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectAttempts = 5

// Connect opens a client against the document store and pings it,
// retrying with backoff so the app survives the database coming up
// after it does.
func Connect(ctx context.Context, uri, dbname string, log zerolog.Logger) (*mongo.Database, error) {
	var lastErr error
	for i := 1; i <= connectAttempts; i++ {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				log.Info().Int("attempt", i).Str("db", dbname).Msg("connected to mongodb")
				return client.Database(dbname), nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err
		log.Warn().Int("attempt", i).Err(err).Msg("mongodb connect failed")
		if i == connectAttempts {
			break
		}

		wait := time.Duration(1<<uint(i-1)) * time.Second
		if wait > 10*time.Second {
			wait = 10 * time.Second
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("storage: connect after %d attempts: %w", connectAttempts, lastErr)
}

// EnsureIndexes creates the indexes the repositories rely on. Safe to
// call on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("storage: users index: %w", err)
	}

	// Unique, so the check-then-insert in the repository cannot race
	// two identical names past each other for the same owner.
	_, err = db.Collection("routines").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("storage: routines index: %w", err)
	}

	_, err = db.Collection("logs").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}, {Key: "performed_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("storage: logs index: %w", err)
	}
	return nil
}
