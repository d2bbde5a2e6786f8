package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"gymtrack/common"
)

type mongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(db *mongo.Database) Users {
	return &mongoUsers{coll: db.Collection("users")}
}

// Create inserts the user. Usernames are stored lowercased so the
// unique index enforces case-insensitive uniqueness.
func (r *mongoUsers) Create(ctx context.Context, u *common.User) error {
	u.Username = strings.ToLower(u.Username)
	res, err := r.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	u.Id = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoUsers) GetByUsername(ctx context.Context, username string) (*common.User, error) {
	var u common.User
	err := r.coll.FindOne(ctx, bson.M{"username": strings.ToLower(username)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find: %w", err)
	}
	return &u, nil
}
