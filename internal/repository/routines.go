package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gymtrack/common"
)

type mongoRoutines struct {
	coll *mongo.Collection
}

func NewMongoRoutines(db *mongo.Database) Routines {
	return &mongoRoutines{coll: db.Collection("routines")}
}

// nameTaken checks for a name collision, excluding the routine being
// updated. A user's routines may not collide with their own or with the
// admin templates; admin template names are globally unique, so for the
// admin owner every routine counts.
func (r *mongoRoutines) nameTaken(ctx context.Context, username, name string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"name": name}
	if username != common.AdminUser {
		filter["username"] = bson.M{"$in": []string{username, common.AdminUser}}
	}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("routines: count: %w", err)
	}
	return n > 0, nil
}

func (r *mongoRoutines) Create(ctx context.Context, routine *common.Routine) error {
	taken, err := r.nameTaken(ctx, routine.Username, routine.Name, primitive.NilObjectID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicate
	}
	res, err := r.coll.InsertOne(ctx, routine)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("routines: insert: %w", err)
	}
	routine.Id = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoRoutines) GetByID(ctx context.Context, id primitive.ObjectID) (*common.Routine, error) {
	var routine common.Routine
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&routine)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("routines: find: %w", err)
	}
	return &routine, nil
}

func (r *mongoRoutines) Update(ctx context.Context, routine *common.Routine) error {
	taken, err := r.nameTaken(ctx, routine.Username, routine.Name, routine.Id)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicate
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": routine.Id}, bson.M{"$set": bson.M{
		"name":      routine.Name,
		"exercises": routine.Exercises,
	}})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("routines: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRoutines) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("routines: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRoutines) ListVisible(ctx context.Context, username string) ([]common.Routine, error) {
	filter := bson.M{"username": bson.M{"$in": []string{username, common.AdminUser}}}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("routines: list: %w", err)
	}
	var routines []common.Routine
	if err := cur.All(ctx, &routines); err != nil {
		return nil, fmt.Errorf("routines: decode: %w", err)
	}
	sortRoutines(routines)
	return routines, nil
}

// sortRoutines puts the shared admin templates first, then by name.
func sortRoutines(routines []common.Routine) {
	sort.SliceStable(routines, func(i, j int) bool {
		if routines[i].Shared() != routines[j].Shared() {
			return routines[i].Shared()
		}
		return routines[i].Name < routines[j].Name
	})
}
