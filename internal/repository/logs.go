package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gymtrack/common"
)

type mongoLogs struct {
	coll *mongo.Collection
}

func NewMongoLogs(db *mongo.Database) Logs {
	return &mongoLogs{coll: db.Collection("logs")}
}

func (r *mongoLogs) Create(ctx context.Context, l *common.WorkoutLog) error {
	res, err := r.coll.InsertOne(ctx, l)
	if err != nil {
		return fmt.Errorf("logs: insert: %w", err)
	}
	l.Id = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoLogs) GetByID(ctx context.Context, id primitive.ObjectID) (*common.WorkoutLog, error) {
	var l common.WorkoutLog
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("logs: find: %w", err)
	}
	return &l, nil
}

func (r *mongoLogs) Update(ctx context.Context, l *common.WorkoutLog) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": l.Id}, bson.M{"$set": bson.M{
		"routine_id":   l.RoutineId,
		"performed_at": l.PerformedAt,
		"sets":         l.Sets,
		"notes":        l.Notes,
	}})
	if err != nil {
		return fmt.Errorf("logs: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoLogs) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("logs: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoLogs) ListByOwner(ctx context.Context, username string, from, to time.Time) ([]common.WorkoutLog, error) {
	filter := bson.M{"username": username}
	dateRange := bson.M{}
	if !from.IsZero() {
		dateRange["$gte"] = from
	}
	if !to.IsZero() {
		dateRange["$lte"] = to
	}
	if len(dateRange) > 0 {
		filter["performed_at"] = dateRange
	}
	opts := options.Find().SetSort(bson.D{{Key: "performed_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("logs: list: %w", err)
	}
	var logs []common.WorkoutLog
	if err := cur.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("logs: decode: %w", err)
	}
	return logs, nil
}

func (r *mongoLogs) PersonalBest(ctx context.Context, username string, routineID primitive.ObjectID) (*common.WorkoutLog, error) {
	filter := bson.M{"username": username, "routine_id": routineID}
	opts := options.FindOne().SetSort(bson.D{{Key: "sets", Value: -1}, {Key: "performed_at", Value: 1}})
	var l common.WorkoutLog
	err := r.coll.FindOne(ctx, filter, opts).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("logs: personal best: %w", err)
	}
	return &l, nil
}

func (r *mongoLogs) DeleteByRoutine(ctx context.Context, username string, routineID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"username": username, "routine_id": routineID})
	if err != nil {
		return 0, fmt.Errorf("logs: delete by routine: %w", err)
	}
	return res.DeletedCount, nil
}
