package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"gymtrack/common"
)

var (
	// ErrNotFound is returned when no record matches the query.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness rule would be violated.
	ErrDuplicate = errors.New("record already exists")
)

type Users interface {
	Create(ctx context.Context, u *common.User) error
	GetByUsername(ctx context.Context, username string) (*common.User, error)
}

type Routines interface {
	Create(ctx context.Context, r *common.Routine) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*common.Routine, error)
	Update(ctx context.Context, r *common.Routine) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ListVisible returns the user's own routines plus the shared
	// admin templates, admin templates first.
	ListVisible(ctx context.Context, username string) ([]common.Routine, error)
}

type Logs interface {
	Create(ctx context.Context, l *common.WorkoutLog) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*common.WorkoutLog, error)
	Update(ctx context.Context, l *common.WorkoutLog) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ListByOwner returns the owner's logs, newest first. Zero from/to
	// bounds are open-ended.
	ListByOwner(ctx context.Context, username string, from, to time.Time) ([]common.WorkoutLog, error)
	// PersonalBest returns the owner's log with the highest set count
	// for the routine, or ErrNotFound when none exist.
	PersonalBest(ctx context.Context, username string, routineID primitive.ObjectID) (*common.WorkoutLog, error)
	// DeleteByRoutine removes all of the owner's logs against a routine
	// and reports how many were deleted.
	DeleteByRoutine(ctx context.Context, username string, routineID primitive.ObjectID) (int64, error)
}
