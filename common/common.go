package common

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUser owns the shared routine templates every account can see.
const AdminUser = "admin"

// RoutineExercises is the number of exercise slots in every routine.
const RoutineExercises = 3

type Exercise struct {
	Name string `bson:"name"`
	Reps int    `bson:"reps"`
}

type User struct {
	Id       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"` // bcrypt hash
}

// Routine is a named template of three exercises with target rep counts.
// Routines owned by AdminUser are shared, read-only templates.
type Routine struct {
	Id        primitive.ObjectID         `bson:"_id,omitempty"`
	Name      string                     `bson:"name"`
	Username  string                     `bson:"username"`
	Exercises [RoutineExercises]Exercise `bson:"exercises"`
}

// Shared reports whether the routine is one of the admin templates.
func (r Routine) Shared() bool {
	return r.Username == AdminUser
}

// Editable reports whether the given session user may mutate the routine.
func (r Routine) Editable(username string) bool {
	return r.Username == username
}

// WorkoutLog is one recorded session against a routine.
type WorkoutLog struct {
	Id          primitive.ObjectID `bson:"_id,omitempty"`
	Username    string             `bson:"username"`
	RoutineId   primitive.ObjectID `bson:"routine_id"`
	PerformedAt time.Time          `bson:"performed_at"`
	Sets        int                `bson:"sets"`
	Notes       string             `bson:"notes"`
}

// Editable reports whether the given session user may mutate the log.
func (l WorkoutLog) Editable(username string) bool {
	return l.Username == username
}
