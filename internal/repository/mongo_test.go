package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"gymtrack/common"
	"gymtrack/internal/storage"
)

// setupTestDB connects to the database named by TEST_MONGO_URI and
// clears the collections the tests touch.
func setupTestDB(t *testing.T) *mongo.Database {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	db, err := storage.Connect(ctx, uri, "gymtrack_test", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, storage.EnsureIndexes(ctx, db))

	for _, coll := range []string{"users", "routines", "logs"} {
		_, err := db.Collection(coll).DeleteMany(ctx, bson.M{})
		require.NoError(t, err)
	}
	return db
}

func TestMongoUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewMongoUsers(db)

	require.NoError(t, users.Create(ctx, &common.User{Username: "Alice", Email: "a@example.com", Password: "hash"}))
	assert.ErrorIs(t, users.Create(ctx, &common.User{Username: "alice", Email: "a2@example.com"}), ErrDuplicate)

	u, err := users.GetByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@example.com", u.Email)
}

func TestMongoRoutinesAndLogs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	routines := NewMongoRoutines(db)
	logs := NewMongoLogs(db)

	template := &common.Routine{Name: "Starter", Username: common.AdminUser}
	require.NoError(t, routines.Create(ctx, template))
	assert.ErrorIs(t, routines.Create(ctx, &common.Routine{Name: "Starter", Username: "alice"}), ErrDuplicate)

	own := &common.Routine{Name: "Legs", Username: "alice"}
	require.NoError(t, routines.Create(ctx, own))

	// Template names are globally unique: admin may not take a name a
	// user already owns, and the user keeps the ability to save theirs.
	assert.ErrorIs(t, routines.Create(ctx, &common.Routine{Name: "Legs", Username: common.AdminUser}), ErrDuplicate)
	assert.NoError(t, routines.Update(ctx, own))

	visible, err := routines.ListVisible(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "Starter", visible[0].Name)

	for d := 1; d <= 3; d++ {
		require.NoError(t, logs.Create(ctx, &common.WorkoutLog{
			Username:    "alice",
			RoutineId:   own.Id,
			PerformedAt: time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC),
			Sets:        d,
		}))
	}

	listed, err := logs.ListByOwner(ctx, "alice",
		time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), time.Time{})
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	best, err := logs.PersonalBest(ctx, "alice", own.Id)
	require.NoError(t, err)
	assert.Equal(t, 3, best.Sets)

	n, err := logs.DeleteByRoutine(ctx, "alice", own.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, routines.Delete(ctx, own.Id))
	_, err = routines.GetByID(ctx, own.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}
