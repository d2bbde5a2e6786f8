package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"gymtrack/common"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryUsersUniqueness(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	require.NoError(t, users.Create(ctx, &common.User{Username: "Alice", Email: "a@example.com"}))

	// Case-insensitive duplicate.
	err := users.Create(ctx, &common.User{Username: "ALICE", Email: "a2@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	u, err := users.GetByUsername(ctx, "aLiCe")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRoutineNameRules(t *testing.T) {
	ctx := context.Background()
	routines := NewMemoryStore().Routines()

	admin := &common.Routine{Name: "Starter", Username: common.AdminUser}
	require.NoError(t, routines.Create(ctx, admin))

	// A user's routine may not shadow an admin template.
	err := routines.Create(ctx, &common.Routine{Name: "Starter", Username: "alice"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Unique per owner, but two users may share a name.
	require.NoError(t, routines.Create(ctx, &common.Routine{Name: "Legs", Username: "alice"}))
	err = routines.Create(ctx, &common.Routine{Name: "Legs", Username: "alice"})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, routines.Create(ctx, &common.Routine{Name: "Legs", Username: "bob"}))
}

func TestMemoryAdminTemplateNamesGloballyUnique(t *testing.T) {
	ctx := context.Background()
	routines := NewMemoryStore().Routines()

	alices := &common.Routine{Name: "Legs", Username: "alice"}
	require.NoError(t, routines.Create(ctx, alices))

	// A template may not take a name any user already owns.
	err := routines.Create(ctx, &common.Routine{Name: "Legs", Username: common.AdminUser})
	assert.ErrorIs(t, err, ErrDuplicate)

	// And alice can still save her own routine, name unchanged.
	alices.Exercises[0] = common.Exercise{Name: "Squat", Reps: 12}
	assert.NoError(t, routines.Update(ctx, alices))
}

func TestMemoryRoutinesListVisible(t *testing.T) {
	ctx := context.Background()
	routines := NewMemoryStore().Routines()

	require.NoError(t, routines.Create(ctx, &common.Routine{Name: "Zeta", Username: "alice"}))
	require.NoError(t, routines.Create(ctx, &common.Routine{Name: "Starter", Username: common.AdminUser}))
	require.NoError(t, routines.Create(ctx, &common.Routine{Name: "Hidden", Username: "bob"}))

	visible, err := routines.ListVisible(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, visible, 2)
	// Shared templates come first.
	assert.Equal(t, "Starter", visible[0].Name)
	assert.Equal(t, "Zeta", visible[1].Name)
}

func TestMemoryRoutineUpdateDelete(t *testing.T) {
	ctx := context.Background()
	routines := NewMemoryStore().Routines()

	r := &common.Routine{Name: "Push", Username: "alice"}
	require.NoError(t, routines.Create(ctx, r))
	require.NoError(t, routines.Create(ctx, &common.Routine{Name: "Pull", Username: "alice"}))

	r.Name = "Pull"
	assert.ErrorIs(t, routines.Update(ctx, r), ErrDuplicate)

	r.Name = "Push Day"
	require.NoError(t, routines.Update(ctx, r))
	got, err := routines.GetByID(ctx, r.Id)
	require.NoError(t, err)
	assert.Equal(t, "Push Day", got.Name)

	require.NoError(t, routines.Delete(ctx, r.Id))
	_, err = routines.GetByID(ctx, r.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, routines.Delete(ctx, r.Id), ErrNotFound)
}

func TestMemoryLogsDateRange(t *testing.T) {
	ctx := context.Background()
	logs := NewMemoryStore().Logs()
	routine := primitive.NewObjectID()

	for d := 1; d <= 5; d++ {
		require.NoError(t, logs.Create(ctx, &common.WorkoutLog{
			Username: "alice", RoutineId: routine, PerformedAt: day(d), Sets: d,
		}))
	}
	require.NoError(t, logs.Create(ctx, &common.WorkoutLog{
		Username: "bob", RoutineId: routine, PerformedAt: day(3), Sets: 9,
	}))

	all, err := logs.ListByOwner(ctx, "alice", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	// Newest first.
	assert.Equal(t, day(5), all[0].PerformedAt)
	assert.Equal(t, day(1), all[4].PerformedAt)

	mid, err := logs.ListByOwner(ctx, "alice", day(2), day(4))
	require.NoError(t, err)
	assert.Len(t, mid, 3)

	open, err := logs.ListByOwner(ctx, "alice", day(4), time.Time{})
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestMemoryLogsPersonalBest(t *testing.T) {
	ctx := context.Background()
	logs := NewMemoryStore().Logs()
	routine := primitive.NewObjectID()
	other := primitive.NewObjectID()

	_, err := logs.PersonalBest(ctx, "alice", routine)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, logs.Create(ctx, &common.WorkoutLog{Username: "alice", RoutineId: routine, PerformedAt: day(1), Sets: 3}))
	best5 := &common.WorkoutLog{Username: "alice", RoutineId: routine, PerformedAt: day(2), Sets: 5}
	require.NoError(t, logs.Create(ctx, best5))
	// Tie goes to the earliest session.
	require.NoError(t, logs.Create(ctx, &common.WorkoutLog{Username: "alice", RoutineId: routine, PerformedAt: day(3), Sets: 5}))
	// Other routine and other user never count.
	require.NoError(t, logs.Create(ctx, &common.WorkoutLog{Username: "alice", RoutineId: other, PerformedAt: day(1), Sets: 8}))
	require.NoError(t, logs.Create(ctx, &common.WorkoutLog{Username: "bob", RoutineId: routine, PerformedAt: day(1), Sets: 8}))

	best, err := logs.PersonalBest(ctx, "alice", routine)
	require.NoError(t, err)
	assert.Equal(t, best5.Id, best.Id)
}

func TestMemoryLogsDeleteByRoutine(t *testing.T) {
	ctx := context.Background()
	logs := NewMemoryStore().Logs()
	routine := primitive.NewObjectID()

	require.NoError(t, logs.Create(ctx, &common.WorkoutLog{Username: "alice", RoutineId: routine, PerformedAt: day(1), Sets: 1}))
	require.NoError(t, logs.Create(ctx, &common.WorkoutLog{Username: "alice", RoutineId: routine, PerformedAt: day(2), Sets: 2}))
	keep := &common.WorkoutLog{Username: "bob", RoutineId: routine, PerformedAt: day(1), Sets: 1}
	require.NoError(t, logs.Create(ctx, keep))

	n, err := logs.DeleteByRoutine(ctx, "alice", routine)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = logs.GetByID(ctx, keep.Id)
	assert.NoError(t, err)
}
