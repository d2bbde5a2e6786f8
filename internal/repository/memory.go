package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"gymtrack/common"
)

// MemoryStore is an in-memory implementation of all three repositories,
// used by handler tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*common.User
	routines map[primitive.ObjectID]*common.Routine
	logs     map[primitive.ObjectID]*common.WorkoutLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*common.User),
		routines: make(map[primitive.ObjectID]*common.Routine),
		logs:     make(map[primitive.ObjectID]*common.WorkoutLog),
	}
}

func (m *MemoryStore) Users() Users       { return (*memUsers)(m) }
func (m *MemoryStore) Routines() Routines { return (*memRoutines)(m) }
func (m *MemoryStore) Logs() Logs         { return (*memLogs)(m) }

type memUsers MemoryStore

func (m *memUsers) Create(_ context.Context, u *common.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Username)
	if _, ok := m.users[key]; ok {
		return ErrDuplicate
	}
	u.Username = key
	if u.Id.IsZero() {
		u.Id = primitive.NewObjectID()
	}
	cp := *u
	m.users[key] = &cp
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*common.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type memRoutines MemoryStore

// nameTaken mirrors the mongo check: users collide with their own
// routines and the admin templates, the admin owner collides with
// everyone because template names are globally unique.
func (m *memRoutines) nameTaken(username, name string, exclude primitive.ObjectID) bool {
	for _, r := range m.routines {
		if r.Id == exclude || r.Name != name {
			continue
		}
		if username == common.AdminUser || r.Username == username || r.Username == common.AdminUser {
			return true
		}
	}
	return false
}

func (m *memRoutines) Create(_ context.Context, r *common.Routine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(r.Username, r.Name, primitive.NilObjectID) {
		return ErrDuplicate
	}
	if r.Id.IsZero() {
		r.Id = primitive.NewObjectID()
	}
	cp := *r
	m.routines[r.Id] = &cp
	return nil
}

func (m *memRoutines) GetByID(_ context.Context, id primitive.ObjectID) (*common.Routine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.routines[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRoutines) Update(_ context.Context, r *common.Routine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.routines[r.Id]
	if !ok {
		return ErrNotFound
	}
	if m.nameTaken(stored.Username, r.Name, r.Id) {
		return ErrDuplicate
	}
	stored.Name = r.Name
	stored.Exercises = r.Exercises
	return nil
}

func (m *memRoutines) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routines[id]; !ok {
		return ErrNotFound
	}
	delete(m.routines, id)
	return nil
}

func (m *memRoutines) ListVisible(_ context.Context, username string) ([]common.Routine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []common.Routine
	for _, r := range m.routines {
		if r.Username == username || r.Username == common.AdminUser {
			out = append(out, *r)
		}
	}
	sortRoutines(out)
	return out, nil
}

type memLogs MemoryStore

func (m *memLogs) Create(_ context.Context, l *common.WorkoutLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.Id.IsZero() {
		l.Id = primitive.NewObjectID()
	}
	cp := *l
	m.logs[l.Id] = &cp
	return nil
}

func (m *memLogs) GetByID(_ context.Context, id primitive.ObjectID) (*common.WorkoutLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.logs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLogs) Update(_ context.Context, l *common.WorkoutLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.logs[l.Id]
	if !ok {
		return ErrNotFound
	}
	stored.RoutineId = l.RoutineId
	stored.PerformedAt = l.PerformedAt
	stored.Sets = l.Sets
	stored.Notes = l.Notes
	return nil
}

func (m *memLogs) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logs[id]; !ok {
		return ErrNotFound
	}
	delete(m.logs, id)
	return nil
}

func (m *memLogs) ListByOwner(_ context.Context, username string, from, to time.Time) ([]common.WorkoutLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []common.WorkoutLog
	for _, l := range m.logs {
		if l.Username != username {
			continue
		}
		if !from.IsZero() && l.PerformedAt.Before(from) {
			continue
		}
		if !to.IsZero() && l.PerformedAt.After(to) {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PerformedAt.After(out[j].PerformedAt)
	})
	return out, nil
}

func (m *memLogs) PersonalBest(_ context.Context, username string, routineID primitive.ObjectID) (*common.WorkoutLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *common.WorkoutLog
	for _, l := range m.logs {
		if l.Username != username || l.RoutineId != routineID {
			continue
		}
		if best == nil || l.Sets > best.Sets ||
			(l.Sets == best.Sets && l.PerformedAt.Before(best.PerformedAt)) {
			best = l
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *memLogs) DeleteByRoutine(_ context.Context, username string, routineID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, l := range m.logs {
		if l.Username == username && l.RoutineId == routineID {
			delete(m.logs, id)
			n++
		}
	}
	return n, nil
}
