package service

import (
	"context"
	"fmt"
	"sort"

	"habitflow/internal/model"
	"habitflow/internal/store"
)

type fakeHabitRepo struct {
	habits  map[string]model.Habit
	order   []string
	nextID  int
	created int
}

func newFakeHabitRepo(habits ...model.Habit) *fakeHabitRepo {
	r := &fakeHabitRepo{habits: map[string]model.Habit{}}
	for _, h := range habits {
		r.habits[h.ID] = h
		r.order = append(r.order, h.ID)
	}
	return r
}

func (r *fakeHabitRepo) Create(_ context.Context, h *model.Habit) error {
	r.nextID++
	h.ID = fmt.Sprintf("habit-%d", r.nextID)
	r.habits[h.ID] = *h
	r.order = append(r.order, h.ID)
	r.created++
	return nil
}

func (r *fakeHabitRepo) Archive(_ context.Context, userID, habitID string) error {
	h, ok := r.habits[habitID]
	if !ok || h.UserID != userID {
		return fmt.Errorf("%w: %s", model.ErrHabitNotFound, habitID)
	}
	h.Archived = true
	r.habits[habitID] = h
	return nil
}

func (r *fakeHabitRepo) GetByID(_ context.Context, userID, habitID string) (*model.Habit, error) {
	h, ok := r.habits[habitID]
	if !ok || h.UserID != userID {
		return nil, fmt.Errorf("%w: %s", model.ErrHabitNotFound, habitID)
	}
	return &h, nil
}

func (r *fakeHabitRepo) ListActiveByUser(_ context.Context, userID string) ([]model.Habit, error) {
	out := []model.Habit{}
	for _, id := range r.order {
		h := r.habits[id]
		if h.UserID == userID && !h.Archived {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeLogRepo struct {
	logs   []model.HabitLog
	owners map[string]string
	nextID int
	// failNext makes the next Create return it once
	failNext error
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{owners: map[string]string{}}
}

func (r *fakeLogRepo) Create(_ context.Context, userID string, l *model.HabitLog) error {
	if err := r.failNext; err != nil {
		r.failNext = nil
		return err
	}
	r.nextID++
	l.ID = fmt.Sprintf("log-%d", r.nextID)
	r.logs = append(r.logs, *l)
	r.owners[l.ID] = userID
	return nil
}

func (r *fakeLogRepo) UpdateNotes(_ context.Context, userID, logID string, notes *string) (*model.HabitLog, error) {
	for i := range r.logs {
		if r.logs[i].ID == logID && r.owners[logID] == userID {
			r.logs[i].Notes = notes
			l := r.logs[i]
			return &l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", model.ErrLogNotFound, logID)
}

func (r *fakeLogRepo) ListRecentByUser(_ context.Context, userID string, limit int) ([]model.HabitLog, error) {
	out := []model.HabitLog{}
	for _, l := range r.logs {
		if r.owners[l.ID] == userID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCache struct {
	snaps map[string]store.Snapshot
	puts  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{snaps: map[string]store.Snapshot{}}
}

func (c *fakeCache) Get(_ context.Context, userID string) (store.Snapshot, bool) {
	s, ok := c.snaps[userID]
	return s, ok
}

func (c *fakeCache) Put(_ context.Context, userID string, snap store.Snapshot) error {
	c.snaps[userID] = snap
	c.puts++
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, userID string) error {
	delete(c.snaps, userID)
	return nil
}

type fakeDeduper struct {
	seen map[string]bool
}

func (d *fakeDeduper) AcquireOnce(_ context.Context, scope, id string) bool {
	key := scope + ":" + id
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

func (d *fakeDeduper) Release(_ context.Context, scope, id string) {
	delete(d.seen, scope+":"+id)
}
