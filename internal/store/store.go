// Package store holds the fetched habit and log collections for one user.
//
// A Store is the explicit state object the analytics engine reads from. It never
// talks to the backend itself; callers load records through the repositories and
// push them in, then take a Snapshot to hand to the engine.
package store

import (
	"slices"
	"sync"

	"habitflow/internal/model"
)

// Snapshot is an immutable copy of the store contents.
//
// Habits are ordered oldest first by creation. Logs are ordered newest first by
// CompletedAt, the order the log repository returns them in, so a reloaded
// snapshot and a patched one read the same to order-sensitive analytics such as
// reflection prompts.
type Snapshot struct {
	Habits []model.Habit    `json:"habits"`
	Logs   []model.HabitLog `json:"logs"`
}

type Store struct {
	mu     sync.RWMutex
	habits []model.Habit
	logs   []model.HabitLog
}

func New() *Store {
	return &Store{}
}

// FromSnapshot seeds a store with a copy of snap.
func FromSnapshot(snap Snapshot) *Store {
	s := New()
	s.SetHabits(snap.Habits)
	s.SetLogs(snap.Logs)
	return s
}

func (s *Store) SetHabits(habits []model.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = append([]model.Habit(nil), habits...)
}

func (s *Store) SetLogs(logs []model.HabitLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append([]model.HabitLog(nil), logs...)
}

func (s *Store) AddHabit(h model.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = append(s.habits, h)
}

// AddLog inserts l ahead of every log completed at or before it, keeping logs newest first.
func (s *Store) AddLog(l model.HabitLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := 0
	for i < len(s.logs) && s.logs[i].CompletedAt.After(l.CompletedAt) {
		i++
	}
	s.logs = slices.Insert(s.logs, i, l)
}

// UpdateLog applies patch to the log with the given id. It reports whether a log matched.
// Replacing a placeholder id with the backend id is done through patch.ID.
func (s *Store) UpdateLog(id string, patch model.LogPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.logs {
		if s.logs[i].ID != id {
			continue
		}
		if patch.ID != nil {
			s.logs[i].ID = *patch.ID
		}
		if patch.Notes != nil {
			notes := *patch.Notes
			s.logs[i].Notes = &notes
		}
		return true
	}
	return false
}

func (s *Store) Habits() []model.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Habit(nil), s.habits...)
}

func (s *Store) Logs() []model.HabitLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.HabitLog(nil), s.logs...)
}

// Snapshot returns copies of both collections taken under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Habits: append([]model.Habit(nil), s.habits...),
		Logs:   append([]model.HabitLog(nil), s.logs...),
	}
}
