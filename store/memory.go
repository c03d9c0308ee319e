package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"todo-api/models"
)

var _ Store = (*MemoryStore)(nil)

// collection keeps records in ascending id order. Because ids only grow,
// appending preserves that order and reverse iteration yields newest first.
type collection[T any] struct {
	seq     Sequence
	records []T
	idOf    func(T) int64
	clone   func(T) T
}

func (c *collection[T]) insert(build func(id int64) T) T {
	rec := build(c.seq.Next())
	c.records = append(c.records, rec)
	return c.clone(rec)
}

func (c *collection[T]) index(id int64) (int, bool) {
	return slices.BinarySearchFunc(c.records, id, func(r T, target int64) int {
		return cmp.Compare(c.idOf(r), target)
	})
}

func (c *collection[T]) get(id int64) (T, bool) {
	i, ok := c.index(id)
	if !ok {
		var zero T
		return zero, false
	}
	return c.clone(c.records[i]), true
}

func (c *collection[T]) update(id int64, mutate func(*T)) (T, bool) {
	i, ok := c.index(id)
	if !ok {
		var zero T
		return zero, false
	}
	mutate(&c.records[i])
	return c.clone(c.records[i]), true
}

func (c *collection[T]) remove(id int64) (T, bool) {
	i, ok := c.index(id)
	if !ok {
		var zero T
		return zero, false
	}
	rec := c.records[i]
	c.records = slices.Delete(c.records, i, i+1)
	return rec, true
}

// removeWhere deletes every record satisfying match and returns the removed
// records newest first.
func (c *collection[T]) removeWhere(match func(T) bool) []T {
	removed := []T{}
	for i := len(c.records) - 1; i >= 0; i-- {
		if match(c.records[i]) {
			removed = append(removed, c.records[i])
		}
	}
	if len(removed) > 0 {
		c.records = slices.DeleteFunc(c.records, match)
	}
	return removed
}

func (c *collection[T]) newestFirst() []T {
	out := make([]T, 0, len(c.records))
	for i := len(c.records) - 1; i >= 0; i-- {
		out = append(out, c.clone(c.records[i]))
	}
	return out
}

// MemoryStore keeps every record in process memory. State is lost on exit.
type MemoryStore struct {
	mu         sync.RWMutex
	tasks      collection[models.Task]
	signatures collection[models.Signature]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: collection[models.Task]{
			idOf:  func(t models.Task) int64 { return t.ID },
			clone: models.Task.Clone,
		},
		signatures: collection[models.Signature]{
			idOf:  func(s models.Signature) int64 { return s.ID },
			clone: models.Signature.Clone,
		},
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateTask(_ context.Context, in models.NewTask) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.insert(in.Record), nil
}

func (s *MemoryStore) GetTask(_ context.Context, id int64) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks.get(id)
	if !ok {
		return models.Task{}, notFound("task", id)
	}
	return t, nil
}

func (s *MemoryStore) ListTasks(context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.newestFirst(), nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, id int64, patch models.TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks.update(id, patch.Apply)
	if !ok {
		return models.Task{}, notFound("task", id)
	}
	return t, nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, id int64) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks.remove(id)
	if !ok {
		return models.Task{}, notFound("task", id)
	}
	return t, nil
}

func (s *MemoryStore) DeleteCompletedTasks(context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.removeWhere(func(t models.Task) bool { return t.Completed }), nil
}

func (s *MemoryStore) CreateSignature(_ context.Context, in models.NewSignature) (models.Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signatures.insert(func(id int64) models.Signature {
		return models.Signature{ID: id, Name: in.Name, Message: in.Message}.Clone()
	}), nil
}

func (s *MemoryStore) GetSignature(_ context.Context, id int64) (models.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.signatures.get(id)
	if !ok {
		return models.Signature{}, notFound("signature", id)
	}
	return sig, nil
}

func (s *MemoryStore) ListSignatures(context.Context) ([]models.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signatures.newestFirst(), nil
}

func (s *MemoryStore) UpdateSignature(_ context.Context, id int64, patch models.SignaturePatch) (models.Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, ok := s.signatures.update(id, patch.Apply)
	if !ok {
		return models.Signature{}, notFound("signature", id)
	}
	return sig, nil
}

func (s *MemoryStore) DeleteSignature(_ context.Context, id int64) (models.Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, ok := s.signatures.remove(id)
	if !ok {
		return models.Signature{}, notFound("signature", id)
	}
	return sig, nil
}
