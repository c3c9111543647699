package repository

import (
	"context"
	"sort"
	"sync"

	turfserrors "turfbook/internal/turfs/errors"
	"turfbook/pkg/model"
)

type memoryTurfRepository struct {
	mu    sync.RWMutex
	turfs map[string]*model.Turf
}

func NewMemoryTurfRepository() TurfRepository {
	return &memoryTurfRepository{turfs: make(map[string]*model.Turf)}
}

func (r *memoryTurfRepository) Create(_ context.Context, turf *model.Turf) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turfs[turf.ID] = cloneTurf(turf)
	return nil
}

func (r *memoryTurfRepository) FindByID(_ context.Context, id string) (*model.Turf, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.turfs[id]
	if !ok {
		return nil, turfserrors.ErrNotFound
	}
	return cloneTurf(t), nil
}

func (r *memoryTurfRepository) FindAll(_ context.Context, limit int) ([]*model.Turf, error) {
	turfs := r.filter(func(*model.Turf) bool { return true })
	if limit > 0 && len(turfs) > limit {
		turfs = turfs[:limit]
	}
	return turfs, nil
}

func (r *memoryTurfRepository) FindByOwner(_ context.Context, ownerID string) ([]*model.Turf, error) {
	return r.filter(func(t *model.Turf) bool { return t.OwnerID == ownerID }), nil
}

func (r *memoryTurfRepository) Delete(_ context.Context, id string) (*model.Turf, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.turfs[id]
	if !ok {
		return nil, turfserrors.ErrNotFound
	}
	delete(r.turfs, id)
	return t, nil
}

func (r *memoryTurfRepository) filter(keep func(*model.Turf) bool) []*model.Turf {
	r.mu.RLock()
	defer r.mu.RUnlock()

	turfs := []*model.Turf{}
	for _, t := range r.turfs {
		if keep(t) {
			turfs = append(turfs, cloneTurf(t))
		}
	}
	sort.Slice(turfs, func(i, j int) bool {
		return turfs[i].CreatedAt.After(turfs[j].CreatedAt)
	})
	return turfs
}

func cloneTurf(t *model.Turf) *model.Turf {
	c := *t
	c.ImageURLs = append([]string{}, t.ImageURLs...)
	return &c
}
