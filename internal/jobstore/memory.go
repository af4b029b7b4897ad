package jobstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yaxinw04/hackai/models"
)

// MemoryStore keeps jobs in a map. It backs tests and one-shot CLI runs
// where persistence across restarts does not matter.
type MemoryStore struct {
	mu    sync.RWMutex
	jobs  map[string]*models.Job
	locks *keyedMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:  make(map[string]*models.Job),
		locks: newKeyedMutex(),
	}
}

func (s *MemoryStore) Create(ctx context.Context, job *models.Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	job.UpdatedAt = job.CreatedAt
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return cloneJob(job), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*models.Job) error) (*models.Job, error) {
	mu := s.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	job, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("update job %s: record missing", id)
	}
	if err := fn(job); err != nil {
		return nil, err
	}
	job.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.jobs[id] = cloneJob(job)
	s.mu.Unlock()
	return job, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		list = append(list, cloneJob(job))
	}
	return list, nil
}

func (s *MemoryStore) Close() error { return nil }

// cloneJob copies the record deeply enough that callers cannot mutate the
// stored version behind the store's back.
func cloneJob(in *models.Job) *models.Job {
	out := *in
	if in.Results != nil {
		out.Results = append([]models.ClipRecord(nil), in.Results...)
	}
	if in.FinalizedResults != nil {
		out.FinalizedResults = append([]models.FinalizedClip(nil), in.FinalizedResults...)
	}
	if in.ClipPaths != nil {
		out.ClipPaths = make(map[string]string, len(in.ClipPaths))
		for k, v := range in.ClipPaths {
			out.ClipPaths[k] = v
		}
	}
	if in.CaptionedPaths != nil {
		out.CaptionedPaths = make(map[string]string, len(in.CaptionedPaths))
		for k, v := range in.CaptionedPaths {
			out.CaptionedPaths[k] = v
		}
	}
	return &out
}

var _ Store = (*MemoryStore)(nil)
