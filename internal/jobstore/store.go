// Package jobstore owns persistence for job records. All mutation goes
// through Update, which serializes read-modify-write cycles per job id so a
// finalize call racing the pipeline cannot lose whole records.
package jobstore

import (
	"context"
	"sync"

	"github.com/yaxinw04/hackai/models"
)

// Store is the single source of truth for jobs.
//
// Load returns (nil, nil) when the id is unknown; callers decide whether
// that is a NotFound condition. Update runs fn against the current record
// under a per-id lock and persists the result before returning.
type Store interface {
	Create(ctx context.Context, job *models.Job) error
	Load(ctx context.Context, id string) (*models.Job, error)
	Update(ctx context.Context, id string, fn func(*models.Job) error) (*models.Job, error)
	List(ctx context.Context) ([]*models.Job, error)
	Close() error
}

// keyedMutex hands out one mutex per job id. Entries are never reclaimed;
// the store holds at most one per job, which is small next to the job data.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(id string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	return m
}
