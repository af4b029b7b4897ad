package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/yaxinw04/hackai/models"
)

const jobKeyPrefix = "job:"

// BadgerStore persists jobs in an embedded badger database, one JSON record
// per job under "job:<id>".
type BadgerStore struct {
	db    *badger.DB
	locks *keyedMutex
}

// OpenBadgerStore opens (or creates) the store at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	return &BadgerStore{db: db, locks: newKeyedMutex()}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

func (s *BadgerStore) Create(ctx context.Context, job *models.Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	job.UpdatedAt = job.CreatedAt
	return s.put(job)
}

func (s *BadgerStore) Load(ctx context.Context, id string) (*models.Job, error) {
	key := []byte(jobKeyPrefix + id)
	var out models.Job
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// Update loads the record, applies fn, and writes it back, all under the
// job's lock. Concurrent updates to the same job are serialized; updates to
// different jobs proceed in parallel.
func (s *BadgerStore) Update(ctx context.Context, id string, fn func(*models.Job) error) (*models.Job, error) {
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
	if err := s.put(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *BadgerStore) List(ctx context.Context) ([]*models.Job, error) {
	prefix := []byte(jobKeyPrefix)
	var list []*models.Job
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var rec models.Job
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				continue
			}
			list = append(list, &rec)
		}
		return nil
	})
	return list, err
}

func (s *BadgerStore) put(job *models.Job) error {
	key := []byte(jobKeyPrefix + job.ID)
	buf, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	})
}

var _ Store = (*BadgerStore)(nil)
