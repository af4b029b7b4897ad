package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/yaxinw04/hackai/models"
)

const jobsTable = "shorts_jobs"

// jobRow maps to the shorts_jobs table. The full job record is stored as
// JSONB; status is duplicated into its own column so rows can be filtered
// without unpacking the record.
type jobRow struct {
	JobID     string          `json:"job_id"`
	Status    string          `json:"status"`
	Record    json.RawMessage `json:"record"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// PostgrestStore keeps job records in a Supabase table. Select it with
// JOB_STORE=postgrest when several replicas need to share one store.
type PostgrestStore struct {
	client *postgrest.Client
	locks  *keyedMutex
}

// NewPostgrestStore builds a store against the given Supabase project.
func NewPostgrestStore(supabaseURL, serviceKey string) (*PostgrestStore, error) {
	if supabaseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("postgrest job store requires SUPABASE_URL and SUPABASE_SERVICE_KEY")
	}
	client := postgrest.NewClient(supabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("init postgrest client: %w", client.ClientError)
	}
	return &PostgrestStore{client: client, locks: newKeyedMutex()}, nil
}

func (s *PostgrestStore) Create(ctx context.Context, job *models.Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	job.UpdatedAt = job.CreatedAt

	record, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job record: %w", err)
	}
	row := jobRow{
		JobID:  job.ID,
		Status: string(job.Status),
		Record: record,
	}
	var results []jobRow
	_, err = s.client.From(jobsTable).Insert(row, false, "", "representation", "").ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("insert job record: %w", err)
	}
	return nil
}

func (s *PostgrestStore) Load(ctx context.Context, id string) (*models.Job, error) {
	var rows []jobRow
	_, err := s.client.From(jobsTable).Select("*", "", false).Eq("job_id", id).ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("fetch job %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var job models.Job
	if err := json.Unmarshal(rows[0].Record, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

// Update serializes writers per job id within this process. Cross-process
// writers still race at the row level; last write wins, matching the badger
// store's field-level behavior.
func (s *PostgrestStore) Update(ctx context.Context, id string, fn func(*models.Job) error) (*models.Job, error) {
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

	record, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job record: %w", err)
	}
	updateData := map[string]interface{}{
		"status":     string(job.Status),
		"record":     json.RawMessage(record),
		"updated_at": job.UpdatedAt,
	}
	var results []jobRow
	_, err = s.client.From(jobsTable).Update(updateData, "", "").Eq("job_id", id).ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("update job record %s: %w", id, err)
	}
	return job, nil
}

func (s *PostgrestStore) List(ctx context.Context) ([]*models.Job, error) {
	var rows []jobRow
	_, err := s.client.From(jobsTable).Select("*", "", false).ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	list := make([]*models.Job, 0, len(rows))
	for _, row := range rows {
		var job models.Job
		if err := json.Unmarshal(row.Record, &job); err != nil {
			continue
		}
		list = append(list, &job)
	}
	return list, nil
}

func (s *PostgrestStore) Close() error { return nil }

var _ Store = (*PostgrestStore)(nil)
