package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaxinw04/hackai/config"
	"github.com/yaxinw04/hackai/internal/captions"
	"github.com/yaxinw04/hackai/internal/ffmpeg"
	"github.com/yaxinw04/hackai/internal/finalize"
	"github.com/yaxinw04/hackai/internal/jobstore"
	"github.com/yaxinw04/hackai/internal/pipeline"
	"github.com/yaxinw04/hackai/internal/storage"
	"github.com/yaxinw04/hackai/internal/worker"
	"github.com/yaxinw04/hackai/models"
)

// unavailableTools satisfies the pipeline tool interfaces without any real
// binaries, which forces every submitted job onto the placeholder path.
type unavailableTools struct{}

func (unavailableTools) Available() bool { return false }

func (unavailableTools) Download(ctx context.Context, url, destDir string) (string, error) {
	return "", nil
}

func (unavailableTools) Transcribe(ctx context.Context, mediaPath string) ([]models.TranscriptSegment, error) {
	return nil, nil
}

func (unavailableTools) Trim(ctx context.Context, input, output string, start, end float64, mode ffmpeg.Mode) error {
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, jobstore.Store) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := jobstore.NewMemoryStore()
	backend, err := storage.NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	tools := unavailableTools{}
	orch := pipeline.NewOrchestrator(pipeline.Deps{
		Store:       store,
		Storage:     backend,
		Downloader:  tools,
		Transcriber: tools,
		Renderer:    tools,
		Log:         log,
	}, pipeline.Config{OutputDir: t.TempDir(), MaxClipCount: 10})

	pool := worker.NewPool(1, 8, log)
	pool.Start()
	t.Cleanup(pool.Stop)

	ff := ffmpeg.New("ffmpeg", "ffprobe")
	h := NewApplicationHandler(
		store, backend, pool, orch,
		finalize.NewEngine(store, ff, t.TempDir(), log),
		captions.NewBurner(ff),
		config.Settings{OutputDir: t.TempDir()},
		log,
	)

	app := fiber.New()
	app.Get("/health", h.HandleHealthCheck)
	apiV1 := app.Group("/api/v1")
	apiV1.Post("/process", h.HandleProcessVideo)
	apiV1.Get("/status/:jobId", h.HandleJobStatus)
	apiV1.Get("/jobs", h.HandleListJobs)
	apiV1.Post("/jobs/:jobId/finalize", h.HandleFinalizeClips)
	apiV1.Post("/jobs/:jobId/clips/:clipId/captions/generate", h.HandleGenerateCaptions)
	apiV1.Post("/jobs/:jobId/clips/:clipId/captions/apply", h.HandleApplyCaptions)
	return app, store
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthCheck(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProcessValidationFailure(t *testing.T) {
	app, _ := newTestApp(t)
	resp := postJSON(t, app, "/api/v1/process", map[string]string{"url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcessQueuesJobAndCompletes(t *testing.T) {
	app, store := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/process", map[string]string{
		"url":    "https://example.com/video",
		"prompt": "create 2 clips",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	jobID := data["job_id"].(string)
	require.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		job, err := store.Load(context.Background(), jobID)
		return err == nil && job != nil && job.Status == models.JobStatusComplete
	}, 5*time.Second, 20*time.Millisecond)

	job, err := store.Load(context.Background(), jobID)
	require.NoError(t, err)
	assert.True(t, job.IsDemo)
	assert.Len(t, job.Results, 2)
}

func TestStatusUnknownJob(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/nope", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListJobs(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.Create(context.Background(), &models.Job{
		ID: "j1", Status: models.JobStatusPending,
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])
}

func TestFinalizeUnknownJob(t *testing.T) {
	app, _ := newTestApp(t)
	resp := postJSON(t, app, "/api/v1/jobs/nope/finalize", map[string]any{
		"clips": []map[string]any{{"id": "clip_1", "edited_start": 1, "edited_end": 2}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFinalizeRejectsIncompleteJob(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.Create(context.Background(), &models.Job{
		ID: "j1", Status: models.JobStatusProcessing,
	}))

	resp := postJSON(t, app, "/api/v1/jobs/j1/finalize", map[string]any{
		"clips": []map[string]any{{"id": "clip_1", "edited_start": 1, "edited_end": 2}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFinalizeValidationFailure(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.Create(context.Background(), &models.Job{
		ID: "j1", Status: models.JobStatusComplete,
	}))

	resp := postJSON(t, app, "/api/v1/jobs/j1/finalize", map[string]any{"clips": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateCaptionsForClip(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.Create(context.Background(), &models.Job{
		ID:     "j1",
		Status: models.JobStatusComplete,
		Results: []models.ClipRecord{{
			ID:              "clip_1",
			Text:            "some transcript words to caption here",
			DurationSeconds: 20,
		}},
	}))

	resp := postJSON(t, app, "/api/v1/jobs/j1/clips/clip_1/captions/generate", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["segments"])
}

func TestApplyCaptionsRejectsIncompleteJob(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.Create(context.Background(), &models.Job{
		ID:        "j1",
		Status:    models.JobStatusProcessing,
		ClipPaths: map[string]string{"clip_1": "/tmp/clip_1.mp4"},
	}))

	resp := postJSON(t, app, "/api/v1/jobs/j1/clips/clip_1/captions/apply", map[string]any{
		"segments": []map[string]any{{"start_time": 0, "end_time": 1, "text": "hi"}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGenerateCaptionsUnknownClip(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.Create(context.Background(), &models.Job{
		ID: "j1", Status: models.JobStatusComplete,
	}))

	resp := postJSON(t, app, "/api/v1/jobs/j1/clips/nope/captions/generate", map[string]any{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
