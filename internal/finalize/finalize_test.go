package finalize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaxinw04/hackai/internal/apperr"
	"github.com/yaxinw04/hackai/internal/ffmpeg"
	"github.com/yaxinw04/hackai/internal/jobstore"
	"github.com/yaxinw04/hackai/models"
)

type trimCall struct {
	input string
	start float64
	end   float64
	mode  ffmpeg.Mode
}

type fakeTrimmer struct {
	calls     []trimCall
	failCopy  bool
	failAll   bool
	durations map[string]float64
}

func (f *fakeTrimmer) Trim(ctx context.Context, input, output string, start, end float64, mode ffmpeg.Mode) error {
	f.calls = append(f.calls, trimCall{input: input, start: start, end: end, mode: mode})
	if f.failAll {
		return errors.New("trim failed")
	}
	if f.failCopy && mode == ffmpeg.ModeCopy {
		return errors.New("stream copy not possible")
	}
	return os.WriteFile(output, []byte("final"), 0o644)
}

func (f *fakeTrimmer) ProbeDuration(ctx context.Context, input string) (float64, error) {
	if d, ok := f.durations[input]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown file %s", input)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// completeJob builds a finished job with three rendered clips and real files
// on disk so the engine's stat checks pass.
func completeJob(t *testing.T, dir string) *models.Job {
	t.Helper()
	windows := [][2]float64{{15, 35}, {145, 175}, {280, 320}}
	job := &models.Job{
		ID:        "job-1",
		Status:    models.JobStatusComplete,
		ClipPaths: map[string]string{},
	}
	for i, w := range windows {
		id := fmt.Sprintf("clip_%d", i+1)
		path := filepath.Join(dir, id+".mp4")
		require.NoError(t, os.WriteFile(path, []byte("clip"), 0o644))
		job.Results = append(job.Results, models.ClipRecord{
			ID:        id,
			Title:     fmt.Sprintf("Clip %d", i+1),
			StartTime: w[0],
			EndTime:   w[1],
		})
		job.ClipPaths[id] = path
	}
	return job
}

func newTestEngine(t *testing.T, store jobstore.Store, tr *fakeTrimmer) *Engine {
	t.Helper()
	return NewEngine(store, tr, t.TempDir(), testLogger())
}

func TestRunShiftsEditedWindowIntoClipTime(t *testing.T) {
	dir := t.TempDir()
	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), completeJob(t, dir)))

	tr := &fakeTrimmer{}
	engine := newTestEngine(t, store, tr)

	// clip_2 covers source seconds 145-175; the edit keeps 150-170.
	finalized, err := engine.Run(context.Background(), "job-1", []models.EditedClip{{
		ID:          "clip_2",
		EditedStart: 150,
		EditedEnd:   170,
	}})
	require.NoError(t, err)
	require.Len(t, finalized, 1)

	fc := finalized[0]
	assert.Equal(t, 5.0, fc.StartTime)
	assert.Equal(t, 25.0, fc.EndTime)
	assert.Equal(t, "20.0s", fc.Duration)
	assert.Equal(t, "original", fc.SourceType)

	require.Len(t, tr.calls, 1)
	assert.Equal(t, 5.0, tr.calls[0].start)
	assert.Equal(t, 25.0, tr.calls[0].end)
	assert.Equal(t, ffmpeg.ModeCopy, tr.calls[0].mode)
}

func TestRunClampsEditOutsideClipWindow(t *testing.T) {
	dir := t.TempDir()
	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), completeJob(t, dir)))

	tr := &fakeTrimmer{}
	engine := newTestEngine(t, store, tr)

	// The edit reaches past both ends of clip_1's 15-35 window.
	finalized, err := engine.Run(context.Background(), "job-1", []models.EditedClip{{
		ID:          "clip_1",
		EditedStart: 5,
		EditedEnd:   50,
	}})
	require.NoError(t, err)
	require.Len(t, finalized, 1)
	assert.Equal(t, 0.0, finalized[0].StartTime)
	assert.Equal(t, 20.0, finalized[0].EndTime)
}

func TestRunCopiesCaptionedClipWhenEditCoversWholeFile(t *testing.T) {
	dir := t.TempDir()
	job := completeJob(t, dir)
	captioned := filepath.Join(dir, "clip_1_captioned.mp4")
	require.NoError(t, os.WriteFile(captioned, []byte("captioned media"), 0o644))
	job.CaptionedPaths = map[string]string{"clip_1": captioned}

	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), job))

	tr := &fakeTrimmer{durations: map[string]float64{captioned: 20}}
	engine := newTestEngine(t, store, tr)

	finalized, err := engine.Run(context.Background(), "job-1", []models.EditedClip{{
		ID:          "clip_1",
		EditedStart: 15,
		EditedEnd:   35,
	}})
	require.NoError(t, err)
	require.Len(t, finalized, 1)
	assert.Equal(t, "captioned", finalized[0].SourceType)
	assert.Empty(t, tr.calls, "whole-file edits copy the captioned render instead of re-cutting it")

	data, err := os.ReadFile(finalized[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "captioned media", string(data))
}

func TestRunRetriesWithReencodeWhenCopyFails(t *testing.T) {
	dir := t.TempDir()
	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), completeJob(t, dir)))

	tr := &fakeTrimmer{failCopy: true}
	engine := newTestEngine(t, store, tr)

	finalized, err := engine.Run(context.Background(), "job-1", []models.EditedClip{{
		ID:          "clip_1",
		EditedStart: 20,
		EditedEnd:   30,
	}})
	require.NoError(t, err)
	require.Len(t, finalized, 1)

	require.Len(t, tr.calls, 2)
	assert.Equal(t, ffmpeg.ModeCopy, tr.calls[0].mode)
	assert.Equal(t, ffmpeg.ModeReencode, tr.calls[1].mode)
}

func TestRunSkipsFailingClipsAndKeepsTheRest(t *testing.T) {
	dir := t.TempDir()
	job := completeJob(t, dir)
	require.NoError(t, os.Remove(job.ClipPaths["clip_3"]))

	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), job))

	engine := newTestEngine(t, store, &fakeTrimmer{})

	edits := []models.EditedClip{
		{ID: "clip_1", EditedStart: 20, EditedEnd: 30},
		{ID: "clip_2", EditedStart: 150, EditedEnd: 170},
		{ID: "clip_3", EditedStart: 285, EditedEnd: 315},
	}
	finalized, err := engine.Run(context.Background(), "job-1", edits)
	require.NoError(t, err)
	require.Len(t, finalized, 2)
	assert.Equal(t, "clip_1", finalized[0].ID)
	assert.Equal(t, "clip_2", finalized[1].ID)
}

func TestRunSkipsNonOverlappingEdit(t *testing.T) {
	dir := t.TempDir()
	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), completeJob(t, dir)))

	engine := newTestEngine(t, store, &fakeTrimmer{})

	// clip_1 covers 15-35; the edit lies entirely after it.
	finalized, err := engine.Run(context.Background(), "job-1", []models.EditedClip{{
		ID:          "clip_1",
		EditedStart: 40,
		EditedEnd:   50,
	}})
	require.NoError(t, err)
	assert.Empty(t, finalized)
}

func TestRunReplacesPreviousFinalizedSet(t *testing.T) {
	dir := t.TempDir()
	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), completeJob(t, dir)))

	engine := newTestEngine(t, store, &fakeTrimmer{})

	_, err := engine.Run(context.Background(), "job-1", []models.EditedClip{
		{ID: "clip_1", EditedStart: 20, EditedEnd: 30},
		{ID: "clip_2", EditedStart: 150, EditedEnd: 170},
	})
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), "job-1", []models.EditedClip{
		{ID: "clip_3", EditedStart: 285, EditedEnd: 315},
	})
	require.NoError(t, err)

	job, err := store.Load(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, job.FinalizedResults, 1)
	assert.Equal(t, "clip_3", job.FinalizedResults[0].ID)
}

func TestRunResolvesClipByTitleWhenIDUnknown(t *testing.T) {
	dir := t.TempDir()
	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), completeJob(t, dir)))

	engine := newTestEngine(t, store, &fakeTrimmer{})

	// The client regenerated its ids but kept the clip title.
	finalized, err := engine.Run(context.Background(), "job-1", []models.EditedClip{{
		ID:          "regenerated-id-0",
		Title:       "Clip 1",
		EditedStart: 20,
		EditedEnd:   30,
	}})
	require.NoError(t, err)
	require.Len(t, finalized, 1)
	assert.Equal(t, "clip_1", finalized[0].ID)
	assert.Equal(t, "original", finalized[0].SourceType)
}

func TestRunSkipsAmbiguousTitleFallback(t *testing.T) {
	dir := t.TempDir()
	job := completeJob(t, dir)
	job.Results[1].Title = job.Results[0].Title

	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), job))

	engine := newTestEngine(t, store, &fakeTrimmer{})

	finalized, err := engine.Run(context.Background(), "job-1", []models.EditedClip{{
		ID:          "regenerated-id-0",
		Title:       job.Results[0].Title,
		EditedStart: 20,
		EditedEnd:   30,
	}})
	require.NoError(t, err)
	assert.Empty(t, finalized, "a title shared by two records cannot identify a clip")
}

func TestRunUnknownJob(t *testing.T) {
	engine := newTestEngine(t, jobstore.NewMemoryStore(), &fakeTrimmer{})
	_, err := engine.Run(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRunRequiresCompleteJob(t *testing.T) {
	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), &models.Job{
		ID:     "job-1",
		Status: models.JobStatusProcessing,
	}))

	engine := newTestEngine(t, store, &fakeTrimmer{})
	_, err := engine.Run(context.Background(), "job-1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))
}

func TestRunSkipsDemoClips(t *testing.T) {
	store := jobstore.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), &models.Job{
		ID:     "job-1",
		Status: models.JobStatusComplete,
		Results: []models.ClipRecord{
			{ID: "clip_1", StartTime: 15, EndTime: 35, IsDemo: true},
		},
	}))

	engine := newTestEngine(t, store, &fakeTrimmer{})
	finalized, err := engine.Run(context.Background(), "job-1", []models.EditedClip{{
		ID: "clip_1", EditedStart: 20, EditedEnd: 30,
	}})
	require.NoError(t, err)
	assert.Empty(t, finalized)
}
