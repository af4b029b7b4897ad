package finalize

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/yaxinw04/hackai/internal/apperr"
	"github.com/yaxinw04/hackai/internal/ffmpeg"
	"github.com/yaxinw04/hackai/internal/jobstore"
	"github.com/yaxinw04/hackai/models"
)

// edgeTolerance is how close an edited boundary must be to the clip file's
// own boundary before the trim degenerates to a plain copy.
const edgeTolerance = 0.5

// Trimmer is the slice of the ffmpeg adapter the engine needs.
type Trimmer interface {
	Trim(ctx context.Context, input, output string, start, end float64, mode ffmpeg.Mode) error
	ProbeDuration(ctx context.Context, input string) (float64, error)
}

// Engine reconciles client-edited clip windows against the rendered clip
// files and produces a fresh finalized set for a job.
type Engine struct {
	store     jobstore.Store
	trimmer   Trimmer
	outputDir string
	log       *logrus.Logger
}

func NewEngine(store jobstore.Store, trimmer Trimmer, outputDir string, log *logrus.Logger) *Engine {
	return &Engine{store: store, trimmer: trimmer, outputDir: outputDir, log: log}
}

// Run finalizes the given edits for jobID and fully replaces the job's
// finalized results with the new set. Individual clips that cannot be
// finalized are skipped; only an unknown job or a job that is not complete
// fails the whole call.
func (e *Engine) Run(ctx context.Context, jobID string, edits []models.EditedClip) ([]models.FinalizedClip, error) {
	job, err := e.store.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: job %s", apperr.ErrNotFound, jobID)
	}
	if job.Status != models.JobStatusComplete {
		return nil, fmt.Errorf("%w: job %s is %s, finalize requires %s",
			apperr.ErrInvalidState, jobID, job.Status, models.JobStatusComplete)
	}

	finalDir := filepath.Join(e.outputDir, jobID, "finalized_clips")
	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating finalized dir: %w", err)
	}

	log := e.log.WithField("job_id", jobID)
	finalized := make([]models.FinalizedClip, 0, len(edits))
	for _, edit := range edits {
		fc, err := e.finalizeOne(ctx, job, edit, finalDir)
		if err != nil {
			log.WithError(err).WithField("clip_id", edit.ID).Warn("skipping clip")
			continue
		}
		finalized = append(finalized, *fc)
	}

	_, err = e.store.Update(ctx, jobID, func(j *models.Job) error {
		j.FinalizedResults = finalized
		j.Message = fmt.Sprintf("Finalized %d clips", len(finalized))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persisting finalized results: %w", err)
	}

	log.WithField("finalized", len(finalized)).Info("finalize complete")
	return finalized, nil
}

// finalizeOne trims one edited window out of its source clip file. The edit
// arrives in absolute source-video seconds; the clip file starts at the
// record's StartTime, so the window is shifted into clip-local time and
// clamped to the file before cutting.
func (e *Engine) finalizeOne(ctx context.Context, job *models.Job, edit models.EditedClip, finalDir string) (*models.FinalizedClip, error) {
	rec := findRecord(job.Results, edit.ID, edit.Title)
	if rec == nil {
		return nil, fmt.Errorf("no clip record for %s", edit.ID)
	}
	if rec.IsDemo {
		return nil, fmt.Errorf("clip %s is a demo placeholder with no media", rec.ID)
	}

	sourcePath, sourceType := resolveSource(job, rec.ID)
	if sourcePath == "" {
		return nil, fmt.Errorf("no source file indexed for clip %s", rec.ID)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, fmt.Errorf("source file for clip %s: %w", rec.ID, err)
	}

	clipLen := rec.EndTime - rec.StartTime
	relStart := math.Max(0, edit.EditedStart-rec.StartTime)
	relEnd := math.Min(edit.EditedEnd-rec.StartTime, clipLen)
	if relEnd-relStart <= 0 {
		return nil, fmt.Errorf("edited window [%f, %f] leaves no overlap with clip %s",
			edit.EditedStart, edit.EditedEnd, rec.ID)
	}

	outPath := filepath.Join(finalDir, rec.ID+"_final.mp4")

	if sourceType == "captioned" && coversWholeFile(ctx, e.trimmer, sourcePath, relStart, relEnd) {
		if err := copyFile(sourcePath, outPath); err != nil {
			return nil, fmt.Errorf("copying captioned clip %s: %w", rec.ID, err)
		}
	} else {
		if err := e.trimmer.Trim(ctx, sourcePath, outPath, relStart, relEnd, ffmpeg.ModeCopy); err != nil {
			e.log.WithError(err).WithField("clip_id", rec.ID).Warn("stream-copy trim failed, re-encoding")
			if err := e.trimmer.Trim(ctx, sourcePath, outPath, relStart, relEnd, ffmpeg.ModeReencode); err != nil {
				return nil, fmt.Errorf("%w: clip %s: %v", apperr.ErrRenderFailure, rec.ID, err)
			}
		}
		if fi, err := os.Stat(outPath); err != nil || fi.Size() == 0 {
			return nil, fmt.Errorf("%w: clip %s produced no output", apperr.ErrRenderFailure, rec.ID)
		}
	}

	title := edit.Title
	if title == "" {
		title = rec.Title
	}
	return &models.FinalizedClip{
		ID:         rec.ID,
		Title:      title,
		Path:       outPath,
		StartTime:  relStart,
		EndTime:    relEnd,
		Duration:   fmt.Sprintf("%.1fs", relEnd-relStart),
		Text:       rec.Text,
		Caption:    rec.Caption,
		Hashtags:   rec.Hashtags,
		SourcePath: sourcePath,
		SourceType: sourceType,
	}, nil
}

// resolveSource prefers a caption-burned render over the raw extraction.
func resolveSource(job *models.Job, clipID string) (string, string) {
	if p, ok := job.CaptionedPaths[clipID]; ok && p != "" {
		return p, "captioned"
	}
	if p, ok := job.ClipPaths[clipID]; ok && p != "" {
		return p, "original"
	}
	return "", ""
}

// coversWholeFile reports whether the edited window spans the entire clip
// file within tolerance. Re-cutting a caption-burned file in that case only
// degrades it, so the caller copies it instead.
func coversWholeFile(ctx context.Context, t Trimmer, path string, relStart, relEnd float64) bool {
	dur, err := t.ProbeDuration(ctx, path)
	if err != nil || dur <= 0 {
		return false
	}
	return relStart <= edgeTolerance && relEnd >= dur-edgeTolerance
}

// findRecord matches an edit to its clip record by id, falling back to the
// title when a client regenerated its ids. The title fallback only applies
// when exactly one record carries that title.
func findRecord(results []models.ClipRecord, id, title string) *models.ClipRecord {
	for i := range results {
		if results[i].ID == id {
			return &results[i]
		}
	}
	if title == "" {
		return nil
	}
	var match *models.ClipRecord
	for i := range results {
		if results[i].Title == title {
			if match != nil {
				return nil
			}
			match = &results[i]
		}
	}
	return match
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
