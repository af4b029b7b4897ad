package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/yaxinw04/hackai/internal/apperr"
	"github.com/yaxinw04/hackai/internal/ffmpeg"
	"github.com/yaxinw04/hackai/internal/jobstore"
	"github.com/yaxinw04/hackai/internal/segments"
	"github.com/yaxinw04/hackai/internal/storage"
	"github.com/yaxinw04/hackai/internal/transcribe"
	"github.com/yaxinw04/hackai/models"
)

// Downloader fetches a remote video into a local directory.
type Downloader interface {
	Available() bool
	Download(ctx context.Context, url, destDir string) (string, error)
}

// Transcriber produces timestamped transcript segments for a media file.
type Transcriber interface {
	Available() bool
	Transcribe(ctx context.Context, mediaPath string) ([]models.TranscriptSegment, error)
}

// Captioner enriches chunks with titles, captions and hashtags.
type Captioner interface {
	Enrich(ctx context.Context, chunks []models.Chunk) ([]models.Chunk, error)
}

// Renderer cuts clips out of the source video.
type Renderer interface {
	Available() bool
	Trim(ctx context.Context, input, output string, start, end float64, mode ffmpeg.Mode) error
}

// Deps holds everything the orchestrator needs to run a job.
type Deps struct {
	Store       jobstore.Store
	Storage     storage.Backend
	Downloader  Downloader
	Transcriber Transcriber
	Captioner   Captioner
	Renderer    Renderer
	Log         *logrus.Logger
}

// Config carries the tunable knobs for a pipeline run.
type Config struct {
	OutputDir        string
	DefaultClipCount int
	MaxClipCount     int
}

// OutcomeKind says whether a run produced real clips or fell back to the
// placeholder path.
type OutcomeKind string

const (
	OutcomeReal        OutcomeKind = "real"
	OutcomePlaceholder OutcomeKind = "placeholder"
)

// Outcome is the tagged result of processing one job. Placeholder outcomes
// carry a reason explaining why the real pipeline could not run.
type Outcome struct {
	Kind      OutcomeKind
	Demo      bool
	Clips     []models.ClipRecord
	ClipPaths map[string]string
	Reason    string
}

// Orchestrator drives one job through download, transcription, segmentation,
// scoring, enrichment and rendering, then writes the terminal state back to
// the store.
type Orchestrator struct {
	d   Deps
	cfg Config
}

func NewOrchestrator(d Deps, cfg Config) *Orchestrator {
	if cfg.DefaultClipCount <= 0 {
		cfg.DefaultClipCount = 3
	}
	if cfg.MaxClipCount <= 0 {
		cfg.MaxClipCount = 10
	}
	return &Orchestrator{d: d, cfg: cfg}
}

// Run executes the full pipeline for jobID. The job must be pending; any
// other status is rejected so a job is only processed once. The job always
// reaches a terminal status before Run returns: complete with real clips,
// complete with placeholder clips, or failed when even the placeholder path
// cannot be persisted.
func (o *Orchestrator) Run(ctx context.Context, jobID string) error {
	log := o.d.Log.WithField("job_id", jobID)

	job, err := o.d.Store.Update(ctx, jobID, func(j *models.Job) error {
		if j.Status != models.JobStatusPending {
			return fmt.Errorf("%w: job %s is %s, expected %s",
				apperr.ErrInvalidState, j.ID, j.Status, models.JobStatusPending)
		}
		j.Status = models.JobStatusProcessing
		j.Message = "Processing video..."
		return nil
	})
	if err != nil {
		return err
	}

	outcome := o.process(ctx, job, log)

	if outcome.Kind == OutcomePlaceholder {
		log.WithField("reason", outcome.Reason).Info("falling back to placeholder clips")
		clips, perr := o.placeholderClips(job, ParseClipCount(job.Prompt, o.cfg.DefaultClipCount, o.cfg.MaxClipCount))
		if perr != nil {
			return o.markFailed(ctx, jobID, fmt.Sprintf("placeholder generation failed: %v", perr))
		}
		outcome.Clips = clips
		outcome.Demo = true
	}

	_, err = o.d.Store.Update(ctx, jobID, func(j *models.Job) error {
		j.Status = models.JobStatusComplete
		j.Message = fmt.Sprintf("Created %d clips", len(outcome.Clips))
		j.Results = outcome.Clips
		j.IsDemo = outcome.Demo
		if j.ClipPaths == nil {
			j.ClipPaths = map[string]string{}
		}
		for id, p := range outcome.ClipPaths {
			j.ClipPaths[id] = p
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("failed to persist job results")
		return o.markFailed(ctx, jobID, fmt.Sprintf("failed to persist results: %v", err))
	}

	log.WithFields(logrus.Fields{
		"clips": len(outcome.Clips),
		"demo":  outcome.Demo,
	}).Info("job complete")
	return nil
}

func (o *Orchestrator) markFailed(ctx context.Context, jobID, msg string) error {
	_, err := o.d.Store.Update(ctx, jobID, func(j *models.Job) error {
		j.Status = models.JobStatusFailed
		j.Message = "Processing failed"
		j.Error = &msg
		return nil
	})
	if err != nil {
		return fmt.Errorf("marking job failed: %w", err)
	}
	return fmt.Errorf("job %s failed: %s", jobID, msg)
}

// process runs the real pipeline and returns a tagged outcome. Stage
// failures never propagate as errors; they collapse to a placeholder
// outcome so the job still completes.
func (o *Orchestrator) process(ctx context.Context, job *models.Job, log *logrus.Entry) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("pipeline stage panicked")
			out = Outcome{Kind: OutcomePlaceholder, Reason: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	if !o.d.Downloader.Available() || !o.d.Renderer.Available() {
		return Outcome{Kind: OutcomePlaceholder, Reason: "video tooling unavailable"}
	}

	jobDir := filepath.Join(o.cfg.OutputDir, job.ID)
	workDir := filepath.Join(jobDir, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return Outcome{Kind: OutcomePlaceholder, Reason: fmt.Sprintf("workspace setup failed: %v", err)}
	}

	log.WithField("url", job.URL).Info("downloading source video")
	sourcePath, err := o.d.Downloader.Download(ctx, job.URL, workDir)
	if err != nil {
		log.WithError(err).Warn("download failed")
		return Outcome{Kind: OutcomePlaceholder, Reason: fmt.Sprintf("download failed: %v", err)}
	}

	demo := false
	var transcript []models.TranscriptSegment
	if o.d.Transcriber.Available() {
		transcript, err = o.d.Transcriber.Transcribe(ctx, sourcePath)
		if err != nil {
			log.WithError(err).Warn("transcription failed, using mock transcript")
			transcript = nil
		}
	}
	if len(transcript) == 0 {
		transcript = transcribe.MockTranscript()
		demo = true
	}

	chunks := segments.Detect(transcript)
	clipCount := ParseClipCount(job.Prompt, o.cfg.DefaultClipCount, o.cfg.MaxClipCount)
	selected := segments.Score(chunks, clipCount)
	if len(selected) == 0 {
		return Outcome{Kind: OutcomePlaceholder, Reason: "no usable segments detected"}
	}

	if o.d.Captioner != nil {
		enriched, err := o.d.Captioner.Enrich(ctx, selected)
		if err != nil {
			log.WithError(err).Warn("caption enrichment failed, keeping heuristic metadata")
		} else {
			selected = enriched
		}
	}

	clipsDir := filepath.Join(jobDir, "clips")
	originalsDir := filepath.Join(jobDir, "original_clips")
	for _, dir := range []string{clipsDir, originalsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Outcome{Kind: OutcomePlaceholder, Reason: fmt.Sprintf("workspace setup failed: %v", err)}
		}
	}

	clips := make([]models.ClipRecord, 0, len(selected))
	clipPaths := make(map[string]string, len(selected))
	for i, chunk := range selected {
		id := fmt.Sprintf("clip_%d", i+1)
		rec := models.ClipRecord{
			ID:              id,
			Title:           chunk.Title,
			StartTime:       chunk.Start,
			EndTime:         chunk.End,
			DurationSeconds: chunk.Duration(),
			Text:            chunk.Text,
			Caption:         chunk.Caption,
			Hashtags:        chunk.Hashtags,
		}

		outPath := filepath.Join(clipsDir, id+".mp4")
		if err := o.d.Renderer.Trim(ctx, sourcePath, outPath, chunk.Start, chunk.End, ffmpeg.ModeReencode); err != nil {
			log.WithError(err).WithField("clip_id", id).Warn("clip render failed")
			msg := err.Error()
			rec.RenderError = &msg
			clips = append(clips, rec)
			continue
		}

		originalPath := filepath.Join(originalsDir, id+".mp4")
		if err := copyFile(outPath, originalPath); err != nil {
			log.WithError(err).WithField("clip_id", id).Warn("failed to keep original copy")
			originalPath = outPath
		}

		urlPath, err := o.d.Storage.Upload(outPath, fmt.Sprintf("%s/clips/%s.mp4", job.ID, id))
		if err != nil {
			log.WithError(err).WithField("clip_id", id).Warn("clip upload failed")
			msg := err.Error()
			rec.RenderError = &msg
			clips = append(clips, rec)
			continue
		}

		rec.URLPath = urlPath
		clipPaths[id] = originalPath
		clips = append(clips, rec)
	}

	rendered := 0
	for _, c := range clips {
		if c.RenderError == nil {
			rendered++
		}
	}
	if rendered == 0 {
		return Outcome{Kind: OutcomePlaceholder, Reason: "all clip renders failed"}
	}

	return Outcome{Kind: OutcomeReal, Demo: demo, Clips: clips, ClipPaths: clipPaths}
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
