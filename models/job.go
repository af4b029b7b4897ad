package models

import "time"

// JobStatus represents the lifecycle stage of a processing job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusComplete   JobStatus = "complete"
	JobStatusFailed     JobStatus = "failed"
)

// Job is the persisted record for one video-to-shorts run. The job store
// exclusively owns mutation; the pipeline and the finalize engine go through
// the store's read-modify-write to update it.
type Job struct {
	ID      string    `json:"id"`
	Status  JobStatus `json:"status"`
	Message string    `json:"message"`
	URL     string    `json:"url"`
	Prompt  string    `json:"prompt"`

	// Results is written exactly once, when the pipeline completes.
	Results []ClipRecord `json:"results,omitempty"`

	// FinalizedResults is fully replaced on every successful finalize call.
	FinalizedResults []FinalizedClip `json:"finalized_results,omitempty"`

	// IsDemo is true when any stage fell back to placeholder output.
	IsDemo bool `json:"is_demo"`

	// Error carries diagnostic text for failed jobs.
	Error *string `json:"error,omitempty"`

	// ClipPaths maps clip id to the local path of its original extraction.
	// CaptionedPaths maps clip id to the local path of a caption-burned
	// render, when one exists. The pipeline and the caption handlers keep
	// these indices current so nothing ever resolves clips by matching
	// filenames.
	ClipPaths      map[string]string `json:"clip_paths,omitempty"`
	CaptionedPaths map[string]string `json:"captioned_paths,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClipRecord is a rendered clip produced by the pipeline. Immutable once
// written into Job.Results.
type ClipRecord struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	StartTime       float64  `json:"start_time"` // absolute seconds in the source video
	EndTime         float64  `json:"end_time"`
	DurationSeconds float64  `json:"duration"`
	Text            string   `json:"text"`
	Caption         string   `json:"caption,omitempty"`
	Hashtags        []string `json:"hashtags,omitempty"`
	URLPath         string   `json:"url_path"`
	IsDemo          bool     `json:"is_demo"`
	RenderError     *string  `json:"render_error,omitempty"`
}

// EditedClip is the client-submitted desired trim of an existing ClipRecord,
// expressed in absolute source-video time.
type EditedClip struct {
	ID          string  `json:"id" validate:"required"`
	Title       string  `json:"title"`
	EditedStart float64 `json:"edited_start" validate:"gte=0"`
	EditedEnd   float64 `json:"edited_end" validate:"gtfield=EditedStart"`
	// Original window echoed back by the client for validation.
	OriginalStart float64 `json:"original_start"`
	OriginalEnd   float64 `json:"original_end"`
	// Anchor for relative-offset math; duplicates the ClipRecord window.
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// FinalizedClip is the output of the finalize engine for one edited clip.
// StartTime/EndTime here are relative to the clip-local file, which starts
// at zero.
type FinalizedClip struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Path       string   `json:"path"`
	StartTime  float64  `json:"start_time"`
	EndTime    float64  `json:"end_time"`
	Duration   string   `json:"duration"`
	Text       string   `json:"text,omitempty"`
	Caption    string   `json:"caption,omitempty"`
	Hashtags   []string `json:"hashtags,omitempty"`
	SourcePath string   `json:"source_path"`
	SourceType string   `json:"source_type"` // "captioned" or "original"
}
