// Package transcribe turns a media file into timestamped transcript
// segments, using whisper.cpp when a binary and model are configured.
package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/yaxinw04/hackai/internal/apperr"
	"github.com/yaxinw04/hackai/models"
)

// WhisperCLI shells out to a whisper.cpp binary with JSON output.
type WhisperCLI struct {
	bin    string
	model  string
	ffmpeg string
}

func NewWhisperCLI(binPath, modelPath, ffmpegPath string) *WhisperCLI {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &WhisperCLI{bin: binPath, model: modelPath, ffmpeg: ffmpegPath}
}

// Available reports whether both the binary and the model file are present.
func (w *WhisperCLI) Available() bool {
	if w.bin == "" || w.model == "" {
		return false
	}
	if _, err := exec.LookPath(w.bin); err != nil {
		return false
	}
	_, err := os.Stat(w.model)
	return err == nil
}

// whisperOutput matches the -oj JSON layout of whisper.cpp.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"` // milliseconds
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe extracts mono 16k audio from mediaPath and runs whisper over
// it, returning ordered segments.
func (w *WhisperCLI) Transcribe(ctx context.Context, mediaPath string) ([]models.TranscriptSegment, error) {
	if !w.Available() {
		return nil, fmt.Errorf("%w: whisper binary or model missing", apperr.ErrDependencyUnavailable)
	}
	workDir, err := os.MkdirTemp("", "transcribe")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "audio.wav")
	extract := exec.CommandContext(ctx, w.ffmpeg,
		"-y", "-i", mediaPath,
		"-vn", "-ac", "1", "-ar", "16000", "-f", "wav",
		wavPath,
	)
	if b, err := extract.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("extract audio: %w\n%s", err, string(b))
	}

	outPrefix := filepath.Join(workDir, "whisper")
	run := exec.CommandContext(ctx, w.bin,
		"-m", w.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	)
	if b, err := run.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, err
	}
	var out whisperOutput
	if err := json.Unmarshal(jb, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segments := make([]models.TranscriptSegment, 0, len(out.Transcription))
	for _, t := range out.Transcription {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		segments = append(segments, models.TranscriptSegment{
			Start:      float64(t.Offsets.From) / 1000,
			End:        float64(t.Offsets.To) / 1000,
			Text:       text,
			Confidence: 0.9, // whisper.cpp JSON has no per-segment confidence
		})
	}
	return segments, nil
}

// MockTranscript is the fixed transcript substituted when no transcriber is
// available or transcription fails. Deterministic so downstream stages stay
// testable.
func MockTranscript() []models.TranscriptSegment {
	return []models.TranscriptSegment{
		{Start: 0, End: 15, Text: "Welcome to today's video! I'm excited to share some amazing insights with you.", Confidence: 0.95},
		{Start: 15, End: 45, Text: "First, let's talk about the most important concept that everyone needs to understand.", Confidence: 0.92},
		{Start: 45, End: 75, Text: "This is actually incredible! You won't believe what happens next.", Confidence: 0.88},
		{Start: 75, End: 120, Text: "Here's the key insight that changed everything for me. This is mind-blowing!", Confidence: 0.91},
		{Start: 120, End: 180, Text: "Now, let me show you exactly how to implement this in your own life.", Confidence: 0.89},
		{Start: 180, End: 240, Text: "The results speak for themselves. This technique has helped thousands of people.", Confidence: 0.93},
		{Start: 240, End: 300, Text: "Before we wrap up, here's one final tip that will make all the difference.", Confidence: 0.87},
		{Start: 300, End: 330, Text: "Thanks for watching! Don't forget to like and subscribe for more content like this.", Confidence: 0.94},
	}
}
