// Package ffmpeg wraps the ffmpeg/ffprobe binaries. Everything here shells
// out; callers that need to survive without the tools check Available first.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Mode selects how a trim is performed.
type Mode int

const (
	// ModeCopy remuxes without re-encoding. Fast and lossless, but cuts land
	// on keyframes, so boundaries are approximate.
	ModeCopy Mode = iota
	// ModeReencode decodes and re-encodes. Slow, but trims anywhere.
	ModeReencode
)

func (m Mode) String() string {
	if m == ModeCopy {
		return "copy"
	}
	return "reencode"
}

// Adapter invokes ffmpeg and ffprobe from configured paths.
type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// Available reports whether the ffmpeg binary can be found.
func (a *Adapter) Available() bool {
	_, err := exec.LookPath(a.ffmpeg)
	return err == nil
}

// Trim extracts [start, end) seconds of input into output. In copy mode the
// streams are remuxed as-is; in re-encode mode the video is re-encoded with
// libx264 so the cut is exact.
func (a *Adapter) Trim(ctx context.Context, input, output string, start, end float64, mode Mode) error {
	if end <= start {
		return fmt.Errorf("trim window [%f, %f) is empty", start, end)
	}
	args := []string{
		"-y",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(end - start),
		"-i", input,
	}
	if mode == ModeCopy {
		args = append(args, "-c", "copy")
	} else {
		args = append(args,
			"-c:v", "libx264",
			"-preset", "fast",
			"-crf", "23",
			"-c:a", "aac",
		)
	}
	args = append(args, output)

	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg trim (%s) failed: %w\nstderr: %s", mode, err, stderr.String())
	}
	return nil
}

// BurnSubtitles renders the SRT file onto input using the subtitles filter
// with an ASS force_style string, re-encoding the video stream.
func (a *Adapter) BurnSubtitles(ctx context.Context, input, srtPath, forceStyle, output string) error {
	filter := fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(srtPath), forceStyle)
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", input,
		"-vf", filter,
		"-c:a", "copy",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		output,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg subtitle burn failed: %w\nstderr: %s", err, stderr.String())
	}
	return nil
}

// ProbeDuration returns the container duration of the file in seconds.
func (a *Adapter) ProbeDuration(ctx context.Context, input string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		input,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w\nstderr: %s", err, stderr.String())
	}
	s := strings.TrimSpace(stdout.String())
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
