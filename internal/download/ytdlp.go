// Package download fetches source videos with yt-dlp.
package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/yaxinw04/hackai/internal/apperr"
)

// YTDLP downloads a video URL into a working directory.
type YTDLP struct {
	bin string
}

func New(binPath string) *YTDLP {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &YTDLP{bin: binPath}
}

// Available reports whether the yt-dlp binary can be found.
func (d *YTDLP) Available() bool {
	_, err := exec.LookPath(d.bin)
	return err == nil
}

// Download fetches url into destDir and returns the path of the downloaded
// file. yt-dlp picks the extension, so the result is located by prefix.
func (d *YTDLP) Download(ctx context.Context, url, destDir string) (string, error) {
	if !d.Available() {
		return "", fmt.Errorf("%w: %s", apperr.ErrDependencyUnavailable, d.bin)
	}
	template := filepath.Join(destDir, "source.%(ext)s")
	cmd := exec.CommandContext(ctx, d.bin,
		"-f", "best[ext=mp4]/best",
		"-o", template,
		"--no-playlist",
		"--socket-timeout", "60",
		"--retries", "5",
		url,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w\nstderr: %s", err, stderr.String())
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "source.") {
			return filepath.Join(destDir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("yt-dlp produced no output file in %s", destDir)
}
