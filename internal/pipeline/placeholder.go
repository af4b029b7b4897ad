package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yaxinw04/hackai/models"
)

// demoClip is one entry of the fixed placeholder clip table.
type demoClip struct {
	Title    string
	Start    float64
	End      float64
	Text     string
	Caption  string
	Hashtags []string
}

// demoClips stands in for real pipeline output when video dependencies are
// missing or a stage fails unrecoverably. The table is fixed so placeholder
// jobs are deterministic.
var demoClips = []demoClip{
	{
		Title: "Opening Hook", Start: 15, End: 35,
		Text:     "Welcome to today's video! This opening will grab your attention with an incredible insight.",
		Caption:  "This will blow your mind! 🤯",
		Hashtags: []string{"#viral", "#mindblown", "#mustsee"},
	},
	{
		Title: "Key Insight", Start: 145, End: 175,
		Text:     "Here's the main point that everyone needs to understand. This changes everything!",
		Caption:  "Game changer right here! 🔥",
		Hashtags: []string{"#gamechange", "#amazing", "#viral"},
	},
	{
		Title: "Viral Moment", Start: 280, End: 320,
		Text:     "Wait until you see this incredible result! You won't believe what happens next.",
		Caption:  "You won't believe this! 😱",
		Hashtags: []string{"#shocking", "#unbelievable", "#epic"},
	},
	{
		Title: "Pro Tip", Start: 420, End: 450,
		Text:     "Here's the secret technique that most people don't know about. This is pure gold!",
		Caption:  "This is pure gold! ✨",
		Hashtags: []string{"#protip", "#secret", "#viral"},
	},
	{
		Title: "Perfect Ending", Start: 580, End: 610,
		Text:     "Thanks for watching! Make sure to try this yourself and let me know how it goes.",
		Caption:  "Try this yourself! 🚀",
		Hashtags: []string{"#tryit", "#results", "#viral"},
	},
}

// placeholderClips builds the demo clip set for a job. Each clip gets an
// info text file under clips/ so status responses still point at something
// servable; demo clips have no media sources, so finalize skips them.
func (o *Orchestrator) placeholderClips(job *models.Job, count int) ([]models.ClipRecord, error) {
	if count > len(demoClips) {
		count = len(demoClips)
	}
	clipsDir := filepath.Join(o.cfg.OutputDir, job.ID, "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return nil, err
	}

	records := make([]models.ClipRecord, 0, count)
	for i, dc := range demoClips[:count] {
		id := fmt.Sprintf("clip_%d", i+1)
		filename := fmt.Sprintf("%s_demo.txt", id)
		localPath := filepath.Join(clipsDir, filename)

		info := fmt.Sprintf("DEMO CLIP %d: %s\n\nTime Range: %.1fs - %.1fs\nDuration: %.1f seconds\n\nContent:\n%s\n\nCaption: %s\n\nSource URL: %s\nPrompt: %s\n\nThis is a demo file showing what would be created.\nInstall yt-dlp and ffmpeg for real video clips.\n",
			i+1, dc.Title, dc.Start, dc.End, dc.End-dc.Start, dc.Text, dc.Caption, job.URL, job.Prompt)
		if err := os.WriteFile(localPath, []byte(info), 0o644); err != nil {
			return nil, err
		}

		urlPath, err := o.d.Storage.Upload(localPath, fmt.Sprintf("%s/clips/%s", job.ID, filename))
		if err != nil {
			return nil, err
		}

		records = append(records, models.ClipRecord{
			ID:              id,
			Title:           dc.Title,
			StartTime:       dc.Start,
			EndTime:         dc.End,
			DurationSeconds: dc.End - dc.Start,
			Text:            dc.Text,
			Caption:         dc.Caption,
			Hashtags:        dc.Hashtags,
			URLPath:         urlPath,
			IsDemo:          true,
		})
	}
	return records, nil
}
