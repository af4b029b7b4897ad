package captions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yaxinw04/hackai/internal/ffmpeg"
	"github.com/yaxinw04/hackai/models"
)

// Burner renders caption segments onto a clip file via the subtitles filter.
type Burner struct {
	ff *ffmpeg.Adapter
}

func NewBurner(ff *ffmpeg.Adapter) *Burner {
	return &Burner{ff: ff}
}

// Apply writes the captions as a temporary SRT file and burns them into
// input, producing output. Typewriter animation expands captions to
// word-by-word segments first.
func (b *Burner) Apply(ctx context.Context, input, output string, caps []models.CaptionSegment, style models.CaptionStyle) error {
	if style.Animation == "typewriter" {
		caps = WordByWord(caps)
	}

	srtFile, err := os.CreateTemp("", "captions-*.srt")
	if err != nil {
		return err
	}
	srtPath := srtFile.Name()
	defer os.Remove(srtPath)

	if _, err := srtFile.WriteString(RenderSRT(caps)); err != nil {
		srtFile.Close()
		return err
	}
	if err := srtFile.Close(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	return b.ff.BurnSubtitles(ctx, input, srtPath, ForceStyle(style), output)
}

// SegmentsFromText spreads the clip's transcript text across its duration,
// grouping words into caption lines. Word timing is derived from the overall
// words-per-second rate, clamped to 0.2-0.5s per word.
func SegmentsFromText(text string, duration float64) []models.CaptionSegment {
	words := strings.Fields(text)
	if len(words) == 0 || duration <= 0 {
		return nil
	}

	wordsPerSecond := float64(len(words)) / duration
	wordDuration := 1 / wordsPerSecond
	if wordDuration < 0.2 {
		wordDuration = 0.2
	}
	if wordDuration > 0.5 {
		wordDuration = 0.5
	}

	const wordsPerLine = 4
	var out []models.CaptionSegment
	current := 0.0
	for i := 0; i < len(words); i += wordsPerLine {
		j := i + wordsPerLine
		if j > len(words) {
			j = len(words)
		}
		end := current + float64(j-i)*wordDuration
		if end > duration {
			end = duration
		}
		if end <= current {
			break
		}
		out = append(out, models.CaptionSegment{
			Start: current,
			End:   end,
			Text:  strings.Join(words[i:j], " "),
		})
		current = end
	}
	return out
}

// WordByWord expands captions so that each segment shows the accumulated
// text one word at a time, for the typewriter effect.
func WordByWord(caps []models.CaptionSegment) []models.CaptionSegment {
	var out []models.CaptionSegment
	for _, seg := range caps {
		words := strings.Fields(seg.Text)
		if len(words) == 0 {
			continue
		}

		duration := seg.End - seg.Start
		wordsPerSecond := 2.0
		if duration > 0 {
			wordsPerSecond = float64(len(words)) / duration
		}
		wordDuration := 1 / wordsPerSecond
		if wordDuration < 0.2 {
			wordDuration = 0.2
		}
		if wordDuration > 0.5 {
			wordDuration = 0.5
		}

		current := seg.Start
		var accumulated strings.Builder
		for i, word := range words {
			accumulated.WriteString(word)
			if i < len(words)-1 {
				accumulated.WriteString(" ")
			}
			next := current + wordDuration
			if next > seg.End {
				next = seg.End
			}
			out = append(out, models.CaptionSegment{
				Start:      current,
				End:        next,
				Text:       accumulated.String(),
				Confidence: seg.Confidence,
			})
			current = next
			if current >= seg.End {
				break
			}
		}
	}
	return out
}

// RenderSRT serializes caption segments in SRT format.
func RenderSRT(caps []models.CaptionSegment) string {
	var b strings.Builder
	for i, seg := range caps {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, srtTime(seg.Start), srtTime(seg.End), seg.Text)
	}
	return b.String()
}

func srtTime(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// positionStyles maps caption position to ASS alignment and vertical margin,
// tuned for vertical mobile video.
var positionStyles = map[string]string{
	"top":    "Alignment=8,MarginV=60",
	"center": "Alignment=2,MarginV=0",
	"bottom": "Alignment=2,MarginV=200",
}

// ForceStyle assembles the force_style string for the subtitles filter.
func ForceStyle(style models.CaptionStyle) string {
	position, ok := positionStyles[style.Position]
	if !ok {
		position = positionStyles["bottom"]
	}
	parts := []string{
		"FontName=Arial Black",
		"FontSize=" + strconv.Itoa(style.FontSize),
		fmt.Sprintf("PrimaryColour=&H%08X", hexToDecimal(style.FontColor)),
		fmt.Sprintf("OutlineColour=&H%08X", hexToDecimal(style.OutlineColor)),
		fmt.Sprintf("BackColour=&H%08X", hexToDecimal(style.BackgroundColor)),
		"Bold=1",
		"Outline=" + strconv.Itoa(style.OutlineWidth),
		"Shadow=0",
		"BorderStyle=1",
		"Spacing=2",
		position,
	}
	return strings.Join(parts, ",")
}

func hexToDecimal(hexColor string) int64 {
	if hexColor == "" || hexColor == "transparent" {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(hexColor, "#"), 16, 64)
	if err != nil {
		return 0
	}
	return n
}
