package segments

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yaxinw04/hackai/models"
)

// Lexical engagement heuristics. Matching is substring containment over the
// lowercased chunk text, so "!" in the excitement list counts punctuation.
var positiveWords = []string{
	"amazing", "incredible", "wow", "awesome", "fantastic",
	"perfect", "love", "best", "great", "excellent",
	"mind-blowing", "unbelievable", "insane", "crazy",
	"secret", "hack", "tip", "trick", "method",
	"result", "proven", "works", "success", "winner",
}

var excitementWords = []string{
	"excited", "pumped", "thrilled", "stoked",
	"!", "really", "super", "so", "very",
}

var hookPhrases = []string{
	"you won't believe", "this is crazy", "check this out",
	"wait for it", "here's the thing", "plot twist",
	"but here's what happened", "this changed everything",
}

// Score ranks chunks and returns the topK in video order. Each chunk gets an
// engagement score (lexicons, duration shape, transcription confidence) plus
// a position score; ties keep the original sequence order. The selected set
// is re-sorted by start time so consumers see clips in timeline order.
func Score(chunks []models.Chunk, topK int) []models.Chunk {
	if topK <= 0 || len(chunks) == 0 {
		return nil
	}

	scored := make([]models.Chunk, len(chunks))
	copy(scored, chunks)
	for i := range scored {
		scored[i].EngagementScore = engagementScore(scored[i])
		scored[i].TimingScore = timingScore(i, len(scored))
		scored[i].TotalScore = scored[i].EngagementScore + scored[i].TimingScore
		scored[i].Title = chunkTitle(scored[i], i+1)
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].TotalScore > scored[b].TotalScore
	})
	if topK < len(scored) {
		scored = scored[:topK]
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Start < scored[b].Start
	})
	return scored
}

func engagementScore(chunk models.Chunk) float64 {
	text := strings.ToLower(chunk.Text)
	score := 0.0

	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			score += 0.3
		}
	}
	for _, w := range excitementWords {
		if strings.Contains(text, w) {
			score += 0.2
		}
	}
	for _, p := range hookPhrases {
		if strings.Contains(text, p) {
			score += 0.5
		}
	}

	// Prefer 20-45 second clips.
	duration := chunk.Duration()
	if duration >= 20 && duration <= 45 {
		score += 0.4
	} else if duration < 15 || duration > 60 {
		score -= 0.3
	}

	var confidence float64
	for _, seg := range chunk.Segments {
		confidence += seg.Confidence
	}
	n := len(chunk.Segments)
	if n == 0 {
		n = 1
	}
	score += confidence / float64(n) * 0.2

	return score
}

// timingScore slightly prefers content from the beginning and middle of the
// video over the tail.
func timingScore(position, total int) float64 {
	denom := total - 1
	if denom < 1 {
		denom = 1
	}
	relative := float64(position) / float64(denom)
	switch {
	case relative < 0.2:
		return 0.2
	case relative < 0.8:
		return 0.3
	default:
		return 0.1
	}
}

// titlePatterns maps content keywords to display titles, checked in order.
var titlePatterns = []struct {
	words []string
	title string
}{
	{[]string{"welcome", "intro", "start", "begin"}, "Opening Hook"},
	{[]string{"secret", "hack", "tip", "trick"}, "Pro Tip"},
	{[]string{"result", "outcome", "what happened"}, "Big Reveal"},
	{[]string{"crazy", "insane", "unbelievable", "incredible"}, "Viral Moment"},
	{[]string{"important", "key", "main", "crucial"}, "Key Insight"},
	{[]string{"final", "last", "conclusion", "wrap"}, "Perfect Ending"},
	{[]string{"funny", "hilarious", "laugh"}, "Comedy Gold"},
	{[]string{"emotional", "touching", "heart"}, "Emotional Peak"},
}

func chunkTitle(chunk models.Chunk, index int) string {
	text := strings.ToLower(chunk.Text)
	for _, p := range titlePatterns {
		for _, w := range p.words {
			if strings.Contains(text, w) {
				return p.title
			}
		}
	}
	return fmt.Sprintf("Highlight #%d", index)
}
