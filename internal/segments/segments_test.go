package segments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaxinw04/hackai/internal/transcribe"
	"github.com/yaxinw04/hackai/models"
)

func TestDetectChunkBounds(t *testing.T) {
	chunks := Detect(transcribe.MockTranscript())
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.GreaterOrEqual(t, c.Duration(), MinChunkSeconds)
		assert.LessOrEqual(t, c.Duration(), MaxChunkSeconds)
		assert.Equal(t, c.Segments[0].Start, c.Start)
		assert.Equal(t, c.Segments[len(c.Segments)-1].End, c.End)
	}
}

func TestDetectNeverSplitsSegments(t *testing.T) {
	transcript := transcribe.MockTranscript()
	chunks := Detect(transcript)

	var total int
	for _, c := range chunks {
		total += len(c.Segments)
		for i := 1; i < len(c.Segments); i++ {
			assert.Equal(t, c.Segments[i-1].End, c.Segments[i].Start,
				"segments inside a chunk must stay consecutive")
		}
	}
	assert.Equal(t, len(transcript), total, "every transcript segment lands in exactly one chunk")
}

func TestDetectDropsShortTrailingChunk(t *testing.T) {
	transcript := []models.TranscriptSegment{
		{Start: 0, End: 30, Text: "first part", Confidence: 0.9},
		{Start: 30, End: 55, Text: "second part", Confidence: 0.9},
		{Start: 55, End: 60, Text: "tail", Confidence: 0.9},
	}
	chunks := Detect(transcript)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0.0, chunks[0].Start)
	assert.Equal(t, 55.0, chunks[0].End)
}

func TestDetectKeepsOversizedSegmentWhole(t *testing.T) {
	transcript := []models.TranscriptSegment{
		{Start: 0, End: 90, Text: "one very long uninterrupted segment", Confidence: 0.9},
		{Start: 90, End: 110, Text: "a normal follow-up", Confidence: 0.9},
	}
	chunks := Detect(transcript)
	require.Len(t, chunks, 2)
	assert.Equal(t, 90.0, chunks[0].Duration(), "a segment past the ceiling stays one chunk")
	require.Len(t, chunks[0].Segments, 1)
	assert.Equal(t, 20.0, chunks[1].Duration())
}

func TestDetectEmptyTranscript(t *testing.T) {
	assert.Empty(t, Detect(nil))
}

func TestScoreReturnsTopKInTimelineOrder(t *testing.T) {
	chunks := Detect(transcribe.MockTranscript())
	require.Greater(t, len(chunks), 3)

	selected := Score(chunks, 3)
	require.Len(t, selected, 3)
	for i := 1; i < len(selected); i++ {
		assert.Less(t, selected[i-1].Start, selected[i].Start)
	}
}

func TestScoreTopKLargerThanInput(t *testing.T) {
	chunks := Detect(transcribe.MockTranscript())
	selected := Score(chunks, len(chunks)+10)
	require.Len(t, selected, len(chunks))
	for i := 1; i < len(selected); i++ {
		assert.Less(t, selected[i-1].Start, selected[i].Start)
	}
}

func TestScoreDoesNotMutateInput(t *testing.T) {
	chunks := Detect(transcribe.MockTranscript())
	before := chunks[0].TotalScore

	Score(chunks, 2)
	assert.Equal(t, before, chunks[0].TotalScore)
	assert.Empty(t, chunks[0].Title)
}

func TestScoreZeroTopK(t *testing.T) {
	chunks := Detect(transcribe.MockTranscript())
	assert.Nil(t, Score(chunks, 0))
}

func TestEngagementPrefersHookLanguage(t *testing.T) {
	base := []models.TranscriptSegment{{Start: 0, End: 30, Confidence: 0.9}}

	plain := models.Chunk{Start: 0, End: 30, Text: "we walked along the road", Segments: base}
	hooked := models.Chunk{Start: 0, End: 30, Text: "you won't believe this amazing secret", Segments: base}

	assert.Greater(t, engagementScore(hooked), engagementScore(plain))
}

func TestTimingScoreShape(t *testing.T) {
	total := 10
	assert.Equal(t, 0.2, timingScore(0, total))
	assert.Equal(t, 0.3, timingScore(5, total))
	assert.Equal(t, 0.1, timingScore(9, total))
}

func TestChunkTitles(t *testing.T) {
	cases := []struct {
		text  string
		title string
	}{
		{"welcome to the show", "Opening Hook"},
		{"here is a secret trick", "Pro Tip"},
		{"this is absolutely insane", "Viral Moment"},
		{"one final thought before we wrap", "Perfect Ending"},
		{"nothing matches here", "Highlight #7"},
	}
	for _, tc := range cases {
		got := chunkTitle(models.Chunk{Text: tc.text}, 7)
		assert.Equal(t, tc.title, got, tc.text)
	}
}
