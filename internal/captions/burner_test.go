package captions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaxinw04/hackai/models"
)

func TestSegmentsFromText(t *testing.T) {
	text := "this is a longer piece of transcript text spread over the clip"
	segs := SegmentsFromText(text, 20)
	require.NotEmpty(t, segs)

	assert.Equal(t, 0.0, segs[0].Start)
	var rebuilt []string
	for i, s := range segs {
		assert.Greater(t, s.End, s.Start)
		assert.LessOrEqual(t, s.End, 20.0)
		if i > 0 {
			assert.Equal(t, segs[i-1].End, s.Start)
		}
		assert.LessOrEqual(t, len(strings.Fields(s.Text)), 4)
		rebuilt = append(rebuilt, s.Text)
	}
	assert.Equal(t, text, strings.Join(rebuilt, " "))
}

func TestSegmentsFromTextEmpty(t *testing.T) {
	assert.Nil(t, SegmentsFromText("", 20))
	assert.Nil(t, SegmentsFromText("words here", 0))
}

func TestWordByWordAccumulates(t *testing.T) {
	in := []models.CaptionSegment{{Start: 0, End: 2, Text: "three word line"}}
	out := WordByWord(in)
	require.Len(t, out, 3)

	assert.Equal(t, "three", out[0].Text)
	assert.Equal(t, "three word", out[1].Text)
	assert.Equal(t, "three word line", out[2].Text)

	for i, s := range out {
		assert.GreaterOrEqual(t, s.Start, 0.0)
		assert.LessOrEqual(t, s.End, 2.0)
		if i > 0 {
			assert.Equal(t, out[i-1].End, s.Start)
		}
	}
}

func TestRenderSRT(t *testing.T) {
	srt := RenderSRT([]models.CaptionSegment{
		{Start: 0, End: 1.5, Text: "hello there"},
		{Start: 61.25, End: 62, Text: "minute later"},
	})

	want := "1\n00:00:00,000 --> 00:00:01,500\nhello there\n\n" +
		"2\n00:01:01,250 --> 00:01:02,000\nminute later\n\n"
	assert.Equal(t, want, srt)
}

func TestForceStyle(t *testing.T) {
	style := models.DefaultCaptionStyle()
	got := ForceStyle(style)

	assert.Contains(t, got, "FontName=Arial Black")
	assert.Contains(t, got, "FontSize=24")
	assert.Contains(t, got, "PrimaryColour=&H00FFFFFF")
	assert.Contains(t, got, "Outline=3")
	assert.Contains(t, got, "Alignment=2,MarginV=200")
}

func TestForceStyleTopPosition(t *testing.T) {
	style := models.DefaultCaptionStyle()
	style.Position = "top"
	assert.Contains(t, ForceStyle(style), "Alignment=8,MarginV=60")
}

func TestForceStyleUnknownPositionFallsBack(t *testing.T) {
	style := models.DefaultCaptionStyle()
	style.Position = "sideways"
	assert.Contains(t, ForceStyle(style), "Alignment=2,MarginV=200")
}

func TestHexToDecimal(t *testing.T) {
	assert.Equal(t, int64(0xFFFFFF), hexToDecimal("#FFFFFF"))
	assert.Equal(t, int64(0), hexToDecimal("transparent"))
	assert.Equal(t, int64(0), hexToDecimal(""))
	assert.Equal(t, int64(0), hexToDecimal("not-a-color"))
}
