// Package segments converts a transcript into ranked candidate clips. All of
// it is pure: no I/O, deterministic for a given input.
package segments

import "github.com/yaxinw04/hackai/models"

const (
	// MinChunkSeconds is the floor below which a chunk is discarded.
	MinChunkSeconds = 10.0
	// MaxChunkSeconds is the ceiling a chunk may not grow past.
	MaxChunkSeconds = 60.0
)

// Detect greedily groups consecutive transcript segments into chunks of at
// most MaxChunkSeconds. A transcript segment is never split across chunks;
// trailing chunks shorter than MinChunkSeconds are dropped, not merged
// backward. Because segments stay whole, a single segment longer than
// MaxChunkSeconds becomes its own chunk and exceeds the ceiling.
func Detect(transcript []models.TranscriptSegment) []models.Chunk {
	var chunks []models.Chunk
	var current models.Chunk

	for _, seg := range transcript {
		if len(current.Segments) == 0 {
			current = models.Chunk{
				Start:    seg.Start,
				End:      seg.End,
				Text:     seg.Text,
				Segments: []models.TranscriptSegment{seg},
			}
			continue
		}

		// Close the chunk once the next segment would push it past the
		// ceiling; the segment then seeds the next chunk whole.
		if seg.End-current.Start > MaxChunkSeconds {
			current.End = current.Segments[len(current.Segments)-1].End
			chunks = append(chunks, current)
			current = models.Chunk{
				Start:    seg.Start,
				End:      seg.End,
				Text:     seg.Text,
				Segments: []models.TranscriptSegment{seg},
			}
			continue
		}

		current.Text += " " + seg.Text
		current.End = seg.End
		current.Segments = append(current.Segments, seg)
	}
	if len(current.Segments) > 0 {
		current.End = current.Segments[len(current.Segments)-1].End
		chunks = append(chunks, current)
	}

	valid := chunks[:0]
	for _, c := range chunks {
		if c.Duration() >= MinChunkSeconds {
			valid = append(valid, c)
		}
	}
	return valid
}
