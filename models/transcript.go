package models

// TranscriptSegment is one timed span of transcribed speech. Produced by the
// transcriber; read-only input to segment detection.
type TranscriptSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Chunk is a candidate clip built from consecutive transcript segments. It
// exists only within one pipeline run; scoring fills in the score fields and
// the title, caption enrichment fills in Caption/Hashtags.
type Chunk struct {
	Start    float64
	End      float64
	Text     string
	Segments []TranscriptSegment

	EngagementScore float64
	TimingScore     float64
	TotalScore      float64

	Title    string
	Caption  string
	Hashtags []string
}

// Duration returns the chunk length in seconds.
func (c Chunk) Duration() float64 {
	return c.End - c.Start
}
