package models

// CaptionSegment is one timed caption line, relative to the clip-local
// timeline (the clip file starts at zero).
type CaptionSegment struct {
	Start      float64 `json:"start_time" validate:"gte=0"`
	End        float64 `json:"end_time" validate:"gtfield=Start"`
	Text       string  `json:"text" validate:"required"`
	Confidence float64 `json:"confidence,omitempty"`
}

// CaptionStyle controls how captions are burned into a clip.
type CaptionStyle struct {
	FontSize          int     `json:"font_size"`
	FontColor         string  `json:"font_color"`    // hex, e.g. "#FFFFFF"
	OutlineColor      string  `json:"outline_color"` // hex
	OutlineWidth      int     `json:"outline_width"`
	BackgroundColor   string  `json:"background_color"` // hex or "transparent"
	BackgroundOpacity float64 `json:"background_opacity"`
	Position          string  `json:"position" validate:"omitempty,oneof=top center bottom"`
	Animation         string  `json:"animation" validate:"omitempty,oneof=none pop slide typewriter"`
}

// DefaultCaptionStyle matches the shorts look: bold white text with a black
// outline near the bottom of the frame.
func DefaultCaptionStyle() CaptionStyle {
	return CaptionStyle{
		FontSize:          24,
		FontColor:         "#FFFFFF",
		OutlineColor:      "#000000",
		OutlineWidth:      3,
		BackgroundColor:   "transparent",
		BackgroundOpacity: 0,
		Position:          "bottom",
		Animation:         "pop",
	}
}
