// Package captions enriches chunks with social captions and burns caption
// text into rendered clips.
package captions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yaxinw04/hackai/models"
)

// Generator produces titles, captions and hashtags for chunks. With an API
// key it calls an OpenAI-compatible chat endpoint; without one, or when a
// call fails, it falls back to the deterministic template set.
type Generator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	log     *logrus.Logger
}

func NewGenerator(apiKey, baseURL, model string, log *logrus.Logger) *Generator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &Generator{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

// Enrich fills Caption/Hashtags (and Title, when the model suggests a better
// one) on each chunk. It never fails a chunk hard: any per-chunk error
// degrades to the template fallback for that chunk.
func (g *Generator) Enrich(ctx context.Context, chunks []models.Chunk) ([]models.Chunk, error) {
	out := make([]models.Chunk, len(chunks))
	copy(out, chunks)

	for i := range out {
		if g.apiKey == "" {
			applyTemplate(&out[i], i)
			continue
		}
		if err := g.enrichOne(ctx, &out[i]); err != nil {
			g.log.WithError(err).WithField("chunk", i).Warn("caption generation failed, using template")
			applyTemplate(&out[i], i)
		}
	}
	return out, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// captionContent is the JSON shape the model is asked to produce.
type captionContent struct {
	Title    string   `json:"title"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

func (g *Generator) enrichOne(ctx context.Context, chunk *models.Chunk) error {
	prompt := fmt.Sprintf(`Create an engaging social media caption for this video clip content:

Content: %q
Duration: %.1f seconds

Generate a catchy title (max 8 words), an engaging caption (max 150
characters) and 5-8 relevant hashtags.

Respond with JSON only: {"title": "...", "caption": "...", "hashtags": ["#tag1", ...]}`,
		chunk.Text, chunk.Duration())

	body, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("caption API returned %d: %s", resp.StatusCode, string(b))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return err
	}
	if len(cr.Choices) == 0 {
		return fmt.Errorf("caption API returned no choices")
	}

	var content captionContent
	if err := json.Unmarshal([]byte(cr.Choices[0].Message.Content), &content); err != nil {
		return fmt.Errorf("parse caption content: %w", err)
	}

	if content.Title != "" {
		chunk.Title = content.Title
	}
	chunk.Caption = content.Caption
	chunk.Hashtags = content.Hashtags
	return nil
}

// Template fallbacks, indexed by chunk position so output stays stable
// across runs.
var captionTemplates = []string{
	"This will blow your mind! 🤯",
	"You need to see this! 👀",
	"Game changer right here! 🔥",
	"This is incredible! ✨",
	"Mind = blown! 💫",
	"Wait for it... 🎯",
	"This changes everything! 🚀",
	"You won't believe this! 😱",
}

var hashtagSets = [][]string{
	{"#viral", "#mindblown", "#mustsee", "#incredible", "#wow"},
	{"#gamechange", "#amazing", "#viral", "#trending", "#fire"},
	{"#shocking", "#unbelievable", "#epic", "#viral", "#omg"},
	{"#mindblowing", "#insane", "#viral", "#mustwatch", "#crazy"},
	{"#incredible", "#amazing", "#viral", "#trending", "#wow"},
	{"#epic", "#gamechange", "#viral", "#fire", "#insane"},
	{"#shocking", "#mindblown", "#viral", "#amazing", "#wtf"},
	{"#unreal", "#incredible", "#viral", "#epic", "#mindblowing"},
}

func applyTemplate(chunk *models.Chunk, index int) {
	if chunk.Title == "" {
		chunk.Title = fmt.Sprintf("Viral Moment #%d", index+1)
	}
	chunk.Caption = captionTemplates[index%len(captionTemplates)]
	chunk.Hashtags = hashtagSets[index%len(hashtagSets)]
}
