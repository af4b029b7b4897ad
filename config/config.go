package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Settings holds all runtime configuration, read from environment variables.
type Settings struct {
	// Server
	Host string
	Port int

	// Storage
	DataDir        string // job store directory (badger)
	OutputDir      string // rendered clips and job artifacts
	UseSupabase    bool
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	// Job store backend: "badger" (default) or "postgrest"
	JobStoreBackend string

	// External tools
	FFmpegPath   string
	FFprobePath  string
	YTDLPPath    string
	WhisperBin   string
	WhisperModel string

	// Caption generation
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Processing limits
	MaxClipCount int
	WorkerCount  int
}

// Load reads settings from the environment, applying defaults suitable for
// local development.
func Load() Settings {
	return Settings{
		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnvInt("PORT", 8000),

		DataDir:        getEnv("DATA_DIR", "data"),
		OutputDir:      getEnv("OUTPUT_DIR", "output_clips"),
		UseSupabase:    getEnvBool("USE_SUPABASE", false),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket: getEnv("SUPABASE_BUCKET", "clips"),

		JobStoreBackend: getEnv("JOB_STORE", "badger"),

		FFmpegPath:   getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:  getEnv("FFPROBE_PATH", "ffprobe"),
		YTDLPPath:    getEnv("YTDLP_PATH", "yt-dlp"),
		WhisperBin:   os.Getenv("WHISPER_BIN"),
		WhisperModel: os.Getenv("WHISPER_MODEL"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),

		MaxClipCount: getEnvInt("MAX_CLIP_COUNT", 10),
		WorkerCount:  getEnvInt("WORKER_COUNT", 5),
	}
}

// JobStoreDir returns the directory for the badger job store.
func (s Settings) JobStoreDir() string {
	return filepath.Join(s.DataDir, "jobs")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}
