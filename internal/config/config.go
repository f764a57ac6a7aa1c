package config

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
)

const productionDBPath = "/var/lib/multichat/chat_history.db"

type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AvailableModels is the static catalog served by GET /models.
var AvailableModels = []ModelInfo{
	{ID: "google:gemini-2.5-flash", Name: "Google Gemini Flash"},
	{ID: "nvidia:moonshotai/kimi-k2-instruct", Name: "Kimi K2"},
	{ID: "nvidia:meta/llama-3.1-8b-instruct", Name: "Meta Llama"},
	{ID: "nvidia:deepseek-ai/deepseek-v3.1", Name: "Deepseek"},
}

type Config struct {
	ListenAddr     string
	DBPath         string
	GoogleAPIKey   string
	NvidiaAPIKey   string
	OpenAIAPIKey   string
	DefaultBaseURL string
}

// Load reads configuration from the environment (a .env file is picked up
// automatically). API keys are optional; a provider without a key fails at
// call time, not at startup.
func Load() *Config {
	cfg := &Config{
		ListenAddr:     os.Getenv("LISTEN_ADDR"),
		DBPath:         os.Getenv("DB_PATH"),
		GoogleAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		NvidiaAPIKey:   os.Getenv("NVIDIA_API_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		DefaultBaseURL: os.Getenv("DEFAULT_BASE_URL"),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8100"
	}
	if cfg.DBPath == "" {
		if os.Getenv("APP_ENV") == "production" {
			cfg.DBPath = productionDBPath
		} else {
			cfg.DBPath = "chat_history.db"
		}
	}

	return cfg
}
