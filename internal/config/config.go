package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Model backends
	ModelProvider string
	OllamaPort    int
	LMStudioPort  int
	OllamaModel   string
	LMStudioModel string

	// Web search
	EmbeddingModel   string
	MaxSearchResults int

	// Frontend
	FrontendURL string
	UIDistPath  string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8000"),
		Env:         getEnvOrDefault("ENV", "development"),
		DatabaseURL: mustGetEnv("DATABASE_URL"),

		ModelProvider: getEnvOrDefault("MODEL_PROVIDER", "ollama"),
		OllamaPort:    getEnvAsIntOrDefault("OLLAMA_PORT", 11434),
		LMStudioPort:  getEnvAsIntOrDefault("LM_STUDIO_PORT", 1234),
		OllamaModel:   getEnvOrDefault("OLLAMA_MODEL", "llama3.2"),
		LMStudioModel: getEnvOrDefault("LM_STUDIO_MODEL", "llama-3.2-3b-instruct"),

		EmbeddingModel:   getEnvOrDefault("EMBEDDING_MODEL", "nomic-embed-text"),
		MaxSearchResults: getEnvAsIntOrDefault("MAX_SEARCH_RESULTS", 10),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		UIDistPath:  getEnvOrDefault("UI_DIST_PATH", "./UI/dist"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
