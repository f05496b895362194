package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Model providers.
	LLMProvider  string // "gemini" or "openai"
	AIAPIKey     string
	EmbedModel   string
	EmbedDim     int
	GenModel     string
	OpenAIAPIKey string
	OpenAIModel  string

	// YouTube metadata (optional; fallback metadata is used without it).
	YouTubeAPIKey string

	// Vector store selection. "memory" needs nothing; "postgres" needs
	// DATABASE_URL and a pgvector-enabled database.
	VectorStore string
	DatabaseURL string

	// Chunking.
	ChunkTargetChars int
	ChunkOverlapFrac float64
	EmbedBatchSize   int

	// Retrieval.
	RetrieveK    int
	RetrieveMaxK int
	MinScore     float64

	// Chat.
	HistoryMaxTurns int

	// Quiz and grading.
	QuizSize    int
	GenRetries  int
	XPEasy      int
	XPMedium    int
	XPHard      int

	// Timeouts and caching.
	LLMTimeout     time.Duration
	ProcessTimeout time.Duration
	CacheTTL       time.Duration
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		LLMProvider:  getEnv("LLM_PROVIDER", "gemini"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:     getEnvInt("EMBED_DIM", 768),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		YouTubeAPIKey: getEnv("YOUTUBE_API_KEY", ""),

		VectorStore: getEnv("VECTOR_STORE", "memory"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		ChunkTargetChars: getEnvInt("CHUNK_TARGET_CHARS", 800),
		ChunkOverlapFrac: getEnvFloat("CHUNK_OVERLAP_FRAC", 0.15),
		EmbedBatchSize:   getEnvInt("EMBED_BATCH_SIZE", 16),

		RetrieveK:    getEnvInt("RETRIEVE_K", 5),
		RetrieveMaxK: getEnvInt("RETRIEVE_MAX_K", 6),
		MinScore:     getEnvFloat("MIN_SCORE", 0.05),

		HistoryMaxTurns: getEnvInt("HISTORY_MAX_TURNS", 6),

		QuizSize:   getEnvInt("QUIZ_SIZE", 15),
		GenRetries: getEnvInt("GEN_RETRIES", 3),
		XPEasy:     getEnvInt("XP_EASY", 10),
		XPMedium:   getEnvInt("XP_MEDIUM", 20),
		XPHard:     getEnvInt("XP_HARD", 30),

		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		ProcessTimeout: getEnvDuration("PROCESS_TIMEOUT", 5*time.Minute),
		CacheTTL:       getEnvDuration("CACHE_TTL", 30*24*time.Hour),
	}

	if cfg.VectorStore == "postgres" && cfg.DatabaseURL == "" {
		log.Fatal("VECTOR_STORE=postgres but DATABASE_URL not set")
	}
	if cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey == "" {
		log.Fatal("LLM_PROVIDER=openai but OPENAI_API_KEY not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %g", key, v, def)
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}
