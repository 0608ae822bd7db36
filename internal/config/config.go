package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	ServerPort  string
	Environment string
	JWTExpiry   time.Duration
	JournalPath string
	CORSOrigins []string

	// Rate limiting (AI endpoints)
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration
	RateLimitBlockTime   time.Duration

	// AI provider
	AIProvider   string
	AITimeout    time.Duration
	GroqAPIKey   string
	GroqBaseURL  string
	GroqModel    string
	GeminiAPIKey string
	GeminiModel  string

	RoadmapLimit   int
	MaxUploadBytes int64
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func Load() *Config {
	// Try to load .env file, but don't fail if it doesn't exist
	// (Docker containers use environment variables directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL: v.GetString("database_url"),
		RedisURL:    v.GetString("redis_url"),
		JWTSecret:   v.GetString("jwt_secret"),
		ServerPort:  v.GetString("server_port"),
		Environment: v.GetString("environment"),
		JWTExpiry:   v.GetDuration("jwt_expiry"),
		JournalPath: v.GetString("journal_path"),
		CORSOrigins: splitList(v.GetString("cors_origins")),

		RateLimitMaxRequests: v.GetInt("rate_limit_max_requests"),
		RateLimitWindow:      v.GetDuration("rate_limit_window"),
		RateLimitBlockTime:   v.GetDuration("rate_limit_block_time"),

		AIProvider:   strings.ToLower(v.GetString("ai_provider")),
		AITimeout:    v.GetDuration("ai_timeout"),
		GroqAPIKey:   v.GetString("groq_api_key"),
		GroqBaseURL:  v.GetString("groq_base_url"),
		GroqModel:    v.GetString("groq_model"),
		GeminiAPIKey: v.GetString("gemini_api_key"),
		GeminiModel:  v.GetString("gemini_model"),

		RoadmapLimit:   v.GetInt("roadmap_limit"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
	}

	if cfg.JWTExpiry <= 0 {
		log.Fatal("Invalid JWT_EXPIRY format")
	}
	if cfg.JWTSecret == "" && cfg.IsProduction() {
		log.Fatal("JWT_SECRET is required in production")
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", ":5000")
	v.SetDefault("environment", "development")
	v.SetDefault("jwt_expiry", "24h")
	v.SetDefault("journal_path", "data/model_output.log")
	v.SetDefault("cors_origins", "http://localhost:5173")

	v.SetDefault("rate_limit_max_requests", 20)
	v.SetDefault("rate_limit_window", "1m")
	v.SetDefault("rate_limit_block_time", "5m")

	v.SetDefault("ai_provider", "groq")
	v.SetDefault("ai_timeout", "60s")
	v.SetDefault("groq_base_url", "https://api.groq.com/openai")
	v.SetDefault("groq_model", "llama-3.1-8b-instant")
	v.SetDefault("gemini_model", "gemini-2.5-flash")

	v.SetDefault("roadmap_limit", 10)
	v.SetDefault("max_upload_bytes", 5<<20)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
