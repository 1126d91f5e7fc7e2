// path: internal/config/config.go
package config

import "os"

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Queue     QueueConfig
	LLM       LLMConfig
	Threads   ThreadsConfig
	Chat      ChatConfig
	Security  SecurityConfig
	Scheduler SchedulerDefaults
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ServerConfig struct {
	Port    string
	Host    string
	BaseURL string
}

// QueueConfig points at the Redis instance backing the JobQueue (§4.B).
type QueueConfig struct {
	Addr     string
	Password string
	DB       int
}

// LLMConfig carries the primary/fallback engine credentials (§4.C).
type LLMConfig struct {
	PrimaryEngine    string
	PrimaryBaseURL   string
	PrimaryAPIKey    string
	PrimaryModel     string
	FallbackEngine   string
	FallbackBaseURL  string
	FallbackAPIKey   string
	FallbackModel    string
	EmbeddingEngine  string
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	MaxAttempts      int
}

// ThreadsConfig carries SocialClient OAuth credentials (§4.D).
type ThreadsConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// ChatConfig carries ChatNotifier credentials (§4.E).
type ChatConfig struct {
	ChannelAccessToken string
	SigningSecret      string
	AdminUserID        string
}

type SecurityConfig struct {
	EncryptionKey string // 32 bytes base64, AEAD key for stored tokens
	JWTSecret     string
}

// SchedulerDefaults seeds SchedulerConfig on first boot (§3).
type SchedulerDefaults struct {
	ExplorationFactor    float64
	MinTrialsPerTemplate int
	PostsPerDay          int
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "socialqueue"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8080"),
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
		},
		Queue: QueueConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		LLM: LLMConfig{
			PrimaryEngine:    getEnv("LLM_PRIMARY_ENGINE", "primary"),
			PrimaryBaseURL:   getEnv("LLM_PRIMARY_BASE_URL", ""),
			PrimaryAPIKey:    getEnv("LLM_PRIMARY_API_KEY", ""),
			PrimaryModel:     getEnv("LLM_PRIMARY_MODEL", ""),
			FallbackEngine:   getEnv("LLM_FALLBACK_ENGINE", "fallback"),
			FallbackBaseURL:  getEnv("LLM_FALLBACK_BASE_URL", ""),
			FallbackAPIKey:   getEnv("LLM_FALLBACK_API_KEY", ""),
			FallbackModel:    getEnv("LLM_FALLBACK_MODEL", ""),
			EmbeddingEngine:  getEnv("LLM_EMBEDDING_ENGINE", "primary"),
			EmbeddingBaseURL: getEnv("LLM_EMBEDDING_BASE_URL", ""),
			EmbeddingAPIKey:  getEnv("LLM_EMBEDDING_API_KEY", ""),
			EmbeddingModel:   getEnv("LLM_EMBEDDING_MODEL", ""),
			MaxAttempts:      3,
		},
		Threads: ThreadsConfig{
			ClientID:     getEnv("THREADS_CLIENT_ID", ""),
			ClientSecret: getEnv("THREADS_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("THREADS_REDIRECT_URI", ""),
		},
		Chat: ChatConfig{
			ChannelAccessToken: getEnv("CHAT_CHANNEL_ACCESS_TOKEN", ""),
			SigningSecret:      getEnv("CHAT_SIGNING_SECRET", ""),
			AdminUserID:        getEnv("CHAT_ADMIN_USER_ID", ""),
		},
		Security: SecurityConfig{
			EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
			JWTSecret:     getEnv("JWT_SECRET", ""),
		},
		Scheduler: SchedulerDefaults{
			ExplorationFactor:    2.0,
			MinTrialsPerTemplate: 3,
			PostsPerDay:          1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
