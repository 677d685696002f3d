package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	AppEnv        string
	LogLevel      string
	// Recommendation endpoint
	APIURL     string
	APITimeout time.Duration
	// Optional client-credentials auth for the recommendation endpoint
	APIClientID     string
	APIClientSecret string
	APITokenURL     string
	APIScopes       []string
	// "http" (recommendation endpoint) or "openai" (direct LLM answers)
	AssistantMode       string
	OpenAIAPIKey        string
	OpenAIModel         string
	AssistantPromptFile string
	// Storage
	StoreDriver   string
	StoreDir      string
	DatabaseURL   string
	MigrationsDir string
	// Browser sessions
	SessionIdleTTL time.Duration
	CookieSecure   bool
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		Port:                getEnvDefault("PORT", "8080"),
		AllowedOrigin:       getEnvDefault("ALLOWED_ORIGIN", "http://localhost:3000"),
		AppEnv:              getEnvDefault("APP_ENV", "development"),
		LogLevel:            getEnvDefault("LOG_LEVEL", "info"),
		APIURL:              strings.TrimRight(getEnvDefault("API_URL", "http://localhost:3002"), "/"),
		APITimeout:          getEnvDurationDefault("API_TIMEOUT", 30*time.Second),
		APIClientID:         os.Getenv("API_CLIENT_ID"),
		APIClientSecret:     os.Getenv("API_CLIENT_SECRET"),
		APITokenURL:         os.Getenv("API_TOKEN_URL"),
		APIScopes:           getEnvListDefault("API_SCOPES", nil),
		AssistantMode:       strings.ToLower(getEnvDefault("ASSISTANT_MODE", "http")),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		AssistantPromptFile: getEnvDefault("ASSISTANT_PROMPT_FILE", "prompts/assistant.yaml"),
		StoreDriver:         strings.ToLower(getEnvDefault("STORE_DRIVER", "file")),
		StoreDir:            getEnvDefault("STORE_DIR", "data/storage"),
		DatabaseURL:         os.Getenv("DB_URL"),
		MigrationsDir:       os.Getenv("MIGRATIONS_DIR"),
		SessionIdleTTL:      getEnvDurationDefault("SESSION_IDLE_TTL", 30*time.Minute),
		CookieSecure:        getEnvBoolDefault("COOKIE_SECURE", false),
	}
}

// UsesClientCredentials reports whether outbound calls should carry an
// OAuth2 client-credentials token.
func (c Config) UsesClientCredentials() bool {
	return c.APIClientID != "" && c.APIClientSecret != "" && c.APITokenURL != ""
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

// getEnvDurationDefault accepts Go duration strings ("45s", "2m").
func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}
