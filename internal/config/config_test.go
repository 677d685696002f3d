package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "API_URL", "API_TIMEOUT", "STORE_DRIVER", "ASSISTANT_MODE", "SESSION_IDLE_TTL", "API_SCOPES"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:3002", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, "http", cfg.AssistantMode)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Nil(t, cfg.APIScopes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_URL", "https://reco.example.com/")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("API_SCOPES", "chat, , products")
	t.Setenv("COOKIE_SECURE", "yes")
	cfg := Load()

	assert.Equal(t, "https://reco.example.com", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, []string{"chat", "products"}, cfg.APIScopes)
	assert.True(t, cfg.CookieSecure)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	assert.Equal(t, 30*time.Second, Load().APITimeout)

	t.Setenv("API_TIMEOUT", "-3s")
	assert.Equal(t, 30*time.Second, Load().APITimeout)
}

func TestUsesClientCredentials(t *testing.T) {
	cfg := Config{APIClientID: "id", APIClientSecret: "secret"}
	assert.False(t, cfg.UsesClientCredentials())

	cfg.APITokenURL = "https://auth.example.com/token"
	assert.True(t, cfg.UsesClientCredentials())
}
