// Package config loads process-wide configuration once at startup. The
// resulting Config is immutable and passed explicitly to the components
// that need it; there is no ambient lookup, and the signing secret is
// never logged.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   int
	DBPath string

	// JWTSecret signs bearer tokens. The server refuses to start without it.
	JWTSecret string

	// GitHub OAuth app credentials. Empty disables the OAuth login routes;
	// the same pair raises the rate limit on the repos-listing API.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Load reads configuration from the environment, with a .env file loaded
// first in development.
func Load() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	port := getEnvInt("PORT", 8080)

	callback := getEnv("GITHUB_CALLBACK_URL", "")
	if callback == "" {
		callback = fmt.Sprintf("http://localhost:%d/auth/github/callback", port)
	}

	return Config{
		Port:               port,
		DBPath:             getEnv("DB_PATH", "data/devbastion.db"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  callback,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		if _, err := fmt.Sscanf(valueStr, "%d", &value); err == nil {
			return value
		}
	}
	return defaultValue
}
