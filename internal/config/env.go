package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/sandroweb/html-template-project/internal/logfields"
)

// envFiles are tried in order; the first one found wins. Variables already
// present in the process environment are never overwritten.
var envFiles = []string{".env", ".env.local"}

func loadEnvFile() {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load environment file", logfields.Path(envPath), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(envPath))
		return
	}
}
