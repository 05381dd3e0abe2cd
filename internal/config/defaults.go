package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"story-composer/internal/domain"
)

// DefaultSettings returns baseline configuration for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		PlatformURL:      "http://localhost:3000",
		Voice:            "aria",
		AudioSpeed:       1.0,
		DefaultLanguages: []string{"es", "hi"},
	}
}

// ApplyEnv overlays environment overrides onto loaded settings. A .env file
// in the working directory is honored when present; the API key in
// particular should come from the environment rather than the settings file.
func ApplyEnv(settings domain.Settings) domain.Settings {
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv("STORY_PLATFORM_URL")); v != "" {
		settings.PlatformURL = v
	}
	if v := strings.TrimSpace(os.Getenv("STORY_API_KEY")); v != "" {
		settings.APIKey = v
	}
	return settings
}
