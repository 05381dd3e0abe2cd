// Package diagnostics validates platform settings before a wizard run.
package diagnostics

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"story-composer/internal/domain"
)

// Speeds outside this range are rejected by every TTS voice the platform offers.
const (
	minAudioSpeed = 0.5
	maxAudioSpeed = 2.0
)

// Checker runs startup checks over the configured settings.
type Checker struct{}

// NewChecker builds a settings checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkPlatformURL(settings.PlatformURL),
		c.checkAPIKey(settings.APIKey),
		c.checkVoice(settings.Voice),
		c.checkAudioSpeed(settings.AudioSpeed),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkPlatformURL validates the configured story platform endpoint.
func (c *Checker) checkPlatformURL(raw string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "platform_url",
		Name: "Platform URL",
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Platform URL is empty."
		item.Hint = "Set the story platform base URL in settings or STORY_PLATFORM_URL."
		return item
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Platform URL is not a valid http(s) endpoint: %s", trimmed)
		item.Hint = "Use a full URL such as https://stories.example.com."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Platform endpoint: %s", trimmed)
	return item
}

// checkAPIKey verifies credentials are configured.
func (c *Checker) checkAPIKey(key string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "api_key",
		Name: "API key",
	}

	if strings.TrimSpace(key) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "No API key configured."
		item.Hint = "Set STORY_API_KEY in the environment or a .env file."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "API key configured."
	return item
}

// checkVoice verifies a default synthesizer voice is selected.
func (c *Checker) checkVoice(voice string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "voice",
		Name: "Default voice",
	}

	if strings.TrimSpace(voice) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "No default voice selected."
		item.Hint = "Pick a voice from the catalog in settings."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Voice: %s", voice)
	return item
}

// checkAudioSpeed validates the narration speed range.
func (c *Checker) checkAudioSpeed(speed float64) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "audio_speed",
		Name: "Audio speed",
	}

	if speed < minAudioSpeed || speed > maxAudioSpeed {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Audio speed %.2f is outside the supported %.1f–%.1f range.", speed, minAudioSpeed, maxAudioSpeed)
		item.Hint = "Choose a narration speed between 0.5x and 2.0x."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Audio speed: %.2fx", speed)
	return item
}
