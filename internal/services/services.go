// Package services defines the external collaborators the wizard drives and
// a JSON-over-HTTP implementation against the story platform API.
package services

import (
	"context"

	"story-composer/internal/domain"
)

// UploadResult identifies stored media on the platform.
type UploadResult struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// Analysis is the AI description of an uploaded image.
type Analysis struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// StoryPayload is the aggregate document sent to the publish endpoint.
type StoryPayload struct {
	Title        string                        `json:"title"`
	Content      string                        `json:"content"`
	Slug         string                        `json:"slug"`
	Tags         []string                      `json:"tags"`
	MediaID      int                           `json:"mediaId"`
	Translations map[string]domain.Translation `json:"translations"`
	AudioURLs    map[string]string             `json:"audioUrls"`
}

// Uploader stores a media file and returns its identity.
type Uploader interface {
	Upload(ctx context.Context, file []byte, filename, mimeType string) (UploadResult, error)
}

// Analyzer produces a draft title, content, and tags for an image URL.
type Analyzer interface {
	Analyze(ctx context.Context, imageURL string) (Analysis, error)
}

// Translator translates one text into a target language. hint carries
// optional context for the translation model (e.g. "title" vs "content").
type Translator interface {
	Translate(ctx context.Context, text, targetLang, hint string) (string, error)
}

// Synthesizer renders text to speech and returns the audio URL.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language, voice string, speed float64) (string, error)
}

// Publisher creates the final story record and returns its ID.
type Publisher interface {
	CreateStory(ctx context.Context, payload StoryPayload) (int, error)
}
