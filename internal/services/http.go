package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"story-composer/internal/domain"
)

// Client talks JSON over HTTP to the story platform and implements every
// service interface the wizard consumes. Translate and Synthesize calls are
// paced by a shared limiter since they fan out per language; translations
// are memoized so a per-language retry does not re-bill sub-units that
// already succeeded.
type Client struct {
	baseURL      string
	apiKey       string
	http         *http.Client
	log          *zap.Logger
	limiter      *rate.Limiter
	translations *gocache.Cache
}

// NewClient builds a platform client for the given base URL.
func NewClient(baseURL, apiKey string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		http:         &http.Client{Timeout: 60 * time.Second},
		log:          log,
		limiter:      rate.NewLimiter(rate.Every(200*time.Millisecond), 2),
		translations: gocache.New(30*time.Minute, time.Hour),
	}
}

// Upload stores an image via multipart POST /api/media.
func (c *Client) Upload(ctx context.Context, file []byte, filename, mimeType string) (UploadResult, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return UploadResult{}, domain.NewTransportError("prepare upload body", err)
	}
	if _, err := part.Write(file); err != nil {
		return UploadResult{}, domain.NewTransportError("prepare upload body", err)
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, domain.NewTransportError("prepare upload body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/media", body)
	if err != nil {
		return UploadResult{}, domain.NewTransportError("build upload request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out UploadResult
	if err := c.do(req, &out); err != nil {
		return UploadResult{}, err
	}

	c.log.Info("media uploaded", zap.Int("mediaId", out.ID), zap.String("filename", filename))
	return out, nil
}

// Analyze requests an AI description of the uploaded image.
func (c *Client) Analyze(ctx context.Context, imageURL string) (Analysis, error) {
	var out Analysis
	err := c.postJSON(ctx, "/api/analyze", map[string]string{"imageUrl": imageURL}, &out)
	if err != nil {
		return Analysis{}, err
	}

	c.log.Info("image analyzed", zap.String("title", out.Title), zap.Int("tags", len(out.Tags)))
	return out, nil
}

// Translate converts one text into the target language. Identical requests
// within the cache window are served from memory.
func (c *Client) Translate(ctx context.Context, text, targetLang, hint string) (string, error) {
	cacheKey := targetLang + "\x00" + hint + "\x00" + text
	if cached, ok := c.translations.Get(cacheKey); ok {
		c.log.Debug("translation cache hit", zap.String("lang", targetLang), zap.String("hint", hint))
		return cached.(string), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", domain.NewTransportError("translate request aborted", err)
	}

	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	err := c.postJSON(ctx, "/api/translate", map[string]string{
		"text":           text,
		"targetLanguage": targetLang,
		"context":        hint,
	}, &out)
	if err != nil {
		return "", err
	}

	c.translations.Set(cacheKey, out.TranslatedText, gocache.DefaultExpiration)
	c.log.Debug("text translated", zap.String("lang", targetLang), zap.String("hint", hint))
	return out.TranslatedText, nil
}

// Synthesize renders text to speech and returns the hosted audio URL.
func (c *Client) Synthesize(ctx context.Context, text, language, voice string, speed float64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", domain.NewTransportError("synthesize request aborted", err)
	}

	var out struct {
		AudioURL string `json:"audioUrl"`
	}
	err := c.postJSON(ctx, "/api/synthesize", map[string]any{
		"text":     text,
		"language": language,
		"voice":    voice,
		"speed":    speed,
	}, &out)
	if err != nil {
		return "", err
	}

	c.log.Debug("audio synthesized", zap.String("lang", language), zap.String("voice", voice))
	return out.AudioURL, nil
}

// CreateStory publishes the aggregate story document.
func (c *Client) CreateStory(ctx context.Context, payload StoryPayload) (int, error) {
	var out struct {
		StoryID int `json:"storyId"`
	}
	if err := c.postJSON(ctx, "/api/stories", payload, &out); err != nil {
		return 0, err
	}

	c.log.Info("story created", zap.Int("storyId", out.StoryID), zap.String("slug", payload.Slug))
	return out.StoryID, nil
}

// postJSON sends one JSON request and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return domain.NewTransportError("encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return domain.NewTransportError("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// do executes a request, maps failures onto the error taxonomy, and decodes
// a successful JSON response body into out.
func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("path", req.URL.Path), zap.Error(err))
		return domain.NewTransportError("story platform unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		message := remoteErrorMessage(resp)
		c.log.Warn("request rejected",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		return domain.NewServerError(resp.StatusCode, message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewTransportError("decode response", err)
	}
	return nil
}

// remoteErrorMessage extracts the platform's error field, falling back to
// the HTTP status text.
func remoteErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(resp.StatusCode)
}
