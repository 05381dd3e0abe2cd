package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"story-composer/internal/config"
	"story-composer/internal/diagnostics"
	"story-composer/internal/domain"
	"story-composer/internal/events"
	"story-composer/internal/playback"
	"story-composer/internal/services"
	"story-composer/internal/wizard"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var imageDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Images",
		Pattern:     "*.jpg;*.jpeg;*.png;*.gif;*.webp;*.heic",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// App wires configuration, the wizard, playback, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Wizard      *wizard.Orchestrator
	Playback    *playback.Coordinator
	Catalog     domain.Catalog
	Diagnostics domain.DiagnosticReport

	assets  fs.FS
	checker *diagnostics.Checker
	log     *zap.Logger

	mu         sync.Mutex
	events     *events.Bus
	runtimeCtx context.Context
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	store := config.NewJSONStore(filepath.Join(homeDir, ".story-composer", "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings = config.ApplyEnv(settings)

	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	checker := diagnostics.NewChecker()
	app := &App{
		Settings:    settings,
		Store:       store,
		Catalog:     catalog,
		Diagnostics: checker.Run(settings),
		assets:      assets,
		checker:     checker,
		log:         logger,
		events:      events.NewBus(1000),
	}

	client := services.NewClient(settings.PlatformURL, settings.APIKey, logger)
	app.Wizard = wizard.New(wizard.Deps{
		Uploader:    client,
		Analyzer:    client,
		Translator:  client,
		Synthesizer: client,
		Publisher:   client,
		Notifier:    wizard.NotifierFunc(app.publishEvent),
		Voice:       settings.Voice,
		AudioSpeed:  settings.AudioSpeed,
	})
	app.Playback = playback.New(&frontendDevice{app: app})

	return app, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Story Composer",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetState returns the full wizard snapshot for rendering.
func (a *App) GetState() wizard.Snapshot {
	return a.Wizard.Snapshot()
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns configuration checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = config.ApplyEnv(settings)

	a.mu.Lock()
	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	report := a.Diagnostics
	a.mu.Unlock()

	return report, nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
// Voice and speed apply to the running wizard immediately; platform URL and
// API key take effect on the next launch.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if normalized.Voice != "" && !hasVoice(a.Catalog, normalized.Voice) {
		return domain.Settings{}, fmt.Errorf("unknown voice: %s", normalized.Voice)
	}

	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	a.Wizard.SetVoice(normalized.Voice)
	a.Wizard.SetAudioSpeed(normalized.AudioSpeed)

	return normalized, nil
}

// PickImageFile opens a native file dialog for image selection.
func (a *App) PickImageFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select an image",
		Filters: imageDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// UploadImage reads the selected file and pushes it through the upload step.
func (a *App) UploadImage(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return fmt.Errorf("image path is required")
	}

	data, err := os.ReadFile(trimmed)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	filename := filepath.Base(trimmed)
	return a.Wizard.UploadImage(context.Background(), data, filename, mimeTypeForFile(filename))
}

// StartAnalysis runs the AI analysis stage for the uploaded image.
func (a *App) StartAnalysis() error {
	return a.Wizard.Analyze(context.Background())
}

// CancelAnalysis abandons the analysis stage and returns to upload.
func (a *App) CancelAnalysis() {
	a.Wizard.CancelAnalysis()
}

// SetTitle updates the draft title.
func (a *App) SetTitle(title string) {
	a.Wizard.SetTitle(title)
}

// SetContent updates the draft content.
func (a *App) SetContent(content string) {
	a.Wizard.SetContent(content)
}

// AddTag adds a draft tag.
func (a *App) AddTag(tag string) {
	a.Wizard.AddTag(strings.TrimSpace(tag))
}

// RemoveTag removes a draft tag.
func (a *App) RemoveTag(tag string) {
	a.Wizard.RemoveTag(strings.TrimSpace(tag))
}

// SelectLanguage adds a catalog-validated target language.
func (a *App) SelectLanguage(code string) error {
	if !hasLanguage(a.Catalog, code) {
		return fmt.Errorf("unsupported language: %s", code)
	}
	a.Wizard.SelectLanguage(code)
	return nil
}

// DeselectLanguage removes a target language.
func (a *App) DeselectLanguage(code string) {
	a.Wizard.DeselectLanguage(code)
}

// NextStep advances the wizard one step.
func (a *App) NextStep() domain.Step {
	return a.Wizard.NextStep()
}

// PreviousStep moves the wizard one step back.
func (a *App) PreviousStep() domain.Step {
	return a.Wizard.PreviousStep()
}

// GoToStep jumps to a step unconditionally.
func (a *App) GoToStep(step string) domain.Step {
	return a.Wizard.GoToStep(domain.Step(step))
}

// GenerateTranslations runs the per-language translation fan-out.
func (a *App) GenerateTranslations() error {
	return a.Wizard.GenerateTranslations(context.Background())
}

// RetryTranslation re-runs one language's translation.
func (a *App) RetryTranslation(lang string) error {
	return a.Wizard.RetryTranslation(context.Background(), lang)
}

// CancelTranslation discards one language's translation state.
func (a *App) CancelTranslation(lang string) {
	a.Wizard.CancelTranslation(lang)
}

// GenerateAudio runs the per-language synthesis fan-out.
func (a *App) GenerateAudio() error {
	return a.Wizard.GenerateAudio(context.Background())
}

// RetryAudio re-runs one language's synthesis.
func (a *App) RetryAudio(lang string) error {
	return a.Wizard.RetryAudio(context.Background(), lang)
}

// CancelAudio discards one language's audio state.
func (a *App) CancelAudio(lang string) {
	a.Wizard.CancelAudio(lang)
}

// CreateStory publishes the story document.
func (a *App) CreateStory() error {
	return a.Wizard.CreateStory(context.Background())
}

// PublishStory publishes the story and marks it live.
func (a *App) PublishStory() error {
	return a.Wizard.PublishStory(context.Background())
}

// ResetWizard restores the wizard to a fresh run.
func (a *App) ResetWizard() {
	a.Wizard.Reset()
}

// PlayAudio starts narration playback for one language.
func (a *App) PlayAudio(lang string) error {
	urls := a.Wizard.AudioURLs()
	url, ok := urls[lang]
	if !ok {
		return fmt.Errorf("no audio generated for %s", lang)
	}
	return a.Playback.Play(lang, url)
}

// PauseAudio suspends the active narration.
func (a *App) PauseAudio() error {
	return a.Playback.Pause()
}

// ResumeAudio continues a paused narration.
func (a *App) ResumeAudio() error {
	return a.Playback.Resume()
}

// StopAudio halts the active narration.
func (a *App) StopAudio() error {
	return a.Playback.Stop()
}

// SeekAudio repositions the active narration.
func (a *App) SeekAudio(seconds float64) error {
	return a.Playback.Seek(seconds)
}

// NotifyPlaybackEnded handles the frontend's end-of-stream callback.
func (a *App) NotifyPlaybackEnded() {
	a.Playback.PlaybackEnded()
}

// NowPlaying returns the language currently sounding, if any.
func (a *App) NowPlaying() string {
	key, ok := a.Playback.NowPlaying()
	if !ok {
		return ""
	}
	return key
}

// StoryEvents returns all events with sequence greater than sinceSeq.
func (a *App) StoryEvents(sinceSeq int64) []events.Event {
	return a.events.Since(sinceSeq)
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event events.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "story:event", published)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// normalizeSettings trims user inputs and applies defaults for zero values.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.PlatformURL = strings.TrimSpace(settings.PlatformURL)
	settings.APIKey = strings.TrimSpace(settings.APIKey)
	settings.Voice = strings.TrimSpace(settings.Voice)
	if settings.AudioSpeed == 0 {
		settings.AudioSpeed = 1.0
	}

	languages := make([]string, 0, len(settings.DefaultLanguages))
	for _, lang := range settings.DefaultLanguages {
		trimmed := strings.TrimSpace(lang)
		if trimmed == "" {
			continue
		}
		duplicate := false
		for _, seen := range languages {
			if seen == trimmed {
				duplicate = true
				break
			}
		}
		if !duplicate {
			languages = append(languages, trimmed)
		}
	}
	settings.DefaultLanguages = languages

	return settings
}

// mimeTypeForFile maps image extensions onto MIME types for upload.
func mimeTypeForFile(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
