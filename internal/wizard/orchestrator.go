// Package wizard drives the story creation pipeline: step transitions,
// draft editing, per-language translation and audio fan-out, and publishing.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"story-composer/internal/domain"
	"story-composer/internal/events"
	"story-composer/internal/fanout"
	"story-composer/internal/services"
	"story-composer/internal/slug"
)

// SourceLanguage is the language drafts are authored in. It is never part
// of the target selection and always receives audio.
const SourceLanguage = "en"

// Notifier receives wizard lifecycle events for the UI layer.
type Notifier interface {
	Notify(events.Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(events.Event)

// Notify calls the wrapped function.
func (f NotifierFunc) Notify(e events.Event) { f(e) }

// Deps are the external collaborators injected into the orchestrator.
type Deps struct {
	Uploader    services.Uploader
	Analyzer    services.Analyzer
	Translator  services.Translator
	Synthesizer services.Synthesizer
	Publisher   services.Publisher
	Notifier    Notifier
	Voice       string
	AudioSpeed  float64
}

// Snapshot is a point-in-time, immutable view of the whole wizard for the
// UI. Consumers never receive live references into orchestrator state.
type Snapshot struct {
	RunID                string                                       `json:"runId"`
	Step                 domain.Step                                  `json:"step"`
	StepOrdinal          int                                          `json:"stepOrdinal"`
	StepProgress         float64                                      `json:"stepProgress"`
	Loading              bool                                         `json:"loading"`
	LastError            *domain.Error                                `json:"lastError,omitempty"`
	Draft                domain.Draft                                 `json:"draft"`
	Languages            []string                                     `json:"languages"`
	Voice                string                                       `json:"voice"`
	AudioSpeed           float64                                      `json:"audioSpeed"`
	Translations         map[string]fanout.State[domain.Translation]  `json:"translations"`
	Audio                map[string]fanout.State[string]              `json:"audio"`
	StoryID              int                                          `json:"storyId"`
	Published            bool                                         `json:"published"`
	TitleCharacterCount  int                                          `json:"titleCharacterCount"`
	TitleTooLong         bool                                         `json:"titleTooLong"`
	CanProceedFromReview bool                                         `json:"canProceedFromReview"`
	Summary              domain.StorySummary                          `json:"summary"`
}

// Orchestrator owns the draft, the language selection, the run state, and
// the two per-language trackers. All mutation happens under one mutex;
// external service calls and fan-outs run outside it.
type Orchestrator struct {
	mu    sync.Mutex
	runID string

	step      domain.Step
	draft     domain.Draft
	languages []string
	voice     string
	speed     float64

	loading   bool
	lastErr   *domain.Error
	storyID   int
	published bool

	translations *fanout.Tracker[string, domain.Translation]
	audio        *fanout.Tracker[string, string]

	uploader    services.Uploader
	analyzer    services.Analyzer
	translator  services.Translator
	synthesizer services.Synthesizer
	publisher   services.Publisher
	notifier    Notifier
}

// New builds an orchestrator at the upload step with an empty draft.
func New(deps Deps) *Orchestrator {
	speed := deps.AudioSpeed
	if speed == 0 {
		speed = 1.0
	}

	return &Orchestrator{
		runID:        uuid.NewString(),
		step:         domain.StepUpload,
		voice:        deps.Voice,
		speed:        speed,
		translations: fanout.New[string, domain.Translation](),
		audio:        fanout.New[string, string](),
		uploader:     deps.Uploader,
		analyzer:     deps.Analyzer,
		translator:   deps.Translator,
		synthesizer:  deps.Synthesizer,
		publisher:    deps.Publisher,
		notifier:     deps.Notifier,
	}
}

// UploadImage stores the selected image and advances to the analysis step.
// On failure the wizard stays on the upload step with the error recorded.
func (o *Orchestrator) UploadImage(ctx context.Context, file []byte, filename, mimeType string) error {
	o.setLoading(true)

	result, err := o.uploader.Upload(ctx, file, filename, mimeType)
	if err != nil {
		derr := o.failStep(err)
		o.toast("Upload failed: " + derr.Message)
		return derr
	}

	o.mu.Lock()
	o.draft.MediaID = result.ID
	o.draft.MediaURL = result.URL
	o.step = domain.StepAnalyzing
	o.loading = false
	o.lastErr = nil
	o.mu.Unlock()

	o.status(domain.StepAnalyzing, "Image uploaded")
	return nil
}

// Analyze asks the AI service to describe the uploaded image and populates
// the draft. Requires an uploaded image; fails locally otherwise without a
// network call.
func (o *Orchestrator) Analyze(ctx context.Context) error {
	o.mu.Lock()
	mediaURL := o.draft.MediaURL
	o.mu.Unlock()

	if mediaURL == "" {
		derr := domain.NewValidationError("no uploaded image to analyze")
		o.recordError(derr)
		return derr
	}

	o.setLoading(true)

	analysis, err := o.analyzer.Analyze(ctx, mediaURL)
	if err != nil {
		derr := o.failStep(err)
		o.toast("Analysis failed: " + derr.Message)
		return derr
	}

	o.mu.Lock()
	o.draft.Title = analysis.Title
	o.draft.Content = analysis.Content
	o.draft.Tags = nil
	for _, tag := range analysis.Tags {
		if tag != "" && !o.draft.HasTag(tag) {
			o.draft.Tags = append(o.draft.Tags, tag)
		}
	}
	o.draft.Slug = slug.Make(analysis.Title)
	o.step = domain.StepReview
	o.loading = false
	o.lastErr = nil
	o.mu.Unlock()

	o.status(domain.StepReview, "Analysis complete")
	return nil
}

// CancelAnalysis discards any analysis progress or result and returns to
// the upload step unconditionally. It is a user-driven unwind, not an error
// path: prior errors are cleared, not set.
func (o *Orchestrator) CancelAnalysis() {
	o.mu.Lock()
	o.draft.Title = ""
	o.draft.Content = ""
	o.draft.Slug = ""
	o.draft.Tags = nil
	o.step = domain.StepUpload
	o.loading = false
	o.lastErr = nil
	o.mu.Unlock()

	o.status(domain.StepUpload, "Analysis cancelled")
}

// SetTitle updates the draft title and re-derives the slug.
func (o *Orchestrator) SetTitle(title string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft.Title = title
	o.draft.Slug = slug.Make(title)
}

// SetContent updates the draft content.
func (o *Orchestrator) SetContent(content string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft.Content = content
}

// AddTag appends a tag; adding an existing or empty tag is a no-op.
func (o *Orchestrator) AddTag(tag string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if tag == "" || o.draft.HasTag(tag) {
		return
	}
	o.draft.Tags = append(o.draft.Tags, tag)
}

// RemoveTag removes a tag; removing an absent tag is a no-op.
func (o *Orchestrator) RemoveTag(tag string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, t := range o.draft.Tags {
		if t == tag {
			o.draft.Tags = append(o.draft.Tags[:i], o.draft.Tags[i+1:]...)
			return
		}
	}
}

// SelectLanguage adds a target language. The source language and duplicate
// selections are ignored.
func (o *Orchestrator) SelectLanguage(lang string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if lang == "" || lang == SourceLanguage {
		return
	}
	for _, l := range o.languages {
		if l == lang {
			return
		}
	}
	o.languages = append(o.languages, lang)
}

// DeselectLanguage removes a target language; absent languages are a no-op.
func (o *Orchestrator) DeselectLanguage(lang string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, l := range o.languages {
		if l == lang {
			o.languages = append(o.languages[:i], o.languages[i+1:]...)
			return
		}
	}
}

// SetVoice selects the synthesizer voice for subsequent audio generation.
func (o *Orchestrator) SetVoice(voice string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if voice != "" {
		o.voice = voice
	}
}

// SetAudioSpeed selects the playback speed for subsequent audio generation.
func (o *Orchestrator) SetAudioSpeed(speed float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if speed > 0 {
		o.speed = speed
	}
}

// NextStep advances one step. Navigation is unconditional: validators are
// advisory and enforced by the caller, never here.
func (o *Orchestrator) NextStep() domain.Step {
	o.mu.Lock()
	o.step = domain.NextStep(o.step)
	step := o.step
	o.mu.Unlock()

	o.status(step, "")
	return step
}

// PreviousStep moves one step back, clamped at the upload step.
func (o *Orchestrator) PreviousStep() domain.Step {
	o.mu.Lock()
	o.step = domain.PreviousStep(o.step)
	step := o.step
	o.mu.Unlock()

	o.status(step, "")
	return step
}

// GoToStep jumps to a step unconditionally; unknown steps are ignored.
func (o *Orchestrator) GoToStep(target domain.Step) domain.Step {
	o.mu.Lock()
	if domain.StepOrdinal(target) >= 0 {
		o.step = target
	}
	step := o.step
	o.mu.Unlock()

	o.status(step, "")
	return step
}

// GenerateTranslations fans out the title and content translation for every
// selected language and blocks until each language settles. Per-language
// failures are recorded in the tracker and never become a step-level error;
// an empty selection completes instantly with zero calls.
func (o *Orchestrator) GenerateTranslations(ctx context.Context) error {
	o.mu.Lock()
	langs := append([]string(nil), o.languages...)
	title := o.draft.Title
	content := o.draft.Content
	o.mu.Unlock()

	if err := o.canTranslate(content); err != nil {
		return err
	}
	if len(langs) == 0 {
		return nil
	}

	o.setLoading(true)
	o.translations.RunAll(ctx, langs, o.translationWork(title, content))
	o.setLoading(false)

	o.reportFanout(domain.StepTranslate, o.translationFailures())
	return nil
}

// RetryTranslation re-runs exactly one language's translation without
// touching the others.
func (o *Orchestrator) RetryTranslation(ctx context.Context, lang string) error {
	o.mu.Lock()
	title := o.draft.Title
	content := o.draft.Content
	o.mu.Unlock()

	if err := o.canTranslate(content); err != nil {
		return err
	}

	o.translations.Retry(ctx, lang, o.translationWork(title, content))
	o.reportFanout(domain.StepTranslate, o.translationFailures())
	return nil
}

// CancelTranslation discards one language's translation state; a result
// still in flight for it will be dropped on arrival.
func (o *Orchestrator) CancelTranslation(lang string) {
	o.translations.Cancel(lang)
	o.notify(events.Event{Type: events.TypeStatus, Step: domain.StepTranslate, Language: lang, Message: "Translation cancelled"})
}

// GenerateAudio fans out speech synthesis over the source language plus the
// current selection. The source language narrates the draft content; target
// languages narrate their translated content and fail individually when no
// translation is available.
func (o *Orchestrator) GenerateAudio(ctx context.Context) error {
	o.mu.Lock()
	keys := append([]string{SourceLanguage}, o.languages...)
	content := o.draft.Content
	voice := o.voice
	speed := o.speed
	o.mu.Unlock()

	if err := o.canTranslate(content); err != nil {
		return err
	}

	translated := o.translations.Snapshot()

	work := func(ctx context.Context, lang string, report func(float64)) (string, error) {
		text := content
		if lang != SourceLanguage {
			state, ok := translated[lang]
			if !ok || !state.HasResult {
				return "", fmt.Errorf("no translation available for %s", lang)
			}
			text = state.Result.Content
		}

		url, err := o.synthesizer.Synthesize(ctx, text, lang, voice, speed)
		if err != nil {
			return "", err
		}
		report(1)
		return url, nil
	}

	o.setLoading(true)
	o.audio.RunAll(ctx, keys, work)
	o.setLoading(false)

	o.reportFanout(domain.StepAudio, o.audioFailures())
	return nil
}

// RetryAudio re-runs synthesis for one language only.
func (o *Orchestrator) RetryAudio(ctx context.Context, lang string) error {
	o.mu.Lock()
	content := o.draft.Content
	voice := o.voice
	speed := o.speed
	o.mu.Unlock()

	if err := o.canTranslate(content); err != nil {
		return err
	}

	translated := o.translations.Snapshot()
	o.audio.Retry(ctx, lang, func(ctx context.Context, lang string, report func(float64)) (string, error) {
		text := content
		if lang != SourceLanguage {
			state, ok := translated[lang]
			if !ok || !state.HasResult {
				return "", fmt.Errorf("no translation available for %s", lang)
			}
			text = state.Result.Content
		}
		return o.synthesizer.Synthesize(ctx, text, lang, voice, speed)
	})

	o.reportFanout(domain.StepAudio, o.audioFailures())
	return nil
}

// CancelAudio discards one language's audio state.
func (o *Orchestrator) CancelAudio(lang string) {
	o.audio.Cancel(lang)
	o.notify(events.Event{Type: events.TypeStatus, Step: domain.StepAudio, Language: lang, Message: "Audio cancelled"})
}

// CreateStory publishes the aggregate story document and records its ID.
func (o *Orchestrator) CreateStory(ctx context.Context) error {
	payload := o.buildPayload()

	o.setLoading(true)
	storyID, err := o.publisher.CreateStory(ctx, payload)
	if err != nil {
		derr := o.failStep(err)
		o.toast("Publish failed: " + derr.Message)
		return derr
	}

	o.mu.Lock()
	o.storyID = storyID
	o.loading = false
	o.lastErr = nil
	o.mu.Unlock()

	o.notify(events.Event{Type: events.TypeResult, Step: domain.StepFinalize, StoryID: storyID, Message: "Story created"})
	return nil
}

// PublishStory creates the story if needed, marks it published, and emits a
// single celebration event. Re-publishing an already published story is a
// no-op and never celebrates twice.
func (o *Orchestrator) PublishStory(ctx context.Context) error {
	o.mu.Lock()
	alreadyPublished := o.published
	storyID := o.storyID
	o.mu.Unlock()

	if alreadyPublished {
		return nil
	}

	if storyID == 0 {
		if err := o.CreateStory(ctx); err != nil {
			return err
		}
		o.mu.Lock()
		storyID = o.storyID
		o.mu.Unlock()
	}

	o.mu.Lock()
	o.published = true
	o.mu.Unlock()

	o.notify(events.Event{Type: events.TypeCelebration, Step: domain.StepFinalize, StoryID: storyID, Message: "Story published"})
	return nil
}

// Reset restores every observable field to its construction-time value in
// one atomic operation and starts a fresh run.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.runID = uuid.NewString()
	o.step = domain.StepUpload
	o.draft = domain.Draft{}
	o.languages = nil
	o.loading = false
	o.lastErr = nil
	o.storyID = 0
	o.published = false
	o.translations.Reset()
	o.audio.Reset()
	o.mu.Unlock()

	o.status(domain.StepUpload, "Wizard reset")
}

// Snapshot returns an immutable copy of the full wizard state.
func (o *Orchestrator) Snapshot() Snapshot {
	translations := o.translations.Snapshot()
	audio := o.audio.Snapshot()

	o.mu.Lock()
	defer o.mu.Unlock()

	draft := o.draft
	draft.Tags = append([]string(nil), o.draft.Tags...)

	audioCount := 0
	for _, state := range audio {
		if state.HasResult {
			audioCount++
		}
	}

	return Snapshot{
		RunID:                o.runID,
		Step:                 o.step,
		StepOrdinal:          domain.StepOrdinal(o.step),
		StepProgress:         domain.StepProgress(o.step),
		Loading:              o.loading,
		LastError:            o.lastErr,
		Draft:                draft,
		Languages:            append([]string(nil), o.languages...),
		Voice:                o.voice,
		AudioSpeed:           o.speed,
		Translations:         translations,
		Audio:                audio,
		StoryID:              o.storyID,
		Published:            o.published,
		TitleCharacterCount:  TitleCharacterCount(draft.Title),
		TitleTooLong:         TitleCharacterCount(draft.Title) > MaxTitleLength,
		CanProceedFromReview: CanProceedFromReview(draft),
		Summary: domain.StorySummary{
			TranslationsCount: len(o.languages),
			AudioCount:        audioCount,
		},
	}
}

// Translations returns the successfully translated documents per language.
func (o *Orchestrator) Translations() map[string]domain.Translation {
	out := make(map[string]domain.Translation)
	for lang, state := range o.translations.Snapshot() {
		if state.HasResult {
			out[lang] = state.Result
		}
	}
	return out
}

// TranslationErrors returns the per-language failure messages, if any.
func (o *Orchestrator) TranslationErrors() map[string]string {
	return o.translationFailures()
}

// AudioURLs returns the synthesized audio URL per language.
func (o *Orchestrator) AudioURLs() map[string]string {
	out := make(map[string]string)
	for lang, state := range o.audio.Snapshot() {
		if state.HasResult {
			out[lang] = state.Result
		}
	}
	return out
}

// AudioErrors returns the per-language synthesis failure messages, if any.
func (o *Orchestrator) AudioErrors() map[string]string {
	return o.audioFailures()
}

// SelectedLanguages returns a copy of the current target selection.
func (o *Orchestrator) SelectedLanguages() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.languages...)
}

// translationWork builds the per-language unit of work: title first, then
// content, reporting half progress between the two sub-units.
func (o *Orchestrator) translationWork(title, content string) fanout.Work[string, domain.Translation] {
	return func(ctx context.Context, lang string, report func(float64)) (domain.Translation, error) {
		translatedTitle, err := o.translator.Translate(ctx, title, lang, "title")
		if err != nil {
			return domain.Translation{}, err
		}
		report(0.5)
		o.notify(events.Event{Type: events.TypeProgress, Step: domain.StepTranslate, Language: lang, Progress: 0.5})

		translatedContent, err := o.translator.Translate(ctx, content, lang, "content")
		if err != nil {
			return domain.Translation{}, err
		}
		return domain.Translation{Title: translatedTitle, Content: translatedContent}, nil
	}
}

// canTranslate guards fan-out stages that need draft content. A violation
// is the only way a fan-out call produces a step-level error.
func (o *Orchestrator) canTranslate(content string) error {
	if ContentIsValid(domain.Draft{Content: content}) {
		return nil
	}
	derr := domain.NewValidationError("draft content is empty")
	o.recordError(derr)
	return derr
}

// buildPayload assembles the publish document from the draft and both
// trackers' successful results.
func (o *Orchestrator) buildPayload() services.StoryPayload {
	translations := o.Translations()
	audioURLs := o.AudioURLs()

	o.mu.Lock()
	defer o.mu.Unlock()

	return services.StoryPayload{
		Title:        o.draft.Title,
		Content:      o.draft.Content,
		Slug:         o.draft.Slug,
		Tags:         append([]string(nil), o.draft.Tags...),
		MediaID:      o.draft.MediaID,
		Translations: translations,
		AudioURLs:    audioURLs,
	}
}

// translationFailures collects per-language translation failures.
func (o *Orchestrator) translationFailures() map[string]string {
	out := make(map[string]string)
	for lang, state := range o.translations.Snapshot() {
		if state.Err != "" {
			out[lang] = state.Err
		}
	}
	return out
}

// audioFailures collects per-language synthesis failures.
func (o *Orchestrator) audioFailures() map[string]string {
	out := make(map[string]string)
	for lang, state := range o.audio.Snapshot() {
		if state.Err != "" {
			out[lang] = state.Err
		}
	}
	return out
}

// reportFanout surfaces per-language failures as inline error events.
// Partial failure never touches the step-level error.
func (o *Orchestrator) reportFanout(step domain.Step, failures map[string]string) {
	for lang, message := range failures {
		o.notify(events.Event{Type: events.TypeError, Step: step, Language: lang, Message: message})
	}
}

// failStep records a step-level failure, leaving the wizard on its current
// step with collected draft data intact.
func (o *Orchestrator) failStep(err error) *domain.Error {
	derr := asDomainError(err)
	o.recordError(derr)
	return derr
}

// recordError stores the last step-level error and clears loading.
func (o *Orchestrator) recordError(derr *domain.Error) {
	o.mu.Lock()
	o.lastErr = derr
	o.loading = false
	o.mu.Unlock()
}

// setLoading flips the loading flag and clears any stale error when a new
// attempt starts.
func (o *Orchestrator) setLoading(loading bool) {
	o.mu.Lock()
	o.loading = loading
	if loading {
		o.lastErr = nil
	}
	o.mu.Unlock()
}

// status emits a step-level status event.
func (o *Orchestrator) status(step domain.Step, message string) {
	o.notify(events.Event{Type: events.TypeStatus, Step: step, Message: message})
}

// toast emits a human-readable notification.
func (o *Orchestrator) toast(message string) {
	o.notify(events.Event{Type: events.TypeToast, Message: message})
}

// notify stamps the run ID and forwards the event to the sink, if any.
func (o *Orchestrator) notify(event events.Event) {
	if o.notifier == nil {
		return
	}
	o.mu.Lock()
	event.RunID = o.runID
	o.mu.Unlock()
	o.notifier.Notify(event)
}

// asDomainError coerces service failures into the error taxonomy.
func asDomainError(err error) *domain.Error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr
	}
	return domain.NewTransportError(err.Error(), err)
}
