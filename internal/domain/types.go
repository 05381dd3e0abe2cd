package domain

// Settings contains user-selectable runtime configuration.
type Settings struct {
	PlatformURL      string   `json:"platformUrl"`
	APIKey           string   `json:"apiKey"`
	Voice            string   `json:"voice"`
	AudioSpeed       float64  `json:"audioSpeed"`
	DefaultLanguages []string `json:"defaultLanguages"`
}

// Draft is the working story document the wizard mutates between stages.
type Draft struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Slug     string   `json:"slug"`
	Tags     []string `json:"tags"`
	MediaID  int      `json:"mediaId"`
	MediaURL string   `json:"mediaUrl"`
}

// HasTag reports whether the draft already carries a tag (case-sensitive).
func (d Draft) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Translation holds the translated title and content for one target language.
type Translation struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// StorySummary is a read-only projection shown before publishing.
type StorySummary struct {
	TranslationsCount int `json:"translationsCount"`
	AudioCount        int `json:"audioCount"`
}

// LanguageOption is one supported target language from the catalog.
type LanguageOption struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// VoiceOption is one synthesizer voice preset from the catalog.
type VoiceOption struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Catalog lists supported languages and voices for UI pickers.
type Catalog struct {
	Languages []LanguageOption `json:"languages" yaml:"languages"`
	Voices    []VoiceOption    `json:"voices" yaml:"voices"`
}
