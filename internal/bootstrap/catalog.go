package bootstrap

import (
	_ "embed"
	"fmt"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"story-composer/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

// loadCatalog parses the embedded language and voice catalog.
func loadCatalog() (domain.Catalog, error) {
	var catalog domain.Catalog
	if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if len(catalog.Languages) == 0 || len(catalog.Voices) == 0 {
		return domain.Catalog{}, fmt.Errorf("catalog is missing languages or voices")
	}
	return catalog, nil
}

// GetCatalog returns the supported target languages and voices.
func (a *App) GetCatalog() domain.Catalog {
	return a.Catalog
}

// hasLanguage reports whether a language code is offered by the catalog.
func hasLanguage(catalog domain.Catalog, code string) bool {
	return lo.ContainsBy(catalog.Languages, func(l domain.LanguageOption) bool {
		return l.Code == code
	})
}

// hasVoice reports whether a voice ID is offered by the catalog.
func hasVoice(catalog domain.Catalog, id string) bool {
	return lo.ContainsBy(catalog.Voices, func(v domain.VoiceOption) bool {
		return v.ID == id
	})
}
