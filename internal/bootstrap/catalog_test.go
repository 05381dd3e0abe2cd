package bootstrap

import "testing"

// TestLoadCatalogParsesEmbeddedFile checks the shipped catalog is usable.
func TestLoadCatalogParsesEmbeddedFile(t *testing.T) {
	catalog, err := loadCatalog()
	if err != nil {
		t.Fatalf("loadCatalog returned error: %v", err)
	}

	if len(catalog.Languages) == 0 {
		t.Fatal("catalog has no languages")
	}
	if len(catalog.Voices) == 0 {
		t.Fatal("catalog has no voices")
	}

	for _, lang := range catalog.Languages {
		if lang.Code == "" || lang.Name == "" {
			t.Fatalf("catalog language missing code or name: %+v", lang)
		}
	}
	for _, voice := range catalog.Voices {
		if voice.ID == "" || voice.Name == "" {
			t.Fatalf("catalog voice missing id or name: %+v", voice)
		}
	}
}

// TestCatalogLookups checks language and voice membership helpers.
func TestCatalogLookups(t *testing.T) {
	catalog, err := loadCatalog()
	if err != nil {
		t.Fatalf("loadCatalog returned error: %v", err)
	}

	if !hasLanguage(catalog, "es") {
		t.Fatal("expected Spanish in the catalog")
	}
	if hasLanguage(catalog, "en") {
		t.Fatal("the source language must not appear as a translation target")
	}
	if hasLanguage(catalog, "zz") {
		t.Fatal("unexpected language zz in the catalog")
	}

	if !hasVoice(catalog, "aria") {
		t.Fatal("expected voice aria in the catalog")
	}
	if hasVoice(catalog, "ghost") {
		t.Fatal("unexpected voice ghost in the catalog")
	}
}
