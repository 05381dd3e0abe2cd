package wizard

import (
	"strings"
	"testing"

	"story-composer/internal/domain"
)

// TestTitleIsValid covers blank, boundary-length, and multi-byte titles.
func TestTitleIsValid(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  bool
	}{
		{"empty", "", false},
		{"whitespace only", "   \t\n", false},
		{"plain", "The Quiet Harbor", true},
		{"exactly 100", strings.Repeat("a", 100), true},
		{"101 runes", strings.Repeat("a", 101), false},
		{"100 emoji graphemes", strings.Repeat("🎈", 100), true},
		{"101 emoji graphemes", strings.Repeat("🎈", 101), false},
		{"combining marks count once", strings.Repeat("é", 100), true},
	}

	for _, tc := range cases {
		got := TitleIsValid(domain.Draft{Title: tc.title})
		if got != tc.want {
			t.Fatalf("%s: TitleIsValid = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// TestTitleCharacterCountGraphemes verifies grapheme-cluster counting.
func TestTitleCharacterCountGraphemes(t *testing.T) {
	if got := TitleCharacterCount("héllo"); got != 5 {
		t.Fatalf("count = %d, want 5", got)
	}
	// Combining acute accent forms one perceived character with its base.
	if got := TitleCharacterCount("é"); got != 1 {
		t.Fatalf("combined count = %d, want 1", got)
	}
	if got := TitleCharacterCount("🎉🎉"); got != 2 {
		t.Fatalf("emoji count = %d, want 2", got)
	}
}

// TestContentIsValid verifies whitespace-only content is rejected.
func TestContentIsValid(t *testing.T) {
	if ContentIsValid(domain.Draft{Content: " \t\n\n  "}) {
		t.Fatal("whitespace-only content must be invalid")
	}
	if !ContentIsValid(domain.Draft{Content: "Once upon a time."}) {
		t.Fatal("real content must be valid")
	}
}

// TestCanProceedFromReview verifies the combined gate.
func TestCanProceedFromReview(t *testing.T) {
	valid := domain.Draft{Title: "Title", Content: "Body"}
	if !CanProceedFromReview(valid) {
		t.Fatal("valid draft should proceed")
	}
	if CanProceedFromReview(domain.Draft{Title: "Title"}) {
		t.Fatal("missing content should block")
	}
	if CanProceedFromReview(domain.Draft{Content: "Body"}) {
		t.Fatal("missing title should block")
	}
}
