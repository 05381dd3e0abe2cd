package wizard

import (
	"strings"

	"github.com/rivo/uniseg"

	"story-composer/internal/domain"
)

// MaxTitleLength is the title limit in grapheme clusters. Counting grapheme
// clusters (not bytes or code points) keeps the limit consistent with what
// an operator sees in the input field for emoji and combining marks.
const MaxTitleLength = 100

// TitleCharacterCount returns the title length in grapheme clusters.
func TitleCharacterCount(title string) int {
	return uniseg.GraphemeClusterCount(title)
}

// TitleIsValid reports whether a title is non-blank and within the limit.
func TitleIsValid(d domain.Draft) bool {
	if strings.TrimSpace(d.Title) == "" {
		return false
	}
	return TitleCharacterCount(d.Title) <= MaxTitleLength
}

// ContentIsValid reports whether content has any non-whitespace text.
func ContentIsValid(d domain.Draft) bool {
	return strings.TrimSpace(d.Content) != ""
}

// CanProceedFromReview gates forward navigation out of the review step.
// The orchestrator never enforces this itself; the caller disables its
// continue affordance when it is false.
func CanProceedFromReview(d domain.Draft) bool {
	return TitleIsValid(d) && ContentIsValid(d)
}
