// Display metadata for the Status and Category enumerations.
//
// Labels and icons live in plain lookup tables keyed by the enum tag so the
// domain types stay bare closed tags with no presentation behavior attached.
// A rendering layer is free to ignore these and ship its own mapping.
package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

var statusLabels = map[Status]string{
	StatusPending:    "Pending",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
}

var statusIcons = map[Status]string{
	StatusPending:    "◌",
	StatusInProgress: "◐",
	StatusCompleted:  "●",
}

var categoryLabels = map[Category]string{
	CategoryNewIdea:     "New Idea",
	CategoryFeature:     "Feature",
	CategoryEnhancement: "Enhancement",
	CategoryIntegration: "Integration",
	CategoryUIUX:        "UI/UX",
}

var categoryIcons = map[Category]string{
	CategoryNewIdea:     "💡",
	CategoryFeature:     "✨",
	CategoryEnhancement: "🔧",
	CategoryIntegration: "🔌",
	CategoryUIUX:        "🎨",
}

// StatusLabel returns the human-readable name for s. Unknown tags are
// humanized from the wire spelling instead of rendering as raw tokens.
func StatusLabel(s Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return humanize(string(s))
}

// StatusIcon returns a one-glyph marker for s, or "" when unknown.
func StatusIcon(s Status) string { return statusIcons[s] }

// CategoryLabel returns the human-readable name for c. Unknown tags are
// humanized from the wire spelling.
func CategoryLabel(c Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return humanize(string(c))
}

// CategoryIcon returns a one-glyph marker for c, or "" when unknown.
func CategoryIcon(c Category) string { return categoryIcons[c] }

// humanize turns a hyphenated wire tag into title-cased words,
// e.g. "in-progress" -> "In Progress".
func humanize(tag string) string {
	return titleCaser.String(strings.ReplaceAll(tag, "-", " "))
}
