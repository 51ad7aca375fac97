// Package domain defines the wire-level data model shared by the API client
// and the view-state controllers: ideas, idea details, comments, and the
// closed Status/Category enumerations with their exact wire spellings.
//
// All types are immutable value snapshots. The client replaces them wholesale
// on every successful fetch; nothing in this package mutates a fetched record.
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the moderation/progress state of an idea. It is a closed
// enumeration; the constant values are the exact (hyphenated, lower-case)
// strings used on the wire.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid Status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known wire values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// UnmarshalJSON decodes a status string and rejects unknown wire values so a
// malformed record fails loudly instead of carrying a bogus tag.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := Status(raw)
	if !v.Valid() {
		return fmt.Errorf("unknown idea status %q", raw)
	}
	*s = v
	return nil
}

// Category classifies what kind of request an idea is. Closed enumeration;
// constants are the exact wire strings.
type Category string

const (
	CategoryNewIdea     Category = "new-idea"
	CategoryFeature     Category = "feature"
	CategoryEnhancement Category = "enhancement"
	CategoryIntegration Category = "integration"
	CategoryUIUX        Category = "ui-ux"
)

// Categories lists every valid Category in display order.
var Categories = []Category{
	CategoryNewIdea, CategoryFeature, CategoryEnhancement,
	CategoryIntegration, CategoryUIUX,
}

// Valid reports whether c is one of the known wire values.
func (c Category) Valid() bool {
	switch c {
	case CategoryNewIdea, CategoryFeature, CategoryEnhancement,
		CategoryIntegration, CategoryUIUX:
		return true
	}
	return false
}

// UnmarshalJSON decodes a category string and rejects unknown wire values.
func (c *Category) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := Category(raw)
	if !v.Valid() {
		return fmt.Errorf("unknown idea category %q", raw)
	}
	*c = v
	return nil
}

// Idea is the list-view projection of a feedback item.
//
// Fields:
//   - ID: opaque stable identifier assigned by the service.
//   - Title: non-empty summary text.
//   - Body: optional longer description; empty when absent from the wire.
//   - Status / Category: closed enum tags (see above).
//   - IsApproved: whether the item passed moderation. List loads in this SDK
//     always request approved-only, so unapproved items only appear for
//     callers that ask for them explicitly.
//   - VoteCount / CommentCount: non-negative aggregates maintained server-side.
//   - CreatedBy: display name or identifier of the author.
//   - CreatedAt: optional timestamp; nil for legacy records.
//   - UserHasVoted: resolved server-side against the userId that issued the
//     request. It is a property of the (idea, identity) pair, not of the idea.
//
// An Idea fetched from a list endpoint never carries comments; IdeaDetail is
// a distinct projection of the same entity, not a subtype.
type Idea struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Body         string     `json:"body,omitempty"`
	Status       Status     `json:"status"`
	Category     Category   `json:"category"`
	IsApproved   bool       `json:"isApproved"`
	VoteCount    int        `json:"voteCount"`
	CommentCount int        `json:"commentCount"`
	CreatedBy    string     `json:"createdBy"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UserHasVoted bool       `json:"userHasVoted"`
}

// IdeaDetail is an Idea enriched with its full comment thread. Comment order
// is server-determined (assumed chronological ascending) and significant.
type IdeaDetail struct {
	Idea
	Comments []Comment `json:"comments"`
}

// Comment is a single entry in an idea's thread.
type Comment struct {
	ID        string     `json:"id"`
	Body      string     `json:"body"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}
