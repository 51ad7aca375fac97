// Package ideastest provides an in-memory implementation of the ideas
// service HTTP surface for tests and demos. The store mirrors the production
// service's observable behavior: server-ordered listings (newest first),
// per-identity vote resolution, and a deliberately non-idempotent vote
// counter, so client and controller tests exercise the same semantics the
// real backend exhibits.
package ideastest

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-feedback-sdk/domain"
)

// record is one idea with its thread and the set of identities that voted.
type record struct {
	idea     domain.Idea
	comments []domain.Comment
	voters   map[string]bool
}

// Store is the mutex-guarded in-memory backing state of a Server.
// Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	ideas map[string]*record
	order []string // insertion order; listings return newest first
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{ideas: make(map[string]*record)}
}

// Seed inserts idea as-is (id, counts, approval included). Intended for test
// fixtures; use Add for the creation path the API exposes.
func (s *Store) Seed(idea domain.Idea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ideas[idea.ID] = &record{idea: idea, voters: make(map[string]bool)}
	s.order = append(s.order, idea.ID)
}

// Add creates a new idea the way the production service does: pending,
// categorized as a new idea, and not yet approved.
func (s *Store) Add(title, body, createdBy string) domain.Idea {
	now := time.Now().UTC()
	idea := domain.Idea{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		Status:    domain.StatusPending,
		Category:  domain.CategoryNewIdea,
		CreatedBy: createdBy,
		CreatedAt: &now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ideas[idea.ID] = &record{idea: idea, voters: make(map[string]bool)}
	s.order = append(s.order, idea.ID)
	return idea
}

// List returns ideas newest first, filtered by status (when non-empty) and
// approval, with UserHasVoted resolved against userID.
func (s *Store) List(status domain.Status, onlyApproved bool, userID string) []domain.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Idea, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.ideas[s.order[i]]
		if status != "" && rec.idea.Status != status {
			continue
		}
		if onlyApproved && !rec.idea.IsApproved {
			continue
		}
		out = append(out, s.projectLocked(rec, userID))
	}
	return out
}

// Get returns the detail projection of one idea, resolved against userID.
func (s *Store) Get(id, userID string) (domain.IdeaDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.ideas[id]
	if !ok {
		return domain.IdeaDetail{}, false
	}
	detail := domain.IdeaDetail{
		Idea:     s.projectLocked(rec, userID),
		Comments: append([]domain.Comment(nil), rec.comments...),
	}
	return detail, true
}

// Vote registers an up-vote by userID. Every call increments the count —
// the production service has no idempotency guard here, which is exactly why
// the SDK's controllers never apply optimistic vote increments.
func (s *Store) Vote(ideaID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.ideas[ideaID]
	if !ok {
		return false
	}
	rec.idea.VoteCount++
	rec.voters[userID] = true
	return true
}

// AddComment appends a comment to ideaID's thread.
func (s *Store) AddComment(ideaID, body, createdBy string) (domain.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.ideas[ideaID]
	if !ok {
		return domain.Comment{}, false
	}
	now := time.Now().UTC()
	comment := domain.Comment{
		ID:        uuid.NewString(),
		Body:      body,
		CreatedBy: createdBy,
		CreatedAt: &now,
	}
	rec.comments = append(rec.comments, comment)
	rec.idea.CommentCount = len(rec.comments)
	return comment, true
}

// Approve flips an idea to approved. Test helper; the moderation surface is
// not part of the public API.
func (s *Store) Approve(ideaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.ideas[ideaID]; ok {
		rec.idea.IsApproved = true
	}
}

// projectLocked copies the stored idea and resolves the caller-relative
// fields. Caller holds s.mu.
func (s *Store) projectLocked(rec *record, userID string) domain.Idea {
	idea := rec.idea
	idea.UserHasVoted = rec.voters[userID]
	return idea
}
