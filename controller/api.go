// Package controller implements the view-state layer of the SDK: small state
// machines that sit between a rendering surface and the API client.
//
// A controller owns an observable state snapshot (state.Value), accepts user
// intents (load, vote, submit, filter) as method calls, and mutates the
// snapshot as asynchronous work settles. Methods are synchronous units of
// work; a rendering layer typically runs them on their own goroutines and
// re-renders from Subscribe callbacks.
//
// Cancellation policy: starting a new load cancels the in-flight prior load
// in BOTH controllers, and a superseded unit never writes state again — not
// even its loading-flag reset; the successor owns the flags. A load cancelled
// by the caller with no successor still releases IsLoading, since no newer
// unit will. Cancellation is silent either way; it is never surfaced through
// ErrorMessage.
package controller

import (
	"context"

	"github.com/tbourn/go-feedback-sdk/domain"
)

// IdeasAPI is the slice of the API client the controllers depend on.
// *client.Client satisfies it; tests substitute stubs.
type IdeasAPI interface {
	CreateIdea(ctx context.Context, title, body string) (*domain.Idea, error)
	ListIdeas(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error)
	GetIdeaDetail(ctx context.Context, id string) (*domain.IdeaDetail, error)
	Vote(ctx context.Context, ideaID string) error
	AddComment(ctx context.Context, ideaID, body string) (*domain.Comment, error)
}
