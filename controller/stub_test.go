package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-feedback-sdk/domain"
)

// listCall records the arguments of one ListIdeas invocation.
type listCall struct {
	status       domain.Status
	onlyApproved bool
}

// stubAPI is a scriptable IdeasAPI. Unset funcs return zero values.
type stubAPI struct {
	mu sync.Mutex

	listCalls    []listCall
	createCalls  int
	voteCalls    []string
	detailCalls  int
	commentCalls []string

	listFn    func(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error)
	createFn  func(ctx context.Context, title, body string) (*domain.Idea, error)
	detailFn  func(ctx context.Context, id string) (*domain.IdeaDetail, error)
	voteFn    func(ctx context.Context, ideaID string) error
	commentFn func(ctx context.Context, ideaID, body string) (*domain.Comment, error)
}

func (s *stubAPI) ListIdeas(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error) {
	s.mu.Lock()
	s.listCalls = append(s.listCalls, listCall{status: status, onlyApproved: onlyApproved})
	fn := s.listFn
	s.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, status, onlyApproved)
}

func (s *stubAPI) CreateIdea(ctx context.Context, title, body string) (*domain.Idea, error) {
	s.mu.Lock()
	s.createCalls++
	fn := s.createFn
	s.mu.Unlock()
	if fn == nil {
		return &domain.Idea{}, nil
	}
	return fn(ctx, title, body)
}

func (s *stubAPI) GetIdeaDetail(ctx context.Context, id string) (*domain.IdeaDetail, error) {
	s.mu.Lock()
	s.detailCalls++
	fn := s.detailFn
	s.mu.Unlock()
	if fn == nil {
		return &domain.IdeaDetail{}, nil
	}
	return fn(ctx, id)
}

func (s *stubAPI) Vote(ctx context.Context, ideaID string) error {
	s.mu.Lock()
	s.voteCalls = append(s.voteCalls, ideaID)
	fn := s.voteFn
	s.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, ideaID)
}

func (s *stubAPI) AddComment(ctx context.Context, ideaID, body string) (*domain.Comment, error) {
	s.mu.Lock()
	s.commentCalls = append(s.commentCalls, body)
	fn := s.commentFn
	s.mu.Unlock()
	if fn == nil {
		return &domain.Comment{}, nil
	}
	return fn(ctx, ideaID, body)
}

func (s *stubAPI) listCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listCalls)
}

func (s *stubAPI) lastListCall(t *testing.T) listCall {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.listCalls) == 0 {
		t.Fatal("no ListIdeas call recorded")
	}
	return s.listCalls[len(s.listCalls)-1]
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func idea(id, title string) domain.Idea {
	return domain.Idea{
		ID: id, Title: title,
		Status: domain.StatusPending, Category: domain.CategoryFeature,
		IsApproved: true,
	}
}
