package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tbourn/go-feedback-sdk/domain"
)

func TestListController_LoadReplacesCollection(t *testing.T) {
	api := &stubAPI{
		listFn: func(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error) {
			return []domain.Idea{idea("a", "A"), idea("b", "B")}, nil
		},
	}
	c := NewListController(api)

	var sawLoading bool
	c.Subscribe(func(st ListState) {
		if st.IsLoading {
			sawLoading = true
		}
	})

	c.LoadIdeas(context.Background())

	st := c.State()
	if st.IsLoading {
		t.Fatal("IsLoading should be false after the load completes")
	}
	if st.ErrorMessage != "" {
		t.Fatalf("unexpected error: %q", st.ErrorMessage)
	}
	if len(st.Ideas) != 2 || st.Ideas[0].ID != "a" || st.Ideas[1].ID != "b" {
		t.Fatalf("collection not replaced with server order: %+v", st.Ideas)
	}
	if !sawLoading {
		t.Fatal("subscribers never observed the loading phase")
	}

	call := api.lastListCall(t)
	if !call.onlyApproved {
		t.Fatal("list loads must request approved ideas only")
	}
}

func TestListController_LoadFailureKeepsStaleIdeas(t *testing.T) {
	var failing atomic.Bool
	api := &stubAPI{
		listFn: func(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error) {
			if failing.Load() {
				return nil, errors.New("boom")
			}
			return []domain.Idea{idea("a", "A")}, nil
		},
	}
	c := NewListController(api)

	c.LoadIdeas(context.Background())
	failing.Store(true)
	c.LoadIdeas(context.Background())

	st := c.State()
	if st.IsLoading {
		t.Fatal("IsLoading should be cleared on failure")
	}
	if st.ErrorMessage == "" {
		t.Fatal("failure must surface a user-facing message")
	}
	if len(st.Ideas) != 1 || st.Ideas[0].ID != "a" {
		t.Fatalf("stale collection must survive a failed refresh: %+v", st.Ideas)
	}
}

func TestListController_SubmitPrependsServerRecord(t *testing.T) {
	api := &stubAPI{
		listFn: func(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error) {
			return []domain.Idea{idea("a", "A"), idea("b", "B")}, nil
		},
		createFn: func(ctx context.Context, title, body string) (*domain.Idea, error) {
			created := idea("c", title)
			return &created, nil
		},
	}
	c := NewListController(api)
	c.LoadIdeas(context.Background())

	c.SubmitIdea(context.Background(), "C", "details")

	st := c.State()
	if len(st.Ideas) != 3 {
		t.Fatalf("len(Ideas) = %d, want 3", len(st.Ideas))
	}
	if st.Ideas[0].ID != "c" || st.Ideas[1].ID != "a" || st.Ideas[2].ID != "b" {
		t.Fatalf("new idea must be prepended: %+v", st.Ideas)
	}
	if api.listCallCount() != 1 {
		t.Fatalf("submit must not trigger a refresh, got %d list calls", api.listCallCount())
	}
}

func TestListController_SubmitFailureLeavesCollectionUntouched(t *testing.T) {
	api := &stubAPI{
		listFn: func(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error) {
			return []domain.Idea{idea("a", "A")}, nil
		},
		createFn: func(ctx context.Context, title, body string) (*domain.Idea, error) {
			return nil, errors.New("boom")
		},
	}
	c := NewListController(api)
	c.LoadIdeas(context.Background())

	c.SubmitIdea(context.Background(), "C", "")

	st := c.State()
	if len(st.Ideas) != 1 || st.Ideas[0].ID != "a" {
		t.Fatalf("collection changed on failed submit: %+v", st.Ideas)
	}
	if st.ErrorMessage == "" {
		t.Fatal("failed submit must surface a user-facing message")
	}
}

func TestListController_SubmitBlankTitleIsNoop(t *testing.T) {
	api := &stubAPI{}
	c := NewListController(api)

	c.SubmitIdea(context.Background(), "   \t", "body")

	if api.createCalls != 0 {
		t.Fatal("blank title must not reach the API")
	}
	if st := c.State(); st.ErrorMessage != "" {
		t.Fatalf("blank title must not set an error: %q", st.ErrorMessage)
	}
}

func TestListController_VoteRefreshesWithCurrentFilter(t *testing.T) {
	api := &stubAPI{
		listFn: func(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error) {
			target := idea("a", "A")
			if status != "" && target.Status != status {
				return nil, nil
			}
			target.VoteCount = 7
			return []domain.Idea{target}, nil
		},
	}
	c := NewListController(api)
	c.SetSelectedStatus(context.Background(), domain.StatusPending)

	before := api.listCallCount()
	c.Vote(context.Background(), idea("a", "A"))

	if got := api.listCallCount() - before; got != 1 {
		t.Fatalf("vote triggered %d refreshes, want exactly 1", got)
	}
	call := api.lastListCall(t)
	if call.status != domain.StatusPending || !call.onlyApproved {
		t.Fatalf("refresh lost the active filter: %+v", call)
	}
	if st := c.State(); st.Ideas[0].VoteCount != 7 {
		t.Fatalf("vote count must come from the server refresh: %+v", st.Ideas)
	}
}

func TestListController_VoteFailureSetsErrorWithoutRefresh(t *testing.T) {
	api := &stubAPI{
		voteFn: func(ctx context.Context, ideaID string) error { return errors.New("boom") },
	}
	c := NewListController(api)

	c.Vote(context.Background(), idea("a", "A"))

	if api.listCallCount() != 0 {
		t.Fatal("failed vote must not refresh the list")
	}
	if st := c.State(); st.ErrorMessage == "" {
		t.Fatal("failed vote must surface a user-facing message")
	}
}

func TestListController_SupersededLoadCannotClobber(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	api := &stubAPI{
		listFn: func(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				// A slow responder that ignores cancellation and answers late.
				<-release
				return []domain.Idea{idea("old", "stale")}, nil
			}
			return []domain.Idea{idea("new", "fresh")}, nil
		},
	}
	c := NewListController(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.LoadIdeas(context.Background())
	}()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })

	c.LoadIdeas(context.Background()) // supersedes the blocked load

	close(release)
	wg.Wait()

	st := c.State()
	if st.IsLoading {
		t.Fatal("IsLoading stuck after the newer load completed")
	}
	if len(st.Ideas) != 1 || st.Ideas[0].ID != "new" {
		t.Fatalf("late superseded response clobbered the newer one: %+v", st.Ideas)
	}
}

func TestListController_CancelledActiveLoadReleasesLoadingFlag(t *testing.T) {
	// The caller tears down its context mid-load and never starts another
	// load; the cancelled unit is still the active one, so it must clear
	// IsLoading itself while staying silent.
	ctx, cancel := context.WithCancel(context.Background())
	api := &stubAPI{
		listFn: func(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error) {
			cancel()
			return nil, ctx.Err()
		},
	}
	c := NewListController(api)

	c.LoadIdeas(ctx)

	st := c.State()
	if st.IsLoading {
		t.Fatal("IsLoading stuck true after a cancelled load with no successor")
	}
	if st.ErrorMessage != "" {
		t.Fatalf("cancellation must not surface an error: %q", st.ErrorMessage)
	}
}

func TestListController_ClearErrorIsIdempotent(t *testing.T) {
	api := &stubAPI{
		listFn: func(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error) {
			return nil, errors.New("boom")
		},
	}
	c := NewListController(api)
	c.LoadIdeas(context.Background())

	if st := c.State(); st.ErrorMessage == "" {
		t.Fatal("precondition: an error should be set")
	}
	c.ClearError()
	c.ClearError()
	if st := c.State(); st.ErrorMessage != "" {
		t.Fatalf("error not cleared: %q", st.ErrorMessage)
	}
}
