package controller

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-feedback-sdk/domain"
	"github.com/tbourn/go-feedback-sdk/state"
)

// ListState is the observable snapshot for a list surface.
//
// Fields:
//   - Ideas: current collection in server order, replaced wholesale on load.
//   - IsLoading: true while a load is in flight.
//   - ErrorMessage: short user-facing text, "" when there is no error.
//   - SelectedStatus: active filter; "" means all statuses.
type ListState struct {
	Ideas          []domain.Idea
	IsLoading      bool
	ErrorMessage   string
	SelectedStatus domain.Status
}

// ListController orchestrates list refresh, idea submission, and voting.
//
// Update policy:
//   - loads replace the collection wholesale with the server's ordering;
//     list loads always request approved-only, so pending moderation items
//     never reach the list surface
//   - SubmitIdea prepends the server's authoritative response without a
//     re-fetch (optimistic insert of a known-good record)
//   - Vote is pessimistic: success triggers one full reload for
//     authoritative counts, because voting is not idempotent server-side and
//     a local increment could drift or double-count
//
// Safe for concurrent use; a newer load supersedes and cancels an older one.
type ListController struct {
	api IdeasAPI
	log zerolog.Logger

	state *state.Value[ListState]

	// mu serializes load bookkeeping and state transitions so a superseded
	// load can never interleave its writes with a newer one's.
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewListController returns a controller with empty initial state.
func NewListController(api IdeasAPI) *ListController {
	return &ListController{
		api:   api,
		log:   log.With().Str("component", "list_controller").Logger(),
		state: state.NewValue(ListState{}),
	}
}

// State returns the current snapshot.
func (c *ListController) State() ListState { return c.state.Get() }

// Subscribe registers fn for synchronous notification on every state change.
// fn must not call back into the controller.
func (c *ListController) Subscribe(fn func(ListState)) (cancel func()) {
	return c.state.Subscribe(fn)
}

// LoadIdeas refreshes the collection using the currently selected filter,
// fetching approved ideas only. A prior in-flight load is cancelled; its
// eventual completion is discarded silently.
func (c *ListController) LoadIdeas(ctx context.Context) {
	ctx, gen := c.beginLoad(ctx)

	ideas, err := c.api.ListIdeas(ctx, c.state.Get().SelectedStatus, true)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// When superseded the newer load owns the flags and the gen guard
			// drops this write. A caller-cancelled load with no successor is
			// still the active unit and must release the loading flag itself.
			c.completeLoad(gen, func(st ListState) ListState {
				st.IsLoading = false
				return st
			})
			return
		}
		c.log.Warn().Err(err).Msg("list load failed")
		c.completeLoad(gen, func(st ListState) ListState {
			st.IsLoading = false
			st.ErrorMessage = "Could not load ideas. Please try again."
			return st
		})
		return
	}

	c.completeLoad(gen, func(st ListState) ListState {
		st.IsLoading = false
		st.Ideas = ideas
		return st
	})
}

// SubmitIdea creates a new idea and, on success, prepends the server's
// record to the current collection. A blank title is a precondition no-op.
// On failure the collection is left untouched and ErrorMessage is set.
func (c *ListController) SubmitIdea(ctx context.Context, title, body string) {
	if strings.TrimSpace(title) == "" {
		return
	}

	idea, err := c.api.CreateIdea(ctx, title, body)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.fail("idea submit failed", "Your idea could not be submitted. Please try again.", err)
		return
	}

	c.state.Update(func(st ListState) ListState {
		st.Ideas = append([]domain.Idea{*idea}, st.Ideas...)
		return st
	})
}

// Vote up-votes idea and reloads the list on success so counts come from the
// server. No local vote-count mutation happens before that refresh returns.
func (c *ListController) Vote(ctx context.Context, idea domain.Idea) {
	if err := c.api.Vote(ctx, idea.ID); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.fail("vote failed", "Your vote could not be recorded. Please try again.", err)
		return
	}
	c.LoadIdeas(ctx)
}

// SetSelectedStatus updates the filter ("" = all) and reloads.
func (c *ListController) SetSelectedStatus(ctx context.Context, status domain.Status) {
	c.state.Update(func(st ListState) ListState {
		st.SelectedStatus = status
		return st
	})
	c.LoadIdeas(ctx)
}

// ClearError clears ErrorMessage only. Calling it when no error is set is a
// harmless no-op.
func (c *ListController) ClearError() {
	c.state.Update(func(st ListState) ListState {
		st.ErrorMessage = ""
		return st
	})
}

// beginLoad cancels any in-flight load, registers a new generation, and
// flips the loading flag on.
func (c *ListController) beginLoad(ctx context.Context) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.gen++

	c.state.Update(func(st ListState) ListState {
		st.IsLoading = true
		st.ErrorMessage = ""
		return st
	})
	return ctx, c.gen
}

// completeLoad applies fn only when gen is still the active load; a
// superseded unit's terminal mutation (including its loading reset) is
// dropped.
func (c *ListController) completeLoad(gen uint64, fn func(ListState) ListState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	c.cancel = nil
	c.state.Update(fn)
}

// fail logs err and stores a user-facing message.
func (c *ListController) fail(logMsg, userMsg string, err error) {
	c.log.Warn().Err(err).Msg(logMsg)
	c.state.Update(func(st ListState) ListState {
		st.ErrorMessage = userMsg
		return st
	})
}
