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

// DetailState is the observable snapshot for a single idea's detail surface.
type DetailState struct {
	// Detail is the current full snapshot, nil before the first successful
	// load. Replaced wholesale on every refresh.
	Detail *domain.IdeaDetail

	IsLoading           bool
	IsSubmittingComment bool

	// ErrorMessage is short user-facing text, "" when there is no error.
	ErrorMessage string
}

// DetailController orchestrates refresh, voting, and comment submission for
// one fixed idea. It enforces strict supersession: the detail surface is
// refreshed in rapid bursts (pull-to-refresh, post-vote, post-comment), and
// an out-of-order late response must never clobber a newer one, so starting
// a load cancels the previous one and only the most recently started load
// may write terminal state.
//
// Safe for concurrent use.
type DetailController struct {
	api    IdeasAPI
	ideaID string
	log    zerolog.Logger

	state *state.Value[DetailState]

	// mu serializes load bookkeeping and state transitions.
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewDetailController returns a controller scoped to ideaID for its lifetime.
func NewDetailController(api IdeasAPI, ideaID string) *DetailController {
	return &DetailController{
		api:    api,
		ideaID: ideaID,
		log:    log.With().Str("component", "detail_controller").Str("idea_id", ideaID).Logger(),
		state:  state.NewValue(DetailState{}),
	}
}

// IdeaID returns the idea this controller is scoped to.
func (c *DetailController) IdeaID() string { return c.ideaID }

// State returns the current snapshot.
func (c *DetailController) State() DetailState { return c.state.Get() }

// Subscribe registers fn for synchronous notification on every state change.
// fn must not call back into the controller.
func (c *DetailController) Subscribe(fn func(DetailState)) (cancel func()) {
	return c.state.Subscribe(fn)
}

// LoadDetail refreshes the snapshot. Any in-flight prior load is cancelled
// first; a superseded load writes nothing — neither data, nor an error, nor
// its loading-flag reset. A load cancelled by the caller while still the
// active one clears IsLoading and nothing else.
func (c *DetailController) LoadDetail(ctx context.Context) {
	ctx, gen := c.beginLoad(ctx)

	detail, err := c.api.GetIdeaDetail(ctx, c.ideaID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// When superseded the newer load owns the flags and the gen guard
			// drops this write. A caller-cancelled load with no successor is
			// still the active unit and must release the loading flag itself.
			c.completeLoad(gen, func(st DetailState) DetailState {
				st.IsLoading = false
				return st
			})
			return
		}
		c.log.Warn().Err(err).Msg("detail load failed")
		c.completeLoad(gen, func(st DetailState) DetailState {
			st.IsLoading = false
			st.ErrorMessage = "Could not load this idea. Please try again."
			return st
		})
		return
	}

	c.completeLoad(gen, func(st DetailState) DetailState {
		st.IsLoading = false
		st.Detail = detail
		return st
	})
}

// Vote up-votes the idea, then unconditionally reloads so vote count and
// userHasVoted come back authoritative.
func (c *DetailController) Vote(ctx context.Context) {
	if err := c.api.Vote(ctx, c.ideaID); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.fail("vote failed", "Your vote could not be recorded. Please try again.", err)
		return
	}
	c.LoadDetail(ctx)
}

// AddComment posts body as a comment and reloads on success. A blank or
// whitespace-only body is a precondition no-op: no network call, no state
// change. IsSubmittingComment is cleared on every exit path.
func (c *DetailController) AddComment(ctx context.Context, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}

	c.state.Update(func(st DetailState) DetailState {
		st.IsSubmittingComment = true
		return st
	})
	defer c.state.Update(func(st DetailState) DetailState {
		st.IsSubmittingComment = false
		return st
	})

	if _, err := c.api.AddComment(ctx, c.ideaID, body); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.fail("comment submit failed", "Your comment could not be posted. Please try again.", err)
		return
	}

	c.LoadDetail(ctx)
}

// ClearError clears ErrorMessage only. Idempotent.
func (c *DetailController) ClearError() {
	c.state.Update(func(st DetailState) DetailState {
		st.ErrorMessage = ""
		return st
	})
}

// beginLoad cancels any in-flight load, registers a new generation, and
// flips the loading flag on.
func (c *DetailController) beginLoad(ctx context.Context) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.gen++

	c.state.Update(func(st DetailState) DetailState {
		st.IsLoading = true
		st.ErrorMessage = ""
		return st
	})
	return ctx, c.gen
}

// completeLoad applies fn only while gen is still the active load.
func (c *DetailController) completeLoad(gen uint64, fn func(DetailState) DetailState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	c.cancel = nil
	c.state.Update(fn)
}

// fail logs err and stores a user-facing message.
func (c *DetailController) fail(logMsg, userMsg string, err error) {
	c.log.Warn().Err(err).Msg(logMsg)
	c.state.Update(func(st DetailState) DetailState {
		st.ErrorMessage = userMsg
		return st
	})
}
