// Typed client for the ideas service.
//
// The client wraps the five HTTP operations of the service (list, detail,
// create, vote, comment) behind typed methods. It resolves the anonymous user
// identity once at construction, injects the bearer API key and identity into
// every request, and normalizes failures into the package's error taxonomy.
// Calls are single-shot: no retries, no backoff, conservative fixed transport
// bounds. The client holds no request-scoped mutable state and is safe for
// concurrent use.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-feedback-sdk/domain"
)

// requestTimeout is the default bound on each phase of a call (dial, TLS,
// response header) as well as the whole exchange. Options.Timeout overrides
// it; callers needing a tighter per-call bound can use context deadlines.
const requestTimeout = 10 * time.Second

// userAgent identifies the SDK on the wire.
const userAgent = "go-feedback-sdk/1"

// Metric/span operation labels. Kept snake_case and low-cardinality.
const (
	opCreateIdea = "create_idea"
	opListIdeas  = "list_ideas"
	opIdeaDetail = "idea_detail"
	opVote       = "vote"
	opAddComment = "add_comment"
)

// errEmptyBody marks a success status that arrived without the JSON body the
// operation requires. It is normalized into a RequestError.
var errEmptyBody = errors.New("empty response body")

// IdentityResolver supplies the stable anonymous user identifier. Satisfied
// by *identity.Store.
type IdentityResolver interface {
	GetOrCreateUserID(ctx context.Context) (string, error)
}

// Options configures New.
type Options struct {
	// BaseURL is the service root, e.g. "https://feedback.example.com".
	// Required.
	BaseURL string

	// APIKey is sent as a bearer token on every request. Required.
	APIKey string

	// UserEmail and UserName are optional contact/attribution fields attached
	// to every write request.
	UserEmail string
	UserName  string

	// Identity resolves the anonymous user id. Required; a resolver failure
	// fails construction, because operating with an unstable identity would
	// silently corrupt vote attribution.
	Identity IdentityResolver

	// Timeout replaces the default 10s transport bounds (whole exchange and
	// each phase). Zero keeps the default. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the built client entirely, including Timeout.
	// Optional; intended for tests and custom proxying.
	HTTPClient *http.Client

	// Logger overrides the package-level zerolog logger. Optional.
	Logger *zerolog.Logger

	// RateLimiter, when set, throttles outbound calls client-side. Optional.
	RateLimiter *rate.Limiter
}

// Client is the typed API client. Immutable after New; safe for concurrent
// use by any number of controllers.
type Client struct {
	base      *url.URL
	apiKey    string
	userID    string
	userEmail string
	userName  string

	hc      *http.Client
	log     zerolog.Logger
	limiter *rate.Limiter
	tracer  trace.Tracer
}

// New validates opts, resolves the anonymous identity, and returns a ready
// Client. An identity storage failure is returned as an error and must be
// treated as fatal by the embedding application.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("client: BaseURL is required")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("client: APIKey is required")
	}
	if opts.Identity == nil {
		return nil, errors.New("client: Identity resolver is required")
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	userID, err := opts.Identity.GetOrCreateUserID(ctx)
	if err != nil {
		return nil, err
	}

	lg := log.With().Str("component", "feedback_client").Logger()
	if opts.Logger != nil {
		lg = *opts.Logger
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = newHTTPClient(opts.Timeout)
	}

	return &Client{
		base:      base,
		apiKey:    opts.APIKey,
		userID:    userID,
		userEmail: opts.UserEmail,
		userName:  opts.UserName,
		hc:        hc,
		log:       lg,
		limiter:   opts.RateLimiter,
		tracer:    otel.Tracer("github.com/tbourn/go-feedback-sdk/client"),
	}, nil
}

// UserID returns the resolved anonymous identifier the client attaches to
// every request.
func (c *Client) UserID() string { return c.userID }

// newHTTPClient applies timeout to the whole exchange and to each transport
// phase, falling back to the default bound when timeout is not positive.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// --- wire request payloads -------------------------------------------------

type createIdeaRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail,omitempty"`
	UserName  string `json:"userName,omitempty"`
}

type voteRequest struct {
	IdeaID    string `json:"ideaId"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail,omitempty"`
	UserName  string `json:"userName,omitempty"`
	VoteType  string `json:"voteType"`
}

type addCommentRequest struct {
	IdeaID    string `json:"ideaId"`
	Body      string `json:"body"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail,omitempty"`
	UserName  string `json:"userName,omitempty"`
}

// --- operations ------------------------------------------------------------

// CreateIdea submits a new idea and returns the server's authoritative
// record. The title must be non-empty (ErrEmptyTitle); the body is optional.
func (c *Client) CreateIdea(ctx context.Context, title, body string) (*domain.Idea, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	payload := createIdeaRequest{
		Title:     title,
		Body:      body,
		UserID:    c.userID,
		UserEmail: c.userEmail,
		UserName:  c.userName,
	}
	data, status, err := c.do(ctx, opCreateIdea, http.MethodPost, "/api/ideas", nil, payload)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		countOutcome(opCreateIdea, outcomeRequestFailed)
		return nil, &RequestError{Op: opCreateIdea, StatusCode: status, Err: errEmptyBody}
	}

	var idea domain.Idea
	if err := json.Unmarshal(data, &idea); err != nil {
		countOutcome(opCreateIdea, outcomeDecodeFailed)
		return nil, &DecodeError{Op: opCreateIdea, Err: err}
	}
	countOutcome(opCreateIdea, outcomeOK)
	return &idea, nil
}

// ListIdeas fetches ideas visible to this identity. status narrows the list
// to one Status when non-empty; onlyApproved restricts it to moderated items.
// The userId query parameter is always attached so the server can resolve
// userHasVoted.
//
// Records that fail to decode (e.g. an enum value this SDK version does not
// know) are dropped from the result with a warning instead of failing the
// whole response.
func (c *Client) ListIdeas(ctx context.Context, status domain.Status, onlyApproved bool) ([]domain.Idea, error) {
	q := url.Values{}
	q.Set("userId", c.userID)
	if status != "" {
		q.Set("status", string(status))
	}
	if onlyApproved {
		q.Set("approved", "true")
	}

	data, st, err := c.do(ctx, opListIdeas, http.MethodGet, "/api/ideas", q, nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		countOutcome(opListIdeas, outcomeRequestFailed)
		return nil, &RequestError{Op: opListIdeas, StatusCode: st, Err: errEmptyBody}
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		countOutcome(opListIdeas, outcomeDecodeFailed)
		return nil, &DecodeError{Op: opListIdeas, Err: err}
	}

	ideas := make([]domain.Idea, 0, len(records))
	for i, rec := range records {
		var idea domain.Idea
		if err := json.Unmarshal(rec, &idea); err != nil {
			c.log.Warn().Int("index", i).Err(err).
				Msg("dropping undecodable idea record")
			continue
		}
		ideas = append(ideas, idea)
	}
	countOutcome(opListIdeas, outcomeOK)
	return ideas, nil
}

// GetIdeaDetail fetches one idea together with its full comment thread.
func (c *Client) GetIdeaDetail(ctx context.Context, id string) (*domain.IdeaDetail, error) {
	q := url.Values{}
	q.Set("userId", c.userID)

	data, st, err := c.do(ctx, opIdeaDetail, http.MethodGet, "/api/ideas/"+url.PathEscape(id), q, nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		countOutcome(opIdeaDetail, outcomeRequestFailed)
		return nil, &RequestError{Op: opIdeaDetail, StatusCode: st, Err: errEmptyBody}
	}

	var detail domain.IdeaDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		countOutcome(opIdeaDetail, outcomeDecodeFailed)
		return nil, &DecodeError{Op: opIdeaDetail, Err: err}
	}
	countOutcome(opIdeaDetail, outcomeOK)
	return &detail, nil
}

// Vote registers an up-vote on ideaID for this identity. The service defines
// no un-vote and returns no payload; success is the 2xx status alone.
func (c *Client) Vote(ctx context.Context, ideaID string) error {
	payload := voteRequest{
		IdeaID:    ideaID,
		UserID:    c.userID,
		UserEmail: c.userEmail,
		UserName:  c.userName,
		VoteType:  "up",
	}
	_, _, err := c.do(ctx, opVote, http.MethodPost, "/api/votes", nil, payload)
	if err != nil {
		return err
	}
	countOutcome(opVote, outcomeOK)
	return nil
}

// AddComment posts a comment on ideaID and returns the server's record. The
// body must be non-empty (ErrEmptyComment).
func (c *Client) AddComment(ctx context.Context, ideaID, body string) (*domain.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyComment
	}

	payload := addCommentRequest{
		IdeaID:    ideaID,
		Body:      body,
		UserID:    c.userID,
		UserEmail: c.userEmail,
		UserName:  c.userName,
	}
	data, st, err := c.do(ctx, opAddComment, http.MethodPost, "/api/comments", nil, payload)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		countOutcome(opAddComment, outcomeRequestFailed)
		return nil, &RequestError{Op: opAddComment, StatusCode: st, Err: errEmptyBody}
	}

	var comment domain.Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		countOutcome(opAddComment, outcomeDecodeFailed)
		return nil, &DecodeError{Op: opAddComment, Err: err}
	}
	countOutcome(opAddComment, outcomeOK)
	return &comment, nil
}

// --- transport -------------------------------------------------------------

// do performs one HTTP exchange and returns the raw body and status.
//
// Failure normalization:
//   - caller cancellation passes through untouched (errors.Is context.Canceled)
//   - every other transport failure, and any non-2xx status, becomes a
//     RequestError
//
// do also owns the per-call observability: one client span, the latency
// histogram, a debug log line, and the request counter for failures that
// terminate here; 2xx calls are counted by the operation after decode.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) ([]byte, int, error) {
	start := time.Now()
	apiInflight.Inc()
	defer apiInflight.Dec()

	ctx, span := c.tracer.Start(ctx, "ideas."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, c.finish(op, span, start, 0, err)
		}
	}

	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, c.finish(op, span, start, 0, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, 0, c.finish(op, span, start, 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, c.finish(op, span, start, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, c.finish(op, span, start, resp.StatusCode, err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		reqErr := &RequestError{Op: op, StatusCode: resp.StatusCode}
		span.SetStatus(otelcodes.Error, reqErr.Error())
		observe(op, outcomeRequestFailed, start)
		c.log.Debug().Str("operation", op).Int("status", resp.StatusCode).
			Dur("latency", time.Since(start)).Msg("api call failed")
		return nil, resp.StatusCode, reqErr
	}

	// The counter verdict for a 2xx is settled by the operation once the
	// payload decode settles; only the latency is final here.
	observeLatency(op, start)
	c.log.Debug().Str("operation", op).Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).Msg("api call")
	return data, resp.StatusCode, nil
}

// finish normalizes a pre-response failure, records it, and returns the error
// the operation should surface.
func (c *Client) finish(op string, span trace.Span, start time.Time, status int, err error) error {
	if errors.Is(err, context.Canceled) {
		// Supersession is not a failure; leave the error untranslated so
		// controllers can filter it, and keep the span unpolluted.
		observe(op, outcomeCancelled, start)
		return err
	}

	reqErr := &RequestError{Op: op, StatusCode: status, Err: err}
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, reqErr.Error())
	observe(op, outcomeRequestFailed, start)
	c.log.Debug().Str("operation", op).Err(err).
		Dur("latency", time.Since(start)).Msg("api call failed")
	return reqErr
}
