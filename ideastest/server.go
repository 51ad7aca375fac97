// HTTP surface of the fake ideas service.
//
// Handlers are transport-thin in the production style: validate input,
// delegate to the Store, translate misses into a stable error envelope.
// Responses are gzip-compressed and every route requires the bearer API key,
// so the client's auth header injection and transparent decompression get
// exercised end to end.
package ideastest

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-sdk/domain"
)

// Stable error codes mirrored from the production error envelope.
const (
	errCodeBadRequest   = "bad_request"
	errCodeUnauthorized = "unauthorized"
	errCodeNotFound     = "not_found"
)

// errorResponse is the error envelope returned by all endpoints.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RecordedRequest captures one authenticated request for assertions.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
}

// Server is a fake ideas backend. Mount Handler() on an httptest.Server.
type Server struct {
	apiKey string
	store  *Store
	engine *gin.Engine

	mu       sync.Mutex
	requests []RecordedRequest
}

// New returns a Server authenticating with apiKey and backed by store.
func New(apiKey string, store *Store) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{apiKey: apiKey, store: store}

	r := gin.New()
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(s.requireBearer())
	r.Use(s.record())

	r.GET("/api/ideas", s.listIdeas)
	r.GET("/api/ideas/:id", s.getIdea)
	r.POST("/api/ideas", s.createIdea)
	r.POST("/api/votes", s.vote)
	r.POST("/api/comments", s.addComment)

	s.engine = r
	return s
}

// Handler returns the http.Handler serving the fake API.
func (s *Server) Handler() http.Handler { return s.engine }

// Store returns the backing store for seeding and direct assertions.
func (s *Server) Store() *Store { return s.store }

// Requests returns a copy of every authenticated request seen so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// requireBearer rejects requests without the exact configured bearer token.
func (s *Server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth != "Bearer "+s.apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Code:    errCodeUnauthorized,
				Message: "missing or invalid api key",
			})
			return
		}
		c.Next()
	}
}

// record captures method, path, and query of authenticated requests.
func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.Query(),
		})
		s.mu.Unlock()
		c.Next()
	}
}

func fail(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Message: msg})
}

func (s *Server) listIdeas(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		fail(c, http.StatusBadRequest, errCodeBadRequest, "userId is required")
		return
	}

	var status domain.Status
	if raw := c.Query("status"); raw != "" {
		status = domain.Status(raw)
		if !status.Valid() {
			fail(c, http.StatusBadRequest, errCodeBadRequest, "unknown status filter")
			return
		}
	}
	onlyApproved := c.Query("approved") == "true"

	c.JSON(http.StatusOK, s.store.List(status, onlyApproved, userID))
}

func (s *Server) getIdea(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		fail(c, http.StatusBadRequest, errCodeBadRequest, "userId is required")
		return
	}

	detail, ok := s.store.Get(c.Param("id"), userID)
	if !ok {
		fail(c, http.StatusNotFound, errCodeNotFound, "idea not found")
		return
	}
	c.JSON(http.StatusOK, detail)
}

type createIdeaRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}

func (s *Server) createIdea(c *gin.Context) {
	var req createIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errCodeBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.UserID == "" {
		fail(c, http.StatusBadRequest, errCodeBadRequest, "title and userId are required")
		return
	}

	createdBy := req.UserName
	if createdBy == "" {
		createdBy = req.UserID
	}
	c.JSON(http.StatusCreated, s.store.Add(req.Title, req.Body, createdBy))
}

type voteRequest struct {
	IdeaID    string `json:"ideaId"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	VoteType  string `json:"voteType"`
}

func (s *Server) vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errCodeBadRequest, "invalid payload")
		return
	}
	if req.IdeaID == "" || req.UserID == "" {
		fail(c, http.StatusBadRequest, errCodeBadRequest, "ideaId and userId are required")
		return
	}
	if req.VoteType != "up" {
		fail(c, http.StatusBadRequest, errCodeBadRequest, "voteType must be \"up\"")
		return
	}

	if !s.store.Vote(req.IdeaID, req.UserID) {
		fail(c, http.StatusNotFound, errCodeNotFound, "idea not found")
		return
	}
	c.Status(http.StatusNoContent)
}

type addCommentRequest struct {
	IdeaID    string `json:"ideaId"`
	Body      string `json:"body"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}

func (s *Server) addComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errCodeBadRequest, "invalid payload")
		return
	}
	if req.IdeaID == "" || req.UserID == "" || strings.TrimSpace(req.Body) == "" {
		fail(c, http.StatusBadRequest, errCodeBadRequest, "ideaId, body, and userId are required")
		return
	}

	createdBy := req.UserName
	if createdBy == "" {
		createdBy = req.UserID
	}
	comment, ok := s.store.AddComment(req.IdeaID, req.Body, createdBy)
	if !ok {
		fail(c, http.StatusNotFound, errCodeNotFound, "idea not found")
		return
	}
	c.JSON(http.StatusCreated, comment)
}
