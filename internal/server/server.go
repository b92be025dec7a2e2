// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes graph search with an LLM explanation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/pubmed-graph/internal/explain"
	"github.com/pdiddy/pubmed-graph/internal/logger"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// searchLimit is the number of papers returned per question.
const searchLimit = 5

const shutdownTimeout = 10 * time.Second

// Searcher finds articles by term.
type Searcher interface {
	Search(ctx context.Context, term string, limit int) ([]types.ArticleDetail, error)
}

// Explainer summarizes search results for a question.
type Explainer interface {
	Explain(ctx context.Context, question string, papers []types.ArticleDetail) (string, error)
}

// Message is one turn of the conversation sent by the client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CheckRequest is the body of POST /check-database.
type CheckRequest struct {
	Messages []Message `json:"messages"`
}

// Paper is one matched article in a success response.
type Paper struct {
	Title    string   `json:"title"`
	PMID     string   `json:"pmid"`
	Abstract string   `json:"abstract"`
	Authors  []string `json:"authors"`
	Keywords []string `json:"keywords"`
}

// Answer is the response payload when papers were found.
type Answer struct {
	Explanation string  `json:"explanation"`
	Papers      []Paper `json:"papers"`
}

// Envelope wraps every /check-database response. Response is a string for
// errors and empty results, and an Answer otherwise.
type Envelope struct {
	Status   string `json:"status"`
	Response any    `json:"response"`
}

// Handler serves the search endpoint.
type Handler struct {
	search  Searcher
	explain Explainer
	log     *logger.Logger
}

// NewHandler returns a Handler. Both collaborators are required.
func NewHandler(s Searcher, e Explainer, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{search: s, explain: e, log: log.With("component", "server")}
}

// NewRouter builds the gin engine with CORS, request ids, and access logs.
func NewRouter(h *Handler, cfg types.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(h.log))
	r.Use(corsMiddleware(cfg.AllowOrigins))

	r.GET("/healthz", h.Health)
	r.POST("/check-database", h.CheckDatabase)
	return r
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CheckDatabase handles POST /check-database. Every outcome, including
// failures, is reported in the envelope with HTTP 200.
func (h *Handler) CheckDatabase(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		c.JSON(http.StatusOK, Envelope{Status: StatusError, Response: "Must include messages in request"})
		return
	}

	question := req.Messages[len(req.Messages)-1].Content
	terms := explain.SearchTerms(question)
	if len(terms) == 0 {
		c.JSON(http.StatusOK, Envelope{
			Status:   StatusError,
			Response: "Could not extract meaningful search terms from the question",
		})
		return
	}

	ctx := c.Request.Context()
	articles, err := h.search.Search(ctx, terms[0], searchLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(articles) == 0 {
		c.JSON(http.StatusOK, Envelope{
			Status:   StatusSuccess,
			Response: "No papers found matching the terms: " + strings.Join(terms, ", "),
		})
		return
	}

	explanation, err := h.explain.Explain(ctx, question, articles)
	if err != nil {
		h.fail(c, err)
		return
	}

	papers := make([]Paper, len(articles))
	for i, a := range articles {
		papers[i] = Paper{
			Title:    a.Title,
			PMID:     a.ID,
			Abstract: a.Abstract,
			Authors:  nonNil(a.Authors),
			Keywords: nonNil(a.Keywords),
		}
	}
	c.JSON(http.StatusOK, Envelope{
		Status:   StatusSuccess,
		Response: Answer{Explanation: explanation, Papers: papers},
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.log.Error("check-database failed", "error", err, "request_id", c.GetString(requestIDKey))
	c.JSON(http.StatusOK, Envelope{Status: StatusError, Response: fmt.Sprintf("An error occurred: %v", err)})
}

// Run serves r on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, r http.Handler, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
