// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the citation engine over HTTP.
package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdiddy/citegraph/internal/engine"
)

const requestIDHeader = "X-Request-ID"

// Server routes HTTP requests to the citation engine.
type Server struct {
	engine  *engine.Engine
	version string
}

// New builds a Server around eng.
func New(eng *engine.Engine, version string) *Server {
	return &Server{engine: eng, version: version}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(requestID)

	r.POST("/decompose-query", s.decomposeQuery)
	r.POST("/citation-search", s.citationSearch)
	r.POST("/citation-search-rated", s.citationSearchRated)
	r.GET("/search-paper", s.searchPaper)
	r.GET("/paper/:id/citations", s.paperCitations)
	r.GET("/paper/:id/references", s.paperReferences)
	r.GET("/cache/clear", s.cacheClear)
	r.GET("/cache/stats", s.cacheStats)
	r.GET("/health", s.health)

	return r
}

// requestID tags every response so a failed call can be matched to logs.
func requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(requestIDHeader, id)
	c.Next()
}

type searchRequest struct {
	Query         string `json:"query" binding:"required"`
	ForwardLimit  int    `json:"forward_limit"`
	BackwardLimit int    `json:"backward_limit"`
	NestedLimit   int    `json:"nested_limit"`
}

func (r searchRequest) options() engine.Options {
	return engine.Options{
		ForwardLimit:  r.ForwardLimit,
		BackwardLimit: r.BackwardLimit,
		NestedLimit:   r.NestedLimit,
	}
}

type decomposeRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) decomposeQuery(c *gin.Context) {
	var req decomposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	dec, err := s.engine.Decompose(c.Request.Context(), req.Query)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dec)
}

func (s *Server) citationSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	g, err := s.engine.Search(c.Request.Context(), req.Query, req.options())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) citationSearchRated(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	g, err := s.engine.SearchRated(c.Request.Context(), req.Query, req.options())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) searchPaper(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	paper, err := s.engine.Resolve(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, paper)
}

func (s *Server) paperCitations(c *gin.Context) {
	papers, err := s.engine.CitationsOf(c.Request.Context(), c.Param("id"), limitParam(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"paper_id":          c.Param("id"),
		"forward_citations": papers,
		"count":             len(papers),
	})
}

func (s *Server) paperReferences(c *gin.Context) {
	papers, err := s.engine.ReferencesOf(c.Request.Context(), c.Param("id"), limitParam(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"paper_id":           c.Param("id"),
		"backward_citations": papers,
		"count":              len(papers),
	})
}

func (s *Server) cacheClear(c *gin.Context) {
	stats := s.engine.CacheStats()
	if err := s.engine.CacheClear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "cache cleared",
		"items_cleared": stats.EntryCount,
	})
}

func (s *Server) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.CacheStats())
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": s.version})
}

// fail maps a terminal engine error onto an HTTP status.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var reqErr *engine.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Kind {
		case engine.NoPaperFound:
			status = http.StatusNotFound
		case engine.UpstreamUnavailable:
			status = http.StatusBadGateway
		case engine.DecompositionFailed:
			status = http.StatusInternalServerError
		}
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// limitParam reads the limit query parameter; unparseable values fall
// back to the engine default.
func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
