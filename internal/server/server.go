package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/beacon/internal/config"
	"github.com/agenthands/beacon/internal/core"
	"github.com/agenthands/beacon/internal/core/model"
	"github.com/agenthands/beacon/internal/core/semantic"
	"github.com/agenthands/beacon/internal/driver"
	"github.com/agenthands/beacon/internal/llm"
)

type Server struct {
	Searcher *core.Searcher
	Config   *config.Config
}

func NewServer() *Server {
	dbURI := os.Getenv("MEMGRAPH_URI")
	if dbURI == "" {
		dbURI = "bolt://localhost:7687"
	}
	dbUser := os.Getenv("MEMGRAPH_USER")
	dbPass := os.Getenv("MEMGRAPH_PASSWORD")

	d, err := driver.NewMemgraphDriver(dbURI, dbUser, dbPass)
	if err != nil {
		log.Fatalf("Failed to connect to Memgraph: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Env vars win over the config file
	if envProvider := os.Getenv("LLM_PROVIDER"); envProvider != "" {
		cfg.LLM.Provider = envProvider
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		cfg.LLM.Model = envModel
	}
	if envEmbeddingModel := os.Getenv("LLM_EMBEDDING_MODEL"); envEmbeddingModel != "" {
		cfg.LLM.EmbeddingModel = envEmbeddingModel
	}
	if envAPIKey := os.Getenv("LLM_API_KEY"); envAPIKey != "" {
		cfg.LLM.APIKey = envAPIKey
	}
	if envBaseURL := os.Getenv("LLM_BASE_URL"); envBaseURL != "" {
		cfg.LLM.BaseURL = envBaseURL
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.Model = "gpt-oss:latest"
		cfg.LLM.BaseURL = "http://localhost:11434"
	}

	llmClient, embedder, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	if embedder != nil {
		cached, err := llm.NewCachedEmbedder(embedder, cfg.Search.EmbedCacheSize)
		if err != nil {
			log.Fatalf("Failed to initialize embedding cache: %v", err)
		}
		embedder = cached
	}

	searcher := core.NewSearcher(d, llmClient, embedder, cfg.Search)

	if err := searcher.BuildIndices(context.Background()); err != nil {
		log.Printf("Warning: failed to build indices: %v", err)
	}

	return &Server{
		Searcher: searcher,
		Config:   cfg,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)
	r.POST("/search", s.Search)
	r.POST("/search/analyze", s.Analyze)
	r.POST("/skills/similar", s.SimilarSkills)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type SearchRequest struct {
	Query    string `json:"query" binding:"required"`
	Strategy string `json:"strategy"`
	Limit    *int   `json:"limit"`
}

func (s *Server) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	limit := s.Config.Search.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	resp, err := s.Searcher.Search(c.Request.Context(), req.Query, req.Strategy, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type AnalyzeRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	analysis, err := s.Searcher.AnalyzeQuery(c.Request.Context(), req.Query)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

type SimilarSkillsRequest struct {
	SkillName string `json:"skill_name" binding:"required"`
	Limit     *int   `json:"limit"`
}

func (s *Server) SimilarSkills(c *gin.Context) {
	var req SimilarSkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	limit := s.Config.Search.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	results, err := s.Searcher.FindSimilarSkills(c.Request.Context(), req.SkillName, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// writeError maps the error taxonomy to HTTP statuses. An empty result
// set never lands here: failures are reported as failures, not as "no
// results".
func (s *Server) writeError(c *gin.Context, err error) {
	log.Printf("Search request failed: %v", err)

	var retrievalErr *model.RetrievalError
	var embeddingErr *model.EmbeddingError
	var classificationErr *model.ClassificationError
	var configErr *model.ConfigurationError

	switch {
	case errors.Is(err, semantic.ErrSkillNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &configErr):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.As(err, &retrievalErr), errors.As(err, &embeddingErr), errors.As(err, &classificationErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
