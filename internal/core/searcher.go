package core

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/beacon/internal/config"
	"github.com/agenthands/beacon/internal/core/fusion"
	"github.com/agenthands/beacon/internal/core/intent"
	"github.com/agenthands/beacon/internal/core/keyword"
	"github.com/agenthands/beacon/internal/core/model"
	"github.com/agenthands/beacon/internal/core/semantic"
	"github.com/agenthands/beacon/internal/driver"
	"github.com/agenthands/beacon/internal/llm"
)

// Searcher is the top-level entry point. It decides per call whether
// to classify the query, which strategies to run, and how to merge
// their results. It holds no per-call state; the shared collaborator
// clients are safe for concurrent use.
type Searcher struct {
	Driver     driver.GraphDriver
	Classifier *intent.Classifier
	Keyword    *keyword.Matcher
	Semantic   *semantic.Ranker
	Fusion     *fusion.Merger

	cfg config.SearchConfig
}

func NewSearcher(d driver.GraphDriver, llmClient llm.LLMClient, embedder llm.EmbedderClient, cfg config.SearchConfig) *Searcher {
	return &Searcher{
		Driver:     d,
		Classifier: intent.NewClassifier(llmClient),
		Keyword:    keyword.NewMatcher(d, cfg.KeywordScore),
		Semantic:   semantic.NewRanker(d, embedder, cfg.EmbeddingDim),
		Fusion:     fusion.NewMerger(cfg.KeywordWeight, cfg.SemanticWeight),
		cfg:        cfg,
	}
}

// Search runs the full strategy state machine. forcedStrategy may be
// empty (classifier decides) or one of keyword/semantic/hybrid. A
// failed sub-search fails the whole call; partial results are never
// returned silently.
func (s *Searcher) Search(ctx context.Context, query string, forcedStrategy string, limit int) (*model.SearchResponse, error) {
	limit = s.clampLimit(limit)
	if limit == 0 {
		return &model.SearchResponse{Results: []model.SearchResult{}}, nil
	}

	var forced model.Strategy
	if forcedStrategy != "" {
		var ok bool
		forced, ok = model.ParseStrategy(forcedStrategy)
		if !ok {
			return nil, fmt.Errorf("unknown strategy '%s'", forcedStrategy)
		}
	}

	searchID := uuid.New().String()[:8]
	log.Printf("[search %s] query=%q forced=%q limit=%d", searchID, query, forcedStrategy, limit)

	switch forced {
	case model.StrategySemantic:
		// Semantic consumes no keyword/category/biome fields, so the
		// classifier call is skipped entirely.
		analysis := model.QueryAnalysis{
			RecommendedMethod:      model.StrategySemantic,
			Keywords:               []string{},
			Categories:             []string{},
			NeedsSimilarityRanking: true,
			Confidence:             1,
			Reasoning:              "strategy forced by caller, analysis skipped",
		}
		results, err := s.Semantic.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return &model.SearchResponse{Results: results, Analysis: analysis}, nil

	case model.StrategyKeyword:
		// Keyword still needs the classifier for filter extraction
		analysis, err := s.Classifier.Analyze(ctx, query)
		if err != nil {
			return nil, err
		}
		results, err := s.Keyword.Search(ctx, analysis, limit)
		if err != nil {
			return nil, err
		}
		return &model.SearchResponse{Results: results, Analysis: analysis}, nil

	case model.StrategyHybrid:
		// The semantic lane has no dependency on the analysis, so it
		// overlaps the classifier + keyword lane.
		return s.hybridOverlapped(ctx, searchID, query, limit)
	}

	// No override: classify first, then branch on the recommendation
	analysis, err := s.Classifier.Analyze(ctx, query)
	if err != nil {
		return nil, err
	}
	log.Printf("[search %s] classified as %s (confidence %.2f)", searchID, analysis.RecommendedMethod, analysis.Confidence)

	switch analysis.RecommendedMethod {
	case model.StrategyKeyword:
		results, err := s.Keyword.Search(ctx, analysis, limit)
		if err != nil {
			return nil, err
		}
		return &model.SearchResponse{Results: results, Analysis: analysis}, nil

	case model.StrategySemantic:
		results, err := s.Semantic.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return &model.SearchResponse{Results: results, Analysis: analysis}, nil

	default:
		results, err := s.runHybrid(ctx, query, analysis, limit)
		if err != nil {
			return nil, err
		}
		return &model.SearchResponse{Results: results, Analysis: analysis}, nil
	}
}

// hybridOverlapped handles forced hybrid: the classifier (feeding the
// keyword lane) runs concurrently with the semantic lane. The errgroup
// cancels the surviving lane on first failure.
func (s *Searcher) hybridOverlapped(ctx context.Context, searchID, query string, limit int) (*model.SearchResponse, error) {
	var (
		analysis        model.QueryAnalysis
		keywordResults  []model.SearchResult
		semanticResults []model.SearchResult
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		analysis, err = s.Classifier.Analyze(gctx, query)
		if err != nil {
			return err
		}
		keywordResults, err = s.Keyword.Search(gctx, analysis, limit)
		return err
	})

	g.Go(func() error {
		var err error
		semanticResults, err = s.Semantic.Search(gctx, query, limit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[search %s] hybrid lanes: %d keyword, %d semantic", searchID, len(keywordResults), len(semanticResults))
	results := s.Fusion.Merge(keywordResults, semanticResults, limit)
	return &model.SearchResponse{Results: results, Analysis: analysis}, nil
}

// runHybrid executes both lanes concurrently once an analysis exists.
func (s *Searcher) runHybrid(ctx context.Context, query string, analysis model.QueryAnalysis, limit int) ([]model.SearchResult, error) {
	var (
		keywordResults  []model.SearchResult
		semanticResults []model.SearchResult
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		keywordResults, err = s.Keyword.Search(gctx, analysis, limit)
		return err
	})

	g.Go(func() error {
		var err error
		semanticResults, err = s.Semantic.Search(gctx, query, limit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.Fusion.Merge(keywordResults, semanticResults, limit), nil
}

// AnalyzeQuery exposes the classifier without running any retrieval.
func (s *Searcher) AnalyzeQuery(ctx context.Context, query string) (model.QueryAnalysis, error) {
	return s.Classifier.Analyze(ctx, query)
}

// FindSimilarSkills ranks survivors against a named reference skill.
func (s *Searcher) FindSimilarSkills(ctx context.Context, skillName string, limit int) ([]model.SearchResult, error) {
	limit = s.clampLimit(limit)
	if limit == 0 {
		return []model.SearchResult{}, nil
	}
	return s.Semantic.FindSimilarBySkillName(ctx, skillName, limit)
}

// BuildIndices delegates to the driver.
func (s *Searcher) BuildIndices(ctx context.Context) error {
	return s.Driver.BuildIndices(ctx)
}

func (s *Searcher) clampLimit(limit int) int {
	if limit < 0 {
		return 0
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}
