package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/beacon/internal/config"
	"github.com/agenthands/beacon/internal/core/model"
)

func testConfig() config.SearchConfig {
	cfg := config.DefaultSearchConfig()
	cfg.EmbeddingDim = 2
	return cfg
}

const hybridAnalysisJSON = `{
	"recommended_method": "hybrid",
	"keywords": ["first aid"],
	"categories": ["medical"],
	"needs_similarity_ranking": true,
	"has_specific_filters": true,
	"confidence": 0.9,
	"reasoning": "filters plus conceptual intent"
}`

func TestSearch_ForcedSemanticSkipsClassifier(t *testing.T) {
	mockDriver := &MockDriver{
		EmbeddingResult: neo4j.EagerResult{
			Records: []*neo4j.Record{
				embeddingRecord("s1", "Ada", "k1", "first aid", "medical", []interface{}{1.0, 0.0}),
			},
		},
	}
	mockLLM := &MockLLM{Response: hybridAnalysisJSON}
	mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

	s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

	resp, err := s.Search(context.Background(), "healing", "semantic", 10)
	require.NoError(t, err)

	// The classifier collaborator must never be invoked
	assert.Equal(t, 0, mockLLM.Calls)
	assert.True(t, resp.Analysis.NeedsSimilarityRanking)
	assert.Contains(t, resp.Analysis.Reasoning, "analysis skipped")

	assert.True(t, mockDriver.executedEmbeddingScan())
	assert.False(t, mockDriver.executedFilterQuery())
	assert.Len(t, resp.Results, 1)
}

func TestSearch_ForcedKeywordStillClassifies(t *testing.T) {
	mockDriver := &MockDriver{
		FilterResult: neo4j.EagerResult{
			Records: []*neo4j.Record{
				matchRecord("s1", "Ada", "k1", "first aid", "medical"),
			},
		},
	}
	mockLLM := &MockLLM{Response: hybridAnalysisJSON}
	mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

	s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

	resp, err := s.Search(context.Background(), "first aid", "keyword", 10)
	require.NoError(t, err)

	// Keyword needs the extracted filters, so the classifier runs
	assert.Equal(t, 1, mockLLM.Calls)
	assert.Equal(t, 0, mockEmbedder.Calls)
	assert.True(t, mockDriver.executedFilterQuery())
	assert.False(t, mockDriver.executedEmbeddingScan())

	require.Len(t, resp.Results, 1)
	assert.Equal(t, 0.8, resp.Results[0].Score)
	assert.Equal(t, model.StrategyKeyword, resp.Results[0].Strategy)
}

func TestSearch_HybridFusesBothLanes(t *testing.T) {
	// Semantic lane: cosine similarity 0.9 for Ada
	skillVec := []interface{}{0.9, 0.4358898943540674}

	mockDriver := &MockDriver{
		FilterResult: neo4j.EagerResult{
			Records: []*neo4j.Record{
				matchRecord("s1", "Ada", "k1", "first aid", "medical"),
			},
		},
		EmbeddingResult: neo4j.EagerResult{
			Records: []*neo4j.Record{
				embeddingRecord("s1", "Ada", "k2", "herbal medicine", "medical", skillVec),
			},
		},
	}
	mockLLM := &MockLLM{Response: hybridAnalysisJSON}
	mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

	s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

	resp, err := s.Search(context.Background(), "who can heal", "hybrid", 10)
	require.NoError(t, err)

	assert.True(t, mockDriver.executedFilterQuery())
	assert.True(t, mockDriver.executedEmbeddingScan())

	require.Len(t, resp.Results, 1)
	r := resp.Results[0]

	// 0.4*0.8 + 0.6*0.9 = 0.86
	assert.InDelta(t, 0.86, r.Score, 1e-6)
	assert.Equal(t, model.StrategyHybrid, r.Strategy)
	assert.Equal(t, model.FoundByBoth, r.FoundBy)

	// Skill details are the union of both lanes
	uuids := make([]string, 0, len(r.MatchedSkills))
	for _, sk := range r.MatchedSkills {
		uuids = append(uuids, sk.UUID)
	}
	assert.ElementsMatch(t, []string{"k1", "k2"}, uuids)
}

func TestSearch_ClassifierRecommendationRoutes(t *testing.T) {
	t.Run("semantic only", func(t *testing.T) {
		mockDriver := &MockDriver{}
		mockLLM := &MockLLM{Response: `{"recommended_method": "semantic", "confidence": 0.8, "reasoning": "conceptual"}`}
		mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

		s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

		resp, err := s.Search(context.Background(), "someone calming", "", 10)
		require.NoError(t, err)
		assert.Equal(t, 1, mockLLM.Calls)
		assert.True(t, mockDriver.executedEmbeddingScan())
		assert.False(t, mockDriver.executedFilterQuery())
		assert.Empty(t, resp.Results)
	})

	t.Run("keyword only", func(t *testing.T) {
		mockDriver := &MockDriver{}
		mockLLM := &MockLLM{Response: `{"recommended_method": "keyword", "keywords": ["axe"], "confidence": 0.8, "reasoning": "exact"}`}
		mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

		s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

		_, err := s.Search(context.Background(), "axe", "", 10)
		require.NoError(t, err)
		assert.True(t, mockDriver.executedFilterQuery())
		assert.False(t, mockDriver.executedEmbeddingScan())
		assert.Equal(t, 0, mockEmbedder.Calls)
	})

	t.Run("hybrid recommendation runs both", func(t *testing.T) {
		mockDriver := &MockDriver{}
		mockLLM := &MockLLM{Response: hybridAnalysisJSON}
		mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

		s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

		_, err := s.Search(context.Background(), "who can heal", "", 10)
		require.NoError(t, err)
		assert.True(t, mockDriver.executedFilterQuery())
		assert.True(t, mockDriver.executedEmbeddingScan())
	})
}

func TestSearch_Idempotent(t *testing.T) {
	mockDriver := &MockDriver{
		FilterResult: neo4j.EagerResult{
			Records: []*neo4j.Record{
				matchRecord("s1", "Ada", "k1", "first aid", "medical"),
				matchRecord("s2", "Ben", "k2", "triage", "medical"),
			},
		},
		EmbeddingResult: neo4j.EagerResult{
			Records: []*neo4j.Record{
				embeddingRecord("s2", "Ben", "k2", "triage", "medical", []interface{}{1.0, 0.0}),
				embeddingRecord("s3", "Cal", "k3", "carpentry", "construction", []interface{}{0.0, 1.0}),
			},
		},
	}
	mockLLM := &MockLLM{Response: hybridAnalysisJSON}
	mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

	s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

	first, err := s.Search(context.Background(), "medical help", "hybrid", 10)
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "medical help", "hybrid", 10)
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)

	// Scores never increase down the list
	for i := 1; i < len(first.Results); i++ {
		assert.GreaterOrEqual(t, first.Results[i-1].Score, first.Results[i].Score)
	}
}

func TestSearch_HybridFailsFast(t *testing.T) {
	mockDriver := &MockDriver{Err: fmt.Errorf("store unreachable")}
	mockLLM := &MockLLM{Response: hybridAnalysisJSON}
	mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

	s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

	resp, err := s.Search(context.Background(), "who can heal", "hybrid", 10)
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestSearch_ClassifierFailurePropagates(t *testing.T) {
	mockDriver := &MockDriver{}
	mockLLM := &MockLLM{Err: fmt.Errorf("model overloaded")}
	mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

	s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

	_, err := s.Search(context.Background(), "anything", "", 10)
	assert.Error(t, err)

	var classErr *model.ClassificationError
	assert.ErrorAs(t, err, &classErr)
	assert.Empty(t, mockDriver.Queries)
}

func TestSearch_LimitClampedToMax(t *testing.T) {
	mockDriver := &MockDriver{}
	mockLLM := &MockLLM{Response: hybridAnalysisJSON}
	mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

	s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

	_, err := s.Search(context.Background(), "first aid", "keyword", 200)
	require.NoError(t, err)

	// Row cap reflects the clamped survivor limit (50 * fanout)
	require.NotEmpty(t, mockDriver.Params)
	assert.Equal(t, 500, mockDriver.Params[0]["row_limit"])
}

func TestSearch_ZeroLimit(t *testing.T) {
	mockDriver := &MockDriver{}
	mockLLM := &MockLLM{Response: hybridAnalysisJSON}
	mockEmbedder := &MockEmbedder{Vector: []float32{1, 0}}

	s := NewSearcher(mockDriver, mockLLM, mockEmbedder, testConfig())

	resp, err := s.Search(context.Background(), "anything", "", 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, mockLLM.Calls)
	assert.Empty(t, mockDriver.Queries)
}

func TestSearch_UnknownStrategy(t *testing.T) {
	s := NewSearcher(&MockDriver{}, &MockLLM{}, &MockEmbedder{}, testConfig())

	_, err := s.Search(context.Background(), "anything", "telepathy", 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestFindSimilarSkills_ZeroLimit(t *testing.T) {
	mockDriver := &MockDriver{}
	s := NewSearcher(mockDriver, &MockLLM{}, &MockEmbedder{Vector: []float32{1, 0}}, testConfig())

	results, err := s.FindSimilarSkills(context.Background(), "first aid", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, mockDriver.Queries)
}
