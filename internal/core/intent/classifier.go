package intent

import (
	"context"
	"fmt"
	"log"

	"github.com/agenthands/beacon/internal/core/common"
	"github.com/agenthands/beacon/internal/core/keyword"
	"github.com/agenthands/beacon/internal/core/model"
	"github.com/agenthands/beacon/internal/llm"
)

const classifyPrompt = `You are a search query analyzer for a survivor network.
Survivors have skills, each with a name and a category, and live in a biome.

Analyze the following search query and respond with ONLY a JSON object:
{
  "recommended_method": "keyword" | "semantic" | "hybrid",
  "keywords": ["..."],
  "categories": ["..."],
  "biome_filter": "" or a biome substring,
  "needs_similarity_ranking": true | false,
  "has_specific_filters": true | false,
  "confidence": 0.0 to 1.0,
  "reasoning": "one sentence"
}

Use "keyword" for queries with exact terms or filters, "semantic" for
conceptual or paraphrased queries, "hybrid" when both apply.

Query: %s`

// Classifier turns a raw query string into a structured QueryAnalysis
// via the LLM collaborator. The response is parsed defensively; a
// response that yields no valid JSON at all is a ClassificationError,
// while recoverable oddities (unknown method, out-of-range confidence)
// are normalized with a logged warning.
type Classifier struct {
	LLM llm.LLMClient
}

func NewClassifier(client llm.LLMClient) *Classifier {
	return &Classifier{LLM: client}
}

func (c *Classifier) Analyze(ctx context.Context, query string) (model.QueryAnalysis, error) {
	response, err := c.LLM.Generate(ctx, fmt.Sprintf(classifyPrompt, query))
	if err != nil {
		return model.QueryAnalysis{}, &model.ClassificationError{Err: err}
	}

	analysis, err := common.ParseJSON[model.QueryAnalysis](response)
	if err != nil {
		return model.QueryAnalysis{}, &model.ClassificationError{Err: err}
	}

	return normalize(analysis), nil
}

func normalize(a model.QueryAnalysis) model.QueryAnalysis {
	switch a.RecommendedMethod {
	case model.StrategyKeyword, model.StrategySemantic, model.StrategyHybrid:
	default:
		log.Printf("Warning: classifier recommended unknown method '%s', falling back to hybrid", a.RecommendedMethod)
		a.RecommendedMethod = model.StrategyHybrid
	}

	if a.Keywords == nil {
		a.Keywords = []string{}
	}
	if len(a.Keywords) > keyword.MaxKeywords {
		a.Keywords = a.Keywords[:keyword.MaxKeywords]
	}
	if a.Categories == nil {
		a.Categories = []string{}
	}

	a.Confidence = common.Clamp01(a.Confidence)
	return a
}
