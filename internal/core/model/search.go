package model

import "strings"

// Strategy selects which retrieval path(s) a search executes.
type Strategy string

const (
	StrategyKeyword  Strategy = "keyword"
	StrategySemantic Strategy = "semantic"
	StrategyHybrid   Strategy = "hybrid"
)

// ParseStrategy maps a request string to a Strategy. Empty input means
// "let the classifier decide" and returns ok=false.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(strings.ToLower(s)) {
	case StrategyKeyword, StrategySemantic, StrategyHybrid:
		return Strategy(strings.ToLower(s)), true
	}
	return "", false
}

// Provenance markers for merged results.
const (
	FoundByKeyword = "keyword"
	FoundByRAG     = "rag"
	FoundByBoth    = "both"
)

// QueryAnalysis is the structured output of the intent classifier,
// consumed by the keyword matcher and the router within a single call.
type QueryAnalysis struct {
	RecommendedMethod      Strategy `json:"recommended_method"`
	Keywords               []string `json:"keywords"`
	Categories             []string `json:"categories"`
	BiomeFilter            string   `json:"biome_filter,omitempty"`
	NeedsSimilarityRanking bool     `json:"needs_similarity_ranking"`
	HasSpecificFilters     bool     `json:"has_specific_filters"`
	Confidence             float64  `json:"confidence"`
	Reasoning              string   `json:"reasoning"`
}

// SkillMatch records one skill that contributed to a result.
type SkillMatch struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// SearchResult is one ranked survivor. Score is estimated relevance in
// [0,1], never a raw distance.
type SearchResult struct {
	UUID          string       `json:"uuid"`
	Name          string       `json:"name"`
	Score         float64      `json:"score"`
	Strategy      Strategy     `json:"strategy"`
	FoundBy       string       `json:"found_by"`
	MatchedSkills []SkillMatch `json:"matched_skills"`
}

// SearchResponse pairs the ranked results with the analysis that
// produced them.
type SearchResponse struct {
	Results  []SearchResult `json:"results"`
	Analysis QueryAnalysis  `json:"analysis"`
}
