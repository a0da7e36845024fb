package fusion

import (
	"sort"

	"github.com/agenthands/beacon/internal/core/model"
)

// Merger combines a keyword result list and a semantic result list
// into one ranked list. Semantic hits carry more weight than keyword
// hits: a keyword match is a boolean signal while cosine similarity
// grades relevance. The 0.4/0.6 split is the documented default.
type Merger struct {
	KeywordWeight  float64
	SemanticWeight float64
}

func NewMerger(keywordWeight, semanticWeight float64) *Merger {
	return &Merger{KeywordWeight: keywordWeight, SemanticWeight: semanticWeight}
}

// Merge dedupes by survivor uuid and rescores:
//   - both lists:     keyword_weight*kw + semantic_weight*sim, tagged hybrid
//   - semantic only:  semantic_weight*sim
//   - keyword only:   keyword_weight*kw
//
// Matched skills of survivors present in both lists are unioned by
// skill uuid. Output is sorted by descending score with survivor name
// as tiebreak, truncated to limit.
func (m *Merger) Merge(keywordResults, semanticResults []model.SearchResult, limit int) []model.SearchResult {
	if limit <= 0 {
		return []model.SearchResult{}
	}

	semanticIndex := make(map[string]model.SearchResult, len(semanticResults))
	for _, r := range semanticResults {
		semanticIndex[r.UUID] = r
	}

	seen := make(map[string]bool, len(keywordResults))
	merged := make([]model.SearchResult, 0, len(keywordResults)+len(semanticResults))

	for _, kw := range keywordResults {
		seen[kw.UUID] = true

		sem, inBoth := semanticIndex[kw.UUID]
		if !inBoth {
			kw.Score = m.KeywordWeight * kw.Score
			merged = append(merged, kw)
			continue
		}

		merged = append(merged, model.SearchResult{
			UUID:          kw.UUID,
			Name:          kw.Name,
			Score:         m.KeywordWeight*kw.Score + m.SemanticWeight*sem.Score,
			Strategy:      model.StrategyHybrid,
			FoundBy:       model.FoundByBoth,
			MatchedSkills: unionSkills(kw.MatchedSkills, sem.MatchedSkills),
		})
	}

	for _, sem := range semanticResults {
		if seen[sem.UUID] {
			continue
		}
		sem.Score = m.SemanticWeight * sem.Score
		merged = append(merged, sem)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Name < merged[j].Name
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// unionSkills concatenates skill detail lists collapsing duplicates by
// skill uuid, keyword-side entries first.
func unionSkills(a, b []model.SkillMatch) []model.SkillMatch {
	out := make([]model.SkillMatch, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))

	for _, s := range a {
		if seen[s.UUID] {
			continue
		}
		seen[s.UUID] = true
		out = append(out, s)
	}
	for _, s := range b {
		if seen[s.UUID] {
			continue
		}
		seen[s.UUID] = true
		out = append(out, s)
	}
	return out
}
