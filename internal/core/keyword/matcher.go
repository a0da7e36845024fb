package keyword

import (
	"context"
	"strings"

	"github.com/agenthands/beacon/internal/core/model"
	"github.com/agenthands/beacon/internal/driver"
)

// MaxKeywords bounds how many extracted keywords feed the predicate.
const MaxKeywords = 10

// A survivor can match on several skills, so the row cap is a multiple
// of the requested survivor limit.
const rowFanout = 10

// Matcher filters survivors by skill keyword, category and biome
// predicates. It does no ranking of its own: every match gets the same
// flat confidence score, and ordering is survivor name then skill name.
type Matcher struct {
	Driver driver.GraphDriver
	Score  float64
}

func NewMatcher(d driver.GraphDriver, score float64) *Matcher {
	return &Matcher{Driver: d, Score: score}
}

// Search returns up to limit survivors whose skills satisfy all
// predicate groups in the analysis. Absence of every filter matches
// everything.
func (m *Matcher) Search(ctx context.Context, analysis model.QueryAnalysis, limit int) ([]model.SearchResult, error) {
	if limit <= 0 {
		return []model.SearchResult{}, nil
	}

	keywords := lowerAll(analysis.Keywords)
	if len(keywords) > MaxKeywords {
		keywords = keywords[:MaxKeywords]
	}

	params := map[string]interface{}{
		"keywords":   keywords,
		"categories": lowerAll(analysis.Categories),
		"biome":      strings.ToLower(analysis.BiomeFilter),
		"row_limit":  limit * rowFanout,
	}

	result, err := m.Driver.ExecuteQuery(ctx, driver.FetchSurvivorsBySkillFilterQuery, params)
	if err != nil {
		return nil, &model.RetrievalError{Op: "keyword search", Err: err}
	}

	// Rows arrive ordered by survivor then skill, so grouping is a
	// matter of appending to the last result while the uuid repeats.
	var results []model.SearchResult
	index := make(map[string]int)

	for _, record := range result.Records {
		survivorUUID, _ := record.Get("survivor_uuid")
		survivorName, _ := record.Get("survivor_name")
		skillUUID, _ := record.Get("skill_uuid")
		skillName, _ := record.Get("skill_name")
		skillCategory, _ := record.Get("skill_category")

		uuid := stringValue(survivorUUID)
		if uuid == "" {
			continue
		}

		skill := model.SkillMatch{
			UUID:     stringValue(skillUUID),
			Name:     stringValue(skillName),
			Category: stringValue(skillCategory),
		}

		if i, ok := index[uuid]; ok {
			results[i].MatchedSkills = append(results[i].MatchedSkills, skill)
			continue
		}

		if len(results) >= limit {
			// Survivor limit reached; remaining rows belong to new survivors
			continue
		}

		index[uuid] = len(results)
		results = append(results, model.SearchResult{
			UUID:          uuid,
			Name:          stringValue(survivorName),
			Score:         m.Score,
			Strategy:      model.StrategyKeyword,
			FoundBy:       model.FoundByKeyword,
			MatchedSkills: []model.SkillMatch{skill},
		})
	}

	if results == nil {
		results = []model.SearchResult{}
	}
	return results, nil
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, strings.ToLower(v))
	}
	return out
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
