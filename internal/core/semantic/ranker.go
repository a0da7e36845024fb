package semantic

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/agenthands/beacon/internal/core/common"
	"github.com/agenthands/beacon/internal/core/model"
	"github.com/agenthands/beacon/internal/driver"
	"github.com/agenthands/beacon/internal/llm"
)

// ErrSkillNotFound is returned by FindSimilarBySkillName when the
// reference skill does not exist in the graph.
var ErrSkillNotFound = errors.New("reference skill not found")

// Ranker orders survivors by cosine distance between a query embedding
// and their skills' stored embeddings. Skills without an embedding are
// invisible to it. Retrieval is brute force over the embedded skill
// set; the graph only filters out null embeddings.
type Ranker struct {
	Driver   driver.GraphDriver
	Embedder llm.EmbedderClient
	Dim      int
}

func NewRanker(d driver.GraphDriver, embedder llm.EmbedderClient, dim int) *Ranker {
	return &Ranker{Driver: d, Embedder: embedder, Dim: dim}
}

// Search embeds the query text once and ranks survivors by their best
// (minimum) skill distance, most similar first.
func (r *Ranker) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	if limit <= 0 {
		return []model.SearchResult{}, nil
	}

	queryVector, err := r.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return r.rank(ctx, queryVector, limit, "")
}

// FindSimilarBySkillName ranks survivors against the embedding of a
// reference skill's name, excluding survivors' copies of the reference
// skill itself from the candidate set.
func (r *Ranker) FindSimilarBySkillName(ctx context.Context, skillName string, limit int) ([]model.SearchResult, error) {
	if limit <= 0 {
		return []model.SearchResult{}, nil
	}

	params := map[string]interface{}{"name": strings.ToLower(skillName)}
	result, err := r.Driver.ExecuteQuery(ctx, driver.FetchSkillByNameQuery, params)
	if err != nil {
		return nil, &model.RetrievalError{Op: "skill lookup", Err: err}
	}
	if len(result.Records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSkillNotFound, skillName)
	}

	name, _ := result.Records[0].Get("skill_name")
	reference := stringValue(name)

	queryVector, err := r.embed(ctx, reference)
	if err != nil {
		return nil, err
	}

	return r.rank(ctx, queryVector, limit, reference)
}

func (r *Ranker) embed(ctx context.Context, text string) ([]float32, error) {
	if r.Embedder == nil {
		return nil, &model.ConfigurationError{Reason: "no embedder configured for this provider"}
	}

	vec, err := r.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, &model.EmbeddingError{Reason: "embedding query text", Err: err}
	}
	if r.Dim > 0 && len(vec) != r.Dim {
		return nil, &model.EmbeddingError{
			Reason: fmt.Sprintf("expected %d dimensions, got %d", r.Dim, len(vec)),
		}
	}
	return vec, nil
}

// candidate holds one survivor's best skill distance during ranking.
type candidate struct {
	result   model.SearchResult
	distance float64
}

func (r *Ranker) rank(ctx context.Context, queryVector []float32, limit int, excludeSkillName string) ([]model.SearchResult, error) {
	result, err := r.Driver.ExecuteQuery(ctx, driver.FetchSkillEmbeddingsQuery, nil)
	if err != nil {
		return nil, &model.RetrievalError{Op: "embedding fetch", Err: err}
	}

	exclude := strings.ToLower(excludeSkillName)
	byUUID := make(map[string]*candidate)
	var order []string

	for _, record := range result.Records {
		survivorUUID, _ := record.Get("survivor_uuid")
		survivorName, _ := record.Get("survivor_name")
		skillUUID, _ := record.Get("skill_uuid")
		skillName, _ := record.Get("skill_name")
		skillCategory, _ := record.Get("skill_category")
		rawEmbedding, _ := record.Get("embedding")

		survivor := model.Survivor{
			UUID: stringValue(survivorUUID),
			Name: stringValue(survivorName),
		}
		skill := model.Skill{
			UUID:      stringValue(skillUUID),
			Name:      stringValue(skillName),
			Category:  stringValue(skillCategory),
			Embedding: toVector(rawEmbedding),
		}

		if survivor.UUID == "" {
			continue
		}
		if exclude != "" && strings.ToLower(skill.Name) == exclude {
			continue
		}
		if len(skill.Embedding) != len(queryVector) {
			log.Printf("Warning: skill '%s' has embedding of length %d, expected %d; skipping", skill.Name, len(skill.Embedding), len(queryVector))
			continue
		}

		distance := cosineDistance(queryVector, skill.Embedding)
		match := model.SkillMatch{
			UUID:     skill.UUID,
			Name:     skill.Name,
			Category: skill.Category,
		}

		c, ok := byUUID[survivor.UUID]
		if !ok {
			byUUID[survivor.UUID] = &candidate{
				result: model.SearchResult{
					UUID:          survivor.UUID,
					Name:          survivor.Name,
					Strategy:      model.StrategySemantic,
					FoundBy:       model.FoundByRAG,
					MatchedSkills: []model.SkillMatch{match},
				},
				distance: distance,
			}
			order = append(order, survivor.UUID)
			continue
		}

		c.result.MatchedSkills = append(c.result.MatchedSkills, match)
		if distance < c.distance {
			c.distance = distance
		}
	}

	candidates := make([]*candidate, 0, len(order))
	for _, uuid := range order {
		candidates = append(candidates, byUUID[uuid])
	}

	// Ascending distance, survivor name as the deterministic tiebreak
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].result.Name < candidates[j].result.Name
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]model.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		res := c.result
		res.Score = common.Clamp01(1 - c.distance)
		results = append(results, res)
	}
	return results, nil
}

// cosineDistance is 1 - cosine similarity, in [0,2]. Zero-magnitude
// vectors are treated as maximally distant from everything.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// toVector converts a driver-provided embedding value. The bolt
// protocol hands list properties back as []interface{} of float64.
func toVector(v interface{}) []float32 {
	switch vec := v.(type) {
	case []float32:
		return vec
	case []float64:
		out := make([]float32, len(vec))
		for i, f := range vec {
			out[i] = float32(f)
		}
		return out
	case []interface{}:
		out := make([]float32, 0, len(vec))
		for _, item := range vec {
			f, ok := item.(float64)
			if !ok {
				return nil
			}
			out = append(out, float32(f))
		}
		return out
	}
	return nil
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
