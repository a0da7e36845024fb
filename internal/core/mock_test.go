package core

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// MockDriver serves the filter query and the embedding scan from
// separate canned results and records every executed query.
type MockDriver struct {
	FilterResult    neo4j.EagerResult
	EmbeddingResult neo4j.EagerResult
	Err             error

	Queries []string
	Params  []map[string]interface{}
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if strings.Contains(query, "embedding IS NOT NULL") {
		return m.EmbeddingResult, nil
	}
	return m.FilterResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error        { return nil }

func (m *MockDriver) executedEmbeddingScan() bool {
	for _, q := range m.Queries {
		if strings.Contains(q, "embedding IS NOT NULL") {
			return true
		}
	}
	return false
}

func (m *MockDriver) executedFilterQuery() bool {
	for _, q := range m.Queries {
		if strings.Contains(q, "HAS_SKILL") && !strings.Contains(q, "embedding IS NOT NULL") {
			return true
		}
	}
	return false
}

type MockLLM struct {
	Response string
	Err      error
	Calls    int
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type MockEmbedder struct {
	Vector []float32
	Err    error
	Calls  int
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

func matchRecord(survivorUUID, survivorName, skillUUID, skillName, category string) *neo4j.Record {
	return &neo4j.Record{
		Keys:   []string{"survivor_uuid", "survivor_name", "skill_uuid", "skill_name", "skill_category"},
		Values: []interface{}{survivorUUID, survivorName, skillUUID, skillName, category},
	}
}

func embeddingRecord(survivorUUID, survivorName, skillUUID, skillName, category string, embedding []interface{}) *neo4j.Record {
	return &neo4j.Record{
		Keys:   []string{"survivor_uuid", "survivor_name", "skill_uuid", "skill_name", "skill_category", "embedding"},
		Values: []interface{}{survivorUUID, survivorName, skillUUID, skillName, category, embedding},
	}
}
