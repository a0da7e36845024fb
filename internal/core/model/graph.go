package model

import "time"

// Survivor is an entity node in the network graph. Instances are
// snapshots fetched for a single search pass; the graph store owns the
// canonical record.
type Survivor struct {
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	Biome     string    `json:"biome,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Skill is attached to a Survivor via HAS_SKILL. Embedding is nil when
// the skill has not been embedded yet; such skills are still visible to
// keyword matching but are skipped by similarity ranking.
type Skill struct {
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Embedding []float32 `json:"embedding,omitempty"`
}
