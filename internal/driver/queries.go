package driver

const (
	// FetchSurvivorsBySkillFilterQuery applies the keyword / category /
	// biome predicate groups with AND semantics. Empty parameter values
	// disable their group, so an unfiltered call matches everything.
	// Keyword and category values must be lowercased by the caller;
	// comparisons here lowercase the stored side only.
	FetchSurvivorsBySkillFilterQuery = `
		MATCH (s:Survivor)-[:HAS_SKILL]->(k:Skill)
		WHERE (size($keywords) = 0 OR any(kw IN $keywords WHERE toLower(k.name) CONTAINS kw OR toLower(k.category) CONTAINS kw))
		  AND (size($categories) = 0 OR toLower(k.category) IN $categories)
		  AND ($biome = '' OR toLower(coalesce(s.biome, '')) CONTAINS $biome)
		RETURN s.uuid AS survivor_uuid, s.name AS survivor_name,
		       k.uuid AS skill_uuid, k.name AS skill_name, k.category AS skill_category
		ORDER BY s.name, k.name
		LIMIT $row_limit
	`

	// FetchSkillEmbeddingsQuery returns every embedded skill with its
	// owning survivor. Ranking happens in the caller; skills without an
	// embedding are excluded at the source.
	FetchSkillEmbeddingsQuery = `
		MATCH (s:Survivor)-[:HAS_SKILL]->(k:Skill)
		WHERE k.embedding IS NOT NULL
		RETURN s.uuid AS survivor_uuid, s.name AS survivor_name,
		       k.uuid AS skill_uuid, k.name AS skill_name, k.category AS skill_category,
		       k.embedding AS embedding
	`

	// FetchSkillByNameQuery resolves a reference skill for
	// find-similar-skills lookups.
	FetchSkillByNameQuery = `
		MATCH (k:Skill)
		WHERE toLower(k.name) = $name
		RETURN k.uuid AS skill_uuid, k.name AS skill_name, k.category AS skill_category
		LIMIT 1
	`
)
