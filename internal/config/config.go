package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// SearchConfig holds the ranking constants. The weights and the flat
// keyword score are empirical defaults carried over from the original
// deployment; they are configuration, not a proven-optimal formula.
type SearchConfig struct {
	KeywordWeight  float64 `toml:"keyword_weight"`
	SemanticWeight float64 `toml:"semantic_weight"`
	KeywordScore   float64 `toml:"keyword_score"`
	DefaultLimit   int     `toml:"default_limit"`
	MaxLimit       int     `toml:"max_limit"`
	EmbeddingDim   int     `toml:"embedding_dim"`
	EmbedCacheSize int     `toml:"embed_cache_size"`
}

type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	Search   SearchConfig   `toml:"search"`
}

// DefaultSearchConfig returns the documented ranking defaults.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		KeywordWeight:  0.4,
		SemanticWeight: 0.6,
		KeywordScore:   0.8,
		DefaultLimit:   10,
		MaxLimit:       50,
		EmbeddingDim:   768,
		EmbedCacheSize: 256,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.Search.ApplyDefaults()
	if err := cfg.Search.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills zero-valued search settings so a config file only
// has to override what it changes.
func (s *SearchConfig) ApplyDefaults() {
	def := DefaultSearchConfig()
	if s.KeywordWeight == 0 && s.SemanticWeight == 0 {
		s.KeywordWeight = def.KeywordWeight
		s.SemanticWeight = def.SemanticWeight
	}
	if s.KeywordScore == 0 {
		s.KeywordScore = def.KeywordScore
	}
	if s.DefaultLimit == 0 {
		s.DefaultLimit = def.DefaultLimit
	}
	if s.MaxLimit == 0 {
		s.MaxLimit = def.MaxLimit
	}
	if s.EmbeddingDim == 0 {
		s.EmbeddingDim = def.EmbeddingDim
	}
	if s.EmbedCacheSize == 0 {
		s.EmbedCacheSize = def.EmbedCacheSize
	}
}

func (s *SearchConfig) Validate() error {
	if s.KeywordWeight < 0 || s.SemanticWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if s.KeywordWeight+s.SemanticWeight == 0 {
		return fmt.Errorf("at least one search weight must be positive")
	}
	if s.KeywordScore < 0 || s.KeywordScore > 1 {
		return fmt.Errorf("keyword_score must be in [0,1], got %v", s.KeywordScore)
	}
	if s.MaxLimit < s.DefaultLimit {
		return fmt.Errorf("max_limit (%d) must be >= default_limit (%d)", s.MaxLimit, s.DefaultLimit)
	}
	return nil
}
