package model

import "fmt"

// RetrievalError: the graph store was unreachable or rejected a query.
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed during %s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// EmbeddingError: the embedding collaborator failed or returned a
// vector of the wrong dimensionality.
type EmbeddingError struct {
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("embedding failed: %s", e.Reason)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// ClassificationError: the intent classifier response could not be
// parsed as valid structured output.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("query classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// ConfigurationError: required setup is missing (e.g. the configured
// provider cannot embed, or no embeddings are populated).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}
