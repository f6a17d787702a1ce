package pipeline

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEnumeratorRequired is returned when no corpus enumerator is provided
	ErrEnumeratorRequired = errors.New("corpus enumerator is required")

	// ErrItemRepositoryRequired is returned when no item repository is provided
	ErrItemRepositoryRequired = errors.New("item repository is required")

	// ErrCheckpointRepositoryRequired is returned when no checkpoint repository is provided
	ErrCheckpointRepositoryRequired = errors.New("checkpoint repository is required")

	// ErrProviderRequired is returned when no AI provider is provided
	ErrProviderRequired = errors.New("ai provider is required")

	// ErrStageRequired is returned when a runner is built without a stage
	ErrStageRequired = errors.New("stage is required")

	// ErrMissingAnalysis is returned when the embedding stage receives an
	// item that has no analysis output to embed
	ErrMissingAnalysis = errors.New("item has no analysis output")
)
