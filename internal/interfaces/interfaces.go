package interfaces

import (
	"context"

	"scrooge/internal/models"
)

// ModelClient defines the interface for requesting text completions from
// a language model backend
type ModelClient interface {
	// Complete sends a prompt and returns the raw completion text
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)

	// ModelName returns the identifier of the underlying model
	ModelName() string
}

// EventSink defines the interface for reporting pipeline progress to the user
type EventSink interface {
	// StageStarted signals that a named pipeline stage began
	StageStarted(stage string, message string)

	// StageCompleted signals that a named pipeline stage finished successfully
	StageCompleted(stage string, message string)

	// StageFailed signals that a named pipeline stage gave up
	StageFailed(stage string, message string)

	// Info reports a neutral progress detail
	Info(message string)

	// Warn reports a recoverable problem, such as skipped records
	Warn(message string)
}

// OutputFormatter defines the interface for formatting cost reports
type OutputFormatter interface {
	// Format renders the report according to the formatter's type
	Format(report *models.CostReport) (string, error)

	// FormatType returns the format type (e.g., "table", "json", "csv")
	FormatType() string
}

// ArtifactStore defines the interface for persisting pipeline artifacts
// between runs
type ArtifactStore interface {
	// SaveJSON writes a value as indented JSON and returns the full path
	SaveJSON(name string, value interface{}) (string, error)

	// LoadJSON reads a previously saved JSON artifact into value
	LoadJSON(name string, value interface{}) error

	// SaveText writes a plain text artifact and returns the full path
	SaveText(name string, content string) (string, error)

	// LoadText reads a plain text artifact
	LoadText(name string) (string, error)

	// Path returns the full path an artifact name resolves to
	Path(name string) string
}
