package pipeline

import (
	"context"
	"fmt"
	"strings"

	"scrooge/internal/errors"
	"scrooge/internal/interfaces"
	"scrooge/internal/models"
	"scrooge/internal/prompt"
	"scrooge/internal/schema"
)

// Extractor turns a free-form project description into a ProjectProfile
type Extractor struct {
	client interfaces.ModelClient
	sink   interfaces.EventSink
}

// NewExtractor creates a profile extractor backed by the given model
// client. sink may be nil.
func NewExtractor(client interfaces.ModelClient, sink interfaces.EventSink) *Extractor {
	return &Extractor{
		client: client,
		sink:   sinkOrNoop(sink),
	}
}

// Extract asks the model for a structured profile of the described
// project. When the model call fails or its output cannot be parsed
// into a valid profile, Extract falls back to keyword detection over
// the description, so the only error it returns for a live context is
// an empty description.
func (e *Extractor) Extract(ctx context.Context, description string) (*models.ProjectProfile, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errors.ValidationError("project description is empty").
			WithSuggestion("Describe the project, its tech stack and the monthly budget")
	}

	e.sink.StageStarted(StageProfile, "Extracting project profile from description")

	raw, err := e.client.Complete(ctx, prompt.Profile(description), prompt.ProfileMaxTokens)
	if err != nil {
		// A cancelled run should stop, not continue on a guessed profile
		if ctx.Err() != nil {
			e.sink.StageFailed(StageProfile, err.Error())
			return nil, err
		}
		return e.fallback(description, err), nil
	}

	profile, err := schema.ParseProfile(raw, description)
	if err != nil {
		return e.fallback(description, err), nil
	}

	e.sink.StageCompleted(StageProfile, fmt.Sprintf("Extracted profile for %q", profile.Name))
	return profile, nil
}

func (e *Extractor) fallback(description string, cause error) *models.ProjectProfile {
	e.sink.Warn(fmt.Sprintf("Profile extraction failed, falling back to keyword detection: %v", cause))
	profile := FallbackProfile(description)
	e.sink.StageCompleted(StageProfile, fmt.Sprintf("Built fallback profile for %q", profile.Name))
	return profile
}
