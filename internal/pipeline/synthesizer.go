package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"scrooge/internal/errors"
	"scrooge/internal/interfaces"
	"scrooge/internal/models"
	"scrooge/internal/prompt"
	"scrooge/internal/schema"
)

// Synthesizer produces one month of synthetic billing records for a
// profiled project
type Synthesizer struct {
	client interfaces.ModelClient
	sink   interfaces.EventSink
	now    func() time.Time
}

// NewSynthesizer creates a billing synthesizer backed by the given
// model client. sink may be nil.
func NewSynthesizer(client interfaces.ModelClient, sink interfaces.EventSink) *Synthesizer {
	return &Synthesizer{
		client: client,
		sink:   sinkOrNoop(sink),
		now:    time.Now,
	}
}

// Generate asks the model for a plausible monthly bill sized against
// the profile's budget. There is no fallback here: when the model
// cannot produce at least MinBillingRecords valid records the stage
// fails, because a bill invented locally would make the analysis that
// follows meaningless. Invalid records inside an otherwise large
// enough batch are skipped with a warning.
func (s *Synthesizer) Generate(ctx context.Context, profile *models.ProjectProfile) ([]models.BillingRecord, error) {
	if profile == nil {
		return nil, errors.ValidationError("project profile is required").
			WithSuggestion("Run profile extraction before billing synthesis")
	}

	provider := prompt.ProviderForHosting(profile.TechStack.Hosting)
	s.sink.StageStarted(StageBilling, fmt.Sprintf("Generating %s billing records", provider))

	month := s.now().Format("2006-01")
	raw, err := s.client.Complete(ctx, prompt.Billing(profile, month), prompt.BillingMaxTokens)
	if err != nil {
		s.sink.StageFailed(StageBilling, err.Error())
		return nil, err
	}

	records, skipped, err := schema.ParseBillingRecords(raw)
	for _, reason := range skipped {
		s.sink.Warn("Skipping invalid billing record: " + reason)
	}
	if err != nil {
		s.sink.StageFailed(StageBilling, err.Error())
		return nil, err
	}

	total := lo.SumBy(records, func(r models.BillingRecord) float64 { return r.CostINR })
	s.sink.StageCompleted(StageBilling, fmt.Sprintf("Generated %d billing records totalling ₹%.2f", len(records), total))
	return records, nil
}
