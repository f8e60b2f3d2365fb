package pipeline

import (
	"context"
	"fmt"

	"scrooge/internal/errors"
	"scrooge/internal/interfaces"
	"scrooge/internal/models"
	"scrooge/internal/prompt"
	"scrooge/internal/schema"
)

// Analyzer turns a profile and its billing records into a cost report
type Analyzer struct {
	client interfaces.ModelClient
	sink   interfaces.EventSink
}

// NewAnalyzer creates a cost analyzer backed by the given model client.
// sink may be nil.
func NewAnalyzer(client interfaces.ModelClient, sink interfaces.EventSink) *Analyzer {
	return &Analyzer{
		client: client,
		sink:   sinkOrNoop(sink),
	}
}

// Analyze aggregates the billing records locally, asks the model for
// optimization recommendations against those aggregates, and assembles
// the final report. The analysis and summary blocks are always computed
// here from validated records; aggregate numbers in the model output
// never reach the report.
func (a *Analyzer) Analyze(ctx context.Context, profile *models.ProjectProfile, records []models.BillingRecord) (*models.CostReport, error) {
	if profile == nil {
		return nil, errors.ValidationError("project profile is required").
			WithSuggestion("Run profile extraction before cost analysis")
	}
	if len(records) == 0 {
		return nil, errors.ValidationError("no billing records to analyze").
			WithSuggestion("Run billing synthesis before cost analysis")
	}

	analysis := models.AnalyzeRecords(records, profile.BudgetINRPerMonth)
	a.sink.StageStarted(StageAnalysis, fmt.Sprintf("Analyzing ₹%.2f across %d services", analysis.TotalMonthlyCost, len(analysis.ServiceCosts)))

	raw, err := a.client.Complete(ctx, prompt.Analysis(profile, &analysis), prompt.AnalysisMaxTokens)
	if err != nil {
		a.sink.StageFailed(StageAnalysis, err.Error())
		return nil, err
	}

	recommendations, skipped, err := schema.ParseRecommendations(raw)
	for _, reason := range skipped {
		a.sink.Warn("Skipping invalid recommendation: " + reason)
	}
	if err != nil {
		a.sink.StageFailed(StageAnalysis, err.Error())
		return nil, err
	}
	if len(recommendations) < models.MinRecommendations {
		a.sink.Warn(fmt.Sprintf("Model produced %d recommendations, expected at least %d", len(recommendations), models.MinRecommendations))
	}

	report := &models.CostReport{
		ProjectName:     profile.Name,
		Analysis:        analysis,
		Recommendations: recommendations,
		Summary:         models.SummarizeRecommendations(recommendations, analysis.TotalMonthlyCost),
	}

	a.sink.StageCompleted(StageAnalysis, fmt.Sprintf("Report ready with %d recommendations", len(recommendations)))
	return report, nil
}
