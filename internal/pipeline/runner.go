package pipeline

import (
	"context"

	"scrooge/internal/interfaces"
	"scrooge/internal/models"
	"scrooge/internal/storage"
)

// Runner executes the full pipeline and persists the artifact of each
// stage as soon as the stage completes
type Runner struct {
	extractor   *Extractor
	synthesizer *Synthesizer
	analyzer    *Analyzer
	store       interfaces.ArtifactStore
	sink        interfaces.EventSink
}

// NewRunner wires the three stage orchestrators to a shared model
// client, artifact store and event sink. store may be nil to skip
// persistence, sink may be nil to run silently.
func NewRunner(client interfaces.ModelClient, store interfaces.ArtifactStore, sink interfaces.EventSink) *Runner {
	sink = sinkOrNoop(sink)
	return &Runner{
		extractor:   NewExtractor(client, sink),
		synthesizer: NewSynthesizer(client, sink),
		analyzer:    NewAnalyzer(client, sink),
		store:       store,
		sink:        sink,
	}
}

// Run takes a project description through all three stages and returns
// the finished report. Because each artifact is saved right after its
// stage, a failed run leaves the artifacts of the stages that did
// succeed behind for inspection and reuse.
func (r *Runner) Run(ctx context.Context, description string) (*models.CostReport, error) {
	profile, err := r.extractor.Extract(ctx, description)
	if err != nil {
		return nil, err
	}
	if err := r.save(storage.ProfileArtifact, profile); err != nil {
		return nil, err
	}

	records, err := r.synthesizer.Generate(ctx, profile)
	if err != nil {
		return nil, err
	}
	if err := r.save(storage.BillingArtifact, records); err != nil {
		return nil, err
	}

	report, err := r.analyzer.Analyze(ctx, profile, records)
	if err != nil {
		return nil, err
	}
	if err := r.save(storage.ReportArtifact, report); err != nil {
		return nil, err
	}

	return report, nil
}

func (r *Runner) save(name string, value interface{}) error {
	if r.store == nil {
		return nil
	}
	path, err := r.store.SaveJSON(name, value)
	if err != nil {
		return err
	}
	r.sink.Info("Saved " + path)
	return nil
}
