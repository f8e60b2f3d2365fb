// Package pipeline chains the model-backed stages that turn a free-form
// project description into a cost optimization report.
//
// Three stages run in order: profile extraction, billing synthesis and
// cost analysis. Each stage builds a prompt, calls the model, extracts
// the JSON payload from the completion, parses it and validates the
// result before handing it to the next stage. Profile extraction falls
// back to keyword detection when the model output is unusable; billing
// synthesis and cost analysis fail instead, since inventing a bill or
// recommendations locally would produce a report worth nothing.
package pipeline

import (
	"scrooge/internal/interfaces"
)

// Stage names used in progress events and error context
const (
	StageProfile  = "profile"
	StageBilling  = "billing"
	StageAnalysis = "analysis"
)

// noopSink swallows all events so orchestrators never nil-check the
// sink before emitting
type noopSink struct{}

func (noopSink) StageStarted(stage string, message string)   {}
func (noopSink) StageCompleted(stage string, message string) {}
func (noopSink) StageFailed(stage string, message string)    {}
func (noopSink) Info(message string)                         {}
func (noopSink) Warn(message string)                         {}

func sinkOrNoop(sink interfaces.EventSink) interfaces.EventSink {
	if sink == nil {
		return noopSink{}
	}
	return sink
}
