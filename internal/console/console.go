// Package console renders pipeline progress and menu chrome on the
// terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"scrooge/internal/pipeline"
)

const bannerWidth = 70

// BrightCyan is the accent color for banner chrome. It degrades to plain
// text when the output is not a terminal.
var BrightCyan = color.New(color.FgCyan, color.Bold).SprintFunc()

// Sink prints pipeline events with pterm. It satisfies the event sink
// the pipeline orchestrators report to.
type Sink struct{}

// NewSink creates a new console event sink
func NewSink() *Sink {
	return &Sink{}
}

// StageStarted prints a step header followed by the stage message
func (s *Sink) StageStarted(stage string, message string) {
	pterm.DefaultSection.Println(stepLabel(stage))
	pterm.Info.Println(message)
}

// StageCompleted prints the stage result as a success line
func (s *Sink) StageCompleted(stage string, message string) {
	pterm.Success.Println(message)
}

// StageFailed prints the stage failure as an error line
func (s *Sink) StageFailed(stage string, message string) {
	pterm.Error.Println(message)
}

// Info prints a neutral progress detail
func (s *Sink) Info(message string) {
	pterm.Info.Println(message)
}

// Warn prints a recoverable problem
func (s *Sink) Warn(message string) {
	pterm.Warning.Println(message)
}

// stepLabel maps a pipeline stage to its step header. Unknown stages
// fall through unchanged.
func stepLabel(stage string) string {
	switch stage {
	case pipeline.StageProfile:
		return "Step 1/3: Project profile"
	case pipeline.StageBilling:
		return "Step 2/3: Billing data"
	case pipeline.StageAnalysis:
		return "Step 3/3: Cost analysis"
	}
	return stage
}

// Banner builds a centered title between two 70-character rules
func Banner(title string) string {
	rule := strings.Repeat("=", bannerWidth)
	return rule + "\n" + center(title, bannerWidth) + "\n" + rule
}

// WriteBanner writes the banner in the accent color
func WriteBanner(w io.Writer, title string) {
	fmt.Fprintln(w, BrightCyan(Banner(title)))
}

// ClearScreen wipes the terminal and homes the cursor
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[2J\033[H")
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	right := width - n - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
