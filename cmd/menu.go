package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"scrooge/internal/config"
	"scrooge/internal/console"
	"scrooge/internal/errors"
	"scrooge/internal/export"
	"scrooge/internal/models"
	"scrooge/internal/output"
	"scrooge/internal/pipeline"
	"scrooge/internal/storage"
)

const menuRuleWidth = 70

var menuOptions = []string{
	"Enter New Project Description",
	"Run Complete Cost Analysis",
	"View Recommendations",
	"Export Report",
	"Exit",
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive menu mode",
	Long: `Start the interactive menu. The menu walks through entering a project
description, running the complete analysis, viewing recommendations and
exporting the report, without memorizing any flags. Completions are cached
for the session so repeating a step does not call the model again.`,
	RunE: runMenu,
}

func runMenu(cmd *cobra.Command, args []string) error {
	settings, err := buildSettings()
	if err != nil {
		return err
	}
	store := storage.NewStore(settings.DataDir)
	return newMenu(settings, store, os.Stdin, os.Stdout).run()
}

// menu is the interactive session state. Reader and writer are injected
// so tests can script the session.
type menu struct {
	settings *config.Settings
	store    *storage.Store
	in       *bufio.Scanner
	out      io.Writer
}

func newMenu(settings *config.Settings, store *storage.Store, in io.Reader, out io.Writer) *menu {
	scanner := bufio.NewScanner(in)
	// Pasted descriptions can exceed the default token size
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &menu{settings: settings, store: store, in: scanner, out: out}
}

// run shows the main menu until the user exits or input ends
func (m *menu) run() error {
	for {
		m.clear()
		m.banner("Cloud Cost Optimizer")
		fmt.Fprintln(m.out, "\n🤖 AI-Powered Cloud Cost Analysis & Optimization")

		fmt.Fprintln(m.out, "\nPlease select an option:")
		fmt.Fprintln(m.out)
		for i, option := range menuOptions {
			fmt.Fprintf(m.out, "  %d. %s\n", i+1, option)
		}

		fmt.Fprint(m.out, "\nEnter your choice (1-5): ")
		choice, ok := m.readLine()
		if !ok {
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			m.enterDescription()
		case "2":
			m.runAnalysis()
		case "3":
			m.viewRecommendations()
		case "4":
			m.exportReport()
		case "5":
			m.clear()
			rule := strings.Repeat("=", menuRuleWidth)
			fmt.Fprintf(m.out, "\n%s\n", rule)
			fmt.Fprintln(m.out, "👋 Thank you for using Cloud Cost Optimizer!")
			fmt.Fprintln(m.out, rule)
			fmt.Fprintln(m.out)
			return nil
		default:
			fmt.Fprintln(m.out, "\n❌ Invalid choice! Please enter a number between 1-5.")
			m.pause()
		}
	}
}

// enterDescription collects a multi-line project description terminated
// by a DONE line and saves it for the analysis
func (m *menu) enterDescription() {
	m.clear()
	m.banner("Enter Project Description")
	fmt.Fprintln(m.out, "\nEnter your project description (multiple lines supported)")
	fmt.Fprintln(m.out, "When finished, type 'DONE' on a new line and press Enter")
	fmt.Fprintln(m.out, strings.Repeat("-", menuRuleWidth))
	fmt.Fprintln(m.out)

	var lines []string
	for {
		line, ok := m.readLine()
		if !ok {
			break
		}
		if strings.EqualFold(strings.TrimSpace(line), "DONE") {
			break
		}
		lines = append(lines, line)
	}

	description := strings.TrimSpace(strings.Join(lines, "\n"))
	if description == "" {
		fmt.Fprintln(m.out, "\n❌ No description entered!")
		m.pause()
		return
	}

	path, err := m.store.SaveText(storage.DescriptionArtifact, description)
	if err != nil {
		fmt.Fprintf(m.out, "\n❌ Error saving file: %v\n", err)
		m.pause()
		return
	}

	fmt.Fprintln(m.out, "\n✅ Project description saved!")
	fmt.Fprintf(m.out, "   File: %s\n", path)
	fmt.Fprintf(m.out, "   Length: %d characters\n", utf8.RuneCountInString(description))
	m.pause()
}

// runAnalysis runs the full pipeline on the saved description and shows
// the summary
func (m *menu) runAnalysis() {
	m.clear()
	m.banner("Running Complete Cost Analysis")

	if !m.store.Exists(storage.DescriptionArtifact) {
		fmt.Fprintln(m.out, "\n❌ No project description found! Please enter one first.")
		m.pause()
		return
	}

	description, err := m.store.LoadText(storage.DescriptionArtifact)
	if err != nil {
		m.reportError("during analysis", err)
		return
	}

	client, err := newModelClient(m.settings, true)
	if err != nil {
		m.reportError("during analysis", err)
		return
	}

	preview := description
	if utf8.RuneCountInString(preview) > 100 {
		preview = string([]rune(preview)[:100])
	}
	fmt.Fprintf(m.out, "\nAnalyzing: %s...\n", preview)

	runner := pipeline.NewRunner(client, m.store, &menuSink{out: m.out})
	report, err := runner.Run(context.Background(), description)
	if err != nil {
		m.reportError("during analysis", err)
		return
	}

	rule := strings.Repeat("=", menuRuleWidth)
	fmt.Fprintf(m.out, "\n%s\n", rule)
	fmt.Fprintln(m.out, "📊 ANALYSIS SUMMARY")
	fmt.Fprintln(m.out, rule)

	analysis := report.Analysis
	fmt.Fprintln(m.out, "\n💰 Cost Overview:")
	fmt.Fprintf(m.out, "   Total Monthly Cost: ₹%s\n", output.FormatAmount(analysis.TotalMonthlyCost))
	fmt.Fprintf(m.out, "   Budget:             ₹%s\n", output.FormatAmount(analysis.Budget))
	fmt.Fprintf(m.out, "   Variance:           ₹%s\n", output.FormatAmount(analysis.BudgetVariance))
	if analysis.IsOverBudget {
		fmt.Fprintln(m.out, "   Status:             ⚠️  OVER BUDGET")
	} else {
		fmt.Fprintln(m.out, "   Status:             ✅ UNDER BUDGET")
	}

	summary := report.Summary
	fmt.Fprintln(m.out, "\n💡 Optimization Potential:")
	fmt.Fprintf(m.out, "   Total Savings:      ₹%s\n", output.FormatAmount(summary.TotalPotentialSavings))
	fmt.Fprintf(m.out, "   Savings %%:          %.1f%%\n", summary.SavingsPercentage)
	fmt.Fprintf(m.out, "   Recommendations:    %d\n", summary.RecommendationsCount)

	fmt.Fprintf(m.out, "\n%s\n", rule)
	fmt.Fprintln(m.out, "✅ Complete analysis finished successfully!")
	fmt.Fprintln(m.out, rule)

	m.pause()
}

// viewRecommendations lists every recommendation of the saved report
func (m *menu) viewRecommendations() {
	m.clear()
	m.banner("Cost Optimization Recommendations")

	if !m.store.Exists(storage.ReportArtifact) {
		fmt.Fprintln(m.out, "\n❌ No report found! Please run the complete analysis first.")
		m.pause()
		return
	}

	var report models.CostReport
	if err := m.store.LoadJSON(storage.ReportArtifact, &report); err != nil {
		m.reportError("loading report", err)
		return
	}

	rule := strings.Repeat("=", menuRuleWidth)

	fmt.Fprintf(m.out, "\n📋 Total Recommendations: %d\n", len(report.Recommendations))
	fmt.Fprintf(m.out, "💰 Total Potential Savings: ₹%s\n", output.FormatAmount(report.Summary.TotalPotentialSavings))
	fmt.Fprintf(m.out, "📊 Savings Percentage: %.1f%%\n", report.Summary.SavingsPercentage)

	for i, recommendation := range report.Recommendations {
		fmt.Fprintf(m.out, "\n%s\n", rule)
		fmt.Fprintf(m.out, "#%d: %s\n", i+1, recommendation.Title)
		fmt.Fprintln(m.out, rule)
		fmt.Fprintf(m.out, "Service:            %s\n", recommendation.Service)
		fmt.Fprintf(m.out, "Current Cost:       ₹%s\n", output.FormatAmount(recommendation.CurrentCost))
		fmt.Fprintf(m.out, "Potential Savings:  ₹%s\n", output.FormatAmount(recommendation.PotentialSavings))
		fmt.Fprintf(m.out, "Type:               %s\n", recommendation.RecommendationType)
		fmt.Fprintf(m.out, "Implementation:     %s effort\n", strings.ToUpper(recommendation.ImplementationEffort))
		fmt.Fprintf(m.out, "Risk Level:         %s\n", strings.ToUpper(recommendation.RiskLevel))

		fmt.Fprintln(m.out, "\n📝 Description:")
		fmt.Fprintf(m.out, "   %s\n", recommendation.Description)

		fmt.Fprintf(m.out, "\n☁️  Cloud Providers: %s\n", strings.Join(recommendation.CloudProviders, ", "))

		fmt.Fprintln(m.out, "\n📋 Implementation Steps:")
		for j, step := range recommendation.Steps {
			fmt.Fprintf(m.out, "   %d. %s\n", j+1, step)
		}
	}

	fmt.Fprintf(m.out, "\n%s\n", rule)
	m.pause()
}

// exportReport writes the saved report as a formatted text file into the
// data directory
func (m *menu) exportReport() {
	m.clear()
	m.banner("Export Report")

	if !m.store.Exists(storage.ReportArtifact) {
		fmt.Fprintln(m.out, "\n❌ No report found! Please run the complete analysis first.")
		m.pause()
		return
	}

	var report models.CostReport
	if err := m.store.LoadJSON(storage.ReportArtifact, &report); err != nil {
		m.reportError("loading report", err)
		return
	}

	exporter := export.NewExporter()
	path, err := exporter.Export(&report, "text", "", m.store.Dir())
	if err != nil {
		m.reportError("exporting report", err)
		return
	}

	fmt.Fprintln(m.out, "\n✅ Report exported successfully!")
	fmt.Fprintf(m.out, "   File: %s\n", path)
	if info, err := os.Stat(path); err == nil {
		fmt.Fprintf(m.out, "   Size: %d bytes\n", info.Size())
	}
	m.pause()
}

func (m *menu) banner(title string) {
	fmt.Fprintln(m.out)
	console.WriteBanner(m.out, title)
}

func (m *menu) clear() {
	console.ClearScreen(m.out)
}

func (m *menu) reportError(action string, err error) {
	fmt.Fprintf(m.out, "\n❌ Error %s: %v\n", action, err)
	if pipelineErr, ok := err.(*errors.PipelineError); ok && len(pipelineErr.Suggestions) > 0 {
		fmt.Fprintln(m.out, "\n💡 Suggestions:")
		for _, suggestion := range pipelineErr.Suggestions {
			fmt.Fprintf(m.out, "   • %s\n", suggestion)
		}
	}
	m.pause()
}

func (m *menu) pause() {
	fmt.Fprint(m.out, "\nPress Enter to continue...")
	m.in.Scan()
}

func (m *menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}

// menuSink renders pipeline events in the menu's step banner style
type menuSink struct {
	out io.Writer
}

func (s *menuSink) StageStarted(stage, message string) {
	rule := strings.Repeat("=", menuRuleWidth)
	fmt.Fprintf(s.out, "\n%s\n", rule)
	fmt.Fprintf(s.out, "STEP %s: %s\n", stepOrdinal(stage), message)
	fmt.Fprintln(s.out, rule)
}

func (s *menuSink) StageCompleted(stage, message string) {
	fmt.Fprintf(s.out, "\n✅ %s\n", message)
}

func (s *menuSink) StageFailed(stage, message string) {
	fmt.Fprintf(s.out, "\n❌ %s\n", message)
}

func (s *menuSink) Info(message string) {
	fmt.Fprintf(s.out, "   → %s\n", message)
}

func (s *menuSink) Warn(message string) {
	fmt.Fprintf(s.out, "⚠️  %s\n", message)
}

// stepOrdinal maps a stage name to its position in the three step run
func stepOrdinal(stage string) string {
	switch stage {
	case pipeline.StageProfile:
		return "1/3"
	case pipeline.StageBilling:
		return "2/3"
	case pipeline.StageAnalysis:
		return "3/3"
	default:
		return stage
	}
}
