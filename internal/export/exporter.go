// Package export writes cost reports to files in several formats,
// including a PDF rendering that the terminal formatters cannot produce.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"scrooge/internal/errors"
	"scrooge/internal/models"
	"scrooge/internal/output"
)

// DefaultBaseName is the filename stem used when the caller does not
// provide one. The timestamp and extension are appended to it.
const DefaultBaseName = "cost_optimization_report"

// Exporter writes cost reports to files. Text, JSON, CSV and YAML go
// through the formatter factory; PDF is rendered directly.
type Exporter struct {
	factory *output.FormatterFactory
	now     func() time.Time
}

// NewExporter creates a new report exporter
func NewExporter() *Exporter {
	return &Exporter{
		factory: output.NewFormatterFactory(),
		now:     time.Now,
	}
}

// SupportedFormats returns the export formats. The on-screen table
// format is excluded, it only makes sense in a terminal.
func (e *Exporter) SupportedFormats() []string {
	formats := []string{"pdf"}
	for _, format := range e.factory.GetSupportedFormats() {
		if format != "table" {
			formats = append(formats, format)
		}
	}
	sort.Strings(formats)
	return formats
}

// Export writes the report to a timestamped file in outDir and returns
// the full path. An empty baseName or outDir falls back to the default
// base name and the current directory.
func (e *Exporter) Export(report *models.CostReport, format, baseName, outDir string) (string, error) {
	if report == nil {
		return "", errors.ValidationError("no report to export").
			WithSuggestion("Run 'scrooge analyze' or 'scrooge recommend' first")
	}
	if !e.isSupported(format) {
		return "", errors.ConfigErrorf("unsupported export format '%s'", format).
			WithContext("format", format).
			WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(e.SupportedFormats(), ", ")))
	}
	if baseName == "" {
		baseName = DefaultBaseName
	}
	if outDir == "" {
		outDir = "."
	}

	if format == "pdf" {
		path, err := e.generateFilename(baseName, outDir, "pdf")
		if err != nil {
			return "", err
		}
		return path, e.exportPDF(report, path)
	}

	formatter, err := e.factory.GetFormatter(format)
	if err != nil {
		return "", err
	}

	content, err := formatter.Format(report)
	if err != nil {
		return "", err
	}

	path, err := e.generateFilename(baseName, outDir, extensionFor(format))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", errors.FileErrorWithCause(fmt.Sprintf("failed to write export file %s", path), err).
			WithContext("path", path).
			WithSuggestion("Check that the output directory is writable")
	}
	return path, nil
}

func (e *Exporter) isSupported(format string) bool {
	for _, supported := range e.SupportedFormats() {
		if format == supported {
			return true
		}
	}
	return false
}

// generateFilename builds a unique timestamped filename and makes sure
// the output directory exists
func (e *Exporter) generateFilename(base, dir, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.FileErrorWithCause(fmt.Sprintf("failed to create output directory '%s'", dir), err).
			WithContext("directory", dir).
			WithSuggestion("Check permissions or choose another directory with --out")
	}
	timestamp := e.now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, timestamp, ext)), nil
}

func extensionFor(format string) string {
	if format == "text" {
		return "txt"
	}
	return format
}

// rs renders a rupee amount with an ASCII prefix. The PDF core fonts
// have no rupee glyph.
func rs(value float64) string {
	return "Rs. " + output.FormatAmount(value)
}

// exportPDF renders the report as an A4 document
func (e *Exporter) exportPDF(report *models.CostReport, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		if strings.TrimSpace(content) == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.AddPage()

	// Header band with the project name
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	projectName := report.ProjectName
	if len(projectName) > 80 {
		projectName = projectName[:77] + "..."
	}
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Cost Optimization Report: %s", projectName)), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Generated: %s", e.now().Format("2006-01-02 15:04:05"))), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	analysis := report.Analysis
	budgetStatus := "Under budget"
	if analysis.IsOverBudget {
		budgetStatus = "OVER BUDGET"
	}
	var costSummary strings.Builder
	costSummary.WriteString(fmt.Sprintf("Total Monthly Cost: %s\n", rs(analysis.TotalMonthlyCost)))
	costSummary.WriteString(fmt.Sprintf("Budget: %s\n", rs(analysis.Budget)))
	costSummary.WriteString(fmt.Sprintf("Variance: %s\n", rs(analysis.BudgetVariance)))
	costSummary.WriteString(fmt.Sprintf("Status: %s", budgetStatus))
	drawSection("Cost Summary", costSummary.String())

	var serviceCosts strings.Builder
	for _, pair := range models.SortedCosts(analysis.ServiceCosts) {
		serviceCosts.WriteString(fmt.Sprintf("%s: %s\n", pair.Name, rs(pair.Cost)))
	}
	drawSection("Cost By Service", strings.TrimSpace(serviceCosts.String()))

	var recommendations strings.Builder
	for i, rec := range report.Recommendations {
		recommendations.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, rec.Title, rec.Service))
		recommendations.WriteString(fmt.Sprintf("   Savings: %s | Effort: %s | Risk: %s\n", rs(rec.PotentialSavings), rec.ImplementationEffort, rec.RiskLevel))
		if rec.Description != "" {
			recommendations.WriteString(fmt.Sprintf("   %s\n", rec.Description))
		}
		for j, step := range rec.Steps {
			recommendations.WriteString(fmt.Sprintf("     %d. %s\n", j+1, step))
		}
		recommendations.WriteString("\n")
	}
	drawSection("Recommendations", strings.TrimSpace(recommendations.String()))

	summary := report.Summary
	summaryText := fmt.Sprintf("Total Potential Savings: %s\nSavings Percentage: %.2f%%\nRecommendations: %d\nHigh Impact: %d",
		rs(summary.TotalPotentialSavings), summary.SavingsPercentage,
		summary.RecommendationsCount, summary.HighImpactRecommendations)
	drawSection("Optimization Potential", summaryText)

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Generated by scrooge | %s", e.now().Format("2006-01-02"))), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, tr("Page 1"), "", 0, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return errors.FileErrorWithCause(fmt.Sprintf("failed to write PDF file %s", path), err).
			WithContext("path", path).
			WithSuggestion("Check that the output directory is writable")
	}
	return nil
}
