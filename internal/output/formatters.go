package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"scrooge/internal/errors"
	"scrooge/internal/interfaces"
	"scrooge/internal/models"
)

// FormatOptions contains options for formatting output
type FormatOptions struct {
	Verbose   bool
	ShowSteps bool
	SortBy    string // "none", "savings", "title", "service"
}

// DefaultFormatOptions returns default formatting options. SortBy
// "none" keeps the model's priority order.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Verbose:   false,
		ShowSteps: true,
		SortBy:    "none",
	}
}

// FormatAmount renders a rupee amount with thousands separators and
// two decimals, "12,345.67"
func FormatAmount(value float64) string {
	s := strconv.FormatFloat(value, 'f', 2, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	dot := strings.Index(s, ".")
	whole, frac := s[:dot], s[dot:]

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	return sign + grouped.String() + frac
}

func inr(value float64) string {
	return "₹" + FormatAmount(value)
}

// TableFormatter formats a cost report as a human-readable table
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter
func NewTableFormatter() interfaces.OutputFormatter {
	return &TableFormatter{}
}

// FormatType returns the format type
func (f *TableFormatter) FormatType() string {
	return "table"
}

// Format formats the cost report as a table
func (f *TableFormatter) Format(report *models.CostReport) (string, error) {
	return f.FormatWithOptions(report, DefaultFormatOptions())
}

// FormatWithOptions formats with specific options
func (f *TableFormatter) FormatWithOptions(report *models.CostReport, options *FormatOptions) (string, error) {
	var output strings.Builder

	// Header
	output.WriteString("Cloud Cost Optimization Report\n")
	output.WriteString("==============================\n")
	output.WriteString(fmt.Sprintf("Project: %s\n\n", report.ProjectName))

	// Cost overview section
	analysis := report.Analysis
	output.WriteString("💰 Cost Overview\n")
	output.WriteString("----------------\n")
	output.WriteString(fmt.Sprintf("Total Monthly Cost: %s\n", inr(analysis.TotalMonthlyCost)))
	output.WriteString(fmt.Sprintf("Budget:             %s\n", inr(analysis.Budget)))
	output.WriteString(fmt.Sprintf("Variance:           %s\n", inr(analysis.BudgetVariance)))
	if analysis.IsOverBudget {
		output.WriteString("Status:             ⚠️  OVER BUDGET\n\n")
	} else {
		output.WriteString("Status:             ✅ UNDER BUDGET\n\n")
	}

	// Service breakdown
	if len(analysis.ServiceCosts) > 0 {
		output.WriteString("📊 Service Breakdown\n")
		output.WriteString("--------------------\n")
		output.WriteString(f.formatServiceBreakdown(analysis))
		output.WriteString("\n")
	}

	// Recommendations
	if len(report.Recommendations) == 0 {
		output.WriteString("No recommendations in report.\n")
		return output.String(), nil
	}

	sorted := make([]models.Recommendation, len(report.Recommendations))
	copy(sorted, report.Recommendations)
	f.sortRecommendations(sorted, options.SortBy)

	output.WriteString("💡 Recommendations\n")
	output.WriteString("------------------\n")
	output.WriteString(f.formatRecommendationTable(sorted))

	// Summary
	summary := report.Summary
	output.WriteString("\n🎯 Optimization Potential\n")
	output.WriteString("-------------------------\n")
	output.WriteString(fmt.Sprintf("Total Potential Savings: %s\n", inr(summary.TotalPotentialSavings)))
	output.WriteString(fmt.Sprintf("Savings Percentage:      %.1f%%\n", summary.SavingsPercentage))
	output.WriteString(fmt.Sprintf("Recommendations:         %d\n", summary.RecommendationsCount))
	output.WriteString(fmt.Sprintf("High Impact:             %d\n", summary.HighImpactRecommendations))

	// Per-recommendation detail if verbose
	if options.Verbose {
		output.WriteString(f.formatDetailedInfo(sorted, options))
	}

	return output.String(), nil
}

// formatServiceBreakdown renders service costs sorted descending with
// their share of the total
func (f *TableFormatter) formatServiceBreakdown(analysis models.CostAnalysis) string {
	var output strings.Builder

	costs := models.SortedCosts(analysis.ServiceCosts)

	maxNameWidth := 7 // "Service"
	for _, pair := range costs {
		if len(pair.Name) > maxNameWidth {
			maxNameWidth = len(pair.Name)
		}
	}
	maxNameWidth += 2

	headerFormat := fmt.Sprintf("%%-%ds %%14s %%8s\n", maxNameWidth)
	output.WriteString(fmt.Sprintf(headerFormat, "Service", "Monthly Cost", "Share"))
	output.WriteString(strings.Repeat("-", maxNameWidth+24) + "\n")

	rowFormat := fmt.Sprintf("%%-%ds %%14s %%7.1f%%%%\n", maxNameWidth)
	for _, pair := range costs {
		share := 0.0
		if analysis.TotalMonthlyCost > 0 {
			share = pair.Cost / analysis.TotalMonthlyCost * 100
		}
		output.WriteString(fmt.Sprintf(rowFormat, pair.Name, inr(pair.Cost), share))
	}

	return output.String()
}

// formatRecommendationTable renders one row per recommendation
func (f *TableFormatter) formatRecommendationTable(recs []models.Recommendation) string {
	var output strings.Builder

	maxTitleWidth, maxServiceWidth, maxTypeWidth := f.calculateColumnWidths(recs)

	headerFormat := fmt.Sprintf("%%3s %%-%ds %%-%ds %%-%ds %%14s %%-8s %%-8s\n",
		maxTitleWidth, maxServiceWidth, maxTypeWidth)
	output.WriteString(fmt.Sprintf(headerFormat, "#", "Title", "Service", "Type", "Savings", "Effort", "Risk"))

	separator := strings.Repeat("-", maxTitleWidth+maxServiceWidth+maxTypeWidth+38)
	output.WriteString(separator + "\n")

	rowFormat := fmt.Sprintf("%%3d %%-%ds %%-%ds %%-%ds %%14s %%-8s %%-8s\n",
		maxTitleWidth, maxServiceWidth, maxTypeWidth)

	for i, rec := range recs {
		output.WriteString(fmt.Sprintf(rowFormat,
			i+1,
			truncateCell(rec.Title, maxTitleWidth),
			rec.Service,
			rec.RecommendationType,
			inr(rec.PotentialSavings),
			rec.ImplementationEffort,
			rec.RiskLevel))
	}

	return output.String()
}

// formatDetailedInfo renders full recommendation details for verbose mode
func (f *TableFormatter) formatDetailedInfo(recs []models.Recommendation, options *FormatOptions) string {
	var output strings.Builder

	output.WriteString("\n🔍 Detailed Recommendations\n")
	output.WriteString("---------------------------\n")

	for i, rec := range recs {
		output.WriteString(fmt.Sprintf("\n%d. %s (%s)\n", i+1, rec.Title, rec.Service))
		output.WriteString(fmt.Sprintf("   Current Cost:      %s\n", inr(rec.CurrentCost)))
		output.WriteString(fmt.Sprintf("   Potential Savings: %s\n", inr(rec.PotentialSavings)))
		output.WriteString(fmt.Sprintf("   Effort: %s | Risk: %s\n", rec.ImplementationEffort, rec.RiskLevel))

		if rec.Description != "" {
			output.WriteString(fmt.Sprintf("   %s\n", rec.Description))
		}
		if len(rec.CloudProviders) > 0 {
			output.WriteString(fmt.Sprintf("   Providers: %s\n", strings.Join(rec.CloudProviders, ", ")))
		}
		if options.ShowSteps && len(rec.Steps) > 0 {
			output.WriteString("   Steps:\n")
			for j, step := range rec.Steps {
				output.WriteString(fmt.Sprintf("   %d. %s\n", j+1, step))
			}
		}
	}

	return output.String()
}

// Helper methods for TableFormatter

func (f *TableFormatter) calculateColumnWidths(recs []models.Recommendation) (int, int, int) {
	maxTitleWidth := 5   // "Title"
	maxServiceWidth := 7 // "Service"
	maxTypeWidth := 4    // "Type"

	for _, rec := range recs {
		if len(rec.Title) > maxTitleWidth {
			maxTitleWidth = len(rec.Title)
		}
		if len(rec.Service) > maxServiceWidth {
			maxServiceWidth = len(rec.Service)
		}
		if len(rec.RecommendationType) > maxTypeWidth {
			maxTypeWidth = len(rec.RecommendationType)
		}
	}

	// Long model titles would push the table off screen
	if maxTitleWidth > 40 {
		maxTitleWidth = 40
	}

	// Add padding
	return maxTitleWidth + 2, maxServiceWidth + 2, maxTypeWidth + 2
}

func (f *TableFormatter) sortRecommendations(recs []models.Recommendation, sortBy string) {
	switch sortBy {
	case "savings":
		sort.Slice(recs, func(i, j int) bool {
			return recs[i].PotentialSavings > recs[j].PotentialSavings // Descending by savings
		})
	case "title":
		sort.Slice(recs, func(i, j int) bool {
			return recs[i].Title < recs[j].Title
		})
	case "service":
		sort.Slice(recs, func(i, j int) bool {
			if recs[i].Service == recs[j].Service {
				return recs[i].Title < recs[j].Title
			}
			return recs[i].Service < recs[j].Service
		})
	}
}

func truncateCell(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// JSONFormatter formats a cost report as JSON
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() interfaces.OutputFormatter {
	return &JSONFormatter{}
}

// FormatType returns the format type
func (f *JSONFormatter) FormatType() string {
	return "json"
}

// Format formats the cost report as JSON
func (f *JSONFormatter) Format(report *models.CostReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// CSVFormatter formats a cost report as CSV
type CSVFormatter struct{}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter() interfaces.OutputFormatter {
	return &CSVFormatter{}
}

// FormatType returns the format type
func (f *CSVFormatter) FormatType() string {
	return "csv"
}

// Format formats the cost report as CSV, one row per recommendation
// plus a TOTAL row carrying the aggregates
func (f *CSVFormatter) Format(report *models.CostReport) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)

	header := []string{
		"Title",
		"Service",
		"Type",
		"Current Cost (INR)",
		"Potential Savings (INR)",
		"Effort",
		"Risk",
		"Cloud Providers",
		"Steps",
	}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range report.Recommendations {
		row := []string{
			rec.Title,
			rec.Service,
			rec.RecommendationType,
			fmt.Sprintf("%.2f", rec.CurrentCost),
			fmt.Sprintf("%.2f", rec.PotentialSavings),
			rec.ImplementationEffort,
			rec.RiskLevel,
			strings.Join(rec.CloudProviders, "; "),
			strings.Join(rec.Steps, "; "),
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	// Summary row
	summaryRow := []string{
		"TOTAL",
		"",
		"",
		fmt.Sprintf("%.2f", report.Analysis.TotalMonthlyCost),
		fmt.Sprintf("%.2f", report.Summary.TotalPotentialSavings),
		"",
		"",
		fmt.Sprintf("%.1f%% savings", report.Summary.SavingsPercentage),
		"",
	}
	if err := writer.Write(summaryRow); err != nil {
		return "", fmt.Errorf("failed to write CSV summary: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("CSV writer error: %w", err)
	}

	return output.String(), nil
}

// YAMLFormatter formats a cost report as YAML
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter() interfaces.OutputFormatter {
	return &YAMLFormatter{}
}

// FormatType returns the format type
func (f *YAMLFormatter) FormatType() string {
	return "yaml"
}

// Format formats the cost report as YAML
func (f *YAMLFormatter) Format(report *models.CostReport) (string, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}

// TextFormatter formats a cost report as the plain text document the
// export command writes, with banner rules and numbered steps
type TextFormatter struct {
	now func() time.Time
}

// NewTextFormatter creates a new plain text formatter
func NewTextFormatter() interfaces.OutputFormatter {
	return &TextFormatter{now: time.Now}
}

// FormatType returns the format type
func (f *TextFormatter) FormatType() string {
	return "text"
}

// Format formats the cost report as a plain text document
func (f *TextFormatter) Format(report *models.CostReport) (string, error) {
	var output strings.Builder
	rule := strings.Repeat("=", 80)
	thinRule := strings.Repeat("-", 80)

	output.WriteString(rule + "\n")
	output.WriteString("CLOUD COST OPTIMIZATION REPORT\n")
	output.WriteString(rule + "\n\n")

	output.WriteString(fmt.Sprintf("Project: %s\n", report.ProjectName))
	output.WriteString(fmt.Sprintf("Generated: %s\n\n", f.now().Format("2006-01-02 15:04:05")))

	analysis := report.Analysis
	output.WriteString("COST ANALYSIS\n")
	output.WriteString(thinRule + "\n")
	output.WriteString(fmt.Sprintf("Total Monthly Cost: %s\n", inr(analysis.TotalMonthlyCost)))
	output.WriteString(fmt.Sprintf("Budget: %s\n", inr(analysis.Budget)))
	output.WriteString(fmt.Sprintf("Variance: %s\n", inr(analysis.BudgetVariance)))
	if analysis.IsOverBudget {
		output.WriteString("Over Budget: Yes\n\n")
	} else {
		output.WriteString("Over Budget: No\n\n")
	}

	output.WriteString("Service Costs Breakdown:\n")
	for _, pair := range models.SortedCosts(analysis.ServiceCosts) {
		output.WriteString(fmt.Sprintf("  - %s: %s\n", pair.Name, inr(pair.Cost)))
	}

	output.WriteString("\n" + rule + "\n")
	output.WriteString("RECOMMENDATIONS\n")
	output.WriteString(rule + "\n\n")

	for i, rec := range report.Recommendations {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec.Title))
		output.WriteString(thinRule + "\n")
		output.WriteString(fmt.Sprintf("Service: %s\n", rec.Service))
		output.WriteString(fmt.Sprintf("Current Cost: %s\n", inr(rec.CurrentCost)))
		output.WriteString(fmt.Sprintf("Potential Savings: %s\n", inr(rec.PotentialSavings)))
		output.WriteString(fmt.Sprintf("Type: %s\n", rec.RecommendationType))
		output.WriteString(fmt.Sprintf("Effort: %s | Risk: %s\n", rec.ImplementationEffort, rec.RiskLevel))
		output.WriteString(fmt.Sprintf("\nDescription: %s\n", rec.Description))
		output.WriteString(fmt.Sprintf("\nCloud Providers: %s\n", strings.Join(rec.CloudProviders, ", ")))
		output.WriteString("\nImplementation Steps:\n")
		for j, step := range rec.Steps {
			output.WriteString(fmt.Sprintf("  %d. %s\n", j+1, step))
		}
		output.WriteString("\n")
	}

	summary := report.Summary
	output.WriteString("\n" + rule + "\n")
	output.WriteString("SUMMARY\n")
	output.WriteString(rule + "\n")
	output.WriteString(fmt.Sprintf("Total Potential Savings: %s\n", inr(summary.TotalPotentialSavings)))
	output.WriteString(fmt.Sprintf("Savings Percentage: %.2f%%\n", summary.SavingsPercentage))
	output.WriteString(fmt.Sprintf("Total Recommendations: %d\n", summary.RecommendationsCount))
	output.WriteString(fmt.Sprintf("High Impact Recommendations: %d\n", summary.HighImpactRecommendations))

	return output.String(), nil
}

// FormatterFactory creates formatters based on type
type FormatterFactory struct {
	formatters map[string]interfaces.OutputFormatter
}

// NewFormatterFactory creates a new formatter factory
func NewFormatterFactory() *FormatterFactory {
	factory := &FormatterFactory{
		formatters: make(map[string]interfaces.OutputFormatter),
	}

	// Register built-in formatters
	factory.RegisterFormatter(NewTableFormatter())
	factory.RegisterFormatter(NewJSONFormatter())
	factory.RegisterFormatter(NewCSVFormatter())
	factory.RegisterFormatter(NewYAMLFormatter())
	factory.RegisterFormatter(NewTextFormatter())

	return factory
}

// RegisterFormatter registers a new formatter
func (f *FormatterFactory) RegisterFormatter(formatter interfaces.OutputFormatter) {
	f.formatters[formatter.FormatType()] = formatter
}

// GetFormatter returns a formatter by type
func (f *FormatterFactory) GetFormatter(formatType string) (interfaces.OutputFormatter, error) {
	formatter, exists := f.formatters[formatType]
	if !exists {
		return nil, errors.ConfigErrorf("unsupported output format '%s'", formatType).
			WithContext("format", formatType).
			WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(f.GetSupportedFormats(), ", ")))
	}
	return formatter, nil
}

// GetSupportedFormats returns a list of supported format types
func (f *FormatterFactory) GetSupportedFormats() []string {
	formats := make([]string, 0, len(f.formatters))
	for formatType := range f.formatters {
		formats = append(formats, formatType)
	}
	sort.Strings(formats)
	return formats
}

// FormatReport formats a report using the specified formatter
func (f *FormatterFactory) FormatReport(report *models.CostReport, formatType string) (string, error) {
	formatter, err := f.GetFormatter(formatType)
	if err != nil {
		return "", err
	}
	return formatter.Format(report)
}

// WriteFormattedReport writes a formatted report to a writer
func (f *FormatterFactory) WriteFormattedReport(writer io.Writer, report *models.CostReport, formatType string) error {
	formatted, err := f.FormatReport(report, formatType)
	if err != nil {
		return err
	}

	_, err = writer.Write([]byte(formatted))
	return err
}
