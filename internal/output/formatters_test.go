package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"scrooge/internal/errors"
	"scrooge/internal/models"
)

// Helper function to create a consistent test report
func createTestReport() *models.CostReport {
	return &models.CostReport{
		ProjectName: "Ecommerce Platform",
		Analysis: models.CostAnalysis{
			TotalMonthlyCost: 7500,
			Budget:           8000,
			BudgetVariance:   -500,
			IsOverBudget:     false,
			ServiceCosts: map[string]float64{
				"EC2": 4500,
				"S3":  2000,
				"RDS": 1000,
			},
			HighCostServices: map[string]float64{
				"EC2": 4500,
				"S3":  2000,
				"RDS": 1000,
			},
		},
		Recommendations: []models.Recommendation{
			{
				Title:                "Use Reserved Instances",
				Service:              "EC2",
				CurrentCost:          4500,
				PotentialSavings:     1350,
				RecommendationType:   "reserved_instance",
				Description:          "Commit to one year of usage for a steady workload",
				ImplementationEffort: "low",
				RiskLevel:            "low",
				Steps:                []string{"Review usage history", "Purchase the reservation"},
				CloudProviders:       []string{"aws"},
			},
			{
				Title:                "Move cold data to archive storage",
				Service:              "S3",
				CurrentCost:          2000,
				PotentialSavings:     800,
				RecommendationType:   "cost_effective_storage",
				Description:          "Lifecycle rules move stale objects to a cheaper tier",
				ImplementationEffort: "medium",
				RiskLevel:            "medium",
				Steps:                []string{"Identify cold buckets", "Add lifecycle rules"},
				CloudProviders:       []string{"aws", "gcp"},
			},
			{
				Title:                "Right-size the database",
				Service:              "RDS",
				CurrentCost:          1000,
				PotentialSavings:     300,
				RecommendationType:   "right_sizing",
				Description:          "The instance runs below 20 percent utilization",
				ImplementationEffort: "low",
				RiskLevel:            "low",
				Steps:                []string{"Check utilization metrics", "Scale down one size"},
				CloudProviders:       []string{"aws"},
			},
		},
		Summary: models.ReportSummary{
			TotalPotentialSavings:     2450,
			SavingsPercentage:         32.67,
			RecommendationsCount:      3,
			HighImpactRecommendations: 2,
		},
	}
}

func TestDefaultFormatOptions(t *testing.T) {
	options := DefaultFormatOptions()

	if options.Verbose {
		t.Error("expected verbose to default to false")
	}
	if !options.ShowSteps {
		t.Error("expected show steps to default to true")
	}
	if options.SortBy != "none" {
		t.Errorf("expected sort by 'none', got '%s'", options.SortBy)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{name: "zero", value: 0, expected: "0.00"},
		{name: "small", value: 999, expected: "999.00"},
		{name: "thousands", value: 1234.5, expected: "1,234.50"},
		{name: "millions", value: 1234567.891, expected: "1,234,567.89"},
		{name: "negative", value: -9876.5, expected: "-9,876.50"},
		{name: "exactly one thousand", value: 1000, expected: "1,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmount(tt.value); got != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestTableFormatter_FormatType(t *testing.T) {
	formatter := NewTableFormatter()
	if formatter.FormatType() != "table" {
		t.Errorf("expected format type 'table', got '%s'", formatter.FormatType())
	}
}

func TestTableFormatter_Format(t *testing.T) {
	formatter := NewTableFormatter()
	report := createTestReport()

	result, err := formatter.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedContent := []string{
		"Cloud Cost Optimization Report",
		"Project: Ecommerce Platform",
		"Total Monthly Cost: ₹7,500.00",
		"Budget:             ₹8,000.00",
		"✅ UNDER BUDGET",
		"Service Breakdown",
		"EC2",
		"₹4,500.00",
		"Use Reserved Instances",
		"Total Potential Savings: ₹2,450.00",
		"Savings Percentage:      32.7%",
		"High Impact:             2",
	}
	for _, expected := range expectedContent {
		if !strings.Contains(result, expected) {
			t.Errorf("expected output to contain '%s'", expected)
		}
	}

	// No detail section without verbose
	if strings.Contains(result, "Detailed Recommendations") {
		t.Error("expected no detail section by default")
	}
}

func TestTableFormatter_FormatWithOptionsVerbose(t *testing.T) {
	formatter := &TableFormatter{}
	report := createTestReport()

	options := DefaultFormatOptions()
	options.Verbose = true

	result, err := formatter.FormatWithOptions(report, options)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedContent := []string{
		"Detailed Recommendations",
		"1. Use Reserved Instances (EC2)",
		"Commit to one year of usage",
		"Providers: aws",
		"1. Review usage history",
		"2. Purchase the reservation",
	}
	for _, expected := range expectedContent {
		if !strings.Contains(result, expected) {
			t.Errorf("expected verbose output to contain '%s'", expected)
		}
	}
}

func TestTableFormatter_OverBudgetStatus(t *testing.T) {
	formatter := NewTableFormatter()
	report := createTestReport()
	report.Analysis.IsOverBudget = true
	report.Analysis.BudgetVariance = 1500

	result, err := formatter.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, "⚠️  OVER BUDGET") {
		t.Error("expected over budget status")
	}
}

func TestTableFormatter_NoRecommendations(t *testing.T) {
	formatter := NewTableFormatter()
	report := createTestReport()
	report.Recommendations = nil

	result, err := formatter.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, "No recommendations in report.") {
		t.Error("expected empty recommendations notice")
	}
}

func TestTableFormatter_SortRecommendations(t *testing.T) {
	formatter := &TableFormatter{}

	tests := []struct {
		name       string
		sortBy     string
		firstTitle string
	}{
		{
			name:       "savings descending",
			sortBy:     "savings",
			firstTitle: "Use Reserved Instances",
		},
		{
			name:       "title ascending",
			sortBy:     "title",
			firstTitle: "Move cold data to archive storage",
		},
		{
			name:       "service ascending",
			sortBy:     "service",
			firstTitle: "Use Reserved Instances",
		},
		{
			name:       "none keeps original order",
			sortBy:     "none",
			firstTitle: "Use Reserved Instances",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := make([]models.Recommendation, len(createTestReport().Recommendations))
			copy(recs, createTestReport().Recommendations)

			formatter.sortRecommendations(recs, tt.sortBy)
			if recs[0].Title != tt.firstTitle {
				t.Errorf("expected first title '%s', got '%s'", tt.firstTitle, recs[0].Title)
			}
		})
	}
}

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{name: "short stays", input: "short", max: 10, expected: "short"},
		{name: "long gets ellipsis", input: "a very long recommendation title", max: 10, expected: "a very ..."},
		{name: "tiny max", input: "abcdef", max: 3, expected: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateCell(tt.input, tt.max); got != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestJSONFormatter_FormatType(t *testing.T) {
	formatter := NewJSONFormatter()
	if formatter.FormatType() != "json" {
		t.Errorf("expected format type 'json', got '%s'", formatter.FormatType())
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	formatter := NewJSONFormatter()
	report := createTestReport()

	result, err := formatter.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed models.CostReport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.ProjectName != report.ProjectName {
		t.Errorf("expected project name '%s', got '%s'", report.ProjectName, parsed.ProjectName)
	}
	if parsed.Summary != report.Summary {
		t.Errorf("expected summary to round-trip, got %+v", parsed.Summary)
	}
	if len(parsed.Recommendations) != len(report.Recommendations) {
		t.Errorf("expected %d recommendations, got %d", len(report.Recommendations), len(parsed.Recommendations))
	}
}

func TestCSVFormatter_FormatType(t *testing.T) {
	formatter := NewCSVFormatter()
	if formatter.FormatType() != "csv" {
		t.Errorf("expected format type 'csv', got '%s'", formatter.FormatType())
	}
}

func TestCSVFormatter_Format(t *testing.T) {
	formatter := NewCSVFormatter()
	report := createTestReport()

	result, err := formatter.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(result)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	// Header, three recommendations, TOTAL row
	if len(records) != 5 {
		t.Fatalf("expected 5 CSV rows, got %d", len(records))
	}
	if records[0][0] != "Title" {
		t.Errorf("expected header row, got %v", records[0])
	}
	if records[1][0] != "Use Reserved Instances" {
		t.Errorf("expected first recommendation row, got %v", records[1])
	}
	if records[1][4] != "1350.00" {
		t.Errorf("expected savings '1350.00', got '%s'", records[1][4])
	}
	if records[2][7] != "aws; gcp" {
		t.Errorf("expected joined providers, got '%s'", records[2][7])
	}

	total := records[4]
	if total[0] != "TOTAL" {
		t.Errorf("expected TOTAL row, got %v", total)
	}
	if total[3] != "7500.00" {
		t.Errorf("expected total cost '7500.00', got '%s'", total[3])
	}
	if total[4] != "2450.00" {
		t.Errorf("expected total savings '2450.00', got '%s'", total[4])
	}
}

func TestYAMLFormatter_FormatType(t *testing.T) {
	formatter := NewYAMLFormatter()
	if formatter.FormatType() != "yaml" {
		t.Errorf("expected format type 'yaml', got '%s'", formatter.FormatType())
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	formatter := NewYAMLFormatter()
	report := createTestReport()

	result, err := formatter.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "project_name: Ecommerce Platform") {
		t.Error("expected snake_case keys in YAML output")
	}

	var parsed models.CostReport
	if err := yaml.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if parsed.ProjectName != report.ProjectName {
		t.Errorf("expected project name '%s', got '%s'", report.ProjectName, parsed.ProjectName)
	}
	if len(parsed.Recommendations) != 3 {
		t.Errorf("expected 3 recommendations, got %d", len(parsed.Recommendations))
	}
	if parsed.Analysis.TotalMonthlyCost != 7500 {
		t.Errorf("expected total cost 7500, got %v", parsed.Analysis.TotalMonthlyCost)
	}
}

func TestTextFormatter_FormatType(t *testing.T) {
	formatter := NewTextFormatter()
	if formatter.FormatType() != "text" {
		t.Errorf("expected format type 'text', got '%s'", formatter.FormatType())
	}
}

func TestTextFormatter_Format(t *testing.T) {
	formatter := &TextFormatter{now: func() time.Time {
		return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	}}
	report := createTestReport()

	result, err := formatter.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedContent := []string{
		strings.Repeat("=", 80),
		"CLOUD COST OPTIMIZATION REPORT",
		"Project: Ecommerce Platform",
		"Generated: 2024-01-15 10:30:00",
		"COST ANALYSIS",
		"Total Monthly Cost: ₹7,500.00",
		"Over Budget: No",
		"Service Costs Breakdown:",
		"  - EC2: ₹4,500.00",
		"RECOMMENDATIONS",
		"1. Use Reserved Instances",
		"Effort: low | Risk: low",
		"Cloud Providers: aws, gcp",
		"Implementation Steps:",
		"  1. Review usage history",
		"SUMMARY",
		"Total Potential Savings: ₹2,450.00",
		"Savings Percentage: 32.67%",
		"High Impact Recommendations: 2",
	}
	for _, expected := range expectedContent {
		if !strings.Contains(result, expected) {
			t.Errorf("expected output to contain '%s'", expected)
		}
	}

	// Services ordered by cost descending
	ec2 := strings.Index(result, "- EC2:")
	s3 := strings.Index(result, "- S3:")
	rds := strings.Index(result, "- RDS:")
	if !(ec2 < s3 && s3 < rds) {
		t.Error("expected service breakdown sorted by cost descending")
	}
}

func TestFormatterFactory_NewFormatterFactory(t *testing.T) {
	factory := NewFormatterFactory()

	expected := []string{"csv", "json", "table", "text", "yaml"}
	formats := factory.GetSupportedFormats()

	if len(formats) != len(expected) {
		t.Fatalf("expected %d formats, got %v", len(expected), formats)
	}
	for i, format := range expected {
		if formats[i] != format {
			t.Errorf("expected format '%s' at %d, got '%s'", format, i, formats[i])
		}
	}
}

func TestFormatterFactory_GetFormatter(t *testing.T) {
	factory := NewFormatterFactory()

	tests := []struct {
		name        string
		formatType  string
		expectError bool
	}{
		{
			name:        "existing formatter",
			formatType:  "table",
			expectError: false,
		},
		{
			name:        "non-existing formatter",
			formatType:  "xml",
			expectError: true,
		},
		{
			name:        "empty format type",
			formatType:  "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, err := factory.GetFormatter(tt.formatType)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !errors.IsErrorType(err, errors.ConfigErrorType) {
					t.Errorf("expected CONFIG error, got %v", errors.GetErrorType(err))
				}
				if !strings.Contains(err.Error(), tt.formatType) && tt.formatType != "" {
					t.Errorf("expected error to name the format, got '%v'", err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if formatter == nil {
					t.Error("expected formatter but got nil")
				}
			}
		})
	}
}

func TestFormatterFactory_GetFormatterSuggestsFormats(t *testing.T) {
	factory := NewFormatterFactory()

	_, err := factory.GetFormatter("xml")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	pipelineErr, ok := err.(*errors.PipelineError)
	if !ok {
		t.Fatalf("expected PipelineError, got %T", err)
	}
	if len(pipelineErr.Suggestions) == 0 || !strings.Contains(pipelineErr.Suggestions[0], "table") {
		t.Errorf("expected suggestion listing formats, got %v", pipelineErr.Suggestions)
	}
}

func TestFormatterFactory_RegisterFormatter(t *testing.T) {
	factory := NewFormatterFactory()
	factory.RegisterFormatter(&stubFormatter{})

	formatter, err := factory.GetFormatter("stub")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if formatter.FormatType() != "stub" {
		t.Errorf("expected registered formatter, got '%s'", formatter.FormatType())
	}
}

type stubFormatter struct{}

func (f *stubFormatter) Format(report *models.CostReport) (string, error) {
	return "stub output", nil
}

func (f *stubFormatter) FormatType() string {
	return "stub"
}

func TestFormatterFactory_FormatReport(t *testing.T) {
	factory := NewFormatterFactory()
	report := createTestReport()

	tests := []struct {
		name       string
		formatType string
		contains   string
	}{
		{
			name:       "table format",
			formatType: "table",
			contains:   "Cloud Cost Optimization Report",
		},
		{
			name:       "json format",
			formatType: "json",
			contains:   `"project_name": "Ecommerce Platform"`,
		},
		{
			name:       "csv format",
			formatType: "csv",
			contains:   "TOTAL",
		},
		{
			name:       "yaml format",
			formatType: "yaml",
			contains:   "project_name: Ecommerce Platform",
		},
		{
			name:       "text format",
			formatType: "text",
			contains:   "CLOUD COST OPTIMIZATION REPORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := factory.FormatReport(report, tt.formatType)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(result, tt.contains) {
				t.Errorf("expected output to contain '%s'", tt.contains)
			}
		})
	}
}

func TestFormatterFactory_WriteFormattedReport(t *testing.T) {
	factory := NewFormatterFactory()
	report := createTestReport()

	var buffer bytes.Buffer
	if err := factory.WriteFormattedReport(&buffer, report, "table"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buffer.String(), "Project: Ecommerce Platform") {
		t.Error("expected formatted report in writer")
	}

	if err := factory.WriteFormattedReport(&buffer, report, "bogus"); err == nil {
		t.Error("expected error for unknown format")
	}
}
