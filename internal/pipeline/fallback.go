package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"scrooge/internal/models"
)

// budgetPattern matches an amount directly followed by a currency word,
// as in "8000 rupees" or "5000 INR"
var budgetPattern = regexp.MustCompile(`(\d+)\s*(?:rupees|inr|rs)`)

// FallbackProfile builds a profile from description keywords alone. It
// backs profile extraction when the model cannot produce a usable
// profile, so it must always succeed. Detection is substring matching
// over the lowercased description, first match wins per stack slot.
func FallbackProfile(description string) *models.ProjectProfile {
	lower := strings.ToLower(description)

	var stack models.TechStack
	switch {
	case strings.Contains(lower, "react"):
		stack.Frontend = lo.ToPtr("react")
	case strings.Contains(lower, "angular"):
		stack.Frontend = lo.ToPtr("angular")
	case strings.Contains(lower, "vue"):
		stack.Frontend = lo.ToPtr("vue")
	}
	switch {
	case strings.Contains(lower, "node"):
		stack.Backend = lo.ToPtr("nodejs")
	case strings.Contains(lower, "python"), strings.Contains(lower, "django"):
		stack.Backend = lo.ToPtr("python")
	case strings.Contains(lower, "java"):
		stack.Backend = lo.ToPtr("java")
	}
	switch {
	case strings.Contains(lower, "mongo"):
		stack.Database = lo.ToPtr("mongodb")
	case strings.Contains(lower, "postgres"):
		stack.Database = lo.ToPtr("postgresql")
	case strings.Contains(lower, "mysql"):
		stack.Database = lo.ToPtr("mysql")
	}
	switch {
	case strings.Contains(lower, "nginx"):
		stack.Proxy = lo.ToPtr("nginx")
	case strings.Contains(lower, "apache"):
		stack.Proxy = lo.ToPtr("apache")
	}
	switch {
	case strings.Contains(lower, "aws"):
		stack.Hosting = lo.ToPtr("aws")
	case strings.Contains(lower, "azure"):
		stack.Hosting = lo.ToPtr("azure")
	case strings.Contains(lower, "gcp"), strings.Contains(lower, "google cloud"):
		stack.Hosting = lo.ToPtr("gcp")
	}

	budget := models.DefaultBudgetINR
	if strings.Contains(lower, "budget") {
		if m := budgetPattern.FindStringSubmatch(lower); m != nil {
			if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
				budget = amount
			}
		}
	}

	var requirements []string
	if strings.Contains(lower, "scalab") {
		requirements = append(requirements, "scalability")
	}
	if strings.Contains(lower, "availab") {
		requirements = append(requirements, "high availability")
	}
	if strings.Contains(lower, "security") {
		requirements = append(requirements, "security")
	}

	return &models.ProjectProfile{
		Name:                      "Cloud Application",
		BudgetINRPerMonth:         budget,
		Description:               truncate(description, 200),
		TechStack:                 stack,
		NonFunctionalRequirements: requirements,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
