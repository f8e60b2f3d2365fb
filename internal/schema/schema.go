// Package schema turns extracted model output into validated domain
// values. Parsing is strict about shape but forgiving about noise:
// missing profile fields are repaired with defaults, individual bad
// records are skipped, and numbers arriving as strings are coerced.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"scrooge/internal/errors"
	"scrooge/internal/extract"
	"scrooge/internal/models"
)

// Repair default for profiles the model returned incomplete
const defaultProfileName = "Cloud Project"

// ParseProfile turns raw model output into a validated project profile.
// The original description fills the gaps the model left. A budget that
// cannot be read as a number is an error, because every later stage
// keys off it.
func ParseProfile(raw string, description string) (*models.ProjectProfile, error) {
	extracted := extract.FromText(raw)

	var loose map[string]interface{}
	if err := json.Unmarshal([]byte(extracted), &loose); err != nil {
		return nil, errors.ParseErrorWithCause("profile output is not a JSON object", err).
			WithContext("raw", errors.Snippet(raw, 500)).
			WithContext("extracted", errors.Snippet(extracted, 500))
	}

	profile := &models.ProjectProfile{
		Name:                      defaultProfileName,
		BudgetINRPerMonth:         models.DefaultBudgetINR,
		Description:               truncate(description, 100),
		NonFunctionalRequirements: []string{},
	}

	if name, ok := loose["name"].(string); ok && name != "" {
		profile.Name = name
	}
	if rawBudget, ok := loose["budget_inr_per_month"]; ok {
		budget, err := coerceNumber(rawBudget)
		if err != nil {
			return nil, errors.ParseErrorf("profile budget is not numeric: %v", rawBudget).
				WithContext("extracted", errors.Snippet(extracted, 500))
		}
		profile.BudgetINRPerMonth = budget
	}
	if desc, ok := loose["description"].(string); ok && desc != "" {
		profile.Description = desc
	}
	if stack, ok := loose["tech_stack"].(map[string]interface{}); ok {
		profile.TechStack = techStackFromMap(stack)
	}
	if rawReqs, ok := loose["non_functional_requirements"]; ok {
		profile.NonFunctionalRequirements = coerceStringList(rawReqs)
	}

	profile.TechStack.Normalize()

	if err := profile.Validate(); err != nil {
		return nil, errors.ValidationErrorWithCause("extracted profile failed validation", err).
			WithContext("extracted", errors.Snippet(extracted, 500))
	}
	return profile, nil
}

// ParseBillingRecords turns raw model output into validated billing
// records. Individual bad records are skipped and reported; the whole
// batch fails when fewer than models.MinBillingRecords survive, and is
// truncated when more than models.MaxBillingRecords do.
func ParseBillingRecords(raw string) ([]models.BillingRecord, []string, error) {
	extracted := extract.FromText(raw)

	var loose []map[string]interface{}
	if err := json.Unmarshal([]byte(extracted), &loose); err != nil {
		var probe interface{}
		if probeErr := json.Unmarshal([]byte(extracted), &probe); probeErr != nil {
			return nil, nil, errors.ParseErrorWithCause("billing output is not valid JSON", probeErr).
				WithContext("raw", errors.Snippet(raw, 500)).
				WithContext("extracted", errors.Snippet(extracted, 500))
		}
		return nil, nil, errors.ValidationError("billing output is not a JSON array of records").
			WithContext("extracted", errors.Snippet(extracted, 500))
	}

	if len(loose) < models.MinBillingRecords {
		return nil, nil, errors.ValidationErrorf("generated only %d records, need at least %d",
			len(loose), models.MinBillingRecords)
	}

	var records []models.BillingRecord
	var skipped []string
	for idx, item := range loose {
		record, err := buildBillingRecord(item)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("record %d: %v", idx, err))
			continue
		}
		records = append(records, record)
	}

	if len(records) < models.MinBillingRecords {
		return nil, skipped, errors.ValidationErrorf("only %d valid records after validation, need at least %d",
			len(records), models.MinBillingRecords).
			WithContext("skipped", len(skipped))
	}
	if len(records) > models.MaxBillingRecords {
		records = records[:models.MaxBillingRecords]
	}

	return records, skipped, nil
}

var billingStringFields = []string{
	"month", "service", "resource_id", "region", "usage_type", "unit", "desc",
}

func buildBillingRecord(item map[string]interface{}) (models.BillingRecord, error) {
	values := make(map[string]string, len(billingStringFields))
	for _, field := range billingStringFields {
		value, ok := item[field]
		if !ok {
			return models.BillingRecord{}, fmt.Errorf("missing field: %s", field)
		}
		s, ok := value.(string)
		if !ok {
			return models.BillingRecord{}, fmt.Errorf("field %s is not a string", field)
		}
		values[field] = s
	}

	record := models.BillingRecord{
		Month:      values["month"],
		Service:    values["service"],
		ResourceID: values["resource_id"],
		Region:     values["region"],
		UsageType:  values["usage_type"],
		Unit:       values["unit"],
		Desc:       values["desc"],
	}

	rawQuantity, ok := item["usage_quantity"]
	if !ok {
		return models.BillingRecord{}, fmt.Errorf("missing field: usage_quantity")
	}
	quantity, err := coerceNumber(rawQuantity)
	if err != nil {
		return models.BillingRecord{}, fmt.Errorf("invalid usage_quantity: %v", rawQuantity)
	}
	record.UsageQuantity = quantity

	rawCost, ok := item["cost_inr"]
	if !ok {
		return models.BillingRecord{}, fmt.Errorf("missing field: cost_inr")
	}
	cost, err := coerceNumber(rawCost)
	if err != nil {
		return models.BillingRecord{}, fmt.Errorf("invalid cost_inr: %v", rawCost)
	}
	record.CostINR = cost

	if err := record.Validate(); err != nil {
		return models.BillingRecord{}, err
	}
	return record, nil
}

// ParseRecommendations pulls the recommendations out of the model's
// report object. The model echoes back analysis and summary sections
// too; both are discarded because the pipeline recomputes them from
// validated data. Too few recommendations is the caller's call to
// report, not an error.
func ParseRecommendations(raw string) ([]models.Recommendation, []string, error) {
	extracted := extract.FromText(raw)

	var loose map[string]interface{}
	if err := json.Unmarshal([]byte(extracted), &loose); err != nil {
		return nil, nil, errors.ParseErrorWithCause("analysis output is not a JSON object", err).
			WithContext("raw", errors.Snippet(raw, 500)).
			WithContext("extracted", errors.Snippet(extracted, 500))
	}

	rawRecs, ok := loose["recommendations"]
	if !ok {
		return nil, nil, errors.ValidationError("analysis output is missing the recommendations array").
			WithContext("extracted", errors.Snippet(extracted, 500))
	}
	items, ok := rawRecs.([]interface{})
	if !ok {
		return nil, nil, errors.ValidationError("recommendations is not an array").
			WithContext("extracted", errors.Snippet(extracted, 500))
	}

	var recs []models.Recommendation
	var skipped []string
	for idx, rawItem := range items {
		item, ok := rawItem.(map[string]interface{})
		if !ok {
			skipped = append(skipped, fmt.Sprintf("recommendation %d: not an object", idx+1))
			continue
		}
		rec, err := buildRecommendation(item)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("recommendation %d: %v", idx+1, err))
			continue
		}
		recs = append(recs, rec)
	}

	return recs, skipped, nil
}

var recommendationStringFields = []string{
	"title", "service", "recommendation_type", "description",
	"implementation_effort", "risk_level",
}

func buildRecommendation(item map[string]interface{}) (models.Recommendation, error) {
	for _, field := range []string{
		"title", "service", "current_cost", "potential_savings",
		"recommendation_type", "description", "implementation_effort",
		"risk_level", "steps", "cloud_providers",
	} {
		if _, ok := item[field]; !ok {
			return models.Recommendation{}, fmt.Errorf("missing field: %s", field)
		}
	}

	values := make(map[string]string, len(recommendationStringFields))
	for _, field := range recommendationStringFields {
		s, ok := item[field].(string)
		if !ok {
			return models.Recommendation{}, fmt.Errorf("field %s is not a string", field)
		}
		values[field] = s
	}

	currentCost, err := coerceNumber(item["current_cost"])
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("invalid current_cost: %v", item["current_cost"])
	}
	savings, err := coerceNumber(item["potential_savings"])
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("invalid potential_savings: %v", item["potential_savings"])
	}

	rec := models.Recommendation{
		Title:                values["title"],
		Service:              values["service"],
		CurrentCost:          currentCost,
		PotentialSavings:     savings,
		RecommendationType:   values["recommendation_type"],
		Description:          values["description"],
		ImplementationEffort: values["implementation_effort"],
		RiskLevel:            values["risk_level"],
		Steps:                coerceStringList(item["steps"]),
		CloudProviders:       coerceStringList(item["cloud_providers"]),
	}

	if err := rec.Validate(); err != nil {
		return models.Recommendation{}, err
	}
	return rec, nil
}

// coerceNumber accepts JSON numbers and numeric strings, stripping
// thousands separators the model likes to add ("8,000")
func coerceNumber(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("not a number: %v", value)
	}
}

// coerceStringList accepts an array, wraps a bare scalar into a
// one-element list, and treats null as empty
func coerceStringList(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprintf("%v", item))
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

func techStackFromMap(stack map[string]interface{}) models.TechStack {
	slot := func(key string) *string {
		if s, ok := stack[key].(string); ok {
			return &s
		}
		return nil
	}
	return models.TechStack{
		Frontend: slot("frontend"),
		Backend:  slot("backend"),
		Database: slot("database"),
		Proxy:    slot("proxy"),
		Hosting:  slot("hosting"),
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
