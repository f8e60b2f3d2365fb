package models

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Batch policy thresholds shared by the validation and pipeline layers.
const (
	// MinBillingRecords is the smallest surviving batch that still counts
	// as a plausible synthetic month
	MinBillingRecords = 12
	// MaxBillingRecords caps a synthetic month; extra records are dropped
	MaxBillingRecords = 20
	// MinRecommendations below this only warns, the report stays useful
	MinRecommendations = 6
	// HighImpactCostShare marks a recommendation as high impact when its
	// savings exceed this share of total monthly cost
	HighImpactCostShare = 0.10
	// DefaultBudgetINR stands in when no monthly budget can be recovered
	// from the model output or the description
	DefaultBudgetINR = 5000.0
)

// RecommendationTypes is the fixed vocabulary the analysis prompt asks the
// model to tag recommendations with. Kept advisory at validation time:
// an off-vocabulary tag is prompt drift worth seeing, not a reason to drop
// an otherwise useful recommendation.
var RecommendationTypes = []string{
	"free_tier",
	"open_source",
	"alternative_provider",
	"optimization",
	"right_sizing",
	"reserved_instance",
	"cost_effective_storage",
	"serverless",
}

// EffortLevels are the expected implementation_effort and risk_level values
var EffortLevels = []string{"low", "medium", "high"}

// TechStack is the fixed five-slot description of a project's technology
// choices. Every slot is always serialized; nil means the description did
// not mention that layer.
type TechStack struct {
	Frontend *string `json:"frontend" yaml:"frontend"`
	Backend  *string `json:"backend" yaml:"backend"`
	Database *string `json:"database" yaml:"database"`
	Proxy    *string `json:"proxy" yaml:"proxy"`
	Hosting  *string `json:"hosting" yaml:"hosting"`
}

// Normalize lowercases every populated slot in place
func (t *TechStack) Normalize() {
	for _, slot := range []**string{&t.Frontend, &t.Backend, &t.Database, &t.Proxy, &t.Hosting} {
		if *slot != nil {
			v := strings.ToLower(**slot)
			*slot = &v
		}
	}
}

// Slots returns the stack in its fixed display order
func (t *TechStack) Slots() []StackSlot {
	return []StackSlot{
		{Name: "frontend", Value: lo.FromPtr(t.Frontend)},
		{Name: "backend", Value: lo.FromPtr(t.Backend)},
		{Name: "database", Value: lo.FromPtr(t.Database)},
		{Name: "proxy", Value: lo.FromPtr(t.Proxy)},
		{Name: "hosting", Value: lo.FromPtr(t.Hosting)},
	}
}

// StackSlot is a named tech stack entry, empty Value when unpopulated
type StackSlot struct {
	Name  string
	Value string
}

// ProjectProfile is the structured seed every downstream stage works from.
// Immutable once produced by profile extraction.
type ProjectProfile struct {
	Name                      string    `json:"name" yaml:"name"`
	BudgetINRPerMonth         float64   `json:"budget_inr_per_month" yaml:"budget_inr_per_month"`
	Description               string    `json:"description" yaml:"description"`
	TechStack                 TechStack `json:"tech_stack" yaml:"tech_stack"`
	NonFunctionalRequirements []string  `json:"non_functional_requirements" yaml:"non_functional_requirements"`
}

// Validate performs basic validation on ProjectProfile
func (p *ProjectProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if p.BudgetINRPerMonth <= 0 {
		return fmt.Errorf("monthly budget must be positive, got %v", p.BudgetINRPerMonth)
	}
	return nil
}

// BillingRecord is one line of a synthetic monthly cloud bill.
// Records are created once per analysis run, never mutated, only aggregated.
type BillingRecord struct {
	Month         string  `json:"month" yaml:"month"`
	Service       string  `json:"service" yaml:"service"`
	ResourceID    string  `json:"resource_id" yaml:"resource_id"`
	Region        string  `json:"region" yaml:"region"`
	UsageType     string  `json:"usage_type" yaml:"usage_type"`
	UsageQuantity float64 `json:"usage_quantity" yaml:"usage_quantity"`
	Unit          string  `json:"unit" yaml:"unit"`
	CostINR       float64 `json:"cost_inr" yaml:"cost_inr"`
	Desc          string  `json:"desc" yaml:"desc"`
}

// Validate checks the numeric invariants a surviving record must satisfy
func (r *BillingRecord) Validate() error {
	if r.CostINR < 0 {
		return fmt.Errorf("cost_inr must not be negative, got %v", r.CostINR)
	}
	if r.UsageQuantity <= 0 {
		return fmt.Errorf("usage_quantity must be positive, got %v", r.UsageQuantity)
	}
	return nil
}

// Recommendation is a single cost-optimization suggestion from the analysis
type Recommendation struct {
	Title                string   `json:"title" yaml:"title"`
	Service              string   `json:"service" yaml:"service"`
	CurrentCost          float64  `json:"current_cost" yaml:"current_cost"`
	PotentialSavings     float64  `json:"potential_savings" yaml:"potential_savings"`
	RecommendationType   string   `json:"recommendation_type" yaml:"recommendation_type"`
	Description          string   `json:"description" yaml:"description"`
	ImplementationEffort string   `json:"implementation_effort" yaml:"implementation_effort"`
	RiskLevel            string   `json:"risk_level" yaml:"risk_level"`
	Steps                []string `json:"steps" yaml:"steps"`
	CloudProviders       []string `json:"cloud_providers" yaml:"cloud_providers"`
}

// Validate checks the numeric invariants of a recommendation
func (r *Recommendation) Validate() error {
	if r.PotentialSavings < 0 {
		return fmt.Errorf("potential_savings must not be negative, got %v", r.PotentialSavings)
	}
	return nil
}

// CostAnalysis is the aggregate cost view of one synthetic month. It is
// always recomputed locally from validated billing records, never taken
// from model output.
type CostAnalysis struct {
	TotalMonthlyCost float64            `json:"total_monthly_cost" yaml:"total_monthly_cost"`
	Budget           float64            `json:"budget" yaml:"budget"`
	BudgetVariance   float64            `json:"budget_variance" yaml:"budget_variance"`
	IsOverBudget     bool               `json:"is_over_budget" yaml:"is_over_budget"`
	ServiceCosts     map[string]float64 `json:"service_costs" yaml:"service_costs"`
	HighCostServices map[string]float64 `json:"high_cost_services" yaml:"high_cost_services"`
}

// ReportSummary carries the recomputed aggregate numbers of a report
type ReportSummary struct {
	TotalPotentialSavings     float64 `json:"total_potential_savings" yaml:"total_potential_savings"`
	SavingsPercentage         float64 `json:"savings_percentage" yaml:"savings_percentage"`
	RecommendationsCount      int     `json:"recommendations_count" yaml:"recommendations_count"`
	HighImpactRecommendations int     `json:"high_impact_recommendations" yaml:"high_impact_recommendations"`
}

// CostReport is the final artifact of a complete analysis run. Assembled
// after recommendation validation; read-only thereafter.
type CostReport struct {
	ProjectName     string           `json:"project_name" yaml:"project_name"`
	Analysis        CostAnalysis     `json:"analysis" yaml:"analysis"`
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
	Summary         ReportSummary    `json:"summary" yaml:"summary"`
}

// ServiceCost is an ordered (name, cost) pair for breakdown listings
type ServiceCost struct {
	Name string
	Cost float64
}

// CostMetrics is a display-oriented aggregation over billing records
type CostMetrics struct {
	TotalCost    float64
	ServiceCosts map[string]float64
	RegionCosts  map[string]float64
	TopServices  []ServiceCost
	TopRegions   []ServiceCost
	RecordCount  int
}

// AnalyzeRecords computes the cost analysis block from validated billing
// records. Pure function: same records and budget, same analysis.
func AnalyzeRecords(records []BillingRecord, budget float64) CostAnalysis {
	totalCost := lo.SumBy(records, func(r BillingRecord) float64 { return r.CostINR })

	serviceCosts := make(map[string]float64)
	for _, record := range records {
		serviceCosts[record.Service] += record.CostINR
	}

	rounded := make(map[string]float64, len(serviceCosts))
	for service, cost := range serviceCosts {
		rounded[service] = round2(cost)
	}

	highCost := make(map[string]float64)
	for _, pair := range topCosts(serviceCosts, 3) {
		highCost[pair.Name] = round2(pair.Cost)
	}

	return CostAnalysis{
		TotalMonthlyCost: round2(totalCost),
		Budget:           round2(budget),
		BudgetVariance:   round2(totalCost - budget),
		IsOverBudget:     totalCost > budget,
		ServiceCosts:     rounded,
		HighCostServices: highCost,
	}
}

// SummarizeRecommendations recomputes the report summary from a validated
// recommendation set. High impact means savings strictly above
// HighImpactCostShare of the total monthly cost. Pure and idempotent:
// feeding an aggregated report's recommendations back in yields the same
// summary.
func SummarizeRecommendations(recs []Recommendation, totalCost float64) ReportSummary {
	totalSavings := lo.SumBy(recs, func(r Recommendation) float64 { return r.PotentialSavings })

	savingsPct := 0.0
	if totalCost > 0 {
		savingsPct = totalSavings / totalCost * 100
	}

	threshold := totalCost * HighImpactCostShare
	highImpact := lo.CountBy(recs, func(r Recommendation) bool {
		return r.PotentialSavings > threshold
	})

	return ReportSummary{
		TotalPotentialSavings:     round2(totalSavings),
		SavingsPercentage:         round2(savingsPct),
		RecommendationsCount:      len(recs),
		HighImpactRecommendations: highImpact,
	}
}

// ComputeCostMetrics aggregates billing records for breakdown display
func ComputeCostMetrics(records []BillingRecord) CostMetrics {
	metrics := CostMetrics{
		ServiceCosts: make(map[string]float64),
		RegionCosts:  make(map[string]float64),
		RecordCount:  len(records),
	}

	for _, record := range records {
		metrics.TotalCost += record.CostINR
		metrics.ServiceCosts[record.Service] += record.CostINR
		metrics.RegionCosts[record.Region] += record.CostINR
	}

	metrics.TotalCost = round2(metrics.TotalCost)
	metrics.TopServices = topCosts(metrics.ServiceCosts, 5)
	metrics.TopRegions = topCosts(metrics.RegionCosts, 3)

	return metrics
}

// SortedCosts flattens a cost map into pairs ordered cost descending,
// with name as the tie-break so the ordering is deterministic
func SortedCosts(costs map[string]float64) []ServiceCost {
	pairs := make([]ServiceCost, 0, len(costs))
	for name, cost := range costs {
		pairs = append(pairs, ServiceCost{Name: name, Cost: cost})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Cost != pairs[j].Cost {
			return pairs[i].Cost > pairs[j].Cost
		}
		return pairs[i].Name < pairs[j].Name
	})

	return pairs
}

func topCosts(costs map[string]float64, n int) []ServiceCost {
	pairs := SortedCosts(costs)
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
