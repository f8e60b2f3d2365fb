// Package prompt builds the model prompts for each pipeline stage.
// The wording is deliberately rigid: small changes measurably affect
// how often the model returns parseable JSON.
package prompt

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"scrooge/internal/models"
)

// Token limits per stage, sized to the largest expected response
const (
	ProfileMaxTokens  = 1500
	BillingMaxTokens  = 3500
	AnalysisMaxTokens = 4500
)

const profileTemplate = `Extract project information and return ONLY a JSON object:

Project Description: %s

Return this exact JSON structure:
{
  "name": "project name",
  "budget_inr_per_month": 5000,
  "description": "brief summary",
  "tech_stack": {
    "frontend": "react or null",
    "backend": "nodejs or null",
    "database": "mongodb or null",
    "proxy": "nginx or null",
    "hosting": "aws or null"
  },
  "non_functional_requirements": ["scalability", "availability"]
}

Rules:
- Extract budget in INR (estimate if not specified: small=3000, medium=8000, large=20000)
- List all technologies mentioned
- Include requirements like scalability, high availability, security
- Return ONLY valid JSON, no explanations

JSON:`

// Profile builds the extraction prompt for a free-form project description.
func Profile(description string) string {
	return fmt.Sprintf(profileTemplate, description)
}

const billingTemplate = `You are a cloud billing expert. Generate realistic monthly billing records for this project.

Project Details:
- Name: %s
- Monthly Budget: ₹%v
- Primary Cloud Provider: %s
- Tech Stack:
%s

Your task: Generate 12-20 billing records that represent one month of cloud usage.

Requirements:
1. Total cost should be between %v and %v INR (can slightly exceed budget)
2. Include diverse cloud services based on tech stack:
   - COMPUTE: EC2/Virtual Machines (for web servers, API servers, workers)
   - DATABASE: RDS, MongoDB, managed databases
   - STORAGE: S3, Blob Storage, Cloud Storage (for files, backups, static assets)
   - NETWORKING: Load Balancers, CloudFront/CDN, VPC, Data Transfer
   - MONITORING: CloudWatch, Azure Monitor, Stackdriver
   - OTHER: Lambda/Functions, SES/Email, Route53/DNS, WAF, Backup services

3. Each record MUST have these exact fields:
   - month: "%s" (current month)
   - service: Service name (EC2, RDS, S3, etc.)
   - resource_id: Unique identifier (e.g., "i-web-server-01", "db-mongo-prod")
   - region: Cloud region (e.g., "ap-south-1" for Mumbai, "us-east-1", "westus2")
   - usage_type: Instance type or usage category
   - usage_quantity: Number (hours for compute, GB for storage, requests for functions)
   - unit: "hours", "GB", "requests", "GB-month", etc.
   - cost_inr: Cost in Indian Rupees (numeric)
   - desc: Brief description of what this resource does

4. Make it realistic:
   - Web/API servers run 24/7 (720 hours/month)
   - Databases run continuously
   - Storage accumulates over time
   - Include load balancer, CDN for production apps
   - Add monitoring and backup services
   - Use appropriate Indian regions when possible

5. Cost distribution (approximate):
   - Compute: 35-45%%
   - Database: 20-30%%
   - Storage: 10-15%%
   - Networking: 10-15%%
   - Monitoring/Other: 5-10%%

Example format:
[
  {
    "month": "%s",
    "service": "EC2",
    "resource_id": "i-web-server-01",
    "region": "ap-south-1",
    "usage_type": "t3.medium Linux/UNIX",
    "usage_quantity": 720,
    "unit": "hours",
    "cost_inr": 1200,
    "desc": "Primary web server hosting React frontend"
  },
  {
    "month": "%s",
    "service": "RDS",
    "resource_id": "db-mongodb-prod",
    "region": "ap-south-1",
    "usage_type": "db.t3.small MongoDB",
    "usage_quantity": 720,
    "unit": "hours",
    "cost_inr": 900,
    "desc": "Production MongoDB database"
  },
  {
    "month": "%s",
    "service": "S3",
    "resource_id": "bucket-static-assets",
    "region": "ap-south-1",
    "usage_type": "Standard Storage",
    "usage_quantity": 50,
    "unit": "GB-month",
    "cost_inr": 150,
    "desc": "Static files and user uploads"
  }
]

CRITICAL: Return ONLY a valid JSON array. No explanations, no markdown, no extra text.

JSON Array:`

// Billing builds the synthesis prompt for one month of billing records.
// The month is passed in so the builder stays deterministic.
func Billing(profile *models.ProjectProfile, month string) string {
	budget := profile.BudgetINRPerMonth
	provider := ProviderForHosting(profile.TechStack.Hosting)

	return fmt.Sprintf(billingTemplate,
		profile.Name,
		budget,
		provider,
		techStackJSON(&profile.TechStack),
		round2(budget*0.9),
		round2(budget*1.3),
		month,
		month,
		month,
		month,
	)
}

const analysisTemplate = `You are a cloud cost optimization expert. Analyze costs and generate 6-10 actionable recommendations.

PROJECT INFORMATION:
- Name: %s
- Budget: ₹%v/month
- Actual Cost: ₹%v/month
- Variance: ₹%v (%s)

TECH STACK:
%s

COST BREAKDOWN:
%s

HIGH COST SERVICES:
%s

YOUR TASK:
Generate 6-10 cost optimization recommendations that include:

1. FREE TIER OPTIONS: Services that have free tiers (AWS/Azure/GCP)
2. OPEN SOURCE: Free alternatives to paid services (self-hosted MongoDB, PostgreSQL, etc.)
3. CLOUD ALTERNATIVES: Cheaper providers (DigitalOcean, Linode vs AWS)
4. RIGHT-SIZING: Reduce instance sizes or optimize configurations
5. RESERVED INSTANCES: Long-term commitments for savings
6. ARCHITECTURE: Serverless, caching, CDN optimizations

RECOMMENDATION TYPES TO USE:
- free_tier
- open_source
- alternative_provider
- optimization
- right_sizing
- reserved_instance
- cost_effective_storage
- serverless

Each recommendation must have:
{
  "title": "Clear, actionable title",
  "service": "Service being optimized (EC2, RDS, S3, etc.)",
  "current_cost": numeric_value,
  "potential_savings": numeric_value,
  "recommendation_type": "one of the types above",
  "description": "2-3 sentence explanation of the optimization",
  "implementation_effort": "low/medium/high",
  "risk_level": "low/medium/high",
  "steps": ["step 1", "step 2", "step 3", "..."],
  "cloud_providers": ["AWS", "Azure", "GCP", "DigitalOcean", "Self-hosted"]
}

RULES:
1. potential_savings should be realistic (10-70%% of current_cost)
2. Include at least 2 open-source alternatives
3. Include at least 2 multi-cloud options
4. Focus on HIGH COST services first
5. Be specific with implementation steps (3-5 steps per recommendation)
6. Total potential savings should be significant (30-80%% of total cost)

OUTPUT FORMAT:
Return ONLY a JSON object with this EXACT structure:
{
  "project_name": "%s",
  "analysis": {
    "total_monthly_cost": %v,
    "budget": %v,
    "budget_variance": %v,
    "service_costs": %s,
    "high_cost_services": %s,
    "is_over_budget": %t
  },
  "recommendations": [
    {
      "title": "...",
      "service": "...",
      "current_cost": 0,
      "potential_savings": 0,
      "recommendation_type": "...",
      "description": "...",
      "implementation_effort": "...",
      "risk_level": "...",
      "steps": ["...", "...", "..."],
      "cloud_providers": ["..."]
    }
  ],
  "summary": {
    "total_potential_savings": 0,
    "savings_percentage": 0,
    "recommendations_count": 0,
    "high_impact_recommendations": 0
  }
}

CRITICAL: Return ONLY the JSON object. No markdown, no explanations, no extra text.

JSON:`

// Analysis builds the recommendation prompt from the computed cost
// analysis. The analysis numbers are embedded twice: once as context
// and once inside the required output skeleton.
func Analysis(profile *models.ProjectProfile, analysis *models.CostAnalysis) string {
	variance := analysis.BudgetVariance
	overUnder := "UNDER BUDGET"
	if variance > 0 {
		overUnder = "OVER BUDGET"
	}

	serviceCosts := costsJSON(analysis.ServiceCosts)
	highCosts := costsJSON(analysis.HighCostServices)

	return fmt.Sprintf(analysisTemplate,
		profile.Name,
		analysis.Budget,
		analysis.TotalMonthlyCost,
		variance,
		overUnder,
		techStackJSON(&profile.TechStack),
		serviceCosts,
		highCosts,
		profile.Name,
		analysis.TotalMonthlyCost,
		analysis.Budget,
		variance,
		serviceCosts,
		highCosts,
		analysis.IsOverBudget,
	)
}

// ProviderForHosting maps the hosting slot to the provider named in
// billing prompts. Unknown or missing hosting defaults to AWS.
func ProviderForHosting(hosting *string) string {
	if hosting == nil {
		return "AWS"
	}
	h := strings.ToLower(*hosting)
	switch {
	case strings.Contains(h, "aws"), h == "amazon":
		return "AWS"
	case strings.Contains(h, "azure"), strings.Contains(h, "microsoft"):
		return "Azure"
	case strings.Contains(h, "gcp"), strings.Contains(h, "google"):
		return "GCP"
	default:
		return "AWS"
	}
}

func techStackJSON(stack *models.TechStack) string {
	b, _ := json.MarshalIndent(stack, "", "  ")
	return string(b)
}

func costsJSON(costs map[string]float64) string {
	if costs == nil {
		costs = map[string]float64{}
	}
	b, _ := json.MarshalIndent(costs, "", "  ")
	return string(b)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
