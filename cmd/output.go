package cmd

import (
	"fmt"
	"strings"

	"scrooge/internal/models"
	"scrooge/internal/output"
)

// printProfile renders the extracted project profile
func printProfile(profile *models.ProjectProfile) {
	fmt.Println("📋 Project Profile")
	fmt.Println("------------------")
	fmt.Printf("Name:   %s\n", profile.Name)
	fmt.Printf("Budget: ₹%s/month\n", output.FormatAmount(profile.BudgetINRPerMonth))
	if profile.Description != "" {
		fmt.Printf("About:  %s\n", profile.Description)
	}

	fmt.Println("\n🛠️  Tech Stack")
	fmt.Println("-------------")
	for _, slot := range profile.TechStack.Slots() {
		value := slot.Value
		if value == "" {
			value = "-"
		}
		fmt.Printf("%-10s %s\n", slot.Name+":", value)
	}

	if len(profile.NonFunctionalRequirements) > 0 {
		fmt.Println("\n⚙️  Non-Functional Requirements")
		fmt.Println("------------------------------")
		for _, requirement := range profile.NonFunctionalRequirements {
			fmt.Printf("• %s\n", requirement)
		}
	}
}

// printBillingRecords renders the synthetic billing batch as a table
func printBillingRecords(records []models.BillingRecord) {
	metrics := models.ComputeCostMetrics(records)

	fmt.Println("Synthetic Billing Records")
	fmt.Println("=========================")
	fmt.Printf("Records: %d\n", metrics.RecordCount)
	fmt.Printf("Total:   ₹%s\n\n", output.FormatAmount(metrics.TotalCost))

	if len(records) == 0 {
		fmt.Println("No billing records generated.")
		return
	}

	// Record breakdown
	fmt.Println("📊 Record Breakdown")
	fmt.Println("-------------------")

	// Calculate column widths
	maxServiceWidth := 7  // "Service"
	maxResourceWidth := 8 // "Resource"
	maxRegionWidth := 6   // "Region"
	maxUsageWidth := 5    // "Usage"

	for _, record := range records {
		if len(record.Service) > maxServiceWidth {
			maxServiceWidth = len(record.Service)
		}
		if len(record.ResourceID) > maxResourceWidth {
			maxResourceWidth = len(record.ResourceID)
		}
		if len(record.Region) > maxRegionWidth {
			maxRegionWidth = len(record.Region)
		}
		if len(usageCell(record)) > maxUsageWidth {
			maxUsageWidth = len(usageCell(record))
		}
	}

	// Add padding
	maxServiceWidth += 2
	maxResourceWidth += 2
	maxRegionWidth += 2
	maxUsageWidth += 2

	// Print header
	headerFormat := fmt.Sprintf("%%-%ds %%-%ds %%-%ds %%-%ds %%12s\n",
		maxServiceWidth, maxResourceWidth, maxRegionWidth, maxUsageWidth)
	fmt.Printf(headerFormat, "Service", "Resource", "Region", "Usage", "Cost")

	// Print separator
	separator := strings.Repeat("-", maxServiceWidth+maxResourceWidth+maxRegionWidth+maxUsageWidth+16)
	fmt.Println(separator)

	// Print record rows
	rowFormat := fmt.Sprintf("%%-%ds %%-%ds %%-%ds %%-%ds ₹%%10.2f\n",
		maxServiceWidth, maxResourceWidth, maxRegionWidth, maxUsageWidth)

	for _, record := range records {
		fmt.Printf(rowFormat,
			record.Service,
			record.ResourceID,
			record.Region,
			usageCell(record),
			record.CostINR)
	}

	// Top services by spend
	fmt.Println("\n💸 Top Services")
	fmt.Println("---------------")
	for _, service := range metrics.TopServices {
		fmt.Printf("%-16s ₹%s\n", service.Name, output.FormatAmount(service.Cost))
	}

	// Show detailed information if verbose
	if verbose {
		fmt.Println("\n🔍 Detailed Information")
		fmt.Println("----------------------")

		for i, record := range records {
			fmt.Printf("\n%d. %s (%s)\n", i+1, record.ResourceID, record.Service)
			fmt.Printf("   Usage: %.2f %s of %s\n", record.UsageQuantity, record.Unit, record.UsageType)
			if record.Desc != "" {
				fmt.Printf("   %s\n", record.Desc)
			}
		}
	}
}

func usageCell(record models.BillingRecord) string {
	return fmt.Sprintf("%.1f %s", record.UsageQuantity, record.Unit)
}

// printReport renders the report in the requested output format.
// Only the table formatter has a verbose mode.
func printReport(report *models.CostReport, format string) error {
	factory := output.NewFormatterFactory()

	if format == "table" {
		formatter, err := factory.GetFormatter(format)
		if err != nil {
			return err
		}
		options := output.DefaultFormatOptions()
		options.Verbose = verbose
		rendered, err := formatter.(*output.TableFormatter).FormatWithOptions(report, options)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	}

	rendered, err := factory.FormatReport(report, format)
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}
