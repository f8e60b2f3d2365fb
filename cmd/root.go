package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scrooge/internal/cache"
	"scrooge/internal/config"
	"scrooge/internal/console"
	"scrooge/internal/errors"
	"scrooge/internal/export"
	"scrooge/internal/interfaces"
	"scrooge/internal/llm"
	"scrooge/internal/models"
	"scrooge/internal/output"
	"scrooge/internal/pipeline"
	"scrooge/internal/schema"
	"scrooge/internal/storage"
	"scrooge/internal/version"
)

var (
	// Global flags
	outputFormat string
	dataDir      string
	configFile   string
	verbose      bool
	useCache     bool

	// Command flags
	description   string
	analyzeExport string
	exportFormat  string
	exportOut     string
	exportName    string

	// Root command
	rootCmd = &cobra.Command{
		Use:   "scrooge",
		Short: "AI-powered cloud cost optimizer",
		Long: `Scrooge analyzes a plain-text project description with a language model,
generates a synthetic month of cloud billing records against your budget, and
produces actionable cost optimization recommendations in Indian Rupees.`,
		Example: `  # Run the full analysis on a description file
  scrooge analyze project.txt

  # Run the full analysis from an inline description
  scrooge analyze --description "React app on AWS, budget 8000 rupees"

  # Inspect one stage at a time
  scrooge profile project.txt
  scrooge billing
  scrooge recommend

  # Work through the interactive menu
  scrooge menu`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Analyze command
	analyzeCmd = &cobra.Command{
		Use:   "analyze [description-file]",
		Short: "Run the complete cost analysis pipeline",
		Long: `Run all three pipeline stages: extract a project profile from the
description, generate a synthetic month of billing records, and produce cost
optimization recommendations. Each stage's artifact is saved to the data
directory so later commands can pick up where this one left off.

The description comes from the file argument, the --description flag, or the
previously saved description, in that order.`,
		Example: `  # Analyze a description file and print the report as a table
  scrooge analyze project.txt

  # Print the report as JSON
  scrooge analyze project.txt --output json

  # Analyze and also export a PDF
  scrooge analyze project.txt --export pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	// Profile command
	profileCmd = &cobra.Command{
		Use:   "profile [description-file]",
		Short: "Extract a project profile from a description",
		Long: `Run only the first pipeline stage: extract the project name, budget,
tech stack and non-functional requirements from a plain-text description.
The profile is saved for the billing and recommend commands.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runProfile,
	}

	// Billing command
	billingCmd = &cobra.Command{
		Use:   "billing",
		Short: "Generate synthetic billing records from the saved profile",
		Long: `Run only the second pipeline stage: generate a synthetic month of
cloud billing records matching the saved project profile. Requires a profile
saved by 'scrooge profile' or 'scrooge analyze'.`,
		RunE: runBilling,
	}

	// Recommend command
	recommendCmd = &cobra.Command{
		Use:   "recommend",
		Short: "Generate cost optimization recommendations",
		Long: `Run only the third pipeline stage: analyze the saved billing records
against the saved profile's budget and generate cost optimization
recommendations. Requires artifacts saved by the earlier stages.`,
		RunE: runRecommend,
	}

	// Validate command
	validateCmd = &cobra.Command{
		Use:   "validate [billing-file]",
		Short: "Validate a billing JSON file without calling the model",
		Long: `Validate a billing records JSON file against the record schema without
performing any model calls. Reports surviving and skipped records; the exit
code reflects whether the batch is usable.`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}

	// Export command
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export the saved report to a file",
		Long: `Export the most recently saved cost optimization report to a
timestamped file. Text, JSON, CSV, YAML and PDF formats are supported.`,
		Example: `  # Export the saved report as formatted text
  scrooge export

  # Export as PDF into a reports directory
  scrooge export --format pdf --out reports`,
		RunE: runExport,
	}

	// Version command
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version information for Scrooge.`,
		Run: func(cmd *cobra.Command, args []string) {
			if verbose {
				fmt.Println(version.GetFullVersionString())
			} else {
				fmt.Println(version.GetVersionString())
			}
		},
	}
)

func init() {
	// Add persistent flags to root command
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, csv, yaml, text)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for pipeline artifacts (default \"data\")")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file (.toml, .yaml or .json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with detailed information")
	rootCmd.PersistentFlags().BoolVar(&useCache, "cache", false, "Cache model completions for repeated identical runs")

	// Command flags
	analyzeCmd.Flags().StringVarP(&description, "description", "d", "", "Project description text")
	analyzeCmd.Flags().StringVar(&analyzeExport, "export", "", "Also export the report (text, json, csv, yaml, pdf)")
	profileCmd.Flags().StringVarP(&description, "description", "d", "", "Project description text")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "text", "Export format (text, json, csv, yaml, pdf)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (default: the data directory)")
	exportCmd.Flags().StringVar(&exportName, "name", "", "Base filename for the export")

	// Add subcommands
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(billingCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(versionCmd)

	// Set help template
	rootCmd.SetHelpTemplate(getHelpTemplate())
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// runAnalyze handles the analyze command
func runAnalyze(cmd *cobra.Command, args []string) error {
	settings, err := buildSettings()
	if err != nil {
		return err
	}
	store := storage.NewStore(settings.DataDir)

	desc, fromArtifact, err := resolveDescription(store, args)
	if err != nil {
		return err
	}
	if !fromArtifact {
		if _, err := store.SaveText(storage.DescriptionArtifact, desc); err != nil {
			return err
		}
	}

	client, err := newModelClient(settings, false)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(client, store, console.NewSink())
	report, err := runner.Run(context.Background(), desc)
	if err != nil {
		return err
	}

	fmt.Println()
	if err := printReport(report, outputFormat); err != nil {
		return err
	}

	if analyzeExport != "" {
		exporter := export.NewExporter()
		path, err := exporter.Export(report, analyzeExport, "", settings.DataDir)
		if err != nil {
			return err
		}
		fmt.Printf("\n📄 Report exported to: %s\n", path)
	}

	return nil
}

// runProfile handles the profile command
func runProfile(cmd *cobra.Command, args []string) error {
	settings, err := buildSettings()
	if err != nil {
		return err
	}
	store := storage.NewStore(settings.DataDir)

	desc, fromArtifact, err := resolveDescription(store, args)
	if err != nil {
		return err
	}
	if !fromArtifact {
		if _, err := store.SaveText(storage.DescriptionArtifact, desc); err != nil {
			return err
		}
	}

	client, err := newModelClient(settings, false)
	if err != nil {
		return err
	}

	extractor := pipeline.NewExtractor(client, console.NewSink())
	profile, err := extractor.Extract(context.Background(), desc)
	if err != nil {
		return err
	}

	path, err := store.SaveJSON(storage.ProfileArtifact, profile)
	if err != nil {
		return err
	}
	fmt.Printf("💾 Saved: %s\n\n", path)

	printProfile(profile)
	return nil
}

// runBilling handles the billing command
func runBilling(cmd *cobra.Command, args []string) error {
	settings, err := buildSettings()
	if err != nil {
		return err
	}
	store := storage.NewStore(settings.DataDir)

	var profile models.ProjectProfile
	if err := store.LoadJSON(storage.ProfileArtifact, &profile); err != nil {
		return err
	}

	client, err := newModelClient(settings, false)
	if err != nil {
		return err
	}

	synthesizer := pipeline.NewSynthesizer(client, console.NewSink())
	records, err := synthesizer.Generate(context.Background(), &profile)
	if err != nil {
		return err
	}

	path, err := store.SaveJSON(storage.BillingArtifact, records)
	if err != nil {
		return err
	}
	fmt.Printf("💾 Saved: %s\n\n", path)

	printBillingRecords(records)
	return nil
}

// runRecommend handles the recommend command
func runRecommend(cmd *cobra.Command, args []string) error {
	settings, err := buildSettings()
	if err != nil {
		return err
	}
	store := storage.NewStore(settings.DataDir)

	var profile models.ProjectProfile
	if err := store.LoadJSON(storage.ProfileArtifact, &profile); err != nil {
		return err
	}
	var records []models.BillingRecord
	if err := store.LoadJSON(storage.BillingArtifact, &records); err != nil {
		return err
	}

	client, err := newModelClient(settings, false)
	if err != nil {
		return err
	}

	analyzer := pipeline.NewAnalyzer(client, console.NewSink())
	report, err := analyzer.Analyze(context.Background(), &profile, records)
	if err != nil {
		return err
	}

	path, err := store.SaveJSON(storage.ReportArtifact, report)
	if err != nil {
		return err
	}
	fmt.Printf("💾 Saved: %s\n\n", path)

	return printReport(report, outputFormat)
}

// runValidate handles the validate command
func runValidate(cmd *cobra.Command, args []string) error {
	billingFile := args[0]

	fmt.Printf("🔍 Validating billing file: %s\n", billingFile)

	data, err := os.ReadFile(billingFile)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileErrorf("billing file %s not found", billingFile).
				WithContext("path", billingFile).
				WithSuggestion("Check the file path and ensure the file exists")
		}
		return errors.FileErrorWithCause("failed to read billing file", err).
			WithContext("path", billingFile)
	}

	records, skipped, err := schema.ParseBillingRecords(string(data))
	for _, reason := range skipped {
		fmt.Printf("⚠️  Skipped %s\n", reason)
	}
	if err != nil {
		fmt.Println("❌ Billing batch is not usable")
		return err
	}

	fmt.Printf("✅ %d valid records (%d skipped)\n", len(records), len(skipped))

	metrics := models.ComputeCostMetrics(records)
	fmt.Printf("💰 Total cost: ₹%s across %d services\n",
		output.FormatAmount(metrics.TotalCost), len(metrics.ServiceCosts))
	return nil
}

// runExport handles the export command
func runExport(cmd *cobra.Command, args []string) error {
	settings, err := buildSettings()
	if err != nil {
		return err
	}
	store := storage.NewStore(settings.DataDir)

	var report models.CostReport
	if err := store.LoadJSON(storage.ReportArtifact, &report); err != nil {
		return err
	}

	outDir := exportOut
	if outDir == "" {
		outDir = settings.DataDir
	}

	exporter := export.NewExporter()
	path, err := exporter.Export(&report, exportFormat, exportName, outDir)
	if err != nil {
		return err
	}

	fmt.Println("✅ Report exported successfully!")
	fmt.Printf("   File: %s\n", path)
	if info, err := os.Stat(path); err == nil {
		fmt.Printf("   Size: %d bytes\n", info.Size())
	}
	return nil
}

// Helper functions

// buildSettings resolves configuration from the environment, an optional
// configuration file, and command flags, highest priority last
func buildSettings() (*config.Settings, error) {
	settings := config.Load()

	if configFile != "" {
		if err := settings.ApplyFile(configFile); err != nil {
			return nil, err
		}
	}
	if dataDir != "" {
		settings.DataDir = dataDir
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// newModelClient builds the model client, wrapped with the completion
// cache for interactive sessions or when requested with --cache
func newModelClient(settings *config.Settings, interactive bool) (interfaces.ModelClient, error) {
	client, err := llm.NewClient(settings)
	if err != nil {
		return nil, err
	}

	if useCache || (interactive && settings.CacheEnabled) {
		return cache.NewCachedModelClient(client, cache.NewCompletionCache(settings.CacheTTL, 0)), nil
	}
	return client, nil
}

// resolveDescription finds the project description: the file argument,
// the --description flag, or the saved artifact, in that order. The
// second return value reports whether it came from the saved artifact.
func resolveDescription(store *storage.Store, args []string) (string, bool, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, errors.FileErrorf("description file %s not found", args[0]).
					WithContext("path", args[0]).
					WithSuggestion("Check the file path and ensure the file exists")
			}
			return "", false, errors.FileErrorWithCause("failed to read description file", err).
				WithContext("path", args[0])
		}
		return strings.TrimSpace(string(data)), false, nil
	}

	if description != "" {
		return strings.TrimSpace(description), false, nil
	}

	saved, err := store.LoadText(storage.DescriptionArtifact)
	if err != nil {
		return "", false, err
	}
	return saved, true, nil
}

func getHelpTemplate() string {
	return `{{.Long}}

Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}
