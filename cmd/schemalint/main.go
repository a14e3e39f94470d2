package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/schemalint/schemalint/internal/config"
	"github.com/schemalint/schemalint/internal/database"
	"github.com/schemalint/schemalint/internal/lint"
	"github.com/schemalint/schemalint/internal/schema"
	"github.com/schemalint/schemalint/internal/ui/report"
	"github.com/schemalint/schemalint/pkg/logger"
)

// errViolationsFound signals a completed run whose schema failed
// validation, so main can exit 1 instead of 2.
var errViolationsFound = errors.New("schema has violations")

var rootCmd = &cobra.Command{
	Use:   "schemalint",
	Short: "Best-practice linter for relational database schemas",
	Long: `schemalint validates a database schema against configurable best-practice
rules the database engine itself does not enforce: naming conventions,
structural soundness of table-extension hierarchies, and foreign key /
index hygiene. Schemas are read from a YAML document or a live
PostgreSQL database.`,
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint a YAML schema document",
	RunE:  runLint,
}

var lintDbCmd = &cobra.Command{
	Use:   "lint-db",
	Short: "Extract the schema from a live PostgreSQL database and lint it",
	RunE:  runLintDb,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the registered rule catalog",
	RunE:  runRules,
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse lint results interactively",
	RunE:  runExplore,
}

var (
	schemaPath   string
	configPath   string
	outputFormat string
	verbose      bool
)

func init() {
	lintCmd.Flags().StringVar(&schemaPath, "schema", "", "Path to the YAML schema document")
	lintCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration file")
	lintCmd.Flags().StringVar(&outputFormat, "output", "text", "Output format: text or yaml")
	lintCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	lintCmd.MarkFlagRequired("schema")

	lintDbCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration file")
	lintDbCmd.Flags().StringVar(&outputFormat, "output", "text", "Output format: text or yaml")
	lintDbCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	lintDbCmd.MarkFlagRequired("config")

	exploreCmd.Flags().StringVar(&schemaPath, "schema", "", "Path to the YAML schema document")
	exploreCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration file")
	exploreCmd.MarkFlagRequired("schema")

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(lintDbCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(exploreCmd)

	cobra.OnInitialize(func() {
		rootCmd.SilenceUsage = true
		rootCmd.SilenceErrors = true
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errViolationsFound) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// loadOptions maps the rules section of the config file onto constrainer
// options. A missing config path yields the stock catalog.
func loadOptions(path string) (lint.Options, *config.Config, error) {
	if path == "" {
		return lint.Options{}, nil, nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return lint.Options{}, nil, fmt.Errorf("cannot load config: %w", err)
	}

	opts := lint.Options{
		ForbiddenExtensionColumns: cfg.Rules.ForbiddenExtensionColumns,
	}
	if len(cfg.Rules.Disabled) > 0 {
		// Resolve the configured names against the catalog so disabling
		// is case-insensitive and canonical names reach the constrainer.
		for _, info := range lint.NewDefault().Rules() {
			if cfg.IsRuleDisabled(info.Name) {
				opts.Disabled = append(opts.Disabled, info.Name)
			}
		}
	}
	if len(cfg.Rules.TypeEquivalences) > 0 {
		eq := lint.DefaultTypeEquivalence()
		for _, class := range cfg.Rules.TypeEquivalences {
			eq.AddClass(class...)
		}
		opts.TypeEquivalence = eq
	}
	return opts, cfg, nil
}

func runLint(cmd *cobra.Command, args []string) error {
	opts, _, err := loadOptions(configPath)
	if err != nil {
		return err
	}

	s, err := schema.LoadFile(schemaPath)
	if err != nil {
		return err
	}

	result := lint.NewWithOptions(opts).ValidateSchema(s)
	return emitResult(s, result)
}

func runLintDb(cmd *cobra.Command, args []string) error {
	opts, cfg, err := loadOptions(configPath)
	if err != nil {
		return err
	}

	log := logger.NewLogger(verbose)

	conn, err := database.NewConnection(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	s, err := schema.NewExtractor(conn, log).Extract(cfg.Database.Schema)
	if err != nil {
		return err
	}

	result := lint.NewWithOptions(opts).ValidateSchema(s)
	return emitResult(s, result)
}

func emitResult(s *schema.Schema, result lint.Result) error {
	switch outputFormat {
	case "yaml":
		out, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("cannot encode result: %w", err)
		}
		fmt.Print(string(out))
	case "text":
		for _, v := range result.Violations {
			fmt.Println(v.String())
		}
		if result.Valid() {
			fmt.Printf("schema %s: OK (%d tables)\n", s.Name, len(s.Tables))
		} else {
			fmt.Printf("schema %s: %d violations\n", s.Name, len(result.Violations))
		}
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}

	if !result.Valid() {
		return errViolationsFound
	}
	return nil
}

func runRules(cmd *cobra.Command, args []string) error {
	for _, info := range lint.NewDefault().Rules() {
		fmt.Printf("%-38s %-12s %s\n", info.Name, info.Kind, info.Doc)
	}
	return nil
}

func runExplore(cmd *cobra.Command, args []string) error {
	opts, _, err := loadOptions(configPath)
	if err != nil {
		return err
	}

	s, err := schema.LoadFile(schemaPath)
	if err != nil {
		return err
	}

	result := lint.NewWithOptions(opts).ValidateSchema(s)
	return report.Run(s, result)
}
