// Package main provides ticketctl, a terminal view of the SLA dashboard.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lorrc/ticket-metrics/internal/adapters/secondary/spreadsheet"
	"github.com/lorrc/ticket-metrics/internal/config"
	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
	"github.com/lorrc/ticket-metrics/internal/core/services"
	"github.com/lorrc/ticket-metrics/internal/infrastructure/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand shares once flags are parsed.
type app struct {
	cfg     *config.Config
	schemas config.Schemas
	logger  *slog.Logger

	slaFile        string
	indicatorsFile string
	schemaFile     string
	threshold      float64
	meanScope      string
	categories     []string
	priorities     []string
	statuses       []string
	verbose        bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "ticketctl",
		Short:         "Service-desk SLA metrics from the ticket spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.slaFile, "file", "", "ticket spreadsheet (default: $SLA_FILE)")
	flags.StringVar(&a.indicatorsFile, "indicators-file", "", "indicator workbook (default: $INDICATORS_FILE)")
	flags.StringVar(&a.schemaFile, "schema", "", "column schema file, .yaml or .toml (default: $SCHEMA_FILE)")
	flags.Float64Var(&a.threshold, "threshold", 0, "SLA threshold in hours (default: $SLA_THRESHOLD_HOURS)")
	flags.StringVar(&a.meanScope, "mean-scope", "", "reference mean scope: filtered or dataset")
	flags.StringArrayVar(&a.categories, "category", nil, "keep only these categories (repeatable)")
	flags.StringArrayVar(&a.priorities, "priority", nil, "keep only these priorities (repeatable)")
	flags.StringArrayVar(&a.statuses, "status", nil, "keep only these statuses (repeatable)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log degraded rows and other details")

	rootCmd.AddCommand(newSummaryCmd(a))
	rootCmd.AddCommand(newMonthlyCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newIndicatorsCmd(a))
	rootCmd.AddCommand(newImportCmd(a))

	return rootCmd
}

// setup reads the environment (and .env when present), then lets explicitly
// set flags win.
func (a *app) setup(cmd *cobra.Command) error {
	_ = godotenv.Load()
	a.cfg = config.FromEnv()

	flags := cmd.Flags()
	if flags.Changed("file") {
		a.cfg.Source.SLAFile = a.slaFile
	}
	if flags.Changed("indicators-file") {
		a.cfg.Source.IndicatorsFile = a.indicatorsFile
	}
	if flags.Changed("schema") {
		a.cfg.Source.SchemaFile = a.schemaFile
	}
	if flags.Changed("threshold") {
		a.cfg.SLA.ThresholdHours = a.threshold
	}
	if flags.Changed("mean-scope") {
		a.cfg.SLA.MeanScope = a.meanScope
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	level := "warn"
	if a.verbose {
		level = "debug"
	}
	a.logger = logging.NewLogger(logging.Config{
		Level:       level,
		Format:      "text",
		Output:      cmd.ErrOrStderr(),
		ServiceName: "ticketctl",
		Environment: a.cfg.App.Environment,
	})

	schemas, err := config.LoadSchemas(a.cfg.Source.SchemaFile)
	if err != nil {
		return err
	}
	a.schemas = schemas
	return nil
}

// ticketSource always reads the spreadsheet; the database is only an import
// target from here.
func (a *app) ticketSource() ports.TicketSource {
	path := a.cfg.Source.SLAFile
	return spreadsheet.NewFileTicketSource(filepath.Base(path), path, a.schemas.Tickets)
}

func (a *app) slaService() ports.SLAService {
	return services.NewSLAService(a.ticketSource(), nil, nil, services.SLAConfig{
		ThresholdHours: a.cfg.SLA.ThresholdHours,
		TargetPercent:  a.cfg.SLA.TargetPercent,
		MeanScope:      domain.MeanScope(a.cfg.SLA.MeanScope),
	}, a.logger)
}

// params turns the filter flags into overview parameters.
func (a *app) params() (ports.OverviewParams, error) {
	raw := map[string][]string{}
	add := func(field domain.FilterField, values []string) {
		if len(values) > 0 {
			raw[field.String()] = values
		}
	}
	add(domain.FieldCategory, a.categories)
	add(domain.FieldPriority, a.priorities)
	add(domain.FieldStatus, a.statuses)

	filter, err := domain.NewFilter(raw)
	if err != nil {
		return ports.OverviewParams{}, err
	}
	return ports.OverviewParams{Filter: filter}, nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
