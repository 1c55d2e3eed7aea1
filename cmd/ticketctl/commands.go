package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/lorrc/ticket-metrics/internal/adapters/primary/csvexport"
	"github.com/lorrc/ticket-metrics/internal/adapters/secondary/postgres"
	"github.com/lorrc/ticket-metrics/internal/adapters/secondary/spreadsheet"
	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/lorrc/ticket-metrics/internal/core/services"
)

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}

func percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Headline SLA numbers, mean by category and priority split",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := a.params()
			if err != nil {
				return err
			}
			overview, err := a.slaService().Overview(cmd.Context(), params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !overview.HasData {
				printf(out, "No tickets match the selection (%d in dataset).\n", overview.DatasetTotal)
				return nil
			}

			printf(out, "Tickets:        %d of %d\n", overview.Total, overview.DatasetTotal)
			printf(out, "Mean:           %sh\n", hours(overview.MeanHours))
			printf(out, "Within %sh:  %s\n", hours(overview.ThresholdHours), percent(overview.WithinSLA))
			printf(out, "P90:            %sh\n", hours(overview.P90Hours))
			if n := overview.Normalization; n.Degraded() > 0 {
				printf(out, "Unreadable elapsed values counted as 0h: %d\n", n.Degraded())
			}

			printf(out, "\nMean by category (reference %sh, %s)\n", hours(overview.ReferenceMean), overview.ReferenceScope)
			categories := newTable("Category", "Mean (h)", "Tickets")
			for _, c := range overview.CategoryMeans {
				categories.AddRow(c.Key, hours(c.MeanHours), strconv.Itoa(c.Count))
			}
			categories.Render(out)

			printf(out, "\nPriority distribution\n")
			priorities := newTable("Priority", "Tickets", "Share")
			for _, p := range overview.PriorityDistribution {
				priorities.AddRow(p.Key, strconv.Itoa(p.Count), percent(p.Share))
			}
			priorities.Render(out)
			return nil
		},
	}
}

func newMonthlyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "monthly",
		Short: "Mean elapsed hours per month of request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := a.params()
			if err != nil {
				return err
			}
			overview, err := a.slaService().Overview(cmd.Context(), params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			t := newTable("Month", "", "Mean (h)", "Tickets")
			for _, m := range overview.Monthly.Summaries {
				t.AddRow(m.Period, m.Name, hours(m.MeanHours), strconv.Itoa(m.Count))
			}
			t.Render(out)
			if overview.Monthly.Skipped > 0 {
				printf(out, "%d tickets without a request date left out\n", overview.Monthly.Skipped)
			}
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered tickets as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := a.params()
			if err != nil {
				return err
			}
			records, err := a.slaService().FilteredRecords(cmd.Context(), params)
			if err != nil {
				return err
			}

			exporter := csvexport.New(a.schemas.Tickets)
			if output == "-" {
				return exporter.Write(cmd.OutOrStdout(), records)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := exporter.Write(f, records); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printf(cmd.ErrOrStderr(), "wrote %d tickets to %s\n", len(records), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", csvexport.Filename, `output file, "-" for stdout`)
	return cmd
}

func newIndicatorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "indicators [name]",
		Short: "List the indicator sheets or show one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := spreadsheet.NewFileIndicatorSource(a.cfg.Source.IndicatorsFile, a.schemas.Indicators)
			svc := services.NewIndicatorService(source, a.schemas.Indicators, a.logger)
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				reports, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				t := newTable("Name", "Title", "Rows")
				for _, r := range reports {
					t.AddRow(r.Table.Name, r.Table.Title, strconv.Itoa(len(r.Table.Rows)))
				}
				t.Render(out)
				return nil
			}

			report, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderIndicator(cmd, report)
			return nil
		},
	}
}

func renderIndicator(cmd *cobra.Command, report *domain.IndicatorReport) {
	out := cmd.OutOrStdout()
	tbl := report.Table

	printf(out, "%s\n\n", tbl.Title)
	t := newTable(append([]string{tbl.LabelColumn}, tbl.Columns...)...)
	for _, row := range tbl.Rows {
		t.AddRow(append([]string{row.Label}, lo.Map(row.Values, func(v float64, _ int) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		})...)...)
	}
	t.Render(out)

	if len(report.Shares) > 0 {
		printf(out, "\nShare of %s\n", report.ShareColumn)
		shares := newTable(tbl.LabelColumn, report.ShareColumn, "Share")
		for _, s := range report.Shares {
			shares.AddRow(s.Label, strconv.FormatFloat(s.Value, 'f', -1, 64), percent(s.Share))
		}
		shares.Render(out)
	}
	if len(report.UnknownMonths) > 0 {
		printf(out, "\nUnrecognised months (listed last): %s\n", strings.Join(report.UnknownMonths, ", "))
	}
}

func newImportCmd(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the ticket spreadsheet into the database dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required for import")
			}
			ctx := cmd.Context()

			records, err := a.ticketSource().LoadTickets(ctx)
			if err != nil {
				return err
			}

			if migrate {
				if err := postgres.RunMigrations(a.cfg.Database.URL, a.cfg.Database.MigrationsPath); err != nil {
					return err
				}
			}

			pool, err := postgres.NewPool(ctx, postgres.PoolConfig{URL: a.cfg.Database.URL})
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := postgres.NewTicketSource(pool, a.cfg.Source.Dataset).ImportTickets(ctx, records)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "imported %d tickets into dataset %q\n", n, a.cfg.Source.Dataset)
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations first")
	return cmd
}
