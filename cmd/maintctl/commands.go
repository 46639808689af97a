package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/healthcare-bi/backend/internal/app"
	"github.com/healthcare-bi/backend/internal/config"
	"github.com/healthcare-bi/backend/internal/models"
	"github.com/healthcare-bi/backend/internal/reliability"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "maintctl",
		Short:         "Maintenance BI pipeline: ingestion, company sync and reliability reports",
		SilenceUsage:  true,
	}
	root.AddCommand(newIngestCmd(), newSyncCmd(), newReportCmd())
	return root
}

// withApp loads config, builds the app and runs fn with a context cancelled
// on SIGINT or SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.NewLogger(cfg, "maintctl"))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func parseDatasets(arg string) ([]models.Dataset, error) {
	if arg == "all" {
		return []models.Dataset{models.DatasetClinical, models.DatasetBuilding}, nil
	}
	d := models.Dataset(arg)
	if !d.Valid() {
		return nil, fmt.Errorf("dataset must be clinical, building or all, got %q", arg)
	}
	return []models.Dataset{d}, nil
}

func newIngestCmd() *cobra.Command {
	var daysBack int
	cmd := &cobra.Command{
		Use:       "ingest [clinical|building|all]",
		Short:     "Fetch orders from the partner APIs and upsert them",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"clinical", "building", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := "all"
			if len(args) == 1 {
				arg = args[0]
			}
			datasets, err := parseDatasets(arg)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				days := daysBack
				if days <= 0 {
					days = a.Config.DaysBack
				}
				for _, dataset := range datasets {
					summary, err := a.Ingest.Run(ctx, dataset, days)
					if err != nil {
						return fmt.Errorf("ingest %s: %w", dataset, err)
					}
					if err := writeJSON(cmd.OutOrStdout(), summary); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&daysBack, "days-back", 0, "size of the fetch window in days (defaults to DAYS_BACK)")
	return cmd
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-companies",
		Short: "Reconcile companies with the names found on building orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				summary, err := a.Sync.Run(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
}

func newReportCmd() *cobra.Command {
	var (
		dataset string
		groupBy string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print MTBF, MTTR and availability tables as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := models.Dataset(dataset)
			if !d.Valid() {
				return fmt.Errorf("dataset must be clinical or building, got %q", dataset)
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				orders, err := a.Store.ListOrders(ctx, d, reliability.Filter{}, 0, 0)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), buildReport(orders, groupBy))
			})
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", string(models.DatasetClinical), "clinical or building")
	cmd.Flags().StringVar(&groupBy, "group-by", "equipamento", "equipamento, tag or setor")
	return cmd
}

type report struct {
	Orders       int                              `json:"orders"`
	MTBF         []reliability.MTBFRecord         `json:"mtbf"`
	MTTR         []reliability.MTTRRecord         `json:"mttr"`
	Availability []reliability.AvailabilityRecord `json:"availability"`
}

func buildReport(orders []models.MaintenanceOrder, groupBy string) report {
	key := reliability.KeyFuncFor(groupBy)
	return report{
		Orders:       len(orders),
		MTBF:         reliability.CalculateMTBF(orders, key),
		MTTR:         reliability.CalculateMTTR(orders, key),
		Availability: reliability.CalculateAvailability(orders, key),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
