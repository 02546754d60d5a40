package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/catalogmirror"
	"github.com/agentstation/catalogmirror/internal/metrics"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

// NewRunCommand creates the run command, which starts the reconciliation loop
// and blocks until interrupted or the store fails.
func (a *App) NewRunCommand() *cobra.Command {
	var (
		initialUpdate bool
		metricsAddr   string
	)

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Run the reconciliation loop",
		Long: `Run starts the background reconciliation loop. Each cycle syncs every
configured category, then manufacturer availability, and sleeps until the
next update interval. The loop stops on SIGINT/SIGTERM, or with an error
when the mirror store fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), a.logger)

			if metricsAddr == "" {
				metricsAddr = a.config.MetricsAddr
			}
			if metricsAddr != "" {
				registry, _ := a.Metrics()
				go func() {
					if err := metrics.Serve(ctx, metricsAddr, registry); err != nil {
						a.logger.Error().Err(err).Str("addr", metricsAddr).Msg("Metrics listener failed")
					}
				}()
				a.logger.Info().Str("addr", metricsAddr).Msg("Serving metrics")
			}

			client, err := a.Client(ctx, catalogmirror.WithInitialUpdate(initialUpdate))
			if err != nil {
				return err
			}
			defer client.Close()

			client.OnStructuralChange(func() {
				a.logger.Info().Msg("Products added or removed")
			})
			client.OnChange(func() {
				if last, ok := client.State().LastCycle(); ok {
					a.logger.Debug().Str("summary", last.String()).Msg("Mirror refreshed")
				}
			})

			unsubscribe := client.Subscribe(catalogmirror.SubscriberFunc(func(e catalogmirror.Event) error {
				if e.Type == catalogmirror.EventCycleFailed {
					a.logger.Error().Str("cycle_id", e.CycleID).Interface("data", e.Data).Msg("Cycle failed")
				}
				return nil
			}))
			defer unsubscribe()

			if err := client.Start(ctx); err != nil {
				return err
			}
			return client.Wait()
		},
	}

	cmd.Flags().BoolVar(&initialUpdate, "initial-update", false, "run one cycle before starting the loop")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}
