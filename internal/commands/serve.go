package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/hgb/internal/api"
	"github.com/cleared-dev/hgb/internal/buildinfo"
	"github.com/cleared-dev/hgb/internal/metrics"
)

func newServeCommand(repoDir *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the books over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withWorkspace(ctx, *repoDir, func(ws *workspace) error {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				m := metrics.New(reg)

				agg, err := ws.aggregator(m)
				if err != nil {
					return err
				}

				srv := api.New(api.Options{
					Accounts:       ws.accounts,
					Posting:        ws.processor(m),
					Bilanz:         agg,
					Logger:         ws.log,
					Metrics:        m,
					Gatherer:       reg,
					AllowedOrigins: ws.cfg.Server.AllowedOrigins,
					Version:        buildinfo.Version,
					Persist:        ws.save,
				})

				listen := ws.cfg.Server.Addr
				if addr != "" {
					listen = addr
				}
				return srv.ListenAndServe(ctx, listen)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from hgb.yaml)")
	return cmd
}
