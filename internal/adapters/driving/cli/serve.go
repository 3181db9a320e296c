package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/niemi-bil/infoflex-bridge/internal/adapters/driving/httpapi"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

func init() {
	rootCmd.AddCommand(newServeCmd())
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily push",
		Long: `Serve the JSON HTTP API, with the MCP endpoint mounted at /mcp. When
scheduler.enabled is true the daily push runs in the same process. Changes to the config file reload the keyword
table without a restart.

Examples:
  infoflex-bridge serve
  infoflex-bridge serve --addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := current()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = s.HTTPAddr
			}

			assistant, err := newMCPServer(s)
			if err != nil {
				return err
			}
			server, err := httpapi.NewServer(&httpapi.Ports{
				Registry:    s.Registry,
				Classifier:  s.Classifier,
				Orders:      s.Orders,
				Phones:      s.Phones,
				Pusher:      s.Pusher,
				Subscribers: s.Subscribers,
				Receipts:    s.Receipts,
				Scheduler:   s.Scheduler,
				MCP:         assistant.Handler(),
			}, addr)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return server.Run(ctx)
			})
			if s.Scheduler != nil && s.DailyPush.Enabled {
				defer func() {
					if err := s.Scheduler.Stop(); err != nil {
						logger.Warn("scheduler stop: %v", err)
					}
				}()
				g.Go(func() error {
					if err := s.Scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
						return fmt.Errorf("scheduler: %w", err)
					}
					return nil
				})
			}
			if s.Watch != nil {
				g.Go(func() error {
					if err := s.Watch(ctx); err != nil {
						logger.Warn("config watcher stopped: %v", err)
					}
					return nil
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", addr)
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default http.addr from config)")
	return cmd
}
