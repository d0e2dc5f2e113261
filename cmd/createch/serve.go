package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nestauk/createch/internal/match"
	"github.com/nestauk/createch/internal/web"
)

// createServeCmd creates the results browser command
func createServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Browse a match table over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := match.ReadCSV(a.fs, args[0])
			if err != nil {
				return err
			}

			cfg := a.cfg.Server
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return web.NewServer(cfg, rows, nil).Start(ctx)
		},
	}

	d := web.DefaultConfig()
	cmd.Flags().StringVar(&host, "host", d.Host, "Listen host")
	cmd.Flags().IntVar(&port, "port", d.Port, "Listen port")

	return cmd
}
