package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestauk/createch/internal/db"
	"github.com/nestauk/createch/internal/sources"
)

// createPingCmd creates the warehouse connectivity check
func createPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the warehouse connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := db.NewConnection(ctx, a.cfg.Postgres)
			if err != nil {
				return err
			}
			defer conn.Close()

			w := sources.NewWarehouse(conn.DB)
			if err := w.Ping(ctx); err != nil {
				return err
			}
			fmt.Printf("Connected to %s:%d/%s\n", a.cfg.Postgres.Host, a.cfg.Postgres.Port, a.cfg.Postgres.Database)

			for _, name := range sources.Registered() {
				src, err := sources.Lookup(name)
				if err != nil {
					return err
				}
				n, err := w.Count(ctx, src)
				if err != nil {
					return err
				}
				fmt.Printf("  %-16s %10d names (%s)\n", src.Name, n, src.Table)
			}
			return nil
		},
	}
}
