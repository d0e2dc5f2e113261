package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nestauk/createch/internal/config"
	"github.com/nestauk/createch/internal/logging"
)

// app carries state shared by all subcommands of one invocation
type app struct {
	fs         afero.Fs
	configFile string
	logLevel   string
	cfg        config.Config
}

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}

	// Create root command
	rootCmd := &cobra.Command{
		Use:           "createch",
		Short:         "Organisation name matching across data sources",
		Long:          `Matches organisation names from GtR and Crunchbase against Companies House using approximate string similarity`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(createMatchCmd(a))
	rootCmd.AddCommand(createPrepareCmd(a))
	rootCmd.AddCommand(createLinksCmd(a))
	rootCmd.AddCommand(createServeCmd(a))
	rootCmd.AddCommand(createPingCmd(a))

	return rootCmd
}

func (a *app) init() error {
	if err := config.LoadEnv(a.fs); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.Load(a.fs, a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		return err
	}
	a.cfg = cfg
	log.Debug().Str("config", a.configFile).Msg("configuration loaded")
	return nil
}
