package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"snackstack/internal/config"
)

func Execute() error {
	return newRootCmd().Execute()
}

// app carries the loaded configuration to subcommands. It is filled in by
// the root command's PersistentPreRunE so flags can override file and env
// values.
type app struct {
	v   *viper.Viper
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "snackstack",
		Short:         "snackstack: storefront nudge engine",
		Long:          "snackstack serves the storefront JSON API and arbitrates the idle, hesitation, exit-intent, bundle and replenishment nudges shown to each shopper session.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "sqlite DSN (overrides db_dsn)")
	flags.String("api", "", "backend base URL for order history and telemetry (overrides backend_url)")
	_ = a.v.BindPFlag("db_dsn", flags.Lookup("db"))
	_ = a.v.BindPFlag("backend_url", flags.Lookup("api"))

	rootCmd.AddCommand(
		newServeCmd(a),
		newReplenishCmd(a),
		newPacksCmd(a),
	)

	return rootCmd
}
