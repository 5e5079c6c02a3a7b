package main

import (
	"heating_card/internal/config"

	"github.com/spf13/cobra"
)

var (
	v       = config.New()
	cfgFile string
)

// rootCmd represents the base command; without a subcommand it serves.
var rootCmd = &cobra.Command{
	Use:   "heating-card",
	Short: "Serve live heating room cards backed by Home Assistant.",
	Long: `heating-card keeps a connection to the Home Assistant websocket API and ` +
		`serves one live widget per browser connection for each configured card.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default configs/config.yml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}
