// Package commands implements the coordrecorder CLI.
package commands

import (
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/banshee-data/coordrecorder/internal/config"
	"github.com/banshee-data/coordrecorder/internal/monitoring"
)

var (
	configPath string
	verbose    bool
)

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coordrecorder",
		Short: "Record an agent's path as a log of waypoints",
		Long: `coordrecorder samples an agent's position and heading, saving a waypoint
every time it moves more than the save distance from the last one. Waypoints
are appended to a plain CSV log (x,y,z,heading,closeBy,routed) and the most
recent ten are shown as numbered markers.

Configuration is read from coordrecorder.json, .env and COORDREC_* variables.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !verbose {
				monitoring.SetLogger(nil)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to JSON config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write diagnostic logs to stderr")

	cmd.AddCommand(NewRecordCmd())
	cmd.AddCommand(NewReplayCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewLogCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig() (*config.RecorderConfig, error) {
	return config.Load(configPath)
}

// logTo routes diagnostics to w when verbose is set.
func logTo(w io.Writer) {
	if verbose {
		l := log.New(w, "", log.LstdFlags)
		monitoring.SetLogger(l.Printf)
	}
}
