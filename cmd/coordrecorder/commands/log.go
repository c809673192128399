package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/banshee-data/coordrecorder/internal/fsutil"
	"github.com/banshee-data/coordrecorder/internal/marker"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
)

var (
	logTail int
	logPath string
)

// NewLogCmd creates the log command.
func NewLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recorded waypoints",
		Long: `List the waypoints in the coords log with their sequence numbers and the
two-digit labels their markers carry. Unreadable lines keep their sequence
number and are reported separately.

Examples:
  coordrecorder log
  coordrecorder log --tail 0`,
		Args: cobra.NoArgs,
		RunE: runLog,
	}

	cmd.Flags().IntVar(&logTail, "tail", 10, "Show only the last N waypoints (0 for all)")
	cmd.Flags().StringVar(&logPath, "log", "", "Coords log path (default from config)")

	return cmd
}

func runLog(cmd *cobra.Command, args []string) error {
	logTo(cmd.ErrOrStderr())
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := logPath
	if path == "" {
		path = cfg.GetLogPath()
	}

	res, err := waypoint.NewLog(fsutil.OSFileSystem{}, path).ReadAll()
	if err != nil {
		return err
	}

	entries := res.Entries
	if logTail > 0 {
		entries = res.Tail(logTail)
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tLABEL\tX\tY\tZ\tHEADING\tCLOSEBY\tSTYLE")
	for _, e := range entries {
		s := e.Sample
		fmt.Fprintf(w, "%d\t%02d\t%.2f\t%.2f\t%.2f\t%.1f\t%d\t%s\n",
			e.Seq, waypoint.Label(e.Seq), s.X, s.Y, s.Z, s.Heading, s.CloseBy, marker.StyleFor(s.Routed))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%d lines, next waypoint %d\n", res.Lines, res.Lines+1)
	if len(res.Lost) > 0 {
		fmt.Fprintf(out, "unreadable lines: %v\n", res.Lost)
	}
	return nil
}
