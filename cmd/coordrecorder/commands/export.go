package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/coordrecorder/internal/export"
	"github.com/banshee-data/coordrecorder/internal/fsutil"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
)

var (
	exportFormat string
	exportTitle  string
	exportLabels bool
	exportLog    string
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [output]",
		Short: "Render the coords log as a PNG or HTML chart",
		Long: `Render every waypoint in the coords log as a top-down XY chart, routed
and unrouted waypoints in their marker colours. The format follows the
output extension unless --format is given; with no output the file is named
after the log.

Examples:
  coordrecorder export
  coordrecorder export route.html
  coordrecorder export --format png --labels --title "North loop"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportFormat, "format", "", "Output format: png or html")
	cmd.Flags().StringVar(&exportTitle, "title", "", "Chart title")
	cmd.Flags().BoolVar(&exportLabels, "labels", false, "Draw waypoint labels (png)")
	cmd.Flags().StringVar(&exportLog, "log", "", "Coords log path (default from config)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	logTo(cmd.ErrOrStderr())
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logPath := exportLog
	if logPath == "" {
		logPath = cfg.GetLogPath()
	}

	var output string
	if len(args) == 1 {
		output = args[0]
	}
	format, err := exportFormatFor(exportFormat, output)
	if err != nil {
		return err
	}
	if output == "" {
		output = export.DefaultFileName(logPath, format)
	}

	res, err := waypoint.NewLog(fsutil.OSFileSystem{}, logPath).ReadAll()
	if err != nil {
		return err
	}
	if len(res.Lost) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d unreadable lines\n", len(res.Lost))
	}

	opt := export.Options{Title: exportTitle, Labels: exportLabels}
	if err := export.WriteFile(output, format, res.Entries, opt); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d waypoints to %s\n", len(res.Entries), output)
	return nil
}

// exportFormatFor picks the format from the flag, then the output
// extension, then png.
func exportFormatFor(flag, output string) (export.Format, error) {
	switch {
	case flag != "":
		return export.ParseFormat(flag)
	case output != "":
		return export.FormatFromPath(output)
	default:
		return export.FormatPNG, nil
	}
}
