package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/coordrecorder/internal/db"
	"github.com/banshee-data/coordrecorder/internal/units"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
)

var historyLimit int

// NewHistoryCmd creates the history command and its show subcommand.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recording sessions",
		Long: `List recording sessions kept in the history database (history_db in the
config). A session runs from enabling the recorder to disabling it.

Examples:
  coordrecorder history
  coordrecorder history --limit 0
  coordrecorder history show 5f0c8a52-...`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "Show at most N sessions (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the events of one session",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	})
	return cmd
}

func openHistoryDB(cmd *cobra.Command) (*db.DB, string, error) {
	logTo(cmd.ErrOrStderr())
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	path := cfg.GetHistoryDB()
	if path == "" {
		return nil, "", errors.New("history_db is not configured")
	}
	database, err := db.NewDB(path)
	if err != nil {
		return nil, "", err
	}
	return database, cfg.GetDistanceUnit(), nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	database, unit, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	sessions, err := database.Sessions(historyLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no sessions recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tSTARTED\tDURATION\tWAYPOINTS\tSAVES\tUNDOS\tFAILURES\tDISTANCE")
	for _, s := range sessions {
		duration := "open"
		if !s.Open() {
			duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d..%d\t%d\t%d\t%d\t%s\n",
			s.ID, s.StartedAt.Local().Format(time.DateTime), duration,
			s.FirstNext, s.LastNext, s.Saves, s.Undos, s.Failures,
			units.FormatDistance(s.Distance, unit))
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	database, unit, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	s, err := database.Session(args[0])
	if err != nil {
		return err
	}
	events, err := database.Events(s.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, s)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tSEQ\tWAYPOINT\tNEXT\tDISTANCE")
	for _, ev := range events {
		point := ""
		if ev.Kind == waypoint.EventSaved || ev.Kind == waypoint.EventUndone || ev.Kind == waypoint.EventSaveFailed {
			point = ev.Sample.MarshalLine()
		}
		seq := ""
		if ev.Seq > 0 {
			seq = fmt.Sprint(ev.Seq)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			ev.At.Local().Format(time.TimeOnly), ev.Kind, seq, point, ev.Next,
			units.FormatDistance(ev.Distance, unit))
	}
	return w.Flush()
}
