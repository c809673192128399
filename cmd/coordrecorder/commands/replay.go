package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/coordrecorder/internal/replay"
	"github.com/banshee-data/coordrecorder/internal/timeutil"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
)

var (
	replayScript   string
	replaySchedule string
	replayLog      string
	replayRealtime bool
)

// NewReplayCmd creates the headless replay command.
func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Drive the recorder from a pose script",
		Long: `Replay a pose script through the recorder without a terminal UI, one
pose per tick, issuing commands from a schedule of command@tick items.
Commands are toggle, save, closeby, routed and undo.

Examples:
  coordrecorder replay --script walk.txt
  coordrecorder replay --script walk.txt --schedule toggle@0,routed@20,save@21
  coordrecorder replay --script walk.txt --log /tmp/coords.txt --realtime`,
		RunE: runReplay,
	}

	cmd.Flags().StringVar(&replayScript, "script", "", "Pose script file (required)")
	cmd.Flags().StringVar(&replaySchedule, "schedule", "toggle@0", "Commands to issue, as command@tick")
	cmd.Flags().StringVar(&replayLog, "log", "", "Coords log path (default from config)")
	cmd.Flags().BoolVar(&replayRealtime, "realtime", false, "Wait one tick interval between poses")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	logTo(cmd.ErrOrStderr())
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	schedule, err := replay.ParseSchedule(replaySchedule)
	if err != nil {
		return err
	}
	script, err := openScript(replayScript)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rec, err := openRecorder(cfg, recorderOptions{
		logPath:  replayLog,
		poses:    script,
		notifier: waypoint.NotifierFunc(func(text string) { fmt.Fprintln(out, text) }),
	})
	if err != nil {
		return err
	}
	defer rec.Close()

	runner := replay.NewRunner(rec.ctrl, script, schedule, timeutil.RealClock{}, cfg.GetTickInterval())
	if replayRealtime {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := runner.Run(ctx); err != nil {
			return err
		}
	} else {
		runner.RunAll()
	}

	snap := rec.ctrl.Snapshot()
	if snap.Enabled {
		fmt.Fprintln(out, waypoint.FormatStatus(snap, cfg.GetDistanceUnit()))
	}
	n, err := rec.log.Len()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "replayed %d ticks, %d lines in %s\n", runner.Tick(), n, rec.log.Path())
	return nil
}
