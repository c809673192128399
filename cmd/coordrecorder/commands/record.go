package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/banshee-data/coordrecorder/internal/hud"
	"github.com/banshee-data/coordrecorder/internal/monitoring"
	"github.com/banshee-data/coordrecorder/internal/pose"
	"github.com/banshee-data/coordrecorder/internal/security"
)

var (
	recordSerial  string
	recordBaud    int
	recordParity  string
	recordScript  string
	recordDiagLog string
)

// NewRecordCmd creates the interactive record command.
func NewRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record waypoints interactively",
		Long: `Open the terminal recorder. Poses come from a serial feed of
"x,y,z,heading[,alive]" lines or from a pose script stepped once per tick.

Default keys: f9 toggles recording, f10 saves now, c toggles closeBy,
r toggles routed, backspace undoes the last waypoint, esc quits.

Examples:
  coordrecorder record --serial /dev/ttyUSB0 --baud 115200
  coordrecorder record --script walk.txt --diag-log recorder.log`,
		RunE: runRecord,
	}

	cmd.Flags().StringVar(&recordSerial, "serial", "", "Serial device carrying pose lines")
	cmd.Flags().IntVar(&recordBaud, "baud", 115200, "Serial baud rate")
	cmd.Flags().StringVar(&recordParity, "parity", "N", "Serial parity (N, E or O)")
	cmd.Flags().StringVar(&recordScript, "script", "", "Pose script file to step through")
	cmd.Flags().StringVar(&recordDiagLog, "diag-log", "", "Write diagnostic logs to this file")
	cmd.MarkFlagsMutuallyExclusive("serial", "script")
	cmd.MarkFlagsOneRequired("serial", "script")

	return cmd
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal; diagnostics go to a file or nowhere.
	monitoring.SetLogger(nil)
	if recordDiagLog != "" {
		if err := security.ValidateLogPath(recordDiagLog); err != nil {
			return fmt.Errorf("diag log: %w", err)
		}
		f, err := tea.LogToFile(recordDiagLog, "coordrecorder ")
		if err != nil {
			return fmt.Errorf("failed to open diag log: %w", err)
		}
		defer f.Close()
		monitoring.SetLogger(log.Printf)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		poses   pose.Provider
		advance func()
	)
	switch {
	case recordSerial != "":
		port, err := pose.OpenSerial(recordSerial, pose.PortOptions{BaudRate: recordBaud, Parity: recordParity})
		if err != nil {
			return err
		}
		defer port.Close()
		stream := pose.NewStream(port)
		go func() {
			if err := stream.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				monitoring.Logf("pose feed stopped: %v", err)
			}
		}()
		poses = stream
	default:
		script, err := openScript(recordScript)
		if err != nil {
			return err
		}
		poses = script
		advance = func() { script.Step() }
	}

	notices := hud.NewNotices(nil, 0)
	rec, err := openRecorder(cfg, recorderOptions{poses: poses, notifier: notices})
	if err != nil {
		return err
	}
	defer rec.Close()

	keys, err := hud.NewKeyMap(cfg.Keys())
	if err != nil {
		return err
	}
	if cfg.GetEnabledOnStart() {
		if err := rec.ctrl.Enable(); err != nil {
			return err
		}
	}

	model := hud.New(hud.Options{
		Controller: rec.ctrl,
		Keys:       keys,
		Notices:    notices,
		Interval:   cfg.GetTickInterval(),
		Unit:       cfg.GetDistanceUnit(),
		Advance:    advance,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func openScript(path string) (*pose.Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pose script: %w", err)
	}
	defer f.Close()
	return pose.LoadScript(f)
}
