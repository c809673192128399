package commands

import (
	"fmt"
	"time"

	"github.com/banshee-data/coordrecorder/internal/config"
	"github.com/banshee-data/coordrecorder/internal/db"
	"github.com/banshee-data/coordrecorder/internal/fsutil"
	"github.com/banshee-data/coordrecorder/internal/marker"
	"github.com/banshee-data/coordrecorder/internal/pose"
	"github.com/banshee-data/coordrecorder/internal/security"
	"github.com/banshee-data/coordrecorder/internal/timeutil"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
)

// recorder bundles a controller with the resources it owns.
type recorder struct {
	ctrl     *waypoint.Controller
	log      *waypoint.Log
	markers  *marker.Registry
	database *db.DB
	history  *db.History
}

type recorderOptions struct {
	logPath  string // overrides the configured log path when set
	poses    pose.Provider
	notifier waypoint.Notifier
	clock    timeutil.Clock
}

func openRecorder(cfg *config.RecorderConfig, opt recorderOptions) (*recorder, error) {
	logPath := opt.logPath
	if logPath == "" {
		logPath = cfg.GetLogPath()
	}
	if err := security.ValidateLogPath(logPath); err != nil {
		return nil, fmt.Errorf("coords log: %w", err)
	}

	r := &recorder{
		log:     waypoint.NewLog(fsutil.OSFileSystem{}, logPath),
		markers: marker.NewRegistry(),
	}

	wcfg := waypoint.Config{
		Log:             r.log,
		Presenter:       r.markers,
		Poses:           opt.poses,
		Notifier:        opt.notifier,
		Clock:           opt.clock,
		DefaultCloseBy:  cfg.GetDefaultCloseBy(),
		ModifiedCloseBy: cfg.GetModifiedCloseBy(),
		MarkerRadius:    cfg.GetMarkerRadius(),
		SaveDistance:    cfg.GetSaveDistance(),
	}

	if path := cfg.GetHistoryDB(); path != "" {
		if err := security.ValidateLogPath(path); err != nil {
			return nil, fmt.Errorf("history database: %w", err)
		}
		database, err := db.NewDB(path)
		if err != nil {
			return nil, err
		}
		r.database = database
		r.history = db.NewHistory(database, logPath)
		wcfg.Journal = r.history
	}

	r.ctrl = waypoint.NewController(wcfg)
	return r, nil
}

// Close disables the controller and closes any open history session.
func (r *recorder) Close() error {
	r.ctrl.Close()
	if r.database == nil {
		return nil
	}
	if err := r.history.Close(time.Now()); err != nil {
		r.database.Close()
		return err
	}
	return r.database.Close()
}
