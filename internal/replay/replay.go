// Package replay drives a recorder headlessly from a scripted pose file and a
// schedule of commands, one script pose per tick.
package replay

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/coordrecorder/internal/monitoring"
	"github.com/banshee-data/coordrecorder/internal/pose"
	"github.com/banshee-data/coordrecorder/internal/timeutil"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
)

var logf = monitoring.Prefixed("replay")

// Schedule maps a tick index to the commands issued just before that tick.
type Schedule map[int][]waypoint.Command

// ParseSchedule parses "toggle@0,save@5,undo@9". Commands sharing a tick run
// in the order given.
func ParseSchedule(text string) (Schedule, error) {
	s := Schedule{}
	text = strings.TrimSpace(text)
	if text == "" {
		return s, nil
	}
	for _, item := range strings.Split(text, ",") {
		name, at, ok := strings.Cut(strings.TrimSpace(item), "@")
		if !ok {
			return nil, fmt.Errorf("schedule item %q: want command@tick", item)
		}
		cmd, err := waypoint.ParseCommand(name)
		if err != nil {
			return nil, fmt.Errorf("schedule item %q: %w", item, err)
		}
		tick, err := strconv.Atoi(at)
		if err != nil || tick < 0 {
			return nil, fmt.Errorf("schedule item %q: bad tick %q", item, at)
		}
		s[tick] = append(s[tick], cmd)
	}
	return s, nil
}

// String formats the schedule in ParseSchedule syntax, ordered by tick.
func (s Schedule) String() string {
	ticks := make([]int, 0, len(s))
	for t := range s {
		ticks = append(ticks, t)
	}
	sort.Ints(ticks)

	var parts []string
	for _, t := range ticks {
		for _, cmd := range s[t] {
			parts = append(parts, fmt.Sprintf("%s@%d", cmd, t))
		}
	}
	return strings.Join(parts, ",")
}

// Runner steps a controller through a pose script.
type Runner struct {
	ctrl     *waypoint.Controller
	script   *pose.Script
	schedule Schedule
	clock    timeutil.Clock
	interval time.Duration
	tick     int
}

// NewRunner creates a runner. The controller must read poses from script.
func NewRunner(ctrl *waypoint.Controller, script *pose.Script, schedule Schedule, clock timeutil.Clock, interval time.Duration) *Runner {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Runner{ctrl: ctrl, script: script, schedule: schedule, clock: clock, interval: interval}
}

// Tick returns the index of the next tick to run.
func (r *Runner) Tick() int { return r.tick }

// Step runs one tick: the scheduled commands, then the controller's tick,
// then moves the script on. It returns false once the script is exhausted.
func (r *Runner) Step() bool {
	if r.script.Done() {
		return false
	}
	for _, cmd := range r.schedule[r.tick] {
		if err := r.ctrl.Dispatch(cmd); err != nil {
			logf("tick %d %s: %v", r.tick, cmd, err)
		}
	}
	r.ctrl.OnTick()
	r.tick++
	return r.script.Step()
}

// Run steps once per interval until the script ends or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			if !r.Step() {
				return nil
			}
		}
	}
}

// RunAll steps through the whole script without waiting.
func (r *Runner) RunAll() {
	for r.Step() {
	}
}
