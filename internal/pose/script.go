package pose

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Script replays a fixed sequence of poses. CurrentPose returns the pose at
// the cursor; Step moves the cursor forward.
type Script struct {
	poses  []Pose
	cursor int
}

// NewScript creates a script over poses.
func NewScript(poses []Pose) *Script {
	return &Script{poses: poses}
}

// LoadScript reads pose lines from r. Blank lines and lines starting with '#'
// are ignored.
func LoadScript(r io.Reader) (*Script, error) {
	var poses []Pose
	scan := bufio.NewScanner(r)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		poses = append(poses, p)
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pose script: %w", err)
	}
	return NewScript(poses), nil
}

// CurrentPose returns the pose under the cursor.
func (s *Script) CurrentPose() (Pose, bool) {
	if s.cursor >= len(s.poses) {
		return Pose{}, false
	}
	return s.poses[s.cursor], true
}

// Step advances the cursor. It returns false once the script is exhausted.
func (s *Script) Step() bool {
	if s.cursor < len(s.poses) {
		s.cursor++
	}
	return s.cursor < len(s.poses)
}

// Len returns the number of poses in the script.
func (s *Script) Len() int { return len(s.poses) }

// Done reports whether the cursor has passed the last pose.
func (s *Script) Done() bool { return s.cursor >= len(s.poses) }
