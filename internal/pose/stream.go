package pose

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/banshee-data/coordrecorder/internal/monitoring"
)

var logf = monitoring.Prefixed("pose")

// Stream keeps the most recent pose read from a line-oriented source such as
// a serial GPS/INS feed or a named pipe. Run does the reading; CurrentPose may
// be called from any goroutine.
type Stream struct {
	src io.Reader

	mu     sync.Mutex
	latest Pose
	have   bool
	bad    int
}

// NewStream creates a Stream reading from src.
func NewStream(src io.Reader) *Stream {
	return &Stream{src: src}
}

// Run reads lines until src is exhausted, ctx is cancelled, or a read error
// occurs. Malformed lines are logged and skipped.
func (s *Stream) Run(ctx context.Context) error {
	scan := bufio.NewScanner(s.src)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	// the blocking Scan runs on its own goroutine so cancellation is not held
	// up by a quiet device.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			scanErrChan <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErrChan:
			return err
		case line, ok := <-lineChan:
			if !ok {
				select {
				case err := <-scanErrChan:
					return err
				default:
					return nil
				}
			}
			s.handleLine(line)
		}
	}
}

func (s *Stream) handleLine(line string) {
	p, err := ParseLine(line)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.bad++
		logf("skipping pose: %v", err)
		return
	}
	s.latest = p
	s.have = true
}

// CurrentPose returns the latest pose, or false before the first valid line.
func (s *Stream) CurrentPose() (Pose, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.have
}

// Rejected returns how many malformed lines were skipped.
func (s *Stream) Rejected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bad
}
