package waypoint

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/banshee-data/coordrecorder/internal/fsutil"
)

const logFileMode = 0644

// Entry is a decoded log line with its 1-based sequence number, which is
// its physical line number in the file.
type Entry struct {
	Seq    int
	Sample Sample
}

// ReadResult is the outcome of reading the whole log.
type ReadResult struct {
	// Entries holds every decodable line in log order.
	Entries []Entry
	// Lost holds the sequence numbers of corrupt lines that were skipped.
	Lost []int
	// Lines is the physical line count, corrupt lines included.
	Lines int
}

// Tail returns at most n of the most recent entries.
func (r ReadResult) Tail(n int) []Entry {
	if n <= 0 {
		return nil
	}
	if len(r.Entries) <= n {
		return r.Entries
	}
	return r.Entries[len(r.Entries)-n:]
}

// Last returns the most recent decodable entry.
func (r ReadResult) Last() (Entry, bool) {
	if len(r.Entries) == 0 {
		return Entry{}, false
	}
	return r.Entries[len(r.Entries)-1], true
}

// Log is the append-only, line-oriented waypoint file. Every operation opens
// the file afresh, so the file can be edited or replaced between calls.
type Log struct {
	fs   fsutil.FileSystem
	path string
}

// NewLog returns a log stored at path on fsys.
func NewLog(fsys fsutil.FileSystem, path string) *Log {
	return &Log{fs: fsys, path: path}
}

// Path returns the log's file path.
func (l *Log) Path() string { return l.path }

// Append writes s as a new final line. A final line left without its
// terminator is ended first, so s never merges into it.
func (l *Log) Append(s Sample) error {
	line := s.MarshalLine() + "\n"
	data, err := l.fs.ReadFile(l.path)
	switch {
	case err == nil:
		if len(data) > 0 && data[len(data)-1] != '\n' {
			line = "\n" + line
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return &PersistenceError{Op: "append", Path: l.path, Err: err}
	}

	if err := l.fs.AppendFile(l.path, []byte(line), logFileMode); err != nil {
		return &PersistenceError{Op: "append", Path: l.path, Err: err}
	}
	return nil
}

// ReadAll decodes the whole log. A missing file is an empty log. Corrupt
// lines are skipped and reported in ReadResult.Lost.
func (l *Log) ReadAll() (ReadResult, error) {
	lines, err := l.lines()
	if err != nil {
		return ReadResult{}, err
	}

	res := ReadResult{Lines: len(lines), Entries: make([]Entry, 0, len(lines))}
	for i, line := range lines {
		s, err := ParseLine(line)
		if err != nil {
			res.Lost = append(res.Lost, i+1)
			logf("skipping line %d of %s: %v", i+1, l.path, err)
			continue
		}
		res.Entries = append(res.Entries, Entry{Seq: i + 1, Sample: s})
	}
	return res, nil
}

// Len returns the number of lines in the log.
func (l *Log) Len() (int, error) {
	lines, err := l.lines()
	return len(lines), err
}

// TruncateLast removes the final line and returns it. An empty or missing log
// is left alone and yields "". The remaining lines are written to a temporary
// file that replaces the log, so a failed write leaves the log untouched.
func (l *Log) TruncateLast() (string, error) {
	lines, err := l.lines()
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", nil
	}

	removed := lines[len(lines)-1]
	keep := lines[:len(lines)-1]

	var b strings.Builder
	for _, line := range keep {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	tmp := l.path + ".tmp"
	if err := l.fs.WriteFile(tmp, []byte(b.String()), logFileMode); err != nil {
		return "", &PersistenceError{Op: "truncate", Path: l.path, Err: err}
	}
	if err := l.fs.Rename(tmp, l.path); err != nil {
		_ = l.fs.Remove(tmp)
		return "", &PersistenceError{Op: "truncate", Path: l.path, Err: err}
	}
	return removed, nil
}

func (l *Log) lines() ([]string, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "read", Path: l.path, Err: err}
	}
	return splitLines(string(data)), nil
}

// splitLines splits on '\n', drops '\r' line endings and ignores the final
// terminator so "a\nb\n" is two lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
