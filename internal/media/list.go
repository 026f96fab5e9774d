package media

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"videomorph/internal/probe"
	"videomorph/internal/profile"
)

// Prober reads metadata for a path.
type Prober interface {
	Probe(ctx context.Context, path string) (probe.Info, error)
}

// Rejected is a path Populate did not add, with the reason.
type Rejected struct {
	Path string
	Err  error
}

// MediaList is the ordered conversion queue. Paths are unique. A cursor
// marks the file being converted (-1 when idle). It is safe for
// concurrent use.
type MediaList struct {
	mu       sync.RWMutex
	files    []*MediaFile
	position int
}

// NewMediaList returns an empty, idle list.
func NewMediaList() *MediaList {
	return &MediaList{position: -1}
}

// Add appends f after validating its metadata. A path already in the list
// is not added again and reports false with a nil error.
func (l *MediaList) Add(f *MediaFile) (bool, error) {
	if _, err := f.Duration(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indexLocked(f.Path) >= 0 {
		return false, nil
	}
	l.files = append(l.files, f)
	return true, nil
}

// Contains reports whether path is queued.
func (l *MediaList) Contains(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexLocked(path) >= 0
}

func (l *MediaList) indexLocked(path string) int {
	path = filepath.Clean(path)
	for i, f := range l.files {
		if filepath.Clean(f.Path) == path {
			return i
		}
	}
	return -1
}

// Populate probes each path and adds it with profile cp. Files that fail
// probing, validation or are duplicates are returned as rejected; the rest
// of the paths are still processed.
func (l *MediaList) Populate(ctx context.Context, p Prober, cp *profile.ConversionProfile, paths []string, opts ...FileOption) []Rejected {
	var rejected []Rejected
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			rejected = append(rejected, Rejected{Path: path, Err: err})
			continue
		}
		if l.Contains(path) {
			rejected = append(rejected, Rejected{Path: path, Err: ErrDuplicate})
			continue
		}
		info, err := p.Probe(ctx, path)
		if err != nil {
			rejected = append(rejected, Rejected{Path: path, Err: err})
			continue
		}
		added, err := l.Add(NewMediaFile(path, cp, info, opts...))
		switch {
		case err != nil:
			rejected = append(rejected, Rejected{Path: path, Err: err})
		case !added:
			rejected = append(rejected, Rejected{Path: path, Err: ErrDuplicate})
		}
	}
	return rejected
}

// Len returns the number of queued files.
func (l *MediaList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.files)
}

// Files returns a snapshot of the queue.
func (l *MediaList) Files() []*MediaFile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*MediaFile, len(l.files))
	copy(out, l.files)
	return out
}

// Clear empties the list and resets the cursor.
func (l *MediaList) Clear() {
	l.mu.Lock()
	l.files = nil
	l.position = -1
	l.mu.Unlock()
}

// Delete removes the file at pos. The cursor keeps pointing at the same
// file, or becomes idle if that file was removed.
func (l *MediaList) Delete(pos int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkLocked(pos); err != nil {
		return err
	}
	l.files = append(l.files[:pos], l.files[pos+1:]...)
	switch {
	case pos == l.position:
		l.position = -1
	case pos < l.position:
		l.position--
	}
	return nil
}

// File returns the file at pos.
func (l *MediaList) File(pos int) (*MediaFile, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.checkLocked(pos); err != nil {
		return nil, err
	}
	return l.files[pos], nil
}

// FileName returns the name of the file at pos.
func (l *MediaList) FileName(pos int, withExtension bool) (string, error) {
	f, err := l.File(pos)
	if err != nil {
		return "", err
	}
	return f.Name(withExtension), nil
}

// FilePath returns the path of the file at pos.
func (l *MediaList) FilePath(pos int) (string, error) {
	f, err := l.File(pos)
	if err != nil {
		return "", err
	}
	return f.Path, nil
}

func (l *MediaList) checkLocked(pos int) error {
	if pos < 0 || pos >= len(l.files) {
		return fmt.Errorf("%w: %d (len %d)", ErrPositionOutOfRange, pos, len(l.files))
	}
	return nil
}

// Position returns the cursor, -1 when idle.
func (l *MediaList) Position() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.position
}

// SetPosition moves the cursor; -1 makes the list idle.
func (l *MediaList) SetPosition(pos int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if pos != -1 {
		if err := l.checkLocked(pos); err != nil {
			return err
		}
	}
	l.position = pos
	return nil
}

// RunningFile returns the file under the cursor, or nil when idle.
func (l *MediaList) RunningFile() *MediaFile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.position < 0 || l.position >= len(l.files) {
		return nil
	}
	return l.files[l.position]
}

// Next moves the cursor to the first file still to do. It reports false
// and leaves the list idle when none is left.
func (l *MediaList) Next() (*MediaFile, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, f := range l.files {
		if f.Status() == StatusTodo {
			l.position = i
			return f, true
		}
	}
	l.position = -1
	return nil, false
}

// Exhausted reports whether no file is left to convert.
func (l *MediaList) Exhausted() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, f := range l.files {
		if f.Status() == StatusTodo {
			return false
		}
	}
	return true
}

// Status returns the state of the file at pos.
func (l *MediaList) Status(pos int) (Status, error) {
	f, err := l.File(pos)
	if err != nil {
		return "", err
	}
	return f.Status(), nil
}

// SetStatus changes the state of the file at pos.
func (l *MediaList) SetStatus(pos int, s Status) error {
	f, err := l.File(pos)
	if err != nil {
		return err
	}
	f.SetStatus(s)
	return nil
}

// StopAll marks every pending file stopped and returns how many changed.
func (l *MediaList) StopAll() int {
	return l.transition(func(s Status) bool { return s == StatusTodo }, StatusStopped)
}

// ResetStatus marks every file todo again so the queue can be rerun.
func (l *MediaList) ResetStatus() {
	l.transition(func(Status) bool { return true }, StatusTodo)
	l.mu.Lock()
	l.position = -1
	l.mu.Unlock()
}

func (l *MediaList) transition(match func(Status) bool, to Status) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, f := range l.files {
		if match(f.Status()) {
			f.SetStatus(to)
			n++
		}
	}
	return n
}

// Duration is the total length of all queued files in seconds.
func (l *MediaList) Duration() float64 {
	return l.sum(func(*MediaFile) bool { return true })
}

// RemainingDuration is the length of the files still to do.
func (l *MediaList) RemainingDuration() float64 {
	return l.sum(func(f *MediaFile) bool { return f.Status() == StatusTodo })
}

func (l *MediaList) sum(include func(*MediaFile) bool) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total float64
	for _, f := range l.files {
		if !include(f) {
			continue
		}
		// Add validated the duration, but Info is exported and may have
		// been edited since; an unusable value counts as zero.
		if d, err := f.Duration(); err == nil {
			total += d
		}
	}
	return total
}
