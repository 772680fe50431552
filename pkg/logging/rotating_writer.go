package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// RotatingWriter appends to a log file and moves it to
// old/<basename>.YYYYMMDD-HHMMSS once it grows past maxSize. Many short
// lived processes may share one log path, so the size is re-read from the
// file before each rotation decision.
type RotatingWriter struct {
	mu      sync.Mutex
	fs      afero.Fs
	f       afero.File
	path    string
	maxSize int64
	now     func() time.Time
}

// NewRotatingWriter opens path for appending, rotating first if the
// existing file is already over maxSize.
func NewRotatingWriter(fs afero.Fs, path string, maxSize int64) (*RotatingWriter, error) {
	w := &RotatingWriter{
		fs:      fs,
		path:    path,
		maxSize: maxSize,
		now:     time.Now,
	}

	f, err := openAppend(fs, path)
	if err != nil {
		return nil, err
	}
	w.f = f

	if w.sizeLocked() >= maxSize {
		if err := w.rotateLocked(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return w, nil
}

// Write implements io.Writer
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return 0, os.ErrClosed
	}
	if w.sizeLocked()+int64(len(p)) >= w.maxSize {
		if err := w.rotateLocked(); err != nil {
			return 0, err
		}
	}
	return w.f.Write(p)
}

// Close closes the current file
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func (w *RotatingWriter) sizeLocked() int64 {
	// the path may have been rotated by another process
	if fi, err := w.fs.Stat(w.path); err == nil {
		return fi.Size()
	}
	if fi, err := w.f.Stat(); err == nil {
		return fi.Size()
	}
	return 0
}

func (w *RotatingWriter) rotateLocked() error {
	_ = w.f.Close()
	w.f = nil

	oldDir := filepath.Join(filepath.Dir(w.path), "old")
	if err := w.fs.MkdirAll(oldDir, 0755); err != nil {
		return fmt.Errorf("creating old/ directory: %w", err)
	}

	archive := filepath.Join(oldDir, fmt.Sprintf("%s.%s", filepath.Base(w.path), w.now().Format("20060102-150405")))
	// best effort: a concurrent writer may have rotated already
	_ = w.fs.Rename(w.path, archive)

	f, err := openAppend(w.fs, w.path)
	if err != nil {
		return err
	}
	w.f = f
	return nil
}

func openAppend(fs afero.Fs, path string) (afero.File, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
