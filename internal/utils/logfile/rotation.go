// Package logfile provides a daily rotating log file writer with retention.
//
// Log files are named "<YYYY-MM-DD>-<name>.log". A file is rotated when the
// calendar day changes or when it grows past the configured size. Rotated
// files can be gzip compressed, and files older than the retention period
// are deleted by Cleanup, which also runs on a daily ticker.
package logfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

const (
	dayLayout = "2006-01-02"

	// DefaultMaxSizeBytes matches a 20 MB cap per file.
	DefaultMaxSizeBytes int64 = 20 * 1024 * 1024

	// DefaultName is the suffix of every log file name.
	DefaultName = "app"

	logExt = ".log"
	gzExt  = ".gz"
)

// Options configures a DailyWriter.
type Options struct {
	// Dir is the directory holding the log files. It is created if missing.
	Dir string

	// Name is appended to the date to build the file name.
	Name string

	// MaxSizeBytes forces a rotation within the same day. Zero uses DefaultMaxSizeBytes.
	MaxSizeBytes int64

	// RetentionDays is how many days of files Cleanup keeps. Zero keeps everything.
	RetentionDays int

	// Compress gzips rotated files.
	Compress bool

	// Now returns the current time. Tests replace it to move across days.
	Now func() time.Time
}

// DailyWriter is an io.WriteCloser safe for concurrent use by a zerolog logger.
type DailyWriter struct {
	mu   sync.Mutex
	opts Options

	file *os.File
	day  string
	size int64
	seq  int
}

// New creates a DailyWriter and opens the file for the current day.
//
// Parameters:
//   - opts: Directory, naming, size and retention settings
//
// Returns:
//   - The writer, ready for use
//   - An error if the directory or the file cannot be created
func New(opts Options) (*DailyWriter, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("log directory must be set")
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.MaxSizeBytes <= 0 {
		opts.MaxSizeBytes = DefaultMaxSizeBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", opts.Dir, err)
	}

	w := &DailyWriter{opts: opts}
	if err := w.open(opts.Now().Format(dayLayout)); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends p to the current file, rotating first when the day has
// changed or the size limit would be exceeded.
func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	day := w.opts.Now().Format(dayLayout)
	switch {
	case day != w.day:
		if err := w.rotate(false); err != nil {
			return 0, err
		}
		w.seq = 0
		if err := w.open(day); err != nil {
			return 0, err
		}
	case w.size > 0 && w.size+int64(len(p)) > w.opts.MaxSizeBytes:
		if err := w.rotate(true); err != nil {
			return 0, err
		}
		if err := w.open(day); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Close closes the current file.
func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// CurrentPath returns the path of the file being written.
func (w *DailyWriter) CurrentPath() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activePath(w.day)
}

func (w *DailyWriter) activePath(day string) string {
	return filepath.Join(w.opts.Dir, fmt.Sprintf("%s-%s%s", day, w.opts.Name, logExt))
}

func (w *DailyWriter) open(day string) error {
	path := w.activePath(day)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat log file %s: %w", path, err)
	}

	w.file = f
	w.day = day
	w.size = info.Size()
	return nil
}

// rotate closes the active file and archives it. A size-triggered rotation
// renames the file with a sequence number first, because the next file for
// the same day reuses the active name.
func (w *DailyWriter) rotate(sameDay bool) error {
	if w.file == nil {
		return nil
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	w.file = nil

	archived := w.activePath(w.day)
	if sameDay {
		target := w.nextArchivePath()
		if err := os.Rename(archived, target); err != nil {
			return fmt.Errorf("failed to rename log file: %w", err)
		}
		archived = target
	}

	if w.opts.Compress {
		if err := compressFile(archived); err != nil {
			// Keep the uncompressed file rather than lose log lines
			log.Warn().Err(err).Str("file", archived).Msg("Failed to compress rotated log file")
		}
	}
	return nil
}

// nextArchivePath finds the first sequence number not used by an earlier
// rotation of the same day, compressed or not.
func (w *DailyWriter) nextArchivePath() string {
	for {
		w.seq++
		target := filepath.Join(w.opts.Dir, fmt.Sprintf("%s-%s.%d%s", w.day, w.opts.Name, w.seq, logExt))
		if !exists(target) && !exists(target+gzExt) {
			return target
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// compressFile writes path.gz and removes path on success.
func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + gzExt)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		gz.Close()
		dst.Close()
		os.Remove(path + gzExt)
		return err
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		os.Remove(path + gzExt)
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	src.Close()
	return os.Remove(path)
}

// Cleanup deletes log files whose date is older than the retention period.
//
// Returns:
//   - The number of files deleted
//   - An error if the directory cannot be read
func (w *DailyWriter) Cleanup() (int, error) {
	if w.opts.RetentionDays <= 0 {
		return 0, nil
	}

	w.mu.Lock()
	active := w.activePath(w.day)
	w.mu.Unlock()

	cutoff := w.opts.Now().AddDate(0, 0, -w.opts.RetentionDays).Format(dayLayout)

	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", w.opts.Dir, err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		day, ok := w.fileDay(entry.Name())
		if !ok || day >= cutoff {
			continue
		}

		path := filepath.Join(w.opts.Dir, entry.Name())
		if path == active {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Failed to delete expired log file")
			continue
		}
		deleted++
		log.Debug().Str("file", path).Msg("Deleted expired log file")
	}

	return deleted, nil
}

// fileDay extracts the date prefix of a file written by this writer.
func (w *DailyWriter) fileDay(name string) (string, bool) {
	if len(name) <= len(dayLayout) {
		return "", false
	}
	day := name[:len(dayLayout)]
	if _, err := time.Parse(dayLayout, day); err != nil {
		return "", false
	}
	if !strings.HasPrefix(name[len(dayLayout):], "-"+w.opts.Name) {
		return "", false
	}
	return day, true
}

// StartRetentionWorker runs Cleanup once and then every day until ctx is done.
func (w *DailyWriter) StartRetentionWorker(ctx context.Context) {
	go func() {
		if _, err := w.Cleanup(); err != nil {
			log.Error().Err(err).Msg("Failed to clean up log files on startup")
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := w.Cleanup(); err != nil {
					log.Error().Err(err).Msg("Failed to clean up log files")
				} else if n > 0 {
					log.Info().Int("deleted", n).Int("retention_days", w.opts.RetentionDays).Msg("Log retention completed")
				}
			}
		}
	}()
}
