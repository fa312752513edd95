package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// RotatingFileWriter appends to a log file and moves it aside once it grows
// past maxSize. Rotated files are optionally zstd-compressed and at most
// maxBackups of them are kept.
type RotatingFileWriter struct {
	mu          sync.Mutex
	file        *os.File
	filePath    string
	currentSize int64
	maxSize     int64
	maxBackups  int
	compress    bool
	now         func() time.Time
}

// NewRotatingFileWriter opens filePath for appending. maxSize <= 0 disables
// rotation, maxBackups <= 0 keeps every backup.
func NewRotatingFileWriter(filePath string, maxSize int64, maxBackups int, compress bool) (*RotatingFileWriter, error) {
	w := &RotatingFileWriter{
		filePath:   filePath,
		maxSize:    maxSize,
		maxBackups: maxBackups,
		compress:   compress,
		now:        time.Now,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingFileWriter) open() error {
	file, err := os.OpenFile(w.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to get file info: %w", err)
	}
	w.file = file
	w.currentSize = info.Size()
	return nil
}

// Write appends data, rotating first if data would push the file past maxSize.
func (w *RotatingFileWriter) Write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.maxSize > 0 && w.currentSize > 0 && w.currentSize+int64(len(data)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return err
		}
	}

	n, err := w.file.Write(data)
	w.currentSize += int64(n)
	return err
}

func (w *RotatingFileWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	backup := fmt.Sprintf("%s.%s", w.filePath, w.now().Format("20060102-150405.000000000"))
	if err := os.Rename(w.filePath, backup); err != nil {
		return fmt.Errorf("failed to rename log file: %w", err)
	}
	if w.compress {
		if err := compressFile(backup); err != nil {
			fmt.Fprintf(os.Stderr, "failed to compress log backup: %v\n", err)
		}
	}
	if err := w.cleanupOldBackups(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prune log backups: %v\n", err)
	}
	return w.open()
}

// compressFile replaces path with path.zst.
func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(path + ".zst")
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = dst.Close()
		return err
	}
	if _, err := io.Copy(enc, src); err != nil {
		_ = enc.Close()
		_ = dst.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// Backups lists rotated files, oldest first.
func (w *RotatingFileWriter) Backups() ([]string, error) {
	dir := filepath.Dir(w.filePath)
	prefix := filepath.Base(w.filePath) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var backups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			backups = append(backups, filepath.Join(dir, e.Name()))
		}
	}
	// the timestamp suffix sorts lexically
	sort.Strings(backups)
	return backups, nil
}

func (w *RotatingFileWriter) cleanupOldBackups() error {
	if w.maxBackups <= 0 {
		return nil
	}
	backups, err := w.Backups()
	if err != nil {
		return err
	}
	for len(backups) > w.maxBackups {
		if err := os.Remove(backups[0]); err != nil {
			return err
		}
		backups = backups[1:]
	}
	return nil
}

// Flush syncs the current file
func (w *RotatingFileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

// Close closes the current file
func (w *RotatingFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// GetName returns the name of the writer
func (w *RotatingFileWriter) GetName() string {
	return "rotating_file"
}
