package logger

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// RotatingWriter is a writer that rotates log files by size
type RotatingWriter struct {
	filename   string
	maxSize    int64 // bytes
	maxAge     int   // days
	maxBackups int
	compress   bool

	mu          sync.Mutex
	currentFile *os.File
	currentSize int64
	wg          sync.WaitGroup
}

func openAppend(filename string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// NewRotatingWriter creates a new rotating writer
func NewRotatingWriter(filename string, maxSizeMB, maxAge, maxBackups int, compress bool) (*RotatingWriter, error) {
	file, err := openAppend(filename)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	rw := &RotatingWriter{
		filename:    filename,
		maxSize:     int64(maxSizeMB) * 1024 * 1024,
		maxAge:      maxAge,
		maxBackups:  maxBackups,
		compress:    compress,
		currentFile: file,
		currentSize: info.Size(),
	}

	rw.cleanup()

	return rw, nil
}

// Write writes data to the log file, rotating first if p would overflow it
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentSize > 0 && w.currentSize+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err = w.currentFile.Write(p)
	w.currentSize += int64(n)
	return n, err
}

// Close waits for pending compression and closes the current log file
func (w *RotatingWriter) Close() error {
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.currentFile != nil {
		err := w.currentFile.Close()
		w.currentFile = nil
		return err
	}
	return nil
}

func (w *RotatingWriter) rotate() error {
	if err := w.currentFile.Close(); err != nil {
		return err
	}

	rotatedName := fmt.Sprintf("%s.%s", w.filename, time.Now().Format("20060102-150405.000000"))
	if err := os.Rename(w.filename, rotatedName); err != nil {
		return err
	}

	file, err := os.OpenFile(w.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	w.currentFile = file
	w.currentSize = 0

	if w.compress {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := compressFile(rotatedName); err == nil {
				w.cleanup()
			}
		}()
	} else {
		w.cleanup()
	}

	return nil
}

func compressFile(filename string) error {
	src, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filename + ".gz")
	if err != nil {
		return err
	}

	gzw := gzip.NewWriter(dst)
	if _, err := io.Copy(gzw, src); err != nil {
		gzw.Close()
		dst.Close()
		return err
	}
	if err := gzw.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	return os.Remove(filename)
}

// backups lists rotated files, oldest first
func (w *RotatingWriter) backups() []string {
	files, err := filepath.Glob(w.filename + ".*")
	if err != nil {
		return nil
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}

	var infos []fileInfo
	for _, file := range files {
		// A plain file and its .gz twin may coexist mid-compression.
		if !strings.HasSuffix(file, ".gz") {
			if _, err := os.Stat(file + ".gz"); err == nil {
				continue
			}
		}
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		infos = append(infos, fileInfo{path: file, modTime: info.ModTime()})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].modTime.Equal(infos[j].modTime) {
			return infos[i].path < infos[j].path
		}
		return infos[i].modTime.Before(infos[j].modTime)
	})

	paths := make([]string, len(infos))
	for i, info := range infos {
		paths[i] = info.path
	}
	return paths
}

// cleanup removes backups older than maxAge and trims to maxBackups
func (w *RotatingWriter) cleanup() {
	backups := w.backups()

	if w.maxAge > 0 {
		cutoff := time.Now().AddDate(0, 0, -w.maxAge)
		kept := backups[:0]
		for _, path := range backups {
			info, err := os.Stat(path)
			if err == nil && info.ModTime().Before(cutoff) {
				os.Remove(path)
				continue
			}
			kept = append(kept, path)
		}
		backups = kept
	}

	if w.maxBackups > 0 && len(backups) > w.maxBackups {
		for _, path := range backups[:len(backups)-w.maxBackups] {
			os.Remove(path)
		}
	}
}
