// Package journal keeps an append-only, fsynced record of model completions
// that could not be parsed, so they can be inspected without echoing raw
// provider text back to clients.
package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"go.uber.org/zap"
)

// maxLine bounds a single entry when reading the file back.
const maxLine = 4 << 20

// Entry is one unparseable completion.
type Entry struct {
	Feature   string    `json:"feature"`
	UserID    string    `json:"userId"`
	Raw       string    `json:"raw"`
	Handling  string    `json:"handling"` // "rejected" or "fallback"
	Timestamp time.Time `json:"timestamp"`
}

// Recorder is the write side used by services.
type Recorder interface {
	Record(entry Entry) error
}

type Journal struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

func Open(filePath string) (*Journal, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Journal{
		filePath: filePath,
		file:     file,
	}, nil
}

// Record appends entry as one JSON line and syncs it to disk.
func (j *Journal) Record(entry Entry) error {
	start := time.Now()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = start.UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Write(append(data, '\n')); err != nil {
		logger.Log.Error("Journal: failed to write entry",
			zap.String("feature", entry.Feature),
			zap.Error(err),
		)
		return err
	}

	if err := j.file.Sync(); err != nil {
		logger.Log.Error("Journal: failed to sync to disk",
			zap.String("feature", entry.Feature),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Debug("Journal: entry recorded",
		zap.String("feature", entry.Feature),
		zap.Int("raw_bytes", len(entry.Raw)),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

// ReadAll returns every entry in write order, skipping lines that do not
// decode.
func (j *Journal) ReadAll() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	entries := []Entry{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// Discard is a Recorder that drops entries.
type Discard struct{}

func (Discard) Record(Entry) error { return nil }
