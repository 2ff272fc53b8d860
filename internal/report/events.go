package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/franz/relaxis-reader/internal/util"
)

// EventType represents the type of manifest event
type EventType string

const (
	EventStart    EventType = "start"
	EventSpectrum EventType = "spectrum"
	EventSkip     EventType = "skip"
	EventError    EventType = "error"
	EventFinish   EventType = "finish"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event is a single line of the export manifest
type Event struct {
	Timestamp  time.Time         `json:"ts"`
	Level      EventLevel        `json:"level"`
	Event      EventType         `json:"event"`
	RunID      string            `json:"run_id"`
	ProjectID  int               `json:"project_id"`
	SpectrumID int               `json:"spectrum_id"`
	Path       string            `json:"path,omitempty"`
	Points     int               `json:"points,omitempty"`
	Bytes      int64             `json:"bytes,omitempty"`
	Duration   int64             `json:"duration_ms,omitempty"` // in milliseconds
	Code       int               `json:"code,omitempty"`
	Error      string            `json:"error,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// EventLogger writes manifest events to a JSONL file. Every event of
// one logger carries the same run id.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates manifest-<timestamp>.jsonl in outputDir and
// assigns a fresh run id. minLevel determines which events are written.
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := util.EnsureDir(outputDir); err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("manifest-%s.jsonl", timestamp))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		runID:    uuid.NewString(),
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the manifest
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.RunID = l.runID

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogStart records the archive an export reads from
func (l *EventLogger) LogStart(fp *util.Fingerprint, projectID, formatVersion int) error {
	extra := map[string]string{
		"format_version": strconv.Itoa(formatVersion),
	}
	path := ""
	if fp != nil {
		path = fp.Path
		extra["sha1"] = fp.SHA1
		extra["size_bytes"] = strconv.FormatInt(fp.Size, 10)
		extra["mod_time"] = fp.ModTime.Format(time.RFC3339)
	}

	return l.Log(&Event{
		Level:     LevelInfo,
		Event:     EventStart,
		ProjectID: projectID,
		Path:      path,
		Extra:     extra,
	})
}

// LogSpectrum records one written spectrum file
func (l *EventLogger) LogSpectrum(projectID int, result *WriteResult, duration time.Duration) error {
	return l.Log(&Event{
		Level:      LevelInfo,
		Event:      EventSpectrum,
		ProjectID:  projectID,
		SpectrumID: result.SpectrumID,
		Path:       result.Path,
		Points:     result.Points,
		Bytes:      result.Bytes,
		Duration:   duration.Milliseconds(),
	})
}

// LogSkip records a spectrum that had nothing to write
func (l *EventLogger) LogSkip(projectID, spectrumID int, reason string) error {
	return l.Log(&Event{
		Level:      LevelWarning,
		Event:      EventSkip,
		ProjectID:  projectID,
		SpectrumID: spectrumID,
		Extra: map[string]string{
			"reason": reason,
		},
	})
}

// LogError records a failed spectrum together with its archive error code
func (l *EventLogger) LogError(projectID, spectrumID, code int, err error) error {
	return l.Log(&Event{
		Level:      LevelError,
		Event:      EventError,
		ProjectID:  projectID,
		SpectrumID: spectrumID,
		Code:       code,
		Error:      err.Error(),
	})
}

// LogFinish records the totals of the run
func (l *EventLogger) LogFinish(summary *ExportSummary) error {
	return l.Log(&Event{
		Level:     LevelInfo,
		Event:     EventFinish,
		ProjectID: summary.ProjectID,
		Points:    summary.Points,
		Bytes:     summary.BytesWritten,
		Duration:  summary.Duration.Milliseconds(),
		Extra: map[string]string{
			"exported": strconv.Itoa(summary.SpectraExported),
			"skipped":  strconv.Itoa(summary.SpectraSkipped),
			"failed":   strconv.Itoa(summary.SpectraFailed),
		},
	})
}

// Close closes the manifest file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the manifest file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// RunID returns the run id stamped on every event
func (l *EventLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
