package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/franz/relaxis-reader/internal/util"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open manifest: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var decoded Event
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("Failed to decode line %d: %v", len(events)+1, err)
		}
		events = append(events, decoded)
	}
	return events
}

func TestNewEventLogger(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "out")

	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logger.Path()); os.IsNotExist(err) {
		t.Errorf("Manifest was not created at %s", logger.Path())
	}

	filename := filepath.Base(logger.Path())
	if !strings.HasPrefix(filename, "manifest-") || !strings.HasSuffix(filename, ".jsonl") {
		t.Errorf("Manifest filename format incorrect: %s", filename)
	}

	if _, err := uuid.Parse(logger.RunID()); err != nil {
		t.Errorf("Run id %q is not a UUID: %v", logger.RunID(), err)
	}
}

func TestEventLogger_StampsRunID(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	fp := &util.Fingerprint{Path: "/data/cell.rxs", Size: 4096, ModTime: time.Date(2023, 3, 14, 9, 0, 0, 0, time.UTC), SHA1: "abc"}
	if err := logger.LogStart(fp, 7, 2); err != nil {
		t.Fatalf("LogStart failed: %v", err)
	}
	if err := logger.LogSpectrum(7, &WriteResult{SpectrumID: 3, Path: "/out/spectrum-3.csv", Points: 2, Bytes: 40}, 5*time.Millisecond); err != nil {
		t.Fatalf("LogSpectrum failed: %v", err)
	}
	if err := logger.LogError(7, 4, -104, errors.New("spectrum: Archive is malformed")); err != nil {
		t.Fatalf("LogError failed: %v", err)
	}
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}

	for i, event := range events {
		if event.RunID != logger.RunID() {
			t.Errorf("Event %d: expected run id %s, got %s", i, logger.RunID(), event.RunID)
		}
		if event.Timestamp.IsZero() {
			t.Errorf("Event %d: timestamp not set", i)
		}
	}

	start := events[0]
	if start.Event != EventStart || start.Path != "/data/cell.rxs" {
		t.Errorf("Unexpected start event %+v", start)
	}
	if start.Extra["sha1"] != "abc" || start.Extra["size_bytes"] != "4096" || start.Extra["format_version"] != "2" {
		t.Errorf("Unexpected start extras %v", start.Extra)
	}

	spectrum := events[1]
	if spectrum.SpectrumID != 3 || spectrum.Points != 2 || spectrum.Bytes != 40 || spectrum.Duration != 5 {
		t.Errorf("Unexpected spectrum event %+v", spectrum)
	}

	failure := events[2]
	if failure.Level != LevelError || failure.Code != -104 || failure.Error == "" {
		t.Errorf("Unexpected error event %+v", failure)
	}
}

func TestEventLogger_MinLevel(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelWarning)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	logger.LogSpectrum(1, &WriteResult{SpectrumID: 1}, 0)
	logger.LogSkip(1, 2, "no datapoints")
	logger.LogError(1, 3, 0, errors.New("disk full"))
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 2 {
		t.Fatalf("Expected 2 events at warning level, got %d", len(events))
	}
	if events[0].Event != EventSkip || events[0].Extra["reason"] != "no datapoints" {
		t.Errorf("Unexpected skip event %+v", events[0])
	}
}

func TestEventLogger_KeepsZeroIDs(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	logger.LogSkip(0, 0, "no datapoints")
	logger.Close()

	data, err := os.ReadFile(logger.Path())
	if err != nil {
		t.Fatalf("Failed to read manifest: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"project_id":0`) || !strings.Contains(line, `"spectrum_id":0`) {
		t.Errorf("Expected id 0 to be written, got %s", line)
	}
}

func TestEventLogger_ConcurrentWrites(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	const numGoroutines = 8
	const eventsPerGoroutine = 25

	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range eventsPerGoroutine {
				if err := logger.LogSpectrum(1, &WriteResult{SpectrumID: id*100 + j}, 0); err != nil {
					t.Errorf("Concurrent log failed: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
	logger.Close()

	if got := len(readEvents(t, logger.Path())); got != numGoroutines*eventsPerGoroutine {
		t.Errorf("Expected %d events, got %d", numGoroutines*eventsPerGoroutine, got)
	}
}

func TestNullLogger(t *testing.T) {
	logger := NullLogger()

	if err := logger.LogSkip(1, 2, "x"); err != nil {
		t.Errorf("Null logger returned error: %v", err)
	}
	if logger.Path() != "" || logger.RunID() != "" {
		t.Error("Null logger should have no path or run id")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Null logger close returned error: %v", err)
	}
}
