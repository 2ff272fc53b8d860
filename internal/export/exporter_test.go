package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/franz/relaxis-reader/internal/archivetest"
	"github.com/franz/relaxis-reader/internal/relaxis"
	"github.com/franz/relaxis-reader/internal/report"
)

// projectFixture holds project 7 with spectra 3 and 5 (two points each),
// spectrum 6 without datapoints, and spectrum 8 with a broken datapoint.
func projectFixture() archivetest.Fixture {
	f := archivetest.CellA()
	points := []archivetest.Point{{Freq: 1, Re: 10, Im: -2}, {Freq: 10, Re: 8, Im: -1}}
	f.Spectra = append(f.Spectra,
		archivetest.Spectrum{ID: 5, ProjectID: 7, Circuit: "R", Fitted: "0", DateAdded: "2023-03-14 11:00:00", Points: points},
		archivetest.Spectrum{ID: 6, ProjectID: 7, Circuit: "R", Fitted: "0", DateAdded: "2023-03-14 12:00:00"},
		archivetest.Spectrum{ID: 8, ProjectID: 7, Circuit: "R", Fitted: "0", DateAdded: "2023-03-14 13:00:00", Points: points},
	)
	return f
}

func openArchive(t *testing.T, f archivetest.Fixture, stmts ...string) *relaxis.Archive {
	t.Helper()
	path := archivetest.Build(t, f)
	if len(stmts) > 0 {
		archivetest.Exec(t, path, stmts...)
	}
	a, err := relaxis.Open(path)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestExport(t *testing.T) {
	a := openArchive(t, projectFixture(), `UPDATE Datapoints SET zreal='bad' WHERE file_id=8`)
	outDir := filepath.Join(t.TempDir(), "out")

	logger, err := report.NewEventLogger(outDir, report.LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	progress := 0
	exporter := New(&Config{
		Archive:     a,
		Project:     relaxis.Project{ID: 7},
		OutputDir:   outDir,
		Format:      report.FormatCSV,
		Concurrency: 2,
		Logger:      logger,
		OnProgress:  func() { progress++ },
	})

	result, err := exporter.Export(context.Background())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if result.Total != 4 || result.Processed != 4 {
		t.Errorf("Expected 4 spectra processed, got total %d processed %d", result.Total, result.Processed)
	}
	if result.Succeeded != 2 || result.Skipped != 1 || result.Failed != 1 {
		t.Errorf("Unexpected outcome: %d succeeded, %d skipped, %d failed", result.Succeeded, result.Skipped, result.Failed)
	}
	if result.Points != 4 {
		t.Errorf("Expected 4 datapoints, got %d", result.Points)
	}
	if progress != 4 {
		t.Errorf("Expected 4 progress callbacks, got %d", progress)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], relaxis.ErrMalformed) {
		t.Errorf("Expected one malformed error, got %v", result.Errors)
	}

	sort.Strings(result.Files)
	want := []string{
		filepath.Join(outDir, "spectrum-3_R-RC.csv"),
		filepath.Join(outDir, "spectrum-5_R.csv"),
	}
	if len(result.Files) != len(want) {
		t.Fatalf("Expected files %v, got %v", want, result.Files)
	}
	var total int64
	for i, path := range want {
		if result.Files[i] != path {
			t.Errorf("Expected %s, got %s", path, result.Files[i])
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Missing export %s: %v", path, err)
		}
		total += info.Size()
	}
	if total != result.BytesWritten {
		t.Errorf("Reported %d bytes, files hold %d", result.BytesWritten, total)
	}

	summary := report.NewExportSummary(nil)
	result.Fill(summary)
	if summary.SpectraExported != 2 || summary.SpectraSkipped != 1 || summary.SpectraFailed != 1 {
		t.Errorf("Unexpected summary %+v", summary)
	}
}

func TestExportDryRun(t *testing.T) {
	a := openArchive(t, projectFixture())
	outDir := filepath.Join(t.TempDir(), "out")

	exporter := New(&Config{
		Archive:   a,
		Project:   relaxis.Project{ID: 7},
		OutputDir: outDir,
		DryRun:    true,
	})

	result, err := exporter.Export(context.Background())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if result.Succeeded != 3 || result.Skipped != 1 {
		t.Errorf("Unexpected outcome: %d succeeded, %d skipped", result.Succeeded, result.Skipped)
	}
	if result.BytesWritten != 0 || len(result.Files) != 0 {
		t.Error("Dry run should not report written files")
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("Dry run created the output directory")
	}
}

func TestExportEmptyProject(t *testing.T) {
	f := projectFixture()
	f.Projects = append(f.Projects, archivetest.Project{ID: 9, Name: "Empty", Date: "2023-03-14 09:00:00"})
	a := openArchive(t, f)

	exporter := New(&Config{Archive: a, Project: relaxis.Project{ID: 9}, OutputDir: t.TempDir()})
	result, err := exporter.Export(context.Background())
	if result != nil {
		t.Error("Expected no result")
	}
	if !errors.Is(err, relaxis.ErrNoSpectra) {
		t.Errorf("Expected ErrNoSpectra, got %v", err)
	}
}

func TestExportCancelled(t *testing.T) {
	a := openArchive(t, projectFixture())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exporter := New(&Config{Archive: a, Project: relaxis.Project{ID: 7}, OutputDir: t.TempDir()})
	result, err := exporter.Export(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if result == nil || result.Processed != 0 {
		t.Errorf("Expected nothing processed, got %+v", result)
	}
}
