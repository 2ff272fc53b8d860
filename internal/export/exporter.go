// Package export writes every spectrum of a project to disk. Spectra are
// loaded on a single goroutine, since an archive handle is not safe for
// concurrent use, and written by a pool of workers.
package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/franz/relaxis-reader/internal/relaxis"
	"github.com/franz/relaxis-reader/internal/report"
	"github.com/franz/relaxis-reader/internal/util"
)

// Exporter writes the spectra of one project
type Exporter struct {
	archive     *relaxis.Archive
	project     relaxis.Project
	outputDir   string
	format      report.Format
	precision   relaxis.Precision
	concurrency int
	dryRun      bool
	logger      *report.EventLogger
	onProgress  func()
}

// Config holds exporter configuration
type Config struct {
	Archive     *relaxis.Archive
	Project     relaxis.Project
	OutputDir   string
	Format      report.Format
	Precision   relaxis.Precision
	Concurrency int
	DryRun      bool // load and convert, but write nothing
	Logger      *report.EventLogger
	OnProgress  func() // called once per spectrum, never concurrently
}

// New creates a new Exporter
func New(cfg *Config) *Exporter {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Format == "" {
		cfg.Format = report.FormatCSV
	}

	return &Exporter{
		archive:     cfg.Archive,
		project:     cfg.Project,
		outputDir:   cfg.OutputDir,
		format:      cfg.Format,
		precision:   cfg.Precision,
		concurrency: cfg.Concurrency,
		dryRun:      cfg.DryRun,
		logger:      cfg.Logger,
		onProgress:  cfg.OnProgress,
	}
}

// Result represents export results
type Result struct {
	Total        int
	Processed    int
	Succeeded    int
	Skipped      int
	Failed       int
	Points       int
	BytesWritten int64
	Errors       []error
	Files        []string
}

// Fill copies the totals into an export summary
func (r *Result) Fill(summary *report.ExportSummary) {
	summary.SpectraExported = r.Succeeded
	summary.SpectraSkipped = r.Skipped
	summary.Points = r.Points
	summary.BytesWritten = r.BytesWritten
	for _, err := range r.Errors {
		summary.AddFailed(err)
	}
}

// SpectrumIDs lists what Export would process
func (e *Exporter) SpectrumIDs() ([]int, error) {
	ids, err := e.archive.SpectrumIDs(e.project)
	if err != nil {
		return nil, fmt.Errorf("failed to list spectra of project %d: %w", e.project.ID, err)
	}
	return ids, nil
}

// Export loads and writes every spectrum of the project. Per-spectrum
// failures are collected in the result; only listing failures and
// cancellation abort the run.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	ids, err := e.SpectrumIDs()
	if err != nil {
		return nil, err
	}

	if !e.dryRun {
		if err := util.EnsureDir(e.outputDir); err != nil {
			return nil, err
		}
	}

	util.InfoLog("Exporting %d spectra of project %d", len(ids), e.project.ID)
	if e.dryRun {
		util.InfoLog("DRY-RUN mode: no files will be written")
	}

	t := &tally{
		result:     &Result{Total: len(ids), Errors: make([]error, 0)},
		onProgress: e.onProgress,
	}

	spectra := make(chan *relaxis.Spectrum, e.concurrency*2)
	var wg sync.WaitGroup

	for range e.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range spectra {
				e.exportSpectrum(s, t)
			}
		}()
	}

	// the archive handle is only used from this goroutine
	var loadErr error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			loadErr = err
			break
		}

		s, err := e.archive.Spectrum(e.project, id)
		if err != nil {
			e.loadFailed(id, err, t)
			continue
		}
		if code := e.archive.LastError(); code != relaxis.CodeSuccess {
			util.WarnLog("Spectrum %d loaded without metadata: %s", id, relaxis.ErrorString(code))
		}

		select {
		case spectra <- s:
		case <-ctx.Done():
			loadErr = ctx.Err()
		}
		if loadErr != nil {
			break
		}
	}
	close(spectra)
	wg.Wait()

	result := t.result
	if loadErr != nil {
		return result, fmt.Errorf("export interrupted: %w", loadErr)
	}

	util.SuccessLog("Export complete: %d exported, %d skipped, %d failed, %d datapoints",
		result.Succeeded, result.Skipped, result.Failed, result.Points)

	return result, nil
}

// exportSpectrum writes one spectrum and records the outcome
func (e *Exporter) exportSpectrum(s *relaxis.Spectrum, t *tally) {
	started := time.Now()

	var written *report.WriteResult
	var err error
	if e.dryRun {
		written, err = e.convertOnly(s)
	} else {
		written, err = report.WriteSpectrum(e.outputDir, s, e.format, e.precision)
	}

	if err != nil {
		util.ErrorLog("Failed to write spectrum %d: %v", s.ID, err)
		e.logger.LogError(e.project.ID, s.ID, 0, err)
		t.add(func(r *Result) {
			r.Failed++
			r.Errors = append(r.Errors, fmt.Errorf("spectrum %d: %w", s.ID, err))
		})
		return
	}

	util.DebugLog("Wrote spectrum %d (%d points) to %s", s.ID, written.Points, written.Path)
	e.logger.LogSpectrum(e.project.ID, written, time.Since(started))
	t.add(func(r *Result) {
		r.Succeeded++
		r.Points += written.Points
		r.BytesWritten += written.Bytes
		if written.Path != "" {
			r.Files = append(r.Files, written.Path)
		}
	})
}

// convertOnly runs the array conversion without touching the filesystem
func (e *Exporter) convertOnly(s *relaxis.Spectrum) (*report.WriteResult, error) {
	arrays, err := relaxis.Float64Arrays(s, e.precision)
	if err != nil {
		return nil, err
	}
	util.DebugLog("DRY-RUN: Would write %s", report.FileName(s, e.format))
	return &report.WriteResult{SpectrumID: s.ID, Points: len(arrays.Re)}, nil
}

// loadFailed classifies a spectrum that could not be loaded. A spectrum
// without datapoints is skipped, anything else counts as a failure.
func (e *Exporter) loadFailed(id int, err error, t *tally) {
	code := relaxis.CodeOf(err)
	if code == relaxis.CodeNoEntity {
		util.WarnLog("Skipping spectrum %d: no datapoints", id)
		e.logger.LogSkip(e.project.ID, id, "no datapoints")
		t.add(func(r *Result) { r.Skipped++ })
		return
	}

	util.ErrorLog("Failed to load spectrum %d: %v", id, err)
	e.logger.LogError(e.project.ID, id, int(code), err)
	t.add(func(r *Result) {
		r.Failed++
		r.Errors = append(r.Errors, fmt.Errorf("spectrum %d: %w", id, err))
	})
}

// tally serializes result updates from the loader and the workers
type tally struct {
	mu         sync.Mutex
	result     *Result
	onProgress func()
}

func (t *tally) add(fn func(*Result)) {
	t.mu.Lock()
	t.result.Processed++
	fn(t.result)
	if t.onProgress != nil {
		t.onProgress()
	}
	t.mu.Unlock()
}
