package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/relaxis-reader/internal/export"
	"github.com/franz/relaxis-reader/internal/report"
	"github.com/franz/relaxis-reader/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export every spectrum of a project",
	Long: `Write the datapoints of every spectrum in a project to one file per spectrum.

Each file holds omega, re and im columns (CSV) or objects (JSONL). Next to
the data files the export writes:
- manifest-<timestamp>.jsonl: one event per spectrum, stamped with a run id
- summary.md: totals, archive fingerprint and the most common failures

Spectra without datapoints are skipped; spectra that fail to load are
reported and do not stop the export.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("project", "p", "", "project id or name (default: first project)")
	exportCmd.Flags().StringP("out", "o", "rlx-export", "output directory")
	exportCmd.Flags().String("format", "csv", "output format: csv or jsonl")
	exportCmd.Flags().String("precision", "double", "datapoint precision: single or double")
	exportCmd.Flags().Int("concurrency", 4, "number of concurrent file writers")
	exportCmd.Flags().Bool("dry-run", false, "load and convert spectra without writing files")
}

func runExport(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, "project", "out", "format", "precision", "concurrency")
	path := args[0]
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	concurrency := GetConfigInt("concurrency", 4)

	format, err := configFormat()
	if err != nil {
		return err
	}
	precision, err := configPrecision()
	if err != nil {
		return err
	}

	fp, err := util.FingerprintFile(path)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", path, err)
	}

	a, err := openArchive(path)
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := selectProject(a, GetConfigString("project", ""))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Create event logger with appropriate log level
	logLevel := report.LevelInfo
	if viper.GetBool("quiet") {
		logLevel = report.LevelWarning
	} else if viper.GetBool("verbose") {
		logLevel = report.LevelDebug
	}

	outDir := GetConfigString("out", "rlx-export")
	logger := report.NullLogger()
	if !dryRun {
		logger, err = report.NewEventLogger(outDir, logLevel)
		if err != nil {
			util.WarnLog("Failed to create manifest: %v", err)
			logger = report.NullLogger()
		}
	}
	defer logger.Close()

	if logger.Path() != "" {
		util.InfoLog("Manifest: %s", logger.Path())
	}

	summary := report.NewExportSummary(fp)
	summary.RunID = logger.RunID()
	summary.FormatVersion = a.FormatVersion()
	summary.ProjectID = project.ID
	summary.ProjectName = project.Name
	summary.OutputDir = outDir
	summary.Format = format
	summary.Precision = precision.String()
	summary.ManifestPath = logger.Path()

	logger.LogStart(fp, project.ID, a.FormatVersion())

	util.InfoLog("=== Export ===")
	util.InfoLog("Archive: %s (%s)", path, humanize.Bytes(uint64(fp.Size)))
	util.InfoLog("Project: %s (%d)", project.Name, project.ID)
	util.InfoLog("Output: %s as %s, %s precision", outDir, format, precision)

	cfg := &export.Config{
		Archive:     a,
		Project:     project,
		OutputDir:   outDir,
		Format:      format,
		Precision:   precision,
		Concurrency: concurrency,
		DryRun:      dryRun,
		Logger:      logger,
	}

	var bar *progressbar.ProgressBar
	if util.ShowProgress() {
		ids, err := a.SpectrumIDs(project)
		if err != nil {
			return fmt.Errorf("failed to list spectra of project %d: %w", project.ID, err)
		}
		bar = progressbar.NewOptions(len(ids),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Exporting"),
			progressbar.OptionSetWidth(min(40, util.GetTerminalWidth()/3)),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("spectra"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
		cfg.OnProgress = func() { bar.Add(1) }
	}

	exporter := export.New(cfg)

	startTime := time.Now()
	result, err := exporter.Export(ctx)
	if bar != nil {
		bar.Finish()
	}
	if result == nil {
		return fmt.Errorf("export failed: %w", err)
	}

	summary.Duration = time.Since(startTime)
	result.Fill(summary)
	logger.LogFinish(summary)

	// Summary
	util.InfoLog("")
	util.SuccessLog("=== Export Summary ===")
	util.InfoLog("Total time: %v", summary.Duration.Round(time.Millisecond))
	util.InfoLog("Spectra processed: %d of %d", result.Processed, result.Total)
	util.InfoLog("  Exported: %d", result.Succeeded)
	util.InfoLog("  Skipped: %d", result.Skipped)
	if result.Failed > 0 {
		util.WarnLog("  Failed: %d", result.Failed)
	}
	util.InfoLog("Datapoints: %s", humanize.Comma(int64(result.Points)))
	util.InfoLog("Bytes written: %s", humanize.Bytes(uint64(result.BytesWritten)))

	if result.Failed > 0 {
		util.InfoLog("")
		util.WarnLog("Errors encountered:")
		for i, e := range result.Errors {
			if i >= 10 {
				util.WarnLog("... and %d more errors", len(result.Errors)-10)
				break
			}
			util.WarnLog("  - %v", e)
		}
	}

	if !dryRun {
		summaryPath := filepath.Join(outDir, "summary.md")
		if err := summary.WriteMarkdown(summaryPath); err != nil {
			util.WarnLog("Failed to write summary: %v", err)
		} else {
			util.SuccessLog("Summary saved to: %s", summaryPath)
		}
	}

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}
