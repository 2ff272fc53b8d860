package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/franz/relaxis-reader/internal/util"
)

// ExportSummary collects the totals of one export run
type ExportSummary struct {
	GeneratedAt time.Time
	Duration    time.Duration
	RunID       string

	// Source
	ArchivePath   string
	ArchiveSize   int64
	ArchiveSHA1   string
	FormatVersion int
	ProjectID     int
	ProjectName   string

	// Output
	OutputDir    string
	Format       Format
	Precision    string
	ManifestPath string

	// Statistics
	SpectraExported int
	SpectraSkipped  int
	SpectraFailed   int
	Points          int
	BytesWritten    int64

	errorCounts map[string]int
}

// ErrorSummary represents an error with its count
type ErrorSummary struct {
	Error string
	Count int
}

// NewExportSummary starts a summary for the given archive
func NewExportSummary(fp *util.Fingerprint) *ExportSummary {
	s := &ExportSummary{
		GeneratedAt: time.Now(),
		errorCounts: make(map[string]int),
	}
	if fp != nil {
		s.ArchivePath = fp.Path
		s.ArchiveSize = fp.Size
		s.ArchiveSHA1 = fp.SHA1
	}
	return s
}

// AddWritten counts a successfully written spectrum
func (s *ExportSummary) AddWritten(result *WriteResult) {
	s.SpectraExported++
	s.Points += result.Points
	s.BytesWritten += result.Bytes
}

// AddSkipped counts a spectrum without datapoints
func (s *ExportSummary) AddSkipped() {
	s.SpectraSkipped++
}

// AddFailed counts a spectrum that could not be loaded or written
func (s *ExportSummary) AddFailed(err error) {
	s.SpectraFailed++
	if s.errorCounts == nil {
		s.errorCounts = make(map[string]int)
	}
	s.errorCounts[err.Error()]++
}

// TopErrors returns the most common failures, most frequent first
func (s *ExportSummary) TopErrors(limit int) []ErrorSummary {
	errors := make([]ErrorSummary, 0, len(s.errorCounts))
	for err, count := range s.errorCounts {
		errors = append(errors, ErrorSummary{Error: err, Count: count})
	}

	sort.Slice(errors, func(i, j int) bool {
		if errors[i].Count != errors[j].Count {
			return errors[i].Count > errors[j].Count
		}
		return errors[i].Error < errors[j].Error
	})

	if len(errors) > limit {
		errors = errors[:limit]
	}
	return errors
}

// Markdown renders the summary
func (s *ExportSummary) Markdown() string {
	var md strings.Builder

	md.WriteString("# RelaxIS Export Summary\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04:05")))
	if s.RunID != "" {
		md.WriteString(fmt.Sprintf("**Run:** `%s`\n\n", s.RunID))
	}
	if s.ManifestPath != "" {
		md.WriteString(fmt.Sprintf("**Manifest:** `%s`\n\n", s.ManifestPath))
	}

	md.WriteString("---\n\n")

	md.WriteString("## Source\n\n")
	md.WriteString("| Field | Value |\n")
	md.WriteString("|-------|-------|\n")
	md.WriteString(fmt.Sprintf("| Archive | `%s` |\n", truncatePath(s.ArchivePath, 60)))
	md.WriteString(fmt.Sprintf("| Size | %s |\n", humanize.Bytes(uint64(s.ArchiveSize))))
	if s.ArchiveSHA1 != "" {
		md.WriteString(fmt.Sprintf("| SHA1 | `%s` |\n", s.ArchiveSHA1))
	}
	md.WriteString(fmt.Sprintf("| Format Version | %d |\n", s.FormatVersion))
	if s.ProjectName != "" {
		md.WriteString(fmt.Sprintf("| Project | %s (%d) |\n", s.ProjectName, s.ProjectID))
	} else {
		md.WriteString(fmt.Sprintf("| Project | %d |\n", s.ProjectID))
	}
	md.WriteString("\n")

	md.WriteString("## Export\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Spectra Exported | %s |\n", humanize.Comma(int64(s.SpectraExported))))
	if s.SpectraSkipped > 0 {
		md.WriteString(fmt.Sprintf("| Spectra Skipped (no datapoints) | %s |\n", humanize.Comma(int64(s.SpectraSkipped))))
	}
	if s.SpectraFailed > 0 {
		md.WriteString(fmt.Sprintf("| Spectra Failed | %s |\n", humanize.Comma(int64(s.SpectraFailed))))
	}
	md.WriteString(fmt.Sprintf("| Datapoints | %s |\n", humanize.Comma(int64(s.Points))))
	md.WriteString(fmt.Sprintf("| Bytes Written | %s |\n", humanize.Bytes(uint64(s.BytesWritten))))
	if s.Format != "" {
		md.WriteString(fmt.Sprintf("| Format | %s |\n", s.Format))
	}
	if s.Precision != "" {
		md.WriteString(fmt.Sprintf("| Precision | %s |\n", s.Precision))
	}
	if s.OutputDir != "" {
		md.WriteString(fmt.Sprintf("| Output | `%s` |\n", truncatePath(s.OutputDir, 60)))
	}
	if s.Duration > 0 {
		md.WriteString(fmt.Sprintf("| Duration | %s |\n", s.Duration.Round(time.Millisecond)))
	}
	md.WriteString("\n")

	if top := s.TopErrors(10); len(top) > 0 {
		md.WriteString("## Top Errors\n\n")
		md.WriteString("| Count | Error |\n")
		md.WriteString("|-------|-------|\n")
		for _, err := range top {
			md.WriteString(fmt.Sprintf("| %d | %s |\n", err.Count, err.Error))
		}
		md.WriteString("\n")
	}

	return md.String()
}

// WriteMarkdown writes the summary to outputPath
func (s *ExportSummary) WriteMarkdown(outputPath string) error {
	if err := util.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(s.Markdown()), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// truncatePath truncates a file path to a maximum length
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// keep start and end
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
