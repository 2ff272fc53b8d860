package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/franz/relaxis-reader/internal/relaxis"
	"github.com/franz/relaxis-reader/internal/util"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor FILE",
	Short: "Run diagnostic checks on an archive",
	Long: `Run diagnostic checks to ensure an archive can be read.

This command checks:
- Embedded SQLite version
- File accessibility and size
- Network filesystem placement
- Archive format version
- Required tables
- SQLite integrity
- Project listing

Use this command to troubleshoot archives that fail to open or load.`,
	Args: cobra.ExactArgs(1),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// requiredTables lists the tables every supported format version has
var requiredTables = []string{"Datapoints", "Files", "Fitparameters", "Projects", "Properties"}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	path := args[0]

	util.InfoLog("=== RLX Doctor - Archive Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{
		checkSQLite(),
		checkFile(path),
		checkNetwork(path),
	}
	results = append(results, checkArchive(path)...)

	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. The archive cannot be read reliably.")
		return fmt.Errorf("archive diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed! The archive is ready to read.")
	}

	return nil
}

// checkSQLite reports the embedded SQLite version
func checkSQLite() checkResult {
	version := relaxis.EngineVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkFile verifies the archive is a readable regular file
func checkFile(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		return checkResult{
			name:    "File",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "File",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", path),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return checkResult{
			name:    "File",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}
	f.Close()

	return checkResult{
		name:    "File",
		message: fmt.Sprintf("%s (%s, modified %s)", path, humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime())),
	}
}

// checkNetwork warns when the archive is on a network mount
func checkNetwork(path string) checkResult {
	info, err := util.DetectNetworkFilesystem(path)
	if err != nil {
		return checkResult{
			name:    "Filesystem",
			warning: true,
			message: fmt.Sprintf("cannot determine filesystem: %v", err),
		}
	}

	if info.IsNetwork {
		return checkResult{
			name:    "Filesystem",
			warning: true,
			message: fmt.Sprintf("network filesystem (%s at %s); reads will be slower", info.Protocol, info.MountPath),
		}
	}

	return checkResult{
		name:    "Filesystem",
		message: "local",
	}
}

// checkArchive opens the archive and inspects version, schema, integrity
// and projects. Later checks are skipped when it cannot be opened.
func checkArchive(path string) []checkResult {
	a, err := relaxis.Open(path)
	if err != nil {
		return []checkResult{{
			name:    "Format version",
			error:   true,
			message: fmt.Sprintf("%s (code %d)", err, relaxis.CodeOf(err)),
		}}
	}
	defer a.Close()

	results := []checkResult{{
		name:    "Format version",
		message: fmt.Sprintf("%d (metadata %s)", a.FormatVersion(), availability(a.HasMetadata())),
	}}

	results = append(results, checkTables(a))

	if err := a.CheckIntegrity(); err != nil {
		results = append(results, checkResult{
			name:    "Integrity",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		})
	} else {
		results = append(results, checkResult{name: "Integrity", message: "ok"})
	}

	projects, err := a.Projects()
	switch {
	case err != nil:
		results = append(results, checkResult{
			name:    "Projects",
			error:   true,
			message: fmt.Sprintf("cannot list projects: %v", err),
		})
	case len(projects) == 0:
		results = append(results, checkResult{
			name:    "Projects",
			warning: true,
			message: "archive contains no projects",
		})
	default:
		spectra := 0
		for _, p := range projects {
			if ids, err := a.SpectrumIDs(p); err == nil {
				spectra += len(ids)
			}
		}
		results = append(results, checkResult{
			name:    "Projects",
			message: fmt.Sprintf("%s projects, %s spectra", humanize.Comma(int64(len(projects))), humanize.Comma(int64(spectra))),
		})
	}

	return results
}

// checkTables verifies the schema carries every table the reader queries
func checkTables(a *relaxis.Archive) checkResult {
	tables, err := a.Tables()
	if err != nil {
		return checkResult{
			name:    "Tables",
			error:   true,
			message: fmt.Sprintf("cannot list tables: %v", err),
		}
	}

	var missing []string
	for _, name := range requiredTables {
		if !slices.ContainsFunc(tables, func(t string) bool { return strings.EqualFold(t, name) }) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return checkResult{
			name:    "Tables",
			error:   true,
			message: fmt.Sprintf("missing %s", strings.Join(missing, ", ")),
		}
	}

	return checkResult{
		name:    "Tables",
		message: fmt.Sprintf("%d tables", len(tables)),
	}
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "not available"
}
