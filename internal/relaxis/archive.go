// Package relaxis reads RelaxIS impedance spectroscopy archives.
//
// An archive is a SQLite file with a fixed, versioned table layout. Open
// validates the DatabaseFormat property and returns an Archive from which
// projects, spectra, datapoints, metadata and fit parameters are loaded.
// The archive is never written to.
//
// An Archive is not safe for concurrent use; open one handle per goroutine.
package relaxis

import (
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/franz/relaxis-reader/internal/util"

	_ "modernc.org/sqlite" // SQLite driver
)

// SupportedVersions lists the DatabaseFormat values this package reads.
// Version 2 added the FileInformation metadata table.
var SupportedVersions = []int{1, 2}

// metadataVersion is the first format version carrying FileInformation.
const metadataVersion = 2

// Archive is an open, validated RelaxIS file.
type Archive struct {
	db      *sql.DB
	path    string
	version int
	lastErr Code
	checked map[string]bool // projections that passed requireColumns
}

// OpenOptions holds options for opening an archive
type OpenOptions struct {
	NetworkOptimized bool // larger page cache and in-memory temp storage for archives on network shares
}

// Open opens the archive at path read-only with default options and
// checks its format version. No Archive is returned when any step fails.
func Open(path string) (*Archive, error) {
	return OpenWithOptions(path, nil)
}

// OpenWithOptions is Open with custom options.
func OpenWithOptions(path string, opts *OpenOptions) (*Archive, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}

	db, err := sql.Open("sqlite", readOnlyDSN(path, opts))
	if err != nil {
		return nil, backendError("open", err)
	}

	// One connection keeps every query on the same read snapshot
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, backendError("open", err)
	}

	a := &Archive{db: db, path: path, checked: make(map[string]bool)}
	version, err := a.readVersion()
	if err != nil {
		db.Close()
		return nil, err
	}
	if !slices.Contains(SupportedVersions, version) {
		db.Close()
		return nil, newError("open", CodeUnsupportedVersion,
			fmt.Errorf("DatabaseFormat %d, supported %v", version, SupportedVersions))
	}

	a.version = version
	a.lastErr = CodeSuccess
	util.DebugLog("relaxis: opened %s (format %d)", path, version)
	return a, nil
}

// uriEscaper escapes the characters SQLite's URI parser treats specially.
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// readOnlyDSN builds the driver URI. Pragmas go in the DSN so that they
// are applied again if database/sql ever reopens the connection.
func readOnlyDSN(path string, opts *OpenOptions) string {
	pragmas := []string{"query_only(1)"}
	if opts.NetworkOptimized {
		// fewer round-trips to the share: 64MB page cache, temp tables in memory
		pragmas = append(pragmas, "cache_size(-64000)", "temp_store(memory)")
	}

	var b strings.Builder
	b.WriteString("file:")
	b.WriteString(uriEscaper.Replace(path))
	b.WriteString("?mode=ro")
	for _, p := range pragmas {
		b.WriteString("&_pragma=")
		b.WriteString(p)
	}
	return b.String()
}

// readVersion reads the single DatabaseFormat property.
func (a *Archive) readVersion() (int, error) {
	rows, err := a.db.Query(`SELECT Value FROM Properties WHERE Name='DatabaseFormat'`)
	if err != nil {
		return 0, newError("open", CodeUnreadableVersion, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil || len(cols) != 1 {
		return 0, newError("open", CodeUnreadableVersion, fmt.Errorf("field missing"))
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, newError("open", CodeUnreadableVersion, err)
		}
		return 0, newError("open", CodeUnreadableVersion, fmt.Errorf("field missing"))
	}

	var raw sql.NullString
	if err := rows.Scan(&raw); err != nil {
		return 0, newError("open", CodeUnreadableVersion, err)
	}
	version, err := strconv.Atoi(strings.TrimSpace(cellString(raw)))
	if err != nil {
		return 0, newError("open", CodeUnreadableVersion, err)
	}
	return version, nil
}

// Close releases the backend connection. The Archive must not be used afterwards.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the file system path the archive was opened from.
func (a *Archive) Path() string {
	return a.path
}

// FormatVersion returns the archive's DatabaseFormat property.
func (a *Archive) FormatVersion() int {
	return a.version
}

// HasMetadata reports whether the format version carries spectrum metadata.
func (a *Archive) HasMetadata() bool {
	return a.version >= metadataVersion
}

// LastError returns the code stored by the most recent query on this
// Archive. Every call overwrites it, so prefer the returned error; this is
// kept for diagnostics only.
func (a *Archive) LastError() Code {
	return a.lastErr
}

// EngineVersion returns the version of the embedded SQLite library, or
// an empty string when it cannot be queried.
func EngineVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return ""
	}
	return version
}

// SQLiteVersion returns the version of the SQLite library serving a.
func (a *Archive) SQLiteVersion() (string, error) {
	var version string
	if err := a.db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return "", backendError("sqlite version", err)
	}
	return version, nil
}

// CheckIntegrity runs PRAGMA integrity_check on the archive.
func (a *Archive) CheckIntegrity() error {
	var result string
	if err := a.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return a.fail(backendError("integrity check", err))
	}
	if result != "ok" {
		return a.fail(newError("integrity check", CodeMalformed, fmt.Errorf("%s", result)))
	}
	return a.succeed()
}

// Tables lists the tables present in the archive, sorted by name.
func (a *Archive) Tables() ([]string, error) {
	t, err := a.getTable("tables", 1, `SELECT name FROM sqlite_master WHERE type='table' ORDER BY name`)
	if err != nil {
		return nil, a.fail(err)
	}
	names := make([]string, 0, t.len())
	for _, row := range t.rows {
		names = append(names, cellString(row[0]))
	}
	return names, a.succeed()
}

// fail records err's code as the last error and returns err unchanged.
func (a *Archive) fail(err error) error {
	a.lastErr = CodeOf(err)
	return err
}

func (a *Archive) succeed() error {
	a.lastErr = CodeSuccess
	return nil
}
