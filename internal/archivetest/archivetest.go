// Package archivetest writes small RelaxIS-shaped SQLite archives for tests.
package archivetest

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"

	_ "modernc.org/sqlite" // SQLite driver
)

// Project is a Projects row
type Project struct {
	ID   int
	Name string
	Date string
}

// Point is a Datapoints row; Freq is in Hz as RelaxIS stores it
type Point struct {
	Freq, Re, Im float64
}

// Spectrum is a Files row with its datapoints
type Spectrum struct {
	ID         int
	ProjectID  int
	Circuit    string
	Fitted     string // RelaxIS flag text, "1" is fitted
	LowFreq    float64
	HighFreq   float64
	DateAdded  string
	DateFitted string
	Points     []Point
}

// FitParameter is a Fitparameters row
type FitParameter struct {
	FileID     int
	Index      int
	Name       string
	Value      float64
	Error      float64
	LowerLimit float64
	UpperLimit float64
}

// Metadata is a FileInformation row
type Metadata struct {
	FileID int
	Name   string
	Value  string
}

// Fixture describes the content of an archive.
type Fixture struct {
	// Version is written as the DatabaseFormat property, RawVersion
	// replaces it verbatim when set. NoVersion leaves Properties empty.
	Version    int
	RawVersion string
	NoVersion  bool

	// DateType is the declared type of date columns, TEXT by default.
	// DATETIME makes the driver hand dates back as time.Time.
	DateType string

	// NoFileInformation omits the metadata table, as in format 1 archives
	NoFileInformation bool

	Projects      []Project
	Spectra       []Spectrum
	FitParameters []FitParameter
	Metadata      []Metadata
}

func (f *Fixture) dateType() string {
	if f.DateType == "" {
		return "TEXT"
	}
	return f.DateType
}

func (f *Fixture) schema() []string {
	stmts := []string{
		`CREATE TABLE Properties (Name TEXT, Value TEXT)`,
		fmt.Sprintf(`CREATE TABLE Projects (ID INTEGER PRIMARY KEY, NAME TEXT, DATE %s)`, f.dateType()),
		fmt.Sprintf(`CREATE TABLE Files (
			ID INTEGER PRIMARY KEY,
			project_id INTEGER,
			groupname TEXT,
			fitted TEXT,
			lowfreqlimit REAL,
			highfreqlimit REAL,
			dateadded %[1]s,
			datefitted %[1]s
		)`, f.dateType()),
		`CREATE TABLE Datapoints (file_id INTEGER, frequency REAL, zreal REAL, zimag REAL)`,
		`CREATE TABLE Fitparameters (
			file_id INTEGER,
			pindex INTEGER,
			name TEXT,
			value REAL,
			error REAL,
			lowerlimit REAL,
			upperlimit REAL
		)`,
	}
	if !f.NoFileInformation {
		stmts = append(stmts, `CREATE TABLE FileInformation (file_id INTEGER, name TEXT, value TEXT)`)
	}
	return stmts
}

// Write creates the archive at path.
func Write(path string, f Fixture) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open fixture: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range f.schema() {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	if !f.NoVersion {
		version := f.RawVersion
		if version == "" {
			version = strconv.Itoa(f.Version)
		}
		if _, err := tx.Exec(`INSERT INTO Properties (Name, Value) VALUES ('DatabaseFormat', ?)`, version); err != nil {
			return fmt.Errorf("failed to insert version: %w", err)
		}
	}

	for _, p := range f.Projects {
		if _, err := tx.Exec(`INSERT INTO Projects (ID, NAME, DATE) VALUES (?, ?, ?)`, p.ID, p.Name, p.Date); err != nil {
			return fmt.Errorf("failed to insert project %d: %w", p.ID, err)
		}
	}

	for _, s := range f.Spectra {
		_, err := tx.Exec(`
			INSERT INTO Files (ID, project_id, groupname, fitted, lowfreqlimit, highfreqlimit, dateadded, datefitted)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, s.ID, s.ProjectID, s.Circuit, s.Fitted, s.LowFreq, s.HighFreq, s.DateAdded, s.DateFitted)
		if err != nil {
			return fmt.Errorf("failed to insert spectrum %d: %w", s.ID, err)
		}
		for _, pt := range s.Points {
			if _, err := tx.Exec(`INSERT INTO Datapoints (file_id, frequency, zreal, zimag) VALUES (?, ?, ?, ?)`,
				s.ID, pt.Freq, pt.Re, pt.Im); err != nil {
				return fmt.Errorf("failed to insert datapoint: %w", err)
			}
		}
	}

	for _, p := range f.FitParameters {
		_, err := tx.Exec(`
			INSERT INTO Fitparameters (file_id, pindex, name, value, error, lowerlimit, upperlimit)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, p.FileID, p.Index, p.Name, p.Value, p.Error, p.LowerLimit, p.UpperLimit)
		if err != nil {
			return fmt.Errorf("failed to insert fit parameter: %w", err)
		}
	}

	for _, m := range f.Metadata {
		if _, err := tx.Exec(`INSERT INTO FileInformation (file_id, name, value) VALUES (?, ?, ?)`,
			m.FileID, m.Name, m.Value); err != nil {
			return fmt.Errorf("failed to insert metadata: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fixture: %w", err)
	}
	return nil
}

// Build writes f into a fresh file under t.TempDir and returns its path.
func Build(t testing.TB, f Fixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.rxs")
	if err := Write(path, f); err != nil {
		t.Fatalf("failed to build archive: %v", err)
	}
	return path
}

// Exec runs raw statements against an existing fixture, for tests that
// need a schema RelaxIS would never produce.
func Exec(t testing.TB, path string, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	defer db.Close()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to exec %q: %v", stmt, err)
		}
	}
}

// CellA is a format 2 archive with one project (7, "Cell-A") holding
// spectrum 3: unfitted, two datapoints, no fit parameters, and two
// metadata rows.
func CellA() Fixture {
	return Fixture{
		Version: 2,
		Projects: []Project{
			{ID: 7, Name: "Cell-A", Date: "2023-03-14 09:26:53"},
		},
		Spectra: []Spectrum{
			{
				ID:         3,
				ProjectID:  7,
				Circuit:    "R-RC",
				Fitted:     "0",
				LowFreq:    1.0,
				HighFreq:   10.0,
				DateAdded:  "2023-03-14 10:00:00",
				DateFitted: "",
				Points: []Point{
					{Freq: 1.0, Re: 10, Im: -2},
					{Freq: 10.0, Re: 8, Im: -1},
				},
			},
		},
		Metadata: []Metadata{
			{FileID: 3, Name: "Temperature", Value: "23.5"},
			{FileID: 3, Name: "Operator", Value: "N/A"},
		},
	}
}
