package relaxis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/franz/relaxis-reader/internal/archivetest"
)

func TestOpenSupportedVersions(t *testing.T) {
	for _, version := range SupportedVersions {
		f := archivetest.CellA()
		f.Version = version
		path := archivetest.Build(t, f)

		a, err := Open(path)
		if err != nil {
			t.Fatalf("version %d: failed to open archive: %v", version, err)
		}
		if a.LastError() != CodeSuccess {
			t.Errorf("version %d: expected no error state after open, got %d", version, a.LastError())
		}
		if a.FormatVersion() != version {
			t.Errorf("expected format version %d, got %d", version, a.FormatVersion())
		}
		if a.Path() != path {
			t.Errorf("expected path %s, got %s", path, a.Path())
		}
		if err := a.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	}
}

func TestOpenRejectsBadVersions(t *testing.T) {
	testCases := []struct {
		name    string
		fixture archivetest.Fixture
		want    error
		code    Code
	}{
		{"unsupported", archivetest.Fixture{Version: 3}, ErrUnsupportedVersion, CodeUnsupportedVersion},
		{"zero", archivetest.Fixture{Version: 0}, ErrUnsupportedVersion, CodeUnsupportedVersion},
		{"missing row", archivetest.Fixture{NoVersion: true}, ErrUnreadableVersion, CodeUnreadableVersion},
		{"not a number", archivetest.Fixture{RawVersion: "two"}, ErrUnreadableVersion, CodeUnreadableVersion},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := archivetest.Build(t, tc.fixture)
			a, err := Open(path)
			if a != nil {
				a.Close()
				t.Fatal("expected no archive handle on failure")
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
			if CodeOf(err) != tc.code {
				t.Errorf("expected code %d, got %d", tc.code, CodeOf(err))
			}
		})
	}
}

func TestOpenWithoutPropertiesTable(t *testing.T) {
	path := archivetest.Build(t, archivetest.CellA())
	archivetest.Exec(t, path, `DROP TABLE Properties`)

	a, err := Open(path)
	if a != nil {
		a.Close()
		t.Fatal("expected no archive handle")
	}
	if !errors.Is(err, ErrUnreadableVersion) {
		t.Errorf("expected ErrUnreadableVersion, got %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.rxs")

	a, err := Open(path)
	if a != nil {
		a.Close()
		t.Fatal("expected no archive handle")
	}
	if !errors.Is(err, ErrBackend) {
		t.Errorf("expected backend error, got %v", err)
	}
	if CodeOf(err) <= 0 {
		t.Errorf("expected a positive SQLite code, got %d", CodeOf(err))
	}

	// read-only open must not create the file
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("open created the archive file")
	}
}

func TestOpenNotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.rxs")
	if err := os.WriteFile(path, []byte("this is not a sqlite database, just some text padding it out"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	a, err := Open(path)
	if a != nil {
		a.Close()
		t.Fatal("expected no archive handle")
	}
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestOpenPathWithURICharacters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cell #1?.rxs")
	if err := archivetest.Write(path, archivetest.CellA()); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	a, err := OpenWithOptions(path, &OpenOptions{NetworkOptimized: true})
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer a.Close()

	projects, err := a.Projects()
	if err != nil {
		t.Fatalf("failed to list projects: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("expected 1 project, got %d", len(projects))
	}
}

func TestArchiveIsReadOnly(t *testing.T) {
	path := archivetest.Build(t, archivetest.CellA())
	a, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer a.Close()

	if _, err := a.db.Exec(`DELETE FROM Projects`); err == nil {
		t.Error("expected writes to be rejected")
	}
}

func TestIntegrityAndTables(t *testing.T) {
	path := archivetest.Build(t, archivetest.CellA())
	a, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer a.Close()

	if err := a.CheckIntegrity(); err != nil {
		t.Errorf("integrity check failed: %v", err)
	}

	tables, err := a.Tables()
	if err != nil {
		t.Fatalf("failed to list tables: %v", err)
	}
	want := []string{"Datapoints", "FileInformation", "Files", "Fitparameters", "Projects", "Properties"}
	if len(tables) != len(want) {
		t.Fatalf("expected tables %v, got %v", want, tables)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Errorf("table %d: expected %s, got %s", i, want[i], tables[i])
		}
	}

	version, err := a.SQLiteVersion()
	if err != nil || version == "" {
		t.Errorf("expected SQLite version, got %q (%v)", version, err)
	}
}

func TestEngineVersion(t *testing.T) {
	version := EngineVersion()
	if version == "" {
		t.Fatal("expected an SQLite version")
	}
	if version[0] != '3' {
		t.Errorf("expected SQLite 3.x, got %s", version)
	}
}
