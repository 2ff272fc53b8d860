package relaxis

import (
	"errors"
	"testing"

	"github.com/franz/relaxis-reader/internal/archivetest"
)

func fittedCellA() archivetest.Fixture {
	f := archivetest.CellA()
	f.Spectra[0].Fitted = "1"
	f.Spectra[0].DateFitted = "2023-03-15 08:30:00"
	for i := range 20 {
		f.FitParameters = append(f.FitParameters, archivetest.FitParameter{
			FileID:     3,
			Index:      i,
			Name:       "R" + string(rune('a'+i)),
			Value:      float64(i) * 1.5,
			Error:      0.01,
			LowerLimit: 0,
			UpperLimit: 1e6,
		})
	}
	// a parameter of another spectrum must not show up
	f.FitParameters = append(f.FitParameters, archivetest.FitParameter{FileID: 4, Index: 0, Name: "other"})
	return f
}

func TestFitParameters(t *testing.T) {
	a := openFixture(t, fittedCellA())

	params, err := a.FitParameters(Project{ID: 7}, 3)
	if err != nil {
		t.Fatalf("failed to load fit parameters: %v", err)
	}
	if len(params) != 20 {
		t.Fatalf("expected 20 parameters, got %d", len(params))
	}
	for i, p := range params {
		if p.Index != i {
			t.Errorf("parameter %d: expected index %d, got %d", i, i, p.Index)
		}
		if p.SpectrumID != 3 {
			t.Errorf("parameter %d: expected spectrum 3, got %d", i, p.SpectrumID)
		}
		if p.Value != float64(i)*1.5 {
			t.Errorf("parameter %d: expected value %g, got %g", i, float64(i)*1.5, p.Value)
		}
		if p.Error != 0.01 || p.UpperLimit != 1e6 {
			t.Errorf("parameter %d: unexpected error/limits %+v", i, p)
		}
	}
	if params[0].Name != "Ra" {
		t.Errorf("expected name Ra, got %q", params[0].Name)
	}
	if a.LastError() != CodeSuccess {
		t.Errorf("expected success code, got %d", a.LastError())
	}
}

func TestFitParametersUnknownSpectrum(t *testing.T) {
	a := openFixture(t, fittedCellA())

	params, err := a.FitParameters(Project{ID: 7}, 999)
	if err != nil {
		t.Fatalf("expected empty success for a spectrum without parameters, got %v", err)
	}
	if params == nil || len(params) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", params)
	}
}

func TestFitParametersMalformedShape(t *testing.T) {
	path := archivetest.Build(t, fittedCellA())
	archivetest.Exec(t, path,
		`DROP TABLE Fitparameters`,
		`CREATE TABLE Fitparameters (file_id INTEGER, pindex INTEGER, name TEXT, value REAL)`,
	)
	a, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer a.Close()

	params, err := a.FitParameters(Project{ID: 7}, 3)
	if params != nil {
		t.Errorf("expected no parameters, got %v", params)
	}
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if errors.Is(err, ErrBackend) {
		t.Errorf("schema drift reported as backend error: %v", err)
	}
	if a.LastError() != CodeMalformed {
		t.Errorf("expected last error %d, got %d", CodeMalformed, a.LastError())
	}
}

func TestFitParametersMissingTable(t *testing.T) {
	path := archivetest.Build(t, fittedCellA())
	archivetest.Exec(t, path, `DROP TABLE Fitparameters`)
	a, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer a.Close()

	_, err = a.FitParameters(Project{ID: 7}, 3)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestFitParametersMalformedValue(t *testing.T) {
	path := archivetest.Build(t, fittedCellA())
	archivetest.Exec(t, path, `UPDATE Fitparameters SET value='fixed' WHERE pindex=5`)
	a, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer a.Close()

	params, err := a.FitParameters(Project{ID: 7}, 3)
	if params != nil {
		t.Errorf("expected no partial result, got %d parameters", len(params))
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
	if a.LastError() != CodeMalformed {
		t.Errorf("expected last error %d, got %d", CodeMalformed, a.LastError())
	}
}

func TestScanFitParametersStopsEarly(t *testing.T) {
	a := openFixture(t, fittedCellA())

	rows, err := a.openCursor("test", 6, fitParametersProjection.sql(), 3)
	if err != nil {
		t.Fatalf("failed to open cursor: %v", err)
	}
	defer rows.Close()

	n := 0
	for _, err := range scanFitParameters(rows, 3) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("expected to stop after 3 rows, got %d", n)
	}
}

func TestOpenCursorColumnShape(t *testing.T) {
	a := openFixture(t, fittedCellA())

	rows, err := a.openCursor("test", 6, `SELECT pindex,name FROM Fitparameters`)
	if rows != nil {
		rows.Close()
		t.Fatal("expected no cursor")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}
