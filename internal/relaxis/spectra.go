package relaxis

import (
	"database/sql"
	"fmt"
	"time"
)

var (
	spectrumIDsProjection = projection{
		table:   "Files",
		columns: []string{"ID"},
		keys:    []string{"project_id"},
		clause:  "WHERE project_id=? ORDER BY ID",
	}
	spectrumProjection = projection{
		table:   "Files",
		columns: []string{"groupname", "fitted", "lowfreqlimit", "highfreqlimit", "dateadded", "datefitted"},
		keys:    []string{"project_id", "ID"},
		clause:  "WHERE project_id=? AND ID=?",
	}
	datapointsProjection = projection{
		table:   "Datapoints",
		columns: []string{"frequency", "zreal", "zimag"},
		keys:    []string{"file_id"},
		clause:  "WHERE file_id=? ORDER BY rowid",
	}
)

// SpectrumIDs lists the ids of the spectra belonging to project. A
// project without spectra is an error matching ErrNoSpectra.
func (a *Archive) SpectrumIDs(project Project) ([]int, error) {
	t, err := a.load("spectrum ids", spectrumIDsProjection, project.ID)
	if err != nil {
		return nil, a.fail(err)
	}
	if t.len() == 0 {
		return nil, a.fail(newError("spectrum ids", CodeNoSpectra, fmt.Errorf("project %d", project.ID)))
	}

	ids := make([]int, 0, t.len())
	for _, row := range t.rows {
		id, err := parseInt(row[0])
		if err != nil {
			return nil, a.fail(newError("spectrum ids", CodeMalformed, err))
		}
		ids = append(ids, id)
	}
	return ids, a.succeed()
}

// Spectrum loads one spectrum of project with its datapoints and, on
// archives that have them, its metadata. Nothing is returned unless the
// Files row and at least one datapoint load.
func (a *Archive) Spectrum(project Project, id int) (*Spectrum, error) {
	t, err := a.load("spectrum", spectrumProjection, project.ID, id)
	if err != nil {
		return nil, a.fail(err)
	}
	if t.len() == 0 {
		return nil, a.fail(newError("spectrum", CodeNonexistentSpectrum,
			fmt.Errorf("project %d spectrum %d", project.ID, id)))
	}

	s, err := decodeSpectrum(t.rows[0])
	if err != nil {
		return nil, a.fail(newError("spectrum", CodeMalformed,
			fmt.Errorf("project %d spectrum %d: %w", project.ID, id, err)))
	}
	s.ID = id
	s.ProjectID = project.ID

	s.Datapoints, err = a.datapoints(id)
	if err != nil {
		return nil, a.fail(err)
	}

	// Metadata is supplementary: a failure leaves it empty and is only
	// visible through LastError.
	if a.HasMetadata() {
		var metaErr error
		if s.Metadata, metaErr = a.metadata(id); metaErr != nil {
			a.fail(metaErr)
			return s, nil
		}
	}
	return s, a.succeed()
}

func decodeSpectrum(row []sql.NullString) (*Spectrum, error) {
	s := &Spectrum{
		Circuit: cellString(row[0]),
		Fitted:  parseFlag(row[1]),
	}

	var err error
	if s.FreqLowerLimit, err = parseFloat(row[2]); err != nil {
		return nil, err
	}
	if s.FreqUpperLimit, err = parseFloat(row[3]); err != nil {
		return nil, err
	}
	if s.DateAdded, err = parseTime(row[4]); err != nil {
		return nil, err
	}
	if s.DateFitted, err = parseOptionalTime(row[5]); err != nil {
		// unfitted spectra may carry placeholder text here
		if s.Fitted {
			return nil, err
		}
		s.DateFitted = time.Time{}
	}
	return s, nil
}

// datapoints loads the samples of a spectrum in storage row order,
// converting frequency to angular frequency.
func (a *Archive) datapoints(spectrumID int) ([]Datapoint, error) {
	t, err := a.load("datapoints", datapointsProjection, spectrumID)
	if err != nil {
		return nil, err
	}
	if t.len() == 0 {
		return nil, newError("datapoints", CodeNoEntity, fmt.Errorf("spectrum %d has no datapoints", spectrumID))
	}

	points := make([]Datapoint, t.len())
	for i, row := range t.rows {
		freq, err := parseFloat(row[0])
		if err != nil {
			return nil, newError("datapoints", CodeMalformed, fmt.Errorf("row %d: %w", i, err))
		}
		re, err := parseFloat(row[1])
		if err != nil {
			return nil, newError("datapoints", CodeMalformed, fmt.Errorf("row %d: %w", i, err))
		}
		im, err := parseFloat(row[2])
		if err != nil {
			return nil, newError("datapoints", CodeMalformed, fmt.Errorf("row %d: %w", i, err))
		}
		points[i] = Datapoint{Omega: angularFrequency(freq), Re: re, Im: im}
	}
	return points, nil
}

// AllSpectra loads every spectrum of project. It fails on the first
// spectrum that cannot be loaded.
func (a *Archive) AllSpectra(project Project) ([]*Spectrum, error) {
	ids, err := a.SpectrumIDs(project)
	if err != nil {
		return nil, err
	}

	spectra := make([]*Spectrum, 0, len(ids))
	for _, id := range ids {
		s, err := a.Spectrum(project, id)
		if err != nil {
			return nil, err
		}
		spectra = append(spectra, s)
	}
	return spectra, nil
}
