package relaxis

import (
	"database/sql"
	"fmt"
	"iter"
)

var fitParametersProjection = projection{
	table:   "Fitparameters",
	columns: []string{"pindex", "name", "value", "error", "lowerlimit", "upperlimit"},
	keys:    []string{"file_id"},
	clause:  "WHERE file_id=? ORDER BY rowid",
}

// FitParameters loads the fit parameters of a spectrum. A spectrum that
// was never fitted has none, which is an empty result, not an error.
// The project is accepted for symmetry with Spectrum; RelaxIS keys
// parameters by spectrum id alone.
func (a *Archive) FitParameters(project Project, spectrumID int) (params []FitParameter, err error) {
	rows, err := a.cursor("fit parameters", fitParametersProjection, spectrumID)
	if err != nil {
		return nil, a.fail(err)
	}
	defer func() {
		// a failing close overrides whatever the loop produced
		if cerr := rows.Close(); cerr != nil {
			params, err = nil, backendError("fit parameters", cerr)
		}
		if err != nil {
			err = a.fail(err)
			return
		}
		err = a.succeed()
	}()

	params = []FitParameter{}
	for p, err := range scanFitParameters(rows, spectrumID) {
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

// scanFitParameters yields one FitParameter per cursor row. It is single
// pass and stops at the first error.
func scanFitParameters(rows *sql.Rows, spectrumID int) iter.Seq2[FitParameter, error] {
	return func(yield func(FitParameter, error) bool) {
		for rows.Next() {
			var (
				index                   sql.NullInt64
				name                    sql.NullString
				value, perr, lower, upp sql.NullFloat64
			)
			if err := rows.Scan(&index, &name, &value, &perr, &lower, &upp); err != nil {
				yield(FitParameter{}, newError("fit parameters", CodeMalformed, fmt.Errorf("scan: %w", err)))
				return
			}
			p := FitParameter{
				SpectrumID: spectrumID,
				Index:      int(index.Int64),
				Name:       cellString(name),
				Value:      value.Float64,
				Error:      perr.Float64,
				LowerLimit: lower.Float64,
				UpperLimit: upp.Float64,
			}
			if !yield(p, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(FitParameter{}, backendError("fit parameters", err))
		}
	}
}
