package relaxis

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/franz/relaxis-reader/internal/util"
)

// table is a fully materialized query result; every cell is kept as text.
type table struct {
	columns int
	rows    [][]sql.NullString
}

func (t *table) len() int {
	return len(t.rows)
}

// projection is a loader query over one fixed table. The columns are
// checked against the archive schema before the query runs.
type projection struct {
	table   string
	columns []string
	keys    []string // columns the clause filters on
	clause  string   // WHERE / ORDER BY
}

func (p projection) sql() string {
	return fmt.Sprintf("SELECT %s FROM %s %s", strings.Join(p.columns, ","), p.table, p.clause)
}

// requireColumns reports CodeMalformed when p's table lacks one of its
// columns or keys. Projections that pass are remembered for the life of
// the Archive.
func (a *Archive) requireColumns(op string, p projection) error {
	query := p.sql()
	if a.checked[query] {
		return nil
	}

	rows, err := a.db.Query(`SELECT name FROM pragma_table_info(?)`, p.table)
	if err != nil {
		return backendError(op, err)
	}
	defer rows.Close()

	var have []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return backendError(op, err)
		}
		have = append(have, name)
	}
	if err := rows.Err(); err != nil {
		return backendError(op, err)
	}
	if len(have) == 0 {
		return newError(op, CodeMalformed, fmt.Errorf("table %s missing", p.table))
	}

	var missing []string
	for _, col := range append(slices.Clip(p.columns), p.keys...) {
		// SQLite identifiers are case-insensitive
		if !slices.ContainsFunc(have, func(n string) bool { return strings.EqualFold(n, col) }) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return newError(op, CodeMalformed,
			fmt.Errorf("table %s lacks column %s", p.table, strings.Join(missing, ", ")))
	}

	a.checked[query] = true
	return nil
}

// load checks p against the schema and materializes its result.
func (a *Archive) load(op string, p projection, args ...any) (*table, error) {
	if err := a.requireColumns(op, p); err != nil {
		return nil, err
	}
	return a.getTable(op, len(p.columns), p.sql(), args...)
}

// cursor checks p against the schema and opens a cursor over its result.
func (a *Archive) cursor(op string, p projection, args ...any) (*sql.Rows, error) {
	if err := a.requireColumns(op, p); err != nil {
		return nil, err
	}
	return a.openCursor(op, len(p.columns), p.sql(), args...)
}

// getTable runs query and reads the whole result. A column count other
// than wantCols is reported as CodeMalformed.
func (a *Archive) getTable(op string, wantCols int, query string, args ...any) (*table, error) {
	util.DebugLog("relaxis: %s: %s %v", op, query, args)

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, backendError(op, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, backendError(op, err)
	}
	if len(cols) != wantCols {
		return nil, newError(op, CodeMalformed,
			fmt.Errorf("expected %d columns, got %d", wantCols, len(cols)))
	}

	t := &table{columns: len(cols)}
	for rows.Next() {
		row := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, backendError(op, err)
		}
		t.rows = append(t.rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, backendError(op, err)
	}
	if err := rows.Close(); err != nil {
		return nil, backendError(op, err)
	}

	util.DebugLog("relaxis: %s: %d rows", op, t.len())
	return t, nil
}

// openCursor prepares a forward-only cursor. The caller owns the returned
// rows and must close them on every path.
func (a *Archive) openCursor(op string, wantCols int, query string, args ...any) (*sql.Rows, error) {
	util.DebugLog("relaxis: %s: %s %v", op, query, args)

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, backendError(op, err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, backendError(op, err)
	}
	if len(cols) != wantCols {
		rows.Close()
		return nil, newError(op, CodeMalformed,
			fmt.Errorf("expected %d columns, got %d", wantCols, len(cols)))
	}
	return rows, nil
}

// tableExists checks sqlite_master for a table, ignoring case, used for
// tables that only exist in newer format versions.
func (a *Archive) tableExists(name string) (bool, error) {
	var count int
	err := a.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name=? COLLATE NOCASE
	`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
