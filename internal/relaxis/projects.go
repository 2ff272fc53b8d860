package relaxis

import (
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	projectsProjection = projection{
		table:   "Projects",
		columns: []string{"ID", "NAME", "DATE"},
		clause:  "ORDER BY ID",
	}
	projectProjection = projection{
		table:   "Projects",
		columns: []string{"ID", "NAME", "DATE"},
		clause:  "WHERE ID=?",
	}
)

// Projects returns every project in the archive. An archive without
// projects gives an empty slice and no error.
func (a *Archive) Projects() ([]Project, error) {
	t, err := a.load("projects", projectsProjection)
	if err != nil {
		return nil, a.fail(err)
	}

	projects := make([]Project, 0, t.len())
	for i, row := range t.rows {
		p, err := decodeProject(row)
		if err != nil {
			return nil, a.fail(newError("projects", CodeMalformed, fmt.Errorf("row %d: %w", i, err)))
		}
		projects = append(projects, p)
	}
	return projects, a.succeed()
}

// Project returns the project with the given id.
func (a *Archive) Project(id int) (Project, error) {
	t, err := a.load("project", projectProjection, id)
	if err != nil {
		return Project{}, a.fail(err)
	}
	if t.len() == 0 {
		return Project{}, a.fail(newError("project", CodeNoEntity, fmt.Errorf("project %d", id)))
	}
	p, err := decodeProject(t.rows[0])
	if err != nil {
		return Project{}, a.fail(newError("project", CodeMalformed, err))
	}
	return p, a.succeed()
}

func decodeProject(row []sql.NullString) (Project, error) {
	id, err := parseInt(row[0])
	if err != nil {
		return Project{}, err
	}
	date, err := parseTime(row[2])
	if err != nil {
		return Project{}, err
	}
	return Project{ID: id, Name: cellString(row[1]), Date: date}, nil
}

// FindProject returns the first project whose name matches name,
// ignoring case and Unicode normalization differences.
func FindProject(projects []Project, name string) (Project, bool) {
	want := norm.NFC.String(strings.TrimSpace(name))
	for _, p := range projects {
		if strings.EqualFold(norm.NFC.String(p.Name), want) {
			return p, true
		}
	}
	return Project{}, false
}
