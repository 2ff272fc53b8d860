package relaxis

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RelaxIS stores dates without a zone. They are read as UTC, which is
// only correct for archives written on a GMT+0 machine.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02\t15:04:05",
	time.RFC3339Nano, // DATETIME columns come back from the driver as time.Time
}

// cellString returns the text of a cell, NULL reads as empty.
func cellString(c sql.NullString) string {
	if !c.Valid {
		return ""
	}
	return c.String
}

func parseInt(c sql.NullString) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(cellString(c)))
	if err != nil {
		return 0, fmt.Errorf("integer cell %q: %w", cellString(c), err)
	}
	return v, nil
}

func parseFloat(c sql.NullString) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cellString(c)), 64)
	if err != nil {
		return 0, fmt.Errorf("numeric cell %q: %w", cellString(c), err)
	}
	return v, nil
}

// parseFlag decodes RelaxIS single-character booleans: only a leading '1' is true.
func parseFlag(c sql.NullString) bool {
	s := cellString(c)
	return len(s) > 0 && s[0] == '1'
}

func parseTime(c sql.NullString) (time.Time, error) {
	s := strings.TrimSpace(cellString(c))
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	// RelaxIS separates date and time with any whitespace
	if fields := strings.Fields(s); len(fields) == 2 {
		if t, err := time.ParseInLocation(dateLayouts[0], fields[0]+" "+fields[1], time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date cell %q: unrecognized format", s)
}

// parseOptionalTime is parseTime for columns that are only meaningful
// when another flag is set; empty cells give the zero time.
func parseOptionalTime(c sql.NullString) (time.Time, error) {
	if strings.TrimSpace(cellString(c)) == "" {
		return time.Time{}, nil
	}
	return parseTime(c)
}

// angularFrequency converts a stored frequency in Hz to rad/s.
func angularFrequency(hz float64) float64 {
	return hz * 2 * math.Pi
}
