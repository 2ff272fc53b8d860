package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/franz/relaxis-reader/internal/relaxis"
	"github.com/franz/relaxis-reader/internal/util"
)

// Format is the on-disk layout of exported datapoints
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name from flags or config
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSONL:
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("%w: export format %q", util.ErrUnsupported, s)
}

// WriteResult describes one written spectrum file
type WriteResult struct {
	SpectrumID int
	Path       string
	Points     int
	Bytes      int64
}

// FileName returns the export file name of a spectrum
func FileName(s *relaxis.Spectrum, format Format) string {
	name := fmt.Sprintf("spectrum-%d", s.ID)
	if s.Circuit != "" {
		name += "_" + util.SanitizeFileName(s.Circuit)
	}
	return name + "." + string(format)
}

// WriteSpectrum writes the datapoints of s into dir. A spectrum without
// datapoints is reported as an error before any file is created.
func WriteSpectrum(dir string, s *relaxis.Spectrum, format Format, precision relaxis.Precision) (*WriteResult, error) {
	arrays, err := relaxis.Float64Arrays(s, precision)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, FileName(s, format))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	cw := &countingWriter{w: file}
	switch format {
	case FormatJSONL:
		err = WriteJSONL(cw, arrays, precision)
	default:
		err = WriteCSV(cw, arrays, precision)
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	return &WriteResult{
		SpectrumID: s.ID,
		Path:       path,
		Points:     len(arrays.Re),
		Bytes:      cw.n,
	}, nil
}

// WriteCSV writes an omega,re,im header followed by one row per datapoint
func WriteCSV(w io.Writer, arrays relaxis.Arrays[float64], precision relaxis.Precision) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"omega", "re", "im"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, 3)
	for i := range arrays.Re {
		record[0] = formatFloat(arrays.Omega[i], precision)
		record[1] = formatFloat(arrays.Re[i], precision)
		record[2] = formatFloat(arrays.Im[i], precision)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write datapoint %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

type jsonPoint struct {
	Omega json.Number `json:"omega"`
	Re    json.Number `json:"re"`
	Im    json.Number `json:"im"`
}

// WriteJSONL writes one {"omega","re","im"} object per line
func WriteJSONL(w io.Writer, arrays relaxis.Arrays[float64], precision relaxis.Precision) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range arrays.Re {
		p := jsonPoint{
			Omega: json.Number(formatFloat(arrays.Omega[i], precision)),
			Re:    json.Number(formatFloat(arrays.Re[i], precision)),
			Im:    json.Number(formatFloat(arrays.Im[i], precision)),
		}
		if err := enc.Encode(&p); err != nil {
			return fmt.Errorf("failed to encode datapoint %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush jsonl: %w", err)
	}
	return nil
}

// formatFloat prints the shortest representation that round-trips at the
// requested precision
func formatFloat(v float64, precision relaxis.Precision) string {
	bits := 64
	if precision == relaxis.Single {
		bits = 32
	}
	return strconv.FormatFloat(v, 'g', -1, bits)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
