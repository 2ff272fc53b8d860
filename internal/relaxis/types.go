package relaxis

import "time"

// Project is a RelaxIS project. Its spectra are looked up by project id
// through SpectrumIDs, the project holds no reference to them.
type Project struct {
	ID   int
	Name string
	Date time.Time // creation time, read as UTC
}

// Datapoint is one impedance sample.
type Datapoint struct {
	Omega float64 // angular frequency in rad/s
	Re    float64 // real part in Ohms
	Im    float64 // imaginary part in Ohms
}

// Spectrum is one EIS measurement ("file" in RelaxIS) with its fit state,
// datapoints and metadata.
type Spectrum struct {
	ID        int
	ProjectID int

	// Circuit is the RelaxIS circuit description string
	Circuit string
	Fitted  bool

	FreqLowerLimit float64
	FreqUpperLimit float64

	// DateAdded and DateFitted carry no zone in the archive and are read
	// as UTC. DateFitted is only meaningful when Fitted is true.
	DateAdded  time.Time
	DateFitted time.Time

	// Datapoints is never empty for a loaded spectrum and keeps storage row order
	Datapoints []Datapoint

	// Metadata is empty for format version 1 archives
	Metadata []Metadata
}

// Len returns the number of datapoints.
func (s *Spectrum) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Datapoints)
}

// Metadata is one measurement condition attached to a spectrum.
type Metadata struct {
	Key   string
	Value string // raw text as stored

	// Number holds the parsed Value when Numeric is true
	Number  float64
	Numeric bool
}

// Field maps Key to its semantic tag, MetaUnknown when unrecognized.
func (m Metadata) Field() MetadataKey {
	return ParseMetadataKey(m.Key)
}

// FitParameter is one fitted quantity of a spectrum's equivalent circuit.
type FitParameter struct {
	SpectrumID int
	Index      int // position in the fit
	Name       string
	Value      float64
	Error      float64
	LowerLimit float64
	UpperLimit float64
}
