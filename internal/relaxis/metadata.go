package relaxis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/franz/relaxis-reader/internal/util"
)

// MetadataKey is a semantic measurement-condition tag.
type MetadataKey int

const (
	MetaTemperature MetadataKey = iota
	MetaDCVoltage
	MetaACVoltage
	MetaCurrent
	MetaTime
	MetaHarmonic
	MetaConcentration
	MetaFreeVariable1
	MetaFreeVariable2
	MetaArea
	MetaThickness
	MetaSOC
	MetaSOH
	MetaPressure
	MetaUnknown
)

// metadataKeyNames holds the canonical FileInformation name of each tag.
var metadataKeyNames = [...]string{
	MetaTemperature:   "Temperature",
	MetaDCVoltage:     "DC Voltage",
	MetaACVoltage:     "AC Voltage",
	MetaCurrent:       "Current",
	MetaTime:          "Time",
	MetaHarmonic:      "Harmonic",
	MetaConcentration: "Concentration",
	MetaFreeVariable1: "Free Variable 1",
	MetaFreeVariable2: "Free Variable 2",
	MetaArea:          "Area",
	MetaThickness:     "Thickness",
	MetaSOC:           "SOC",
	MetaSOH:           "SOH",
	MetaPressure:      "Pressure",
}

var metadataKeysByName = func() map[string]MetadataKey {
	m := make(map[string]MetadataKey, len(metadataKeyNames))
	for k, name := range metadataKeyNames {
		m[name] = MetadataKey(k)
	}
	return m
}()

// String returns the canonical key string; MetaUnknown renders as "Unknown".
func (k MetadataKey) String() string {
	if k >= 0 && int(k) < len(metadataKeyNames) {
		return metadataKeyNames[k]
	}
	return "Unknown"
}

// ParseMetadataKey maps a stored key to its tag. Unrecognized keys give MetaUnknown.
func ParseMetadataKey(key string) MetadataKey {
	if k, ok := metadataKeysByName[key]; ok {
		return k
	}
	return MetaUnknown
}

// MetadataKeys returns every defined tag except MetaUnknown, in order.
func MetadataKeys() []MetadataKey {
	keys := make([]MetadataKey, 0, len(metadataKeyNames))
	for k := range metadataKeyNames {
		keys = append(keys, MetadataKey(k))
	}
	return keys
}

var metadataProjection = projection{
	table:   "FileInformation",
	columns: []string{"name", "value"},
	keys:    []string{"file_id"},
	clause:  "WHERE file_id=? ORDER BY rowid",
}

// metadata loads the FileInformation rows of a spectrum. A missing table
// or zero rows give an empty set.
func (a *Archive) metadata(spectrumID int) ([]Metadata, error) {
	exists, err := a.tableExists("FileInformation")
	if err != nil {
		util.WarnLog("relaxis: metadata for spectrum %d unavailable: %v", spectrumID, err)
		return nil, backendError("metadata", err)
	}
	if !exists {
		return nil, nil
	}

	t, err := a.load("metadata", metadataProjection, spectrumID)
	if err != nil {
		util.WarnLog("relaxis: metadata for spectrum %d unavailable: %v", spectrumID, err)
		return nil, err
	}

	entries := make([]Metadata, 0, t.len())
	for _, row := range t.rows {
		entries = append(entries, newMetadata(cellString(row[0]), cellString(row[1])))
	}
	return entries, nil
}

// newMetadata keeps the raw value and tags it numeric when it parses as a float.
func newMetadata(key, value string) Metadata {
	m := Metadata{Key: key, Value: value}
	if v, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		m.Number = v
		m.Numeric = true
	}
	return m
}

// Lookup returns the first metadata entry whose key is exactly key.
func (s *Spectrum) Lookup(key string) (Metadata, bool) {
	if s == nil {
		return Metadata{}, false
	}
	for _, m := range s.Metadata {
		if m.Key == key {
			return m, true
		}
	}
	return Metadata{}, false
}

// LookupField returns the first metadata entry tagged field.
func (s *Spectrum) LookupField(field MetadataKey) (Metadata, bool) {
	if field == MetaUnknown {
		return Metadata{}, false
	}
	return s.Lookup(field.String())
}

// Format renders the entry as "key=value", with the parsed number for numeric values.
func (m Metadata) Format() string {
	if m.Numeric {
		return fmt.Sprintf("%s=%g", m.Key, m.Number)
	}
	return fmt.Sprintf("%s=%q", m.Key, m.Value)
}
