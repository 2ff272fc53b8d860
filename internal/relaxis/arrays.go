package relaxis

import (
	"fmt"
	"strings"
)

// Float is the element type of contiguous spectrum arrays.
type Float interface {
	~float32 | ~float64
}

// Arrays holds a spectrum as three parallel slices for numeric consumers.
type Arrays[T Float] struct {
	Re    []T
	Im    []T
	Omega []T
}

// ContiguousArrays flattens the datapoints of s into parallel slices.
// Either all three slices are returned or none.
func ContiguousArrays[T Float](s *Spectrum) (Arrays[T], error) {
	if s.Len() == 0 {
		return Arrays[T]{}, newError("arrays", CodeNoEntity, fmt.Errorf("spectrum has no datapoints"))
	}

	// single backing allocation for all three slices
	n := len(s.Datapoints)
	buf := make([]T, 3*n)
	out := Arrays[T]{
		Re:    buf[0:n:n],
		Im:    buf[n : 2*n : 2*n],
		Omega: buf[2*n : 3*n : 3*n],
	}
	for i, dp := range s.Datapoints {
		out.Re[i] = T(dp.Re)
		out.Im[i] = T(dp.Im)
		out.Omega[i] = T(dp.Omega)
	}
	return out, nil
}

// Precision selects single or double precision output.
type Precision int

const (
	Double Precision = iota
	Single
)

func (p Precision) String() string {
	if p == Single {
		return "single"
	}
	return "double"
}

// ParsePrecision accepts "single"/"float32" and "double"/"float64".
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "double", "float64":
		return Double, nil
	case "single", "float32", "float":
		return Single, nil
	}
	return Double, fmt.Errorf("unknown precision %q", s)
}

// Float64Arrays is ContiguousArrays at the requested precision, widened
// back to float64 so callers can handle both the same way. Single
// precision values are rounded through float32.
func Float64Arrays(s *Spectrum, p Precision) (Arrays[float64], error) {
	if p == Double {
		return ContiguousArrays[float64](s)
	}
	narrow, err := ContiguousArrays[float32](s)
	if err != nil {
		return Arrays[float64]{}, err
	}
	n := len(narrow.Re)
	buf := make([]float64, 3*n)
	out := Arrays[float64]{Re: buf[0:n:n], Im: buf[n : 2*n : 2*n], Omega: buf[2*n : 3*n : 3*n]}
	for i := range n {
		out.Re[i] = float64(narrow.Re[i])
		out.Im[i] = float64(narrow.Im[i])
		out.Omega[i] = float64(narrow.Omega[i])
	}
	return out, nil
}
