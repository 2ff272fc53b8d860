package relaxis

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
)

// Code is a numeric archive error code.
//
// Zero is success, positive values are SQLite result codes passed through
// from the backend, and negative values are archive specific.
type Code int

const (
	CodeSuccess             Code = 0
	CodeNoEntity            Code = -100
	CodeNoSpectra           Code = -101
	CodeNonexistentSpectrum Code = -102
	CodeOutOfMemory         Code = -103
	CodeMalformed           Code = -104
	CodeUnreadableVersion   Code = -105
	CodeUnsupportedVersion  Code = -106
)

// Sentinel errors for errors.Is classification
var (
	// ErrBackend matches any error carrying a SQLite result code
	ErrBackend = errors.New("backend error")

	// ErrNoSuchEntity matches every "zero rows where one was required" code
	ErrNoSuchEntity = errors.New("no such entity")

	// ErrNoSpectra indicates a project without any spectra
	ErrNoSpectra = errors.New("project contains no spectra")

	// ErrNonexistentSpectrum indicates a lookup of a spectrum that is not in the project
	ErrNonexistentSpectrum = errors.New("nonexistent spectrum")

	// ErrOutOfMemory indicates an allocation failure while assembling arrays
	ErrOutOfMemory = errors.New("out of memory")

	// ErrMalformed indicates a result whose shape or content does not match the schema
	ErrMalformed = errors.New("malformed archive")

	// ErrUnreadableVersion indicates the DatabaseFormat property could not be read
	ErrUnreadableVersion = errors.New("unable to read file version")

	// ErrUnsupportedVersion indicates a DatabaseFormat outside SupportedVersions
	ErrUnsupportedVersion = errors.New("unsupported file version")
)

var codeSentinels = map[Code]error{
	CodeNoEntity:            ErrNoSuchEntity,
	CodeNoSpectra:           ErrNoSpectra,
	CodeNonexistentSpectrum: ErrNonexistentSpectrum,
	CodeOutOfMemory:         ErrOutOfMemory,
	CodeMalformed:           ErrMalformed,
	CodeUnreadableVersion:   ErrUnreadableVersion,
	CodeUnsupportedVersion:  ErrUnsupportedVersion,
}

// Error is returned by every archive operation that fails.
type Error struct {
	Op   string // operation, e.g. "spectrum"
	Code Code
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := ErrorString(e.Code)
	if e.Err != nil && e.Code <= 0 {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	} else if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target names this error's class. NoSpectra and
// NonexistentSpectrum are both also ErrNoSuchEntity.
func (e *Error) Is(target error) bool {
	if e.Code > 0 {
		return target == ErrBackend
	}
	if target == ErrNoSuchEntity {
		switch e.Code {
		case CodeNoEntity, CodeNoSpectra, CodeNonexistentSpectrum:
			return true
		}
	}
	return codeSentinels[e.Code] == target && target != nil
}

// ErrorString returns a stable, human-readable description of code.
func ErrorString(code Code) string {
	switch {
	case code == CodeSuccess:
		return "Success"
	case code > 0:
		if s, ok := sqlite.ErrorCodeString[int(code)]; ok {
			return s
		}
		// extended result codes share their primary code's low byte
		if s, ok := sqlite.ErrorCodeString[int(code)&0xff]; ok {
			return s
		}
		return "Unknown error"
	}

	switch code {
	case CodeNoEntity:
		return "No such entry"
	case CodeNoSpectra:
		return "Project contains no spectra"
	case CodeNonexistentSpectrum:
		return "Tried to load non existing spectra"
	case CodeOutOfMemory:
		return "Out of memory"
	case CodeMalformed:
		return "Archive is malformed"
	case CodeUnreadableVersion:
		return "Unable to read file version"
	case CodeUnsupportedVersion:
		return "Unsupported file version"
	}
	return "Unknown error"
}

// CodeOf extracts the archive code carried by err. A nil error is
// CodeSuccess; errors from outside this package map to CodeMalformed
// unless they come from the SQLite driver.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return Code(serr.Code())
	}
	return CodeMalformed
}

func newError(op string, code Code, err error) *Error {
	return &Error{Op: op, Code: code, Err: err}
}

// backendError wraps a driver error, keeping the SQLite result code when
// the driver reports one.
func backendError(op string, err error) *Error {
	var serr *sqlite.Error
	if errors.As(err, &serr) && serr.Code() > 0 {
		return &Error{Op: op, Code: Code(serr.Code()), Err: err}
	}
	// database/sql level failures (closed db, conversion) carry no result code
	return &Error{Op: op, Code: Code(sqliteError), Err: err}
}

// sqliteError is SQLITE_ERROR, the generic result code.
const sqliteError = 1
