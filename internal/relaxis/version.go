package relaxis

import "fmt"

// Library version
const (
	VersionMajor = 1
	VersionMinor = 1
	VersionPatch = 0
)

// Version returns the library version as "major.minor.patch".
func Version() string {
	return fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
