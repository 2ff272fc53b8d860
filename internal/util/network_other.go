//go:build !linux && !darwin

package util

// NetworkInfo describes the filesystem an archive lives on
type NetworkInfo struct {
	IsNetwork bool
	Protocol  string
	MountPath string
}

// DetectNetworkFilesystem always reports a local filesystem on this platform
func DetectNetworkFilesystem(path string) (*NetworkInfo, error) {
	return &NetworkInfo{}, nil
}
