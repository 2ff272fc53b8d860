//go:build linux || darwin

package util

import (
	"fmt"
	"path/filepath"
	"syscall"
)

// NetworkInfo describes the filesystem an archive lives on
type NetworkInfo struct {
	IsNetwork bool   // Whether the filesystem is network-mounted
	Protocol  string // nfs, cifs, smbfs, ... or empty if local
	MountPath string // Mount point, when known
}

// DetectNetworkFilesystem checks whether path sits on a network mount
func DetectNetworkFilesystem(path string) (*NetworkInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	// statfs needs an existing path; fall back to the parent for new files
	var stat syscall.Statfs_t
	if err := syscall.Statfs(absPath, &stat); err != nil {
		if err := syscall.Statfs(filepath.Dir(absPath), &stat); err != nil {
			return nil, fmt.Errorf("failed to stat filesystem: %w", err)
		}
	}

	return detectPlatformNetwork(absPath, &stat)
}
