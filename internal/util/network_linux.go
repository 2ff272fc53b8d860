//go:build linux

package util

import (
	"bufio"
	"io"
	"os"
	"strings"
	"syscall"
)

// Kernel VFS magic numbers of network filesystems
var networkMagic = map[uint32]string{
	0x6969:     "nfs",
	0xff534d42: "cifs",
	0xfe534d42: "smb2",
	0x517b:     "smb",
	0x564c:     "ncp",
}

// Mount type names (from /proc/mounts) treated as network filesystems
var networkFSNames = []string{"nfs", "cifs", "smb", "ncpfs", "fuse.sshfs", "fuse.rclone", "9p"}

type mountEntry struct {
	point  string
	fsType string
}

func detectPlatformNetwork(path string, stat *syscall.Statfs_t) (*NetworkInfo, error) {
	info := &NetworkInfo{}
	if proto, ok := networkMagic[uint32(stat.Type)]; ok {
		info.IsNetwork = true
		info.Protocol = proto
	}

	f, err := os.Open("/proc/mounts")
	if err != nil {
		// magic number alone has to do
		return info, nil
	}
	defer f.Close()

	mounts, err := parseMounts(f)
	if err != nil {
		return info, nil
	}
	if m, ok := longestMount(path, mounts); ok {
		info.MountPath = m.point
		if isNetworkFSName(m.fsType) {
			info.IsNetwork = true
			info.Protocol = strings.ToLower(m.fsType)
		}
	}
	return info, nil
}

// parseMounts reads the /proc/mounts format: device mountpoint fstype options dump pass
func parseMounts(r io.Reader) ([]mountEntry, error) {
	var mounts []mountEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mounts = append(mounts, mountEntry{point: fields[1], fsType: fields[2]})
	}
	return mounts, scanner.Err()
}

// longestMount returns the mount whose point is the longest prefix of path
func longestMount(path string, mounts []mountEntry) (mountEntry, bool) {
	var best mountEntry
	found := false
	for _, m := range mounts {
		if !underMount(path, m.point) {
			continue
		}
		if !found || len(m.point) > len(best.point) {
			best = m
			found = true
		}
	}
	return best, found
}

func underMount(path, point string) bool {
	if point == "/" {
		return strings.HasPrefix(path, "/")
	}
	return path == point || strings.HasPrefix(path, point+"/")
}

func isNetworkFSName(fsType string) bool {
	lower := strings.ToLower(fsType)
	for _, name := range networkFSNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}
