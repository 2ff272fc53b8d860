//go:build linux

package util

import (
	"strings"
	"testing"
)

const sampleMounts = `sysfs /sys sysfs rw,nosuid 0 0
/dev/sda1 / ext4 rw,relatime 0 0
/dev/sda2 /home ext4 rw,relatime 0 0
//nas/lab /mnt/lab cifs rw,vers=3.0 0 0
nas:/export /mnt/labdata nfs4 rw 0 0
`

func TestParseMounts(t *testing.T) {
	mounts, err := parseMounts(strings.NewReader(sampleMounts))
	if err != nil {
		t.Fatalf("parseMounts failed: %v", err)
	}
	if len(mounts) != 5 {
		t.Fatalf("expected 5 mounts, got %d", len(mounts))
	}
	if mounts[3].point != "/mnt/lab" || mounts[3].fsType != "cifs" {
		t.Errorf("unexpected entry %+v", mounts[3])
	}
}

func TestLongestMount(t *testing.T) {
	mounts, _ := parseMounts(strings.NewReader(sampleMounts))

	testCases := []struct {
		path      string
		point     string
		isNetwork bool
	}{
		{"/home/user/cell.rxs", "/home", false},
		{"/mnt/lab/2023/cell.rxs", "/mnt/lab", true},
		{"/mnt/labdata/cell.rxs", "/mnt/labdata", true},
		{"/mnt/labx/cell.rxs", "/", false},
		{"/tmp/cell.rxs", "/", false},
	}

	for _, tc := range testCases {
		m, ok := longestMount(tc.path, mounts)
		if !ok {
			t.Errorf("%s: no mount found", tc.path)
			continue
		}
		if m.point != tc.point {
			t.Errorf("%s: expected mount %s, got %s", tc.path, tc.point, m.point)
		}
		if got := isNetworkFSName(m.fsType); got != tc.isNetwork {
			t.Errorf("%s: expected network=%v, got %v", tc.path, tc.isNetwork, got)
		}
	}
}

func TestDetectNetworkFilesystem_TempDir(t *testing.T) {
	info, err := DetectNetworkFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("DetectNetworkFilesystem failed: %v", err)
	}
	// can't assert locality, CI might run on network storage
	if info.IsNetwork {
		t.Logf("temp directory is on network storage (%s)", info.Protocol)
	}
}
