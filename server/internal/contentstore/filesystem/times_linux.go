//go:build linux

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// fileTimes returns the inode change time as the creation time, the same value getctime reports on Linux.
func fileTimes(info os.FileInfo) (created, modified time.Time) {
	modified = info.ModTime().UTC()

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return modified, modified
	}

	return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec)).UTC(), modified
}
