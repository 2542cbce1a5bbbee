//go:build !linux

package filesystem

import (
	"os"
	"time"
)

func fileTimes(info os.FileInfo) (created, modified time.Time) {
	modified = info.ModTime().UTC()
	return modified, modified
}
