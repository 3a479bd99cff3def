//go:build unix

package platform

import (
	"golang.org/x/sys/unix"
)

func unameSysname() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Sysname[:])
}
