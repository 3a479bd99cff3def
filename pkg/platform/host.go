package platform

import (
	"os"
	"runtime"
	"strings"
)

// LocalHost is the Host backed by the running machine.
type LocalHost struct{}

// SystemName returns the kernel name, falling back to GOOS when uname is
// unavailable.
func (LocalHost) SystemName() string {
	if name := unameSysname(); name != "" {
		return name
	}
	if runtime.GOOS == "darwin" {
		return darwinSystemName
	}
	return strings.ToUpper(runtime.GOOS[:1]) + runtime.GOOS[1:]
}

// Hostname returns the current hostname or "" if it cannot be read.
func (LocalHost) Hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}

func (LocalHost) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (LocalHost) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
