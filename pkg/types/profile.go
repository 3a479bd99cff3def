package types

import (
	"fmt"
	"strings"
)

// System is the kernel family of the host.
type System int

const (
	SystemUnknown System = iota
	DarwinLike
	LinuxLike
)

func (s System) String() string {
	switch s {
	case DarwinLike:
		return "darwin"
	case LinuxLike:
		return "linux"
	default:
		return "unknown"
	}
}

// OS is the installation profile a phase dispatches on. It is a closed set:
// every switch over OS must carry a default arm for Unknown.
type OS int

const (
	Unknown OS = iota
	Darwin
	Ubuntu
	Arch
)

// String returns the lowercase profile name, which is also the resource
// directory holding the profile's manifests.
func (o OS) String() string {
	switch o {
	case Darwin:
		return "darwin"
	case Ubuntu:
		return "ubuntu"
	case Arch:
		return "arch"
	default:
		return "unknown"
	}
}

// ParseOS parses a profile name as printed by OS.String.
func ParseOS(s string) (OS, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "darwin", "macos":
		return Darwin, nil
	case "ubuntu":
		return Ubuntu, nil
	case "arch":
		return Arch, nil
	case "unknown", "":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unknown os profile: %s", s)
	}
}

// Profile is the result of platform resolution.
type Profile struct {
	System   System
	OS       OS
	Hostname string
}
