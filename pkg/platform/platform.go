package platform

import (
	"strings"

	"github.com/arthur-debert/bootstrap/pkg/logging"
	"github.com/arthur-debert/bootstrap/pkg/types"
	"github.com/joho/godotenv"
)

// Distribution marker files, checked in this order.
const (
	OSReleaseFile   = "/etc/os-release"
	LSBReleaseFile  = "/etc/lsb-release"
	ArchReleaseFile = "/etc/arch-release"
)

// darwinSystemName is the kernel name uname reports on macOS.
const darwinSystemName = "Darwin"

// Host is the read-only view of the machine the resolver needs.
type Host interface {
	SystemName() string
	Hostname() string
	ReadFile(path string) ([]byte, error)
	Exists(path string) bool
}

// Resolve maps the host to a profile.
func Resolve(host Host) types.Profile {
	logger := logging.GetLogger("platform")

	p := types.Profile{Hostname: host.Hostname()}
	sysname := host.SystemName()
	if sysname == darwinSystemName {
		p.System = types.DarwinLike
		p.OS = types.Darwin
	} else {
		p.System = types.LinuxLike
		p.OS = resolveLinux(host)
	}

	logger.Debug().
		Str("sysname", sysname).
		Str("system", p.System.String()).
		Str("os", p.OS.String()).
		Str("hostname", p.Hostname).
		Msg("Resolved platform profile")
	return p
}

func resolveLinux(host Host) types.OS {
	if vars, ok := readKeyValues(host, OSReleaseFile); ok {
		ids := strings.Fields(strings.ToLower(vars["ID"] + " " + vars["ID_LIKE"]))
		// ID is listed first so a derivative's own ID beats its ID_LIKE.
		for _, id := range ids {
			if os := osFromID(id); os != types.Unknown {
				return os
			}
		}
	}

	if vars, ok := readKeyValues(host, LSBReleaseFile); ok {
		if os := osFromID(strings.ToLower(vars["DISTRIB_ID"])); os != types.Unknown {
			return os
		}
	}
	if host.Exists(ArchReleaseFile) {
		return types.Arch
	}
	return types.Unknown
}

func osFromID(id string) types.OS {
	switch id {
	case "ubuntu":
		return types.Ubuntu
	case "arch", "archlinux":
		return types.Arch
	default:
		return types.Unknown
	}
}

// readKeyValues parses a shell-style KEY=VALUE release file. Unreadable or
// malformed files are treated as absent.
func readKeyValues(host Host, path string) (map[string]string, bool) {
	data, err := host.ReadFile(path)
	if err != nil {
		return nil, false
	}
	vars, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		logger := logging.GetLogger("platform")
		logger.Debug().Err(err).Str("path", path).Msg("Ignoring malformed release file")
		return nil, false
	}
	return vars, true
}
