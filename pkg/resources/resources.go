// Package resources holds the data files shipped inside the binary:
// per-profile package manifests, preference files and the system shell
// snippets written by install-bashrc.
package resources

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed data
var embedded embed.FS

// Well-known resource paths, relative to the data root.
const (
	BashrcPath  = "shell/bashrc"
	ProfilePath = "shell/profile.sh"
)

// ManifestPath returns the manifest resource for a profile and set name
// ("base" or "workstation").
func ManifestPath(profile, set string) string {
	return profile + "/" + set + ".json"
}

// PreferencesPath returns the preferences resource for a profile.
func PreferencesPath(profile string) string {
	return profile + "/preferences.yaml"
}

// FS returns the data root. An empty dataDir selects the embedded copy.
func FS(dataDir string) fs.FS {
	if dataDir != "" {
		return os.DirFS(dataDir)
	}
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		// "data" is a compile-time embed directive; Sub cannot fail on it.
		panic(err)
	}
	return sub
}
