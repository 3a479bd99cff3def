// Package manifest loads declarative package manifests and installs them
// through a pkgmgr.Driver.
//
// A manifest is a JSON document (comments and trailing commas allowed):
//
//	{
//	  "packages": ["git", "curl"],
//	  "casks":    ["firefox"],
//	  "apps":     [{"id": "497799835", "name": "Xcode"}]
//	}
//
// Units install in document order: packages, then casks, then apps.
package manifest

import (
	"encoding/json"
	"io/fs"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/pkgmgr"
	"github.com/tidwall/jsonc"
)

type appEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type document struct {
	Packages []string   `json:"packages"`
	Casks    []string   `json:"casks"`
	Apps     []appEntry `json:"apps"`
}

// Manifest is an ordered list of units.
type Manifest struct {
	Path  string
	Units []pkgmgr.Unit
}

// Parse decodes manifest data. path is only used in error messages.
func Parse(path string, data []byte) (*Manifest, error) {
	var doc document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestInvalid, "cannot parse manifest %s", path)
	}

	m := &Manifest{Path: path}
	seen := make(map[string]bool)
	add := func(u pkgmgr.Unit) error {
		if u.Name == "" {
			return errors.Newf(errors.ErrManifestInvalid, "manifest %s has an entry with no name", path)
		}
		key := u.String()
		if seen[key] {
			return errors.Newf(errors.ErrManifestInvalid, "manifest %s lists %s more than once", path, key).
				WithDetail("unit", key)
		}
		seen[key] = true
		m.Units = append(m.Units, u)
		return nil
	}

	for _, name := range doc.Packages {
		if err := add(pkgmgr.Unit{Name: name, Kind: pkgmgr.KindPackage}); err != nil {
			return nil, err
		}
	}
	for _, name := range doc.Casks {
		if err := add(pkgmgr.Unit{Name: name, Kind: pkgmgr.KindCask}); err != nil {
			return nil, err
		}
	}
	for _, app := range doc.Apps {
		if app.ID == "" {
			return nil, errors.Newf(errors.ErrManifestInvalid, "manifest %s: app %q has no id", path, app.Name)
		}
		name := app.Name
		if name == "" {
			name = app.ID
		}
		if err := add(pkgmgr.Unit{Name: name, Kind: pkgmgr.KindApp, ID: app.ID}); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Load reads and parses the manifest at path within data.
func Load(data fs.FS, path string) (*Manifest, error) {
	raw, err := fs.ReadFile(data, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read manifest %s", path)
	}
	return Parse(path, raw)
}
