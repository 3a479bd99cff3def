// Package preferences applies desktop preference files: macOS `defaults`
// domains and GNOME `gsettings` schemas. Each entry is read back first and
// only written when it differs.
package preferences

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/guard"
	"github.com/arthur-debert/bootstrap/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Preference is one setting.
type Preference struct {
	Domain string `yaml:"domain"`
	Key    string `yaml:"key"`
	// Type is the defaults value type (bool, int, float, string). gsettings
	// values carry their own GVariant syntax and leave it empty.
	Type  string `yaml:"type,omitempty"`
	Value string `yaml:"value"`
}

func (p Preference) String() string {
	return p.Domain + " " + p.Key
}

type file struct {
	Preferences []Preference `yaml:"preferences"`
}

// Load reads the preference file at path. A missing file surfaces as an
// error matching fs.ErrNotExist.
func Load(fsys fs.FS, path string) ([]Preference, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read preferences %s", path)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestInvalid, "invalid preferences %s", path)
	}
	for i, p := range f.Preferences {
		if p.Domain == "" || p.Key == "" {
			return nil, errors.Newf(errors.ErrManifestInvalid, "preference %d in %s needs a domain and a key", i, path)
		}
	}
	return f.Preferences, nil
}

// Backend reads and writes single preferences.
type Backend interface {
	Name() string
	// Read returns the current value normalised to the form Desired
	// produces; an unset key reads as "".
	Read(ctx context.Context, p Preference) (string, error)
	Desired(p Preference) string
	Write(ctx context.Context, p Preference) error
}

// Apply brings every preference to its desired value and returns how many
// were written.
func Apply(ctx context.Context, b Backend, prefs []Preference) (int, error) {
	logger := logging.GetLogger("preferences")
	written := 0
	for _, p := range prefs {
		p := p
		changed, err := guard.EnsureState(ctx,
			func(ctx context.Context) (string, error) { return b.Read(ctx, p) },
			b.Desired(p),
			func(ctx context.Context, _ string) error { return b.Write(ctx, p) },
		)
		if err != nil {
			return written, errors.Wrapf(err, errors.ErrExternalTool, "%s: cannot set %s", b.Name(), p).
				WithDetail("preference", p.String())
		}
		if changed {
			written++
			logger.Debug().Str("preference", p.String()).Str("value", p.Value).Msg("Preference written")
		}
	}
	return written, nil
}

// Defaults drives macOS `defaults`.
type Defaults struct {
	runner executor.Runner
}

func NewDefaults(runner executor.Runner) *Defaults {
	return &Defaults{runner: runner}
}

func (d *Defaults) Name() string { return "defaults" }

func (d *Defaults) Read(ctx context.Context, p Preference) (string, error) {
	res, err := d.runner.Run(ctx, executor.Command{Name: "defaults", Args: []string{"read", p.Domain, p.Key}, Quiet: true})
	if err != nil {
		// defaults exits 1 for a key that was never written
		if res.ExitCode > 0 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Desired maps the file value to what `defaults read` prints: booleans read
// back as 1 or 0.
func (d *Defaults) Desired(p Preference) string {
	if p.Type == "bool" {
		switch strings.ToLower(p.Value) {
		case "true", "yes", "1":
			return "1"
		default:
			return "0"
		}
	}
	return p.Value
}

func (d *Defaults) Write(ctx context.Context, p Preference) error {
	typ := p.Type
	if typ == "" {
		typ = "string"
	}
	_, err := d.runner.Run(ctx, executor.Command{
		Name: "defaults",
		Args: []string{"write", p.Domain, p.Key, fmt.Sprintf("-%s", typ), p.Value},
	})
	return err
}

// GSettings drives GNOME `gsettings`.
type GSettings struct {
	runner executor.Runner
}

func NewGSettings(runner executor.Runner) *GSettings {
	return &GSettings{runner: runner}
}

func (g *GSettings) Name() string { return "gsettings" }

func (g *GSettings) Read(ctx context.Context, p Preference) (string, error) {
	return executor.Output(ctx, g.runner, executor.Command{Name: "gsettings", Args: []string{"get", p.Domain, p.Key}})
}

func (g *GSettings) Desired(p Preference) string { return p.Value }

func (g *GSettings) Write(ctx context.Context, p Preference) error {
	_, err := g.runner.Run(ctx, executor.Command{Name: "gsettings", Args: []string{"set", p.Domain, p.Key, p.Value}})
	return err
}

var (
	_ Backend = (*Defaults)(nil)
	_ Backend = (*GSettings)(nil)
)
