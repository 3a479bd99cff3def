package config

import (
	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

// Render prints cfg as TOML in the same layout as the defaults file.
func Render(cfg *Config) (string, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return string(out), nil
}
