package config

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix marks environment overrides, e.g. BOOTSTRAP_DOTFILES_REPO.
	EnvPrefix = "BOOTSTRAP_"
	// UserConfigPath is relative to the XDG config directories.
	UserConfigPath = "bootstrap/config.toml"
)

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Default returns the embedded defaults alone.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic(err)
	}
	cfg, err := unmarshal(k)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load builds the effective configuration. path names the user file; empty
// searches the XDG config directories and skips the layer when none exists.
// An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User file
	if path == "" {
		if found, err := xdg.SearchConfigFile(UserConfigPath); err == nil {
			path = found
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", path)
	}
	if path != "" {
		logger.Debug().Str("path", path).Msg("Loading user config")
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
		}
	}

	// 3. Env vars
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Unmarshal
	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if cfg.Privilege.KeepAliveInterval <= 0 {
		return nil, errors.Newf(errors.ErrConfigLoad, "privilege.keepalive_interval must be positive, got %s", cfg.Privilege.KeepAliveInterval.Std())
	}
	return cfg, nil
}

// envKey maps BOOTSTRAP_SECTION_SOME_KEY to section.some_key. Top-level
// keys that contain underscores (data_dir) are matched first.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if key == "data_dir" {
		return key
	}
	if section, rest, ok := strings.Cut(key, "_"); ok {
		return section + "." + rest
	}
	return key
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}
	return &cfg, nil
}
