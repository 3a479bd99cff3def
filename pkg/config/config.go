package config

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/arthur-debert/bootstrap/pkg/dotfiles"
	"github.com/arthur-debert/bootstrap/pkg/toolchain"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Config is the effective configuration of a run.
type Config struct {
	DataDir   string    `koanf:"data_dir" toml:"data_dir"`
	Privilege Privilege `koanf:"privilege" toml:"privilege"`
	Shell     Shell     `koanf:"shell" toml:"shell"`
	Toolchain Toolchain `koanf:"toolchain" toml:"toolchain"`
	Dotfiles  Dotfiles  `koanf:"dotfiles" toml:"dotfiles"`
}

// Privilege holds sudo session settings
type Privilege struct {
	KeepAliveInterval Duration `koanf:"keepalive_interval" toml:"keepalive_interval"`
}

// Shell holds the system-wide files written by install-bashrc. Their
// presence marks the phase as done.
type Shell struct {
	BashrcMarker  string `koanf:"bashrc_marker" toml:"bashrc_marker"`
	ProfileScript string `koanf:"profile_script" toml:"profile_script"`
}

type Toolchain struct {
	RustupURL     string `koanf:"rustup_url" toml:"rustup_url"`
	RbenvRepo     string `koanf:"rbenv_repo" toml:"rbenv_repo"`
	RubyBuildRepo string `koanf:"ruby_build_repo" toml:"ruby_build_repo"`
	RubyVersion   string `koanf:"ruby_version" toml:"ruby_version"`
	NvmVersion    string `koanf:"nvm_version" toml:"nvm_version"`
	NodeVersion   string `koanf:"node_version" toml:"node_version"`
}

type Dotfiles struct {
	Repo        string   `koanf:"repo" toml:"repo"`
	Dest        string   `koanf:"dest" toml:"dest"`
	LinkCommand []string `koanf:"link_command" toml:"link_command"`
}

// ToolchainOptions converts the section for the toolchain installers.
func (c *Config) ToolchainOptions() toolchain.Options {
	return toolchain.Options{
		RustupURL:     c.Toolchain.RustupURL,
		RbenvRepo:     c.Toolchain.RbenvRepo,
		RubyBuildRepo: c.Toolchain.RubyBuildRepo,
		RubyVersion:   c.Toolchain.RubyVersion,
		NvmVersion:    c.Toolchain.NvmVersion,
		NodeVersion:   c.Toolchain.NodeVersion,
	}
}

// DotfilesOptions converts the section for the dotfiles manager.
func (c *Config) DotfilesOptions() dotfiles.Options {
	return dotfiles.Options{
		Repo:        c.Dotfiles.Repo,
		Dest:        c.Dotfiles.Dest,
		LinkCommand: c.Dotfiles.LinkCommand,
	}
}

// Duration is a time.Duration that reads and prints as "60s".
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}
