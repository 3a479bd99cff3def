package toolchain

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/executor/executortest"
	"github.com/arthur-debert/bootstrap/pkg/filesystem/filesystemtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const home = "/home/me"

var testOpts = Options{
	RustupURL:     "https://sh.rustup.rs",
	RbenvRepo:     "https://github.com/rbenv/rbenv.git",
	RubyBuildRepo: "https://github.com/rbenv/ruby-build.git",
	RubyVersion:   "3.3.5",
	NvmVersion:    "v0.40.1",
	NodeVersion:   "lts/*",
}

func touch(t *testing.T, fsys *filesystemtest.Memory, path string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fsys.WriteFile(path, nil, 0755))
}

func TestRust(t *testing.T) {
	ctx := context.Background()
	fsys := filesystemtest.New()
	rec := executortest.New().OnRun("bash -c curl", func(executor.Command) {
		touch(t, fsys, RustupPath(home))
	})
	r := NewRust(rec, fsys, testOpts)

	changed, err := r.Install(ctx, home)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, rec.Commands[0].Args[1], "https://sh.rustup.rs")

	changed, err = r.Install(ctx, home)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, len(rec.Lines()))
}

func TestRust_InstallerFailureIsFatal(t *testing.T) {
	rec := executortest.New().Fail("bash -c curl", 22)
	r := NewRust(rec, filesystemtest.New(), testOpts)

	_, err := r.Install(context.Background(), home)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExternalTool))
	assert.Contains(t, err.Error(), "rust installer failed")
}

func TestRuby(t *testing.T) {
	ctx := context.Background()
	fsys := filesystemtest.New()
	rec := executortest.New().
		OnRun("git clone --depth 1 https://github.com/rbenv/rbenv.git", func(executor.Command) {
			require.NoError(t, fsys.MkdirAll(filepath.Join(home, ".rbenv", "bin"), 0755))
		}).
		OnRun("git clone --depth 1 https://github.com/rbenv/ruby-build.git", func(executor.Command) {
			require.NoError(t, fsys.MkdirAll(filepath.Join(home, ".rbenv", "plugins", "ruby-build"), 0755))
		}).
		OnRun(filepath.Join(home, ".rbenv", "bin", "rbenv")+" install", func(executor.Command) {
			require.NoError(t, fsys.MkdirAll(filepath.Join(RubyVersionsDir(home), "3.3.5"), 0755))
		})
	r := NewRuby(rec, fsys, testOpts)

	changed, err := r.Install(ctx, home)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{
		"git clone --depth 1 https://github.com/rbenv/rbenv.git /home/me/.rbenv",
		"git clone --depth 1 https://github.com/rbenv/ruby-build.git /home/me/.rbenv/plugins/ruby-build",
		"/home/me/.rbenv/bin/rbenv install --skip-existing 3.3.5",
		"/home/me/.rbenv/bin/rbenv global 3.3.5",
	}, rec.Lines())

	rec.Reset()
	changed, err = r.Install(ctx, home)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, rec.Lines())
}

func TestRuby_ExistingVersionSkipsBuild(t *testing.T) {
	fsys := filesystemtest.New()
	require.NoError(t, fsys.MkdirAll(filepath.Join(home, ".rbenv", "plugins", "ruby-build"), 0755))
	require.NoError(t, fsys.MkdirAll(filepath.Join(RubyVersionsDir(home), "3.2.0"), 0755))
	rec := executortest.New()

	changed, err := NewRuby(rec, fsys, testOpts).Install(context.Background(), home)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, rec.Lines())
}

func TestNode(t *testing.T) {
	ctx := context.Background()
	fsys := filesystemtest.New()
	rec := executortest.New().
		OnRun("bash -c curl -fsSL https://raw.githubusercontent.com/nvm-sh/nvm/v0.40.1/install.sh", func(executor.Command) {
			touch(t, fsys, filepath.Join(home, ".nvm", "nvm.sh"))
		}).
		OnRun("bash -c . ", func(executor.Command) {
			require.NoError(t, fsys.MkdirAll(filepath.Join(NodeVersionsDir(home), "v22.9.0"), 0755))
		})
	n := NewNode(rec, fsys, testOpts)

	changed, err := n.Install(ctx, home)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, rec.Commands, 2)
	assert.Contains(t, rec.Commands[1].Args[1], "nvm install lts/*")

	rec.Reset()
	changed, err = n.Install(ctx, home)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, rec.Lines())
}
