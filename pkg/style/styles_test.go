package style

import (
	"bytes"
	stderrors "errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlainPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.PhaseHeader(2, 12, "set-hostname")
	p.Skipped("install-rust", "base only")
	p.Warning("hostname changes are not yet supported on ubuntu")
	p.Done(6, 6, 90*time.Second)

	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "[2/12] ==> set-hostname")
	assert.Contains(t, out, "--- install-rust skipped (base only)")
	assert.Contains(t, out, "! hostname changes")
	assert.Contains(t, out, "6 phases completed, 6 skipped in 1m30s")
}

func TestFatalIsDelimited(t *testing.T) {
	var buf bytes.Buffer
	NewPlainPrinter(&buf).Fatal(stderrors.New("apt-get exited 100"), 14)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, buf.String(), "bootstrap failed (exit 14)")
	assert.Contains(t, buf.String(), "apt-get exited 100")
	assert.True(t, strings.HasPrefix(lines[0], "─"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "─"))
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	assert.False(t, ColorEnabled(os.Stdout))

	t.Setenv("TERM", "xterm-256color")
	var buf bytes.Buffer
	assert.False(t, ColorEnabled(&buf), "buffers are never terminals")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(os.Stdout))
}
