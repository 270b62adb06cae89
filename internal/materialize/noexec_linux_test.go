//go:build linux

package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestCheckExecutable_NoExecMount(t *testing.T) {
	const dir = "/sys"
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil || st.Flags&unix.ST_NOEXEC == 0 {
		t.Skipf("%s is not mounted noexec here", dir)
	}
	err := CheckExecutable(dir)
	assert.ErrorIs(t, err, ErrNoExec)
	assert.ErrorContains(t, err, "APPCOMPAT_TMPDIR")
}

func TestCheckExecutable_TempDir(t *testing.T) {
	dir := t.TempDir()
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil || st.Flags&unix.ST_NOEXEC != 0 {
		t.Skip("temp dir is mounted noexec")
	}
	assert.NoError(t, CheckExecutable(dir))
}
