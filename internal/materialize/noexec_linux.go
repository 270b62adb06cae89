//go:build linux

package materialize

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// CheckExecutable reports ErrNoExec when dir is on a filesystem mounted
// noexec. Errors from statfs itself are ignored; exec will report them.
func CheckExecutable(dir string) error {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return nil
	}
	if st.Flags&unix.ST_NOEXEC != 0 {
		return fmt.Errorf("%w: %s is mounted noexec (set APPCOMPAT_TMPDIR to another directory)", ErrNoExec, dir)
	}
	return nil
}
