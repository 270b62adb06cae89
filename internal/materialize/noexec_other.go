//go:build !linux

package materialize

// CheckExecutable is a no-op outside Linux.
func CheckExecutable(string) error { return nil }
