// Package config loads appcompat configuration from environment variables,
// repo-local and global files. Merge applies the precedence rules; CLI code
// turns the result into launcher options.
package config
