// Package appcompat provides the command-line interfaces of appcompat.
//
// The appcompat root is a pure pass-through: it prints the notice banner,
// materializes the bundled veridex resources and runs veridex with every
// argument it was given. appcompatctl carries the maintenance commands
// (assets, command, config, history, version, self-update).
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/appcompat/appcompat/cmd/appcompat"
//	func main() { appcompat.Execute() }
package appcompat
