// Package launcher runs veridex from the resources of an assets bundle.
//
// A launch prints the limitations banner, writes the veridex binary, the
// hidden-API flags file and the two stub archives into a private
// workspace, and runs
//
//	veridex --core-stubs=<system>:<legacy> --api-flags=<flags> --exclude-api-lists=sdk,invalid <caller args...>
//
// with the caller's standard streams. The caller's arguments are never
// interpreted. The exit status of veridex is returned to the caller.
package launcher
