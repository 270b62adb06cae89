package launcher

import (
	"io/fs"

	"github.com/appcompat/appcompat/internal/materialize"
)

// Resource names as stored in the bundle.
const (
	BinaryName      = "veridex"
	APIFlagsName    = "hiddenapi-flags.csv"
	SystemStubsName = "system-stubs.zip"
	LegacyStubsName = "org.apache.http.legacy-stubs.zip"
)

// Resource describes a bundled file and the mode it is written with.
type Resource struct {
	Name string
	Mode fs.FileMode
}

var (
	Binary      = Resource{Name: BinaryName, Mode: materialize.ExecMode}
	APIFlags    = Resource{Name: APIFlagsName, Mode: materialize.DefaultMode}
	SystemStubs = Resource{Name: SystemStubsName, Mode: materialize.DefaultMode}
	LegacyStubs = Resource{Name: LegacyStubsName, Mode: materialize.DefaultMode}
)

// Resources returns the fixed set of resources a launch needs.
func Resources() []Resource {
	return []Resource{Binary, APIFlags, SystemStubs, LegacyStubs}
}

// ResourceNames returns the names of Resources.
func ResourceNames() []string {
	rs := Resources()
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}
