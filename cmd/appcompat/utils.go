package appcompat

import (
	"runtime/debug"

	semver3 "github.com/blang/semver"
	semver "github.com/blang/semver/v4"
	"github.com/rhysd/go-github-selfupdate/selfupdate"

	"github.com/appcompat/appcompat/internal/update"
)

func selfUpdate() error {
	v := version
	// Use build info if tag overridden at build-time
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(v) == 0 {
				v = s.Value
			}
		}
	}
	// parse semantic version (strip leading v)
	ver, err := semver.ParseTolerant(v)
	if err != nil {
		ver = semver.MustParse("0.0.0")
	}
	_, err = selfupdate.UpdateSelf(semver3.MustParse(ver.String()), update.Slug)
	return err
}
