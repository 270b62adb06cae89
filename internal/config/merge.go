package config

// Merge combines configuration layers. Earlier layers take precedence: a
// field is taken from the first layer that sets it. ExtraCoreStubs is
// taken whole from the first layer that lists any.
func Merge(layers ...FileConfig) FileConfig {
	var out FileConfig
	var vx VeridexConfig
	hasVeridex := false
	for _, l := range layers {
		out.AssetsDir = pick(out.AssetsDir, l.AssetsDir)
		out.TempDir = pick(out.TempDir, l.TempDir)
		out.KeepTemp = pick(out.KeepTemp, l.KeepTemp)
		out.ExtractCache = pick(out.ExtractCache, l.ExtractCache)
		out.CacheDir = pick(out.CacheDir, l.CacheDir)
		out.NoBanner = pick(out.NoBanner, l.NoBanner)
		out.NoColor = pick(out.NoColor, l.NoColor)
		out.LogLevel = pick(out.LogLevel, l.LogLevel)
		out.LogFormat = pick(out.LogFormat, l.LogFormat)
		out.History = pick(out.History, l.History)
		out.UpdateCheck = pick(out.UpdateCheck, l.UpdateCheck)
		if l.Veridex != nil {
			hasVeridex = true
			vx.Binary = pick(vx.Binary, l.Veridex.Binary)
			vx.ExcludeAPILists = pick(vx.ExcludeAPILists, l.Veridex.ExcludeAPILists)
			if len(vx.ExtraCoreStubs) == 0 && len(l.Veridex.ExtraCoreStubs) > 0 {
				vx.ExtraCoreStubs = append([]string(nil), l.Veridex.ExtraCoreStubs...)
			}
		}
	}
	if hasVeridex {
		out.Veridex = &vx
	}
	return out
}

func pick[T any](cur, next *T) *T {
	if cur != nil {
		return cur
	}
	return next
}

// String returns the value or def when unset.
func String(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

// Bool returns the value or def when unset.
func Bool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
