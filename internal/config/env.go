package config

import (
	"strings"

	"github.com/xyproto/env/v2"
)

// Environment variables read by FromEnv.
const (
	EnvAssetsDir    = "APPCOMPAT_ASSETS_DIR"
	EnvTempDir      = "APPCOMPAT_TMPDIR"
	EnvKeepTemp     = "APPCOMPAT_KEEP_TEMP"
	EnvExtractCache = "APPCOMPAT_EXTRACT_CACHE"
	EnvCacheDir     = "APPCOMPAT_CACHE_DIR"
	EnvNoBanner     = "APPCOMPAT_NO_BANNER"
	EnvLogLevel     = "APPCOMPAT_LOG_LEVEL"
	EnvLogFormat    = "APPCOMPAT_LOG_FORMAT"
	EnvHistory      = "APPCOMPAT_HISTORY"
	EnvVeridex      = "APPCOMPAT_VERIDEX"
	EnvExcludeLists = "APPCOMPAT_EXCLUDE_API_LISTS"
	EnvConfig       = "APPCOMPAT_CONFIG"
	EnvNoColor      = "NO_COLOR"
)

// FromEnv returns the configuration layer defined by APPCOMPAT_*
// environment variables. Unset variables leave fields nil.
func FromEnv() FileConfig {
	// env caches the process environment; pick up changes made since the
	// last read.
	env.Load()

	var fc FileConfig
	fc.AssetsDir = envString(EnvAssetsDir)
	fc.TempDir = envString(EnvTempDir)
	fc.KeepTemp = envBool(EnvKeepTemp)
	fc.ExtractCache = envBool(EnvExtractCache)
	fc.CacheDir = envString(EnvCacheDir)
	fc.NoBanner = envBool(EnvNoBanner)
	fc.LogLevel = envString(EnvLogLevel)
	fc.LogFormat = envString(EnvLogFormat)
	fc.History = envBool(EnvHistory)
	if env.Has(EnvNoColor) {
		t := true
		fc.NoColor = &t
	}

	binary := envString(EnvVeridex)
	exclude := envString(EnvExcludeLists)
	if binary != nil || exclude != nil {
		fc.Veridex = &VeridexConfig{Binary: binary, ExcludeAPILists: exclude}
	}
	return fc
}

func envString(name string) *string {
	v := strings.TrimSpace(env.Str(name))
	if v == "" {
		return nil
	}
	return &v
}

func envBool(name string) *bool {
	if strings.TrimSpace(env.Str(name)) == "" {
		return nil
	}
	b := env.Bool(name)
	return &b
}

// ConfigPath returns the explicit config file named by APPCOMPAT_CONFIG.
func ConfigPath() string {
	env.Load()
	return strings.TrimSpace(env.Str(EnvConfig))
}
