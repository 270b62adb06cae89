package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration shape for appcompat. Nil fields
// are unset and fall through to the next configuration layer.
type FileConfig struct {
	AssetsDir    *string `yaml:"assets_dir,omitempty" json:"assets_dir,omitempty"`
	TempDir      *string `yaml:"temp_dir,omitempty" json:"temp_dir,omitempty"`
	KeepTemp     *bool   `yaml:"keep_temp,omitempty" json:"keep_temp,omitempty"`
	ExtractCache *bool   `yaml:"extract_cache,omitempty" json:"extract_cache,omitempty"`
	CacheDir     *string `yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`
	NoBanner     *bool   `yaml:"no_banner,omitempty" json:"no_banner,omitempty"`
	NoColor      *bool   `yaml:"no_color,omitempty" json:"no_color,omitempty"`
	LogLevel     *string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	LogFormat    *string `yaml:"log_format,omitempty" json:"log_format,omitempty"`
	History      *bool   `yaml:"history,omitempty" json:"history,omitempty"`
	UpdateCheck  *bool   `yaml:"update_check,omitempty" json:"update_check,omitempty"`

	Veridex *VeridexConfig `yaml:"veridex,omitempty" json:"veridex,omitempty"`
}

// VeridexConfig adjusts how veridex is invoked.
type VeridexConfig struct {
	// Binary is an on-disk veridex used instead of the bundled one.
	Binary *string `yaml:"binary,omitempty" json:"binary,omitempty"`

	// ExcludeAPILists replaces the default "sdk,invalid".
	ExcludeAPILists *string `yaml:"exclude_api_lists,omitempty" json:"exclude_api_lists,omitempty"`

	// ExtraCoreStubs are glob patterns of additional stub archives
	// appended to --core-stubs.
	ExtraCoreStubs []string `yaml:"extra_core_stubs,omitempty" json:"extra_core_stubs,omitempty"`
}

// LocalNames are the repo-local config file names, in search order.
var LocalNames = []string{".appcompat.yml", ".appcompat.yaml", "appcompat.yml", "appcompat.yaml", ".appcompat.jsonc"}

// LoadFile reads a config file. Files ending in .json or .jsonc are parsed
// as JSON with comments, everything else as YAML.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(b), &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	return cfg, nil
}

// FindLocal returns the path of the repo-local config file for dir. dir
// itself is searched first, then the root of the enclosing git worktree.
func FindLocal(dir string) (string, error) {
	roots := []string{dir}
	if root := WorktreeRoot(dir); root != "" && root != dir {
		roots = append(roots, root)
	}
	for _, root := range roots {
		for _, name := range LocalNames {
			p := filepath.Join(root, name)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("no local config: %w", os.ErrNotExist)
}

// LoadLocal loads the repo-local config file for dir. The error wraps
// os.ErrNotExist when there is none.
func LoadLocal(dir string) (FileConfig, error) {
	p, err := FindLocal(dir)
	if err != nil {
		return FileConfig{}, err
	}
	return LoadFile(p)
}

// WorktreeRoot returns the top-level directory of the git worktree
// containing dir, or "" when dir is not inside one.
func WorktreeRoot(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}

// GlobalPath returns the global config file location under the XDG config
// directory, or "" when no base directory can be determined.
func GlobalPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, "appcompat", "config.yml")
}

// LoadGlobal loads the global config file from XDG base directory or
// ~/.config. The error wraps os.ErrNotExist when there is none.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p := GlobalPath()
	if p == "" {
		return cfg, fmt.Errorf("no config dir: %w", os.ErrNotExist)
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, fmt.Errorf("no global config: %w", os.ErrNotExist)
}

// GetVeridex returns the veridex section, never nil.
func (fc FileConfig) GetVeridex() VeridexConfig {
	if fc.Veridex == nil {
		return VeridexConfig{}
	}
	return *fc.Veridex
}

// GetBinary returns the override binary path or empty string.
func (vc VeridexConfig) GetBinary() string {
	if vc.Binary == nil {
		return ""
	}
	return *vc.Binary
}

// GetExcludeAPILists returns the configured exclude lists or empty string
// for the default.
func (vc VeridexConfig) GetExcludeAPILists() string {
	if vc.ExcludeAPILists == nil {
		return ""
	}
	return *vc.ExcludeAPILists
}
