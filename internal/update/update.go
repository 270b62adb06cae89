// Package update checks GitHub for newer appcompat releases.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blang/semver/v4"
)

// Slug is the GitHub owner/repo releases are published under.
const Slug = "appcompat/appcompat"

const cacheFileName = "update.json"

// LatestURL is the releases endpoint queried by Check.
var LatestURL = "https://api.github.com/repos/" + Slug + "/releases/latest"

type cache struct {
	LastChecked time.Time `json:"last_checked"`
	Latest      string    `json:"latest"`
}

func configDir() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "appcompat")
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "appcompat")
}

func loadCache() (cache, error) {
	var c cache
	dir := configDir()
	if dir == "" {
		return c, errors.New("no config dir")
	}
	b, err := os.ReadFile(filepath.Join(dir, cacheFileName))
	if err != nil {
		return c, err
	}
	_ = json.Unmarshal(b, &c)
	return c, nil
}

func saveCache(c cache) {
	dir := configDir()
	if dir == "" {
		return
	}
	_ = os.MkdirAll(dir, 0755)
	b, _ := json.MarshalIndent(c, "", "  ")
	_ = os.WriteFile(filepath.Join(dir, cacheFileName), b, 0644)
}

func latestVersionOnline(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, LatestURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "appcompat-updater")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup: %s", resp.Status)
	}
	var obj struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return "", err
	}
	v := obj.TagName
	if v == "" {
		v = obj.Name
	}
	return v, nil
}

// Check returns (latest, isNewer, error). It uses a 24h cache and skips in CI.
func Check(ctx context.Context, current string, noNetwork bool) (string, bool, error) {
	if os.Getenv("CI") != "" || noNetwork {
		return "", false, nil
	}
	current = normalize(current)
	c, _ := loadCache()
	latest := c.Latest
	if time.Since(c.LastChecked) > 24*time.Hour || latest == "" {
		if v, err := latestVersionOnline(ctx); err == nil {
			latest = normalize(v)
			c.Latest = latest
			c.LastChecked = time.Now()
			saveCache(c)
		}
	}
	if latest == "" || current == "" {
		return latest, false, nil
	}
	return latest, compare(latest, current) > 0, nil
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(v, "v")
}

// compare orders two versions by semver precedence. Unparsable versions
// sort before parsable ones; "dev" builds therefore always see releases as
// newer.
func compare(a, b string) int {
	av, aerr := semver.ParseTolerant(a)
	bv, berr := semver.ParseTolerant(b)
	switch {
	case aerr != nil && berr != nil:
		return strings.Compare(a, b)
	case aerr != nil:
		return -1
	case berr != nil:
		return 1
	}
	return av.Compare(bv)
}
