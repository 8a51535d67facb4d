package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
	"github.com/thomas-vilte/evalusense/internal/logger"
	"golang.org/x/mod/semver"
)

const (
	releaseOwner = "thomas-vilte"
	releaseRepo  = "evalusense"

	updateCheckInterval = 24 * time.Hour
	updateCheckTimeout  = 2 * time.Second
	updateCacheFile     = "last_update_check.json"

	// EnvDisableUpdateCheck turns CheckForUpdates into a no-op when set.
	EnvDisableUpdateCheck = "EVALUSENSE_DISABLE_UPDATE_CHECK"
)

// ReleasesService is the part of github.RepositoriesService used to look up
// the latest published release.
type ReleasesService interface {
	GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error)
}

type UpdateCache struct {
	LastCheck   time.Time `json:"last_check"`
	LatestKnown string    `json:"latest_known"`
}

// VersionChecker compares the running version with the latest release and
// remembers the answer for a day in cacheDir.
type VersionChecker struct {
	currentVersion string
	releases       ReleasesService
	cacheDir       string
	now            func() time.Time
}

func NewVersionChecker(currentVersion, cacheDir string, releases ReleasesService) *VersionChecker {
	if releases == nil {
		releases = github.NewClient(nil).Repositories
	}
	return &VersionChecker{
		currentVersion: currentVersion,
		releases:       releases,
		cacheDir:       cacheDir,
		now:            time.Now,
	}
}

// CheckForUpdates returns the latest release tag and whether it is newer
// than the running version. Lookup failures are logged and reported as no
// update.
func (v *VersionChecker) CheckForUpdates(ctx context.Context) (string, bool) {
	if os.Getenv(EnvDisableUpdateCheck) != "" {
		return "", false
	}

	log := logger.FromContext(ctx)

	cache, err := v.loadCache()
	if err == nil && v.now().Sub(cache.LastCheck) < updateCheckInterval {
		return cache.LatestKnown, cache.LatestKnown != "" && v.isUpdateAvailable(cache.LatestKnown)
	}

	ctx, cancel := context.WithTimeout(ctx, updateCheckTimeout)
	defer cancel()

	release, _, err := v.releases.GetLatestRelease(ctx, releaseOwner, releaseRepo)
	if err != nil {
		log.Debug("latest release lookup failed", "error", err)
		return "", false
	}

	latest := release.GetTagName()

	if err := v.saveCache(UpdateCache{LastCheck: v.now(), LatestKnown: latest}); err != nil {
		log.Debug("failed to save update check cache", "error", err)
	}

	return latest, v.isUpdateAvailable(latest)
}

func (v *VersionChecker) isUpdateAvailable(latest string) bool {
	current := v.currentVersion
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}

	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return current != latest
	}

	return semver.Compare(latest, current) > 0
}

func (v *VersionChecker) loadCache() (UpdateCache, error) {
	data, err := os.ReadFile(filepath.Join(v.cacheDir, updateCacheFile))
	if err != nil {
		return UpdateCache{}, err
	}

	var cache UpdateCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return UpdateCache{}, err
	}
	return cache, nil
}

func (v *VersionChecker) saveCache(cache UpdateCache) error {
	if err := os.MkdirAll(v.cacheDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(v.cacheDir, updateCacheFile), data, 0644)
}
