// Package updater provides self-update from GitHub releases, with a
// local backup of the running binary for rollback.
package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/camctl/internal/logging"
	"github.com/smazurov/camctl/internal/version"
)

// UpdateInfo describes the latest release relative to the running
// binary.
type UpdateInfo struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes"`
	ReleaseURL      string    `json:"release_url"`
	PublishedAt     time.Time `json:"published_at"`
	UpdateAvailable bool      `json:"update_available"`
}

// Updater checks a GitHub repository for releases and swaps the
// running binary in place.
type Updater struct {
	repository selfupdate.Repository
	updater    *selfupdate.Updater
	backup     *backupManager
}

// New builds an updater for the given repository slug
// ("owner/project"). It fails when the binary's directory is not
// writable, since applying an update would be impossible.
func New(repository string, prerelease bool) (*Updater, error) {
	if err := checkWritePermission(); err != nil {
		return nil, newError(ErrCodeDisabled, "cannot self-update", err)
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("creating GitHub source: %w", err)
	}
	u, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("creating updater: %w", err)
	}

	logger := logging.GetLogger("updater")
	backup, err := newBackupManager(logger)
	if err != nil {
		logger.Warn("backups unavailable", "error", err)
	}

	return &Updater{
		repository: selfupdate.ParseSlug(repository),
		updater:    u,
		backup:     backup,
	}, nil
}

func checkWritePermission() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Errorf("resolving executable symlinks: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(exe), ".camctl.update.test")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("no write permission to %s: %w", filepath.Dir(exe), err)
	}
	f.Close()
	os.Remove(tmp)
	return nil
}

// Check queries the repository for the latest release and compares it
// against the running version. A "dev" build is always outdated.
func (u *Updater) Check(ctx context.Context) (*UpdateInfo, error) {
	current := version.Version

	release, found, err := u.updater.DetectLatest(ctx, u.repository)
	if err != nil {
		return nil, newError(ErrCodeCheckFailed, "checking for updates", err)
	}
	if !found {
		return nil, newError(ErrCodeNotFound, "repository not found or has no releases", nil)
	}

	info := &UpdateInfo{
		CurrentVersion: current,
		LatestVersion:  release.Version(),
		ReleaseNotes:   release.ReleaseNotes,
		ReleaseURL:     release.URL,
		PublishedAt:    release.PublishedAt,
	}
	info.UpdateAvailable = current == "dev" || release.GreaterThan(current)
	return info, nil
}

// Apply downloads the latest release and replaces the running binary,
// backing it up first. On a failed swap the backup is restored.
// Returns the version that was installed.
func (u *Updater) Apply(ctx context.Context) (string, error) {
	info, err := u.Check(ctx)
	if err != nil {
		return "", err
	}
	if !info.UpdateAvailable {
		return "", newError(ErrCodeNoUpdate, "already up to date", nil)
	}

	release, found, err := u.updater.DetectLatest(ctx, u.repository)
	if err != nil || !found {
		return "", newError(ErrCodeCheckFailed, "resolving release", err)
	}

	if u.backup != nil {
		if err := u.backup.createBackup(); err != nil {
			return "", newError(ErrCodeBackupFailed, "backing up current binary", err)
		}
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return "", newError(ErrCodeApplyFailed, "locating executable", err)
	}
	if err := u.updater.UpdateTo(ctx, release, exe); err != nil {
		u.restoreBackup()
		return "", newError(ErrCodeApplyFailed, "applying update", err)
	}
	return release.Version(), nil
}

// Rollback restores the backed up binary.
func (u *Updater) Rollback() error {
	if u.backup == nil || !u.backup.hasBackup() {
		return newError(ErrCodeNoBackup, "no backup available", nil)
	}
	if err := u.backup.restore(); err != nil {
		return newError(ErrCodeRollbackFailed, "restoring backup", err)
	}
	return nil
}

// BackupVersion reports the version held in the backup, or "" when no
// backup exists.
func (u *Updater) BackupVersion() string {
	if u.backup == nil {
		return ""
	}
	return u.backup.backupVersion()
}

func (u *Updater) restoreBackup() {
	if u.backup == nil || !u.backup.hasBackup() {
		return
	}
	if err := u.backup.restore(); err != nil {
		logging.GetLogger("updater").Error("restoring backup after failed update", "error", err)
	}
}
