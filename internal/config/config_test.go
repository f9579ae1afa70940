package config

import (
	"os"
	"path/filepath"
	"testing"

	"backsync/internal/syncerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
sync_jobs:
  - name: docs
    source: /data/docs/
    destination: backup:/mnt/backup/docs
    exclude: [".cache", "*.tmp"]
  - name: media
    source: /data/media/
    destination: backup:/mnt/backup/media
    enabled: false
settings:
  ssh_key: /home/sync/.ssh/id_backup
  rsync_options: ["-avz", "--delete", "--stats", "--partial"]
  notification:
    smtp_server: smtp.example.com
    smtp_port: 587
    smtp_user: alerts@example.com
    smtp_pass: hunter2
    email: ops@example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.SyncJobs, 2)
	assert.True(t, cfg.SyncJobs[0].IsEnabled())
	assert.False(t, cfg.SyncJobs[1].IsEnabled())
	assert.Equal(t, []string{".cache", "*.tmp"}, cfg.SyncJobs[0].Exclude)
	assert.Equal(t, "/home/sync/.ssh/id_backup", cfg.Settings.SSHKey)
	assert.Equal(t, []string{"-avz", "--delete", "--stats", "--partial"}, cfg.Settings.RsyncOptions)
	assert.Equal(t, "ops@example.com", cfg.Settings.Notification.Email)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
sync_jobs:
  - name: docs
    source: /data/docs/
    destination: backup:/mnt/backup/docs
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"-avz", "--delete", "--stats"}, cfg.Settings.RsyncOptions)
	assert.Equal(t, "status.json", cfg.StatusFile)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, "backsync.db", cfg.DBPath)
	assert.Equal(t, "backsync.lock", cfg.LockFile)
	assert.Equal(t, 587, cfg.Settings.Notification.SMTPPort)
	assert.Equal(t, 8080, cfg.Settings.WebInterface.Port)
}

func TestLoadRejectsDuplicateJobNames(t *testing.T) {
	path := writeConfig(t, `
sync_jobs:
  - name: docs
    source: /a
    destination: /b
  - name: docs
    source: /c
    destination: /d
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, syncerr.ErrConfigLoad)
	assert.Contains(t, err.Error(), "duplicate job name")
}

func TestLoadRejectsMissingPaths(t *testing.T) {
	path := writeConfig(t, `
sync_jobs:
  - name: docs
    source: /data/docs/
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, syncerr.ErrConfigLoad)
}

func TestLoadRejectsUnnamedJob(t *testing.T) {
	path := writeConfig(t, `
sync_jobs:
  - source: /a
    destination: /b
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, syncerr.ErrConfigLoad)
}

// Option tokens carrying whitespace or shell metacharacters never reach
// the child process argument list.
func TestLoadRejectsUnsafeRsyncOptions(t *testing.T) {
	for _, opt := range []string{
		"--delete --force",
		"-e ssh",
		"--exclude='; rm -rf /'",
		"plain",
		"",
	} {
		path := writeConfig(t, `
sync_jobs:
  - name: docs
    source: /a
    destination: /b
settings:
  rsync_options: ["`+opt+`"]
`)

		_, err := Load(path)
		assert.ErrorIs(t, err, syncerr.ErrConfigLoad, "option %q should be rejected", opt)
	}
}

func TestLoadRejectsBadSMTPPort(t *testing.T) {
	path := writeConfig(t, `
settings:
  notification:
    smtp_server: smtp.example.com
    smtp_port: 0
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, syncerr.ErrConfigLoad)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, syncerr.ErrConfigLoad)
}
