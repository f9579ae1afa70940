package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"backsync/internal/syncerr"

	"github.com/spf13/viper"
)

// JobSpec describes one configured mirroring job. The core treats it as
// read-only input.
type JobSpec struct {
	Name        string   `mapstructure:"name"`
	Source      string   `mapstructure:"source"`
	Destination string   `mapstructure:"destination"`
	Exclude     []string `mapstructure:"exclude"`
	Enabled     *bool    `mapstructure:"enabled"`
}

// IsEnabled treats an absent enabled flag as true.
func (j JobSpec) IsEnabled() bool {
	return j.Enabled == nil || *j.Enabled
}

type Notification struct {
	SMTPServer string `mapstructure:"smtp_server"`
	SMTPPort   int    `mapstructure:"smtp_port"`
	SMTPUser   string `mapstructure:"smtp_user"`
	SMTPPass   string `mapstructure:"smtp_pass"`
	Email      string `mapstructure:"email"`
}

type WebInterface struct {
	Port  int    `mapstructure:"port"`
	Title string `mapstructure:"title"`
}

type Settings struct {
	SSHKey       string       `mapstructure:"ssh_key"`
	RsyncOptions []string     `mapstructure:"rsync_options"`
	Notification Notification `mapstructure:"notification"`
	WebInterface WebInterface `mapstructure:"web_interface"`
}

type Config struct {
	SyncJobs   []JobSpec `mapstructure:"sync_jobs"`
	Settings   Settings  `mapstructure:"settings"`
	StatusFile string    `mapstructure:"status_file"`
	LogDir     string    `mapstructure:"log_dir"`
	DBPath     string    `mapstructure:"db_path"`
	LockFile   string    `mapstructure:"lock_file"`
}

var Default = Config{
	StatusFile: "status.json",
	LogDir:     "logs",
	DBPath:     "backsync.db",
	LockFile:   "backsync.lock",
	Settings: Settings{
		RsyncOptions: []string{"-avz", "--delete", "--stats"},
		Notification: Notification{SMTPPort: 587},
		WebInterface: WebInterface{Port: 8080, Title: "NAS Backup Monitor"},
	},
}

// Rsync option tokens come from configuration as discrete strings and are
// passed to the child process as-is, so each one must be a plain flag with
// no whitespace or shell metacharacters.
var safeOption = regexp.MustCompile(`^-{1,2}[A-Za-z0-9][A-Za-z0-9@=,.:+/_-]*$`)

// Load reads configuration from path (or the default locations when path
// is empty), applies defaults, and validates once. Every failure wraps
// syncerr.ErrConfigLoad; nothing runs without a valid configuration.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to get home dir: %w", syncerr.ErrConfigLoad, err)
		}

		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(home, ".backsync"))
	}

	v.SetDefault("status_file", Default.StatusFile)
	v.SetDefault("log_dir", Default.LogDir)
	v.SetDefault("db_path", Default.DBPath)
	v.SetDefault("lock_file", Default.LockFile)
	v.SetDefault("settings.rsync_options", Default.Settings.RsyncOptions)
	v.SetDefault("settings.notification.smtp_port", Default.Settings.Notification.SMTPPort)
	v.SetDefault("settings.web_interface.port", Default.Settings.WebInterface.Port)
	v.SetDefault("settings.web_interface.title", Default.Settings.WebInterface.Title)

	v.SetEnvPrefix("BACKSYNC")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("%w: failed to read config file: %w", syncerr.ErrConfigLoad, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %w", syncerr.ErrConfigLoad, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", syncerr.ErrConfigLoad, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.SyncJobs))
	for i, job := range c.SyncJobs {
		if job.Name == "" {
			return fmt.Errorf("sync_jobs[%d]: name is required", i)
		}
		if seen[job.Name] {
			return fmt.Errorf("sync_jobs[%d]: duplicate job name %q", i, job.Name)
		}
		seen[job.Name] = true

		if job.Source == "" || job.Destination == "" {
			return fmt.Errorf("job %q: source and destination are required", job.Name)
		}

		for _, pattern := range job.Exclude {
			if pattern == "" {
				return fmt.Errorf("job %q: empty exclude pattern", job.Name)
			}
		}
	}

	for _, opt := range c.Settings.RsyncOptions {
		if !safeOption.MatchString(opt) {
			return fmt.Errorf("rsync option %q is not a recognized flag token", opt)
		}
	}

	if n := c.Settings.Notification; n.SMTPServer != "" {
		if n.SMTPPort < 1 || n.SMTPPort > 65535 {
			return fmt.Errorf("notification smtp_port %d out of range", n.SMTPPort)
		}
	}

	if p := c.Settings.WebInterface.Port; p < 1 || p > 65535 {
		return fmt.Errorf("web_interface port %d out of range", p)
	}

	return nil
}
