package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/glabrego/threadbox/internal/prefs"
)

const (
	defaultAPIBaseURL = "http://localhost:5000"
	defaultDBPath     = "threadbox.db"
)

// Config holds runtime settings for the thread browser.
type Config struct {
	APIBaseURL   string
	DBPath       string
	SnapshotPath string
	PrefsPath    string
	User         string
	Token        string
}

// FileMode reports whether threads come from a local snapshot file instead
// of the comments API.
func (c Config) FileMode() bool {
	return c.SnapshotPath != ""
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		APIBaseURL:   os.Getenv("THREADBOX_API_BASE_URL"),
		DBPath:       os.Getenv("THREADBOX_DB_PATH"),
		SnapshotPath: os.Getenv("THREADBOX_SNAPSHOT_PATH"),
		PrefsPath:    os.Getenv("THREADBOX_PREFS_PATH"),
		User:         strings.TrimSpace(os.Getenv("THREADBOX_USER")),
		Token:        os.Getenv("THREADBOX_TOKEN"),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.PrefsPath == "" {
		cfg.PrefsPath = prefs.DefaultPath()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if strings.HasSuffix(c.APIBaseURL, "/") {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("APIBaseURL must be an absolute URL: %s", c.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("APIBaseURL scheme must be http or https: %s", c.APIBaseURL)
	}
	return nil
}
