package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"github.com/ppartarr/mp3renamer/discogs"
	"github.com/ppartarr/mp3renamer/matcher"
)

const (
	app           = "mp3renamer"
	TokenVariable = "DISCOGS_ACCESS_TOKEN"
)

// Settings holds everything a run can be tuned with
type Settings struct {
	Library           string  `toml:"library"`
	Ledger            string  `toml:"ledger"`
	Threshold         float64 `toml:"threshold"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
	Endpoint          string  `toml:"endpoint"`
	UserAgent         string  `toml:"user_agent"`
}

func Default() Settings {
	home, _ := os.UserHomeDir()
	return Settings{
		Library:           filepath.Join(home, "desktop", "production", "Music Collection", "Crate Holding Area"),
		Ledger:            "processed_files.json",
		Threshold:         matcher.DefaultThreshold,
		RequestsPerMinute: discogs.RequestsPerMinute,
		Endpoint:          discogs.Endpoint,
		UserAgent:         discogs.UserAgent,
	}
}

// DefaultPath returns where the configuration file is looked up
// when none is given explicitly
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, app, "config.toml")
}

// Load reads settings from path on top of the defaults:
// a missing file leaves the defaults untouched
func Load(path string) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	} else if err != nil {
		return Settings{}, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return settings, settings.Validate()
}

func (settings Settings) Validate() error {
	if len(strings.TrimSpace(settings.Library)) == 0 {
		return errors.New("library folder cannot be empty")
	}
	if len(strings.TrimSpace(settings.Ledger)) == 0 {
		return errors.New("ledger path cannot be empty")
	}
	if settings.Threshold < 0 || settings.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0,1], got %v", settings.Threshold)
	}
	if settings.RequestsPerMinute < 1 {
		return fmt.Errorf("requests per minute must be positive, got %d", settings.RequestsPerMinute)
	}
	if len(settings.Endpoint) == 0 {
		return errors.New("endpoint cannot be empty")
	}
	return nil
}

// Token returns the Discogs access token from the environment
func Token() (string, error) {
	token := strings.TrimSpace(os.Getenv(TokenVariable))
	if len(token) == 0 {
		return "", fmt.Errorf("%s is not set", TokenVariable)
	}
	return token, nil
}
