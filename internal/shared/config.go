package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library     LibraryConfig     `toml:"library"`
	Destination DestinationConfig `toml:"destination"`
	Sync        SyncConfig        `toml:"sync"`
	Normalize   NormalizeConfig   `toml:"normalize"`
	Plex        PlexConfig        `toml:"plex"`
	Database    DatabaseConfig    `toml:"database"`
}

// LibraryConfig locates the iTunes XML property list.
type LibraryConfig struct {
	Path string `toml:"path"`
}

// DestinationConfig describes the export destination tree.
type DestinationConfig struct {
	Path        string `toml:"path"`
	MusicDir    string `toml:"music_dir"`
	PlaylistDir string `toml:"playlist_dir"`
}

// SyncConfig contains track selection and copy behavior settings.
type SyncConfig struct {
	Force           bool     `toml:"force"`
	Workers         int      `toml:"workers"`
	IncludeVideos   bool     `toml:"include_videos"`
	AllTypes        bool     `toml:"all_types"`
	AllowedTypes    []string `toml:"allowed_types"`
	IgnorePlaylists []string `toml:"ignore_playlists"`
	PlaylistPrefix  string   `toml:"playlist_prefix"`
}

// NormalizeConfig controls destination filename rewriting.
type NormalizeConfig struct {
	Lowercase       bool   `toml:"lowercase"`
	RestrictCharset bool   `toml:"restrict_charset"`
	RelativePaths   bool   `toml:"relative_paths"`
	PathSeparator   string `toml:"path_separator"`
	WriteHeader     bool   `toml:"write_header"`
}

// PlexConfig contains Plex server connection settings for playlist upload.
type PlexConfig struct {
	URL       string  `toml:"url"`
	Token     string  `toml:"token"`
	Section   string  `toml:"section"`
	Prefix    string  `toml:"prefix"`
	RateLimit float64 `toml:"rate_limit"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the current user's home directory.
// Library and destination paths in config files commonly use it.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
