package internal

import (
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Conf     ConfConfig        `yaml:"conf"`
	History  HistoryConfig     `yaml:"history"`
	Commands CommandsConfig    `yaml:"commands"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Conf.Validate(); err != nil {
		return err
	}
	return c.Commands.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// ConfConfig points at the legacy key/value configuration file shared with
// the mirror and indexing tooling.
type ConfConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the legacy configuration reference.
func (c *ConfConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// HistoryConfig holds the run-history database location. An empty path
// disables history recording.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether run history is recorded.
func (c *HistoryConfig) Enabled() bool {
	return c.Path != ""
}

// CommandsConfig names the collaborator executables. Relative names resolve
// against the bin_dir from the legacy configuration.
type CommandsConfig struct {
	Mirror string `yaml:"mirror"`
	Update string `yaml:"update"`
}

// Validate validates the collaborator command names.
func (c *CommandsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Mirror, validation.Required),
		validation.Field(&c.Update, validation.Required),
	)
}

// Resolve returns the full path of name, joining it with binDir unless it is
// already absolute.
func (c *CommandsConfig) Resolve(binDir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(binDir, name)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Conf: ConfConfig{
			Path: "config/srcupdate.conf",
		},
		History: HistoryConfig{
			Path: "./srcupdate.db",
		},
		Commands: CommandsConfig{
			Mirror: "mirror-sync",
			Update: "update-sources",
		},
	}
}
