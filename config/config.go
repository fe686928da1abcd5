// Package config contains the logic to obtain avfaudio settings from a file or the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	_ "embed" // used to embed the default configuration file.

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/shaban/avfaudio/session"
)

//go:embed avfaudio.toml
var defaultConfigFile []byte

// FileName is the name of the configuration file inside Dir.
const FileName = "avfaudio.toml"

// EnvPrefix prefixes environment overrides, e.g. AVFAUDIO_CATEGORY.
const EnvPrefix = "avfaudio"

// Settings mirrors avfaudio.toml.
type Settings struct {
	Category                   string   `mapstructure:"category" toml:"category"`
	Options                    []string `mapstructure:"options" toml:"options"`
	Mode                       string   `mapstructure:"mode" toml:"mode"`
	Activate                   bool     `mapstructure:"activate" toml:"activate"`
	NotifyOthersOnDeactivation bool     `mapstructure:"notify-others-on-deactivation" toml:"notify-others-on-deactivation"`
	Latency                    string   `mapstructure:"latency" toml:"latency"`
	PreferredSampleRate        float64  `mapstructure:"preferred-sample-rate" toml:"preferred-sample-rate"`
	Strict                     bool     `mapstructure:"strict" toml:"strict"`
	LogLevel                   string   `mapstructure:"log-level" toml:"log-level"`
}

// Default returns the settings of the embedded default file.
func Default() Settings {
	var s Settings
	if err := toml.Unmarshal(defaultConfigFile, &s); err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return s
}

// Init prepares v to read file, with environment overrides and the embedded
// defaults underneath. A missing file is created from the embedded default.
func Init(v *viper.Viper, file string) error {
	if file == "" {
		return fmt.Errorf("config: empty config file path")
	}
	v.SetConfigType("toml")

	// allow env vars to override config file
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(file)

	// every key needs a default so env overrides reach Unmarshal
	defaults := viper.New()
	defaults.SetConfigType("toml")
	if err := defaults.ReadConfig(bytes.NewReader(defaultConfigFile)); err != nil {
		return fmt.Errorf("error reading default embedded config: %w", err)
	}
	for key, value := range defaults.AllSettings() {
		v.SetDefault(key, value)
	}

	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("file", file).Msg("config file not found, writing default")
		if err := WriteDefault(file, true); err != nil {
			return fmt.Errorf("error writing default config: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Decode returns the settings v currently holds.
func Decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	return s, nil
}

// Load reads file, creating it first if needed, and applies env overrides.
func Load(file string) (Settings, error) {
	v := viper.New()
	if err := Init(v, file); err != nil {
		return Settings{}, err
	}
	return Decode(v)
}

// WriteDefault writes the embedded default file to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	return os.WriteFile(path, defaultConfigFile, 0o600)
}

// Save writes s to path as TOML.
func Save(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling error: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Dir obtains the configuration directory in a cross-platform manner,
// always respecting the XDG_CONFIG_HOME env var, using standard defaults on all OS's,
// but overriding to ~/.config on macOS
func Dir() (string, error) {
	var xdgConfigHome string
	if runtime.GOOS == "darwin" && os.Getenv("XDG_CONFIG_HOME") == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		xdgConfigHome = filepath.Join(home, ".config") // override for mac
	} else {
		xdgConfigHome = xdg.ConfigHome
	}
	return filepath.Join(xdgConfigHome, "avfaudio"), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Configuration parses the category, mode and options. With Strict set the
// combination is also validated.
func (s Settings) Configuration() (session.Configuration, error) {
	var cfg session.Configuration
	var err error
	if cfg.Category, err = session.ParseCategory(s.Category); err != nil {
		return cfg, err
	}
	if cfg.Mode, err = session.ParseMode(s.Mode); err != nil {
		return cfg, err
	}
	if cfg.Options, err = session.ParseCategoryOptionList(s.Options); err != nil {
		return cfg, err
	}
	if s.Strict {
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// LatencyClass parses Latency.
func (s Settings) LatencyClass() (session.LatencyClass, error) {
	return session.ParseLatencyClass(s.Latency)
}

// DeactivateOptions returns the options to deactivate with.
func (s Settings) DeactivateOptions() session.SetActiveOptions {
	if s.NotifyOthersOnDeactivation {
		return session.NotifyOthersOnDeactivation
	}
	return 0
}
