package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DVSTAMP_FFMPEG_PATH.
const EnvPrefix = "DVSTAMP"

// DefaultConfigPath returns ~/.config/dvstamp/config.toml (or the platform's
// equivalent).
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".config", "dvstamp", "config.toml")
	}
	return filepath.Join(dir, "dvstamp", "config.toml")
}

// LoadSettings merges defaults, the settings file, the environment and any
// flags in fs that the user set. path names the settings file; when empty
// the default location is read if it exists. It returns the settings and
// the file actually read ("" when none).
func LoadSettings(fs *pflag.FlagSet, path string) (Settings, string, error) {
	v := viper.New()
	v.SetConfigType("toml")

	def := DefaultSettings()
	v.SetDefault("font_file", def.FontFile)
	v.SetDefault("ffmpeg_path", def.FFmpegPath)
	v.SetDefault("mediainfo_path", def.MediainfoPath)
	v.SetDefault("exiftool_path", def.ExiftoolPath)
	v.SetDefault("tape_target", def.TapeTarget)
	v.SetDefault("stamp_layout", def.StampLayout)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("color", string(def.ColorMode))
	v.SetDefault("jobs", def.Jobs)

	used := ""
	switch {
	case path != "":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, "", fmt.Errorf("read settings %s: %w", path, err)
		}
		used = path
	default:
		p := DefaultConfigPath()
		if _, err := os.Stat(p); err == nil {
			v.SetConfigFile(p)
			if err := v.ReadInConfig(); err != nil {
				return Settings{}, "", fmt.Errorf("read settings %s: %w", p, err)
			}
			used = p
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, name := range settingsFlags {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, "", err
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, "", fmt.Errorf("decode settings: %w", err)
	}
	return s, used, nil
}

// EncodeTOML renders s the way the settings file stores it.
func EncodeTOML(s Settings) ([]byte, error) {
	return toml.Marshal(s)
}

// WriteFile writes s to path, creating parent directories. An existing file
// is only replaced when force is set.
func WriteFile(path string, s Settings, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to replace it)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	data, err := EncodeTOML(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
