package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	ConfigDir  string
	DataDir    string
	Port       string
	Location   *time.Location
	Reminder   string
	LogLevel   slog.Level
	RefreshMin int
}

// DatabasePath returns the journal database location inside DataDir.
func (s Settings) DatabasePath() string {
	return filepath.Join(s.DataDir, DatabaseFileName)
}

// DefaultConfigDir returns $HOME/.together, falling back to the working directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ConfigDirName
	}
	return filepath.Join(home, ConfigDirName)
}

// Load reads config.toml from configDir, creating the directory and a default file on
// first run. Environment variables prefixed with TOGETHER_ override file values.
// A non-empty dataDirFlag wins over both.
func Load(configDir, dataDirFlag string) (Settings, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	if err := os.MkdirAll(configDir, DirPermUserRWX); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrCreateDir, err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return Settings{}, err
	}

	v := viper.New()
	v.SetDefault(CfgKeyPort, DefaultPort)
	v.SetDefault(CfgKeyTimezone, DefaultTimezone)
	v.SetDefault(CfgKeyReminder, DefaultReminder)
	v.SetDefault(CfgKeyLogLevel, DefaultLogLevel)
	v.SetDefault(CfgKeyRefresh, DefaultRefreshMin)
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("%s: %w", ErrConfigRead, err)
		}
	}

	loc, err := resolveLocation(v.GetString(CfgKeyTimezone))
	if err != nil {
		return Settings{}, err
	}

	dataDir := dataDirFlag
	if dataDir == "" {
		dataDir = v.GetString(CfgKeyDataDir)
	}
	if dataDir == "" {
		dataDir = filepath.Join(configDir, DataDirName)
	}

	refresh := v.GetInt(CfgKeyRefresh)
	if refresh <= DisabledInterval {
		refresh = DefaultRefreshMin
	}

	return Settings{
		ConfigDir:  configDir,
		DataDir:    dataDir,
		Port:       v.GetString(CfgKeyPort),
		Location:   loc,
		Reminder:   v.GetString(CfgKeyReminder),
		LogLevel:   parseLevel(v.GetString(CfgKeyLogLevel)),
		RefreshMin: refresh,
	}, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, ConfigFileExt)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", ErrConfigRead, err)
	}
	if err := os.WriteFile(path, []byte(DefaultConfigTOML), FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", ErrCreateDir, err)
	}
	slog.Debug(MsgConfigCreated, LogKeyComponent, CompConfig, LogKeyPath, path)
	return nil
}

func resolveLocation(name string) (*time.Location, error) {
	if name == "" || name == DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", ErrTimezone, name, err)
	}
	return loc, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
