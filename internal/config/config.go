// Package config loads biblio settings from config.yaml in the configuration
// directory, with BIBLIO_* environment overrides and in-code defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/biblio/internal/logging"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

const (
	fileName = "config"
	fileType = "yaml"

	// FileName is the configuration file inside the config directory.
	FileName = "config.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "BIBLIO"
)

// Config keys.
const (
	KeyStore         = "store"
	KeyDataDir       = "data_dir"
	KeyAPIBase       = "api_base"
	KeyRemote        = "remote"
	KeyProbeInterval = "probe_interval"
	KeyRemoteTimeout = "remote_timeout"
	KeyListen        = "listen"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
)

// envKeys are the keys that BIBLIO_<KEY> may override. data_dir is resolved
// by internal/paths, where the config file takes precedence over the env.
var envKeys = []string{
	KeyStore,
	KeyAPIBase,
	KeyRemote,
	KeyProbeInterval,
	KeyRemoteTimeout,
	KeyListen,
	KeyLogLevel,
	KeyLogFormat,
}

// Settings is the content of config.yaml.
type Settings struct {
	types.Config `yaml:",inline" mapstructure:",squash"`

	LogLevel  string `yaml:"log_level,omitempty" mapstructure:"log_level"`
	LogFormat string `yaml:"log_format,omitempty" mapstructure:"log_format"`
}

// Default returns the settings used when config.yaml is absent.
func Default() Settings {
	return Settings{
		Config:    types.DefaultConfig(),
		LogLevel:  string(logging.WarnLevel),
		LogFormat: string(logging.FormatConsole),
	}
}

// Path returns the config.yaml path inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, FileName)
}

// Load reads config.yaml from configDir. A missing file is not an error; the
// defaults and environment apply. The result is validated.
func Load(configDir string) (Settings, error) {
	v := newViper(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config %s: %w", Path(configDir), err)
	}
	return s, nil
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyStore, d.Store)
	v.SetDefault(KeyDataDir, "")
	v.SetDefault(KeyAPIBase, d.APIBase)
	v.SetDefault(KeyRemote, d.Remote)
	v.SetDefault(KeyProbeInterval, d.ProbeInterval)
	v.SetDefault(KeyRemoteTimeout, d.RemoteTimeout)
	v.SetDefault(KeyListen, d.Listen)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	v.SetConfigName(fileName)
	v.SetConfigType(fileType)
	v.AddConfigPath(configDir)
	return v
}

// WriteIfMissing creates configDir and writes s to config.yaml unless the
// file already exists. It reports whether a file was written.
func WriteIfMissing(configDir string, s Settings) (bool, error) {
	path := Path(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(&s)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
