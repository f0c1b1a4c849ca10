package types

import (
	"errors"
	"time"
)

// Config holds store selection and remote parameters for the engine, the
// CLI and the API server.
type Config struct {
	Store         string        `json:"store" yaml:"store" mapstructure:"store"`
	DataDir       string        `json:"data_dir" yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	APIBase       string        `json:"api_base" yaml:"api_base" mapstructure:"api_base"`
	Remote        bool          `json:"remote" yaml:"remote" mapstructure:"remote"`
	ProbeInterval time.Duration `json:"probe_interval" yaml:"probe_interval" mapstructure:"probe_interval"`
	RemoteTimeout time.Duration `json:"remote_timeout" yaml:"remote_timeout,omitempty" mapstructure:"remote_timeout"`
	Listen        string        `json:"listen" yaml:"listen,omitempty" mapstructure:"listen"`
}

// Supported blob stores for the local snapshot.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Defaults.
const (
	DefaultAPIBase       = "http://127.0.0.1:4000/api"
	DefaultProbeInterval = 15 * time.Second
	DefaultListen        = ":4000"
)

// Config validation errors.
var (
	ErrStoreEmpty           = errors.New("store must not be empty")
	ErrStoreUnknown         = errors.New("unknown store")
	ErrAPIBaseEmpty         = errors.New("api_base must not be empty when remote is enabled")
	ErrProbeIntervalInvalid = errors.New("probe_interval must be positive")
	ErrRemoteTimeoutInvalid = errors.New("remote_timeout must not be negative")
)

// knownStores lists the stores that Validate accepts.
var knownStores = map[string]bool{
	StoreFile:   true,
	StoreSQLite: true,
	StoreMemory: true,
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Store:         StoreFile,
		APIBase:       DefaultAPIBase,
		Remote:        true,
		ProbeInterval: DefaultProbeInterval,
		Listen:        DefaultListen,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Store == "" {
		return ErrStoreEmpty
	}
	if !knownStores[c.Store] {
		return ErrStoreUnknown
	}
	if c.Remote {
		if c.APIBase == "" {
			return ErrAPIBaseEmpty
		}
		if c.ProbeInterval <= 0 {
			return ErrProbeIntervalInvalid
		}
	}
	if c.RemoteTimeout < 0 {
		return ErrRemoteTimeoutInvalid
	}
	return nil
}
