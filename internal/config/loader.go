package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:         viper.New(),
		envPrefix: "ORIGIN",
	}
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "ORIGIN",
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (ORIGIN_*)
// 3. Project config (.origin/config.yaml in current directory)
// 4. User config (~/.config/origin/config.yaml)
// 5. Defaults
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".origin")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "origin"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values.
func (l *Loader) setDefaults() {
	// Log defaults
	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	// HTTP defaults
	l.v.SetDefault("http.addr", ":8090")
	l.v.SetDefault("http.shutdown_timeout", "10s")

	// Refine defaults. The API key is read from ORIGIN_REFINE_API_KEY.
	l.v.SetDefault("refine.endpoint", "https://api.mistral.ai/v1/chat/completions")
	l.v.SetDefault("refine.model", "mistral-small")
	l.v.SetDefault("refine.timeout", "45s")

	// Design defaults
	l.v.SetDefault("design.endpoint", "http://www.denovo-pinal.com/")
	l.v.SetDefault("design.timeout", "90s")
	l.v.SetDefault("design.num_sequences", 5)

	// Fold defaults
	l.v.SetDefault("fold.endpoint", "https://api.esmatlas.com/foldSequence/v1/pdb/")
	l.v.SetDefault("fold.timeout", "90s")

	// Relax defaults (minutes-scale: the relaxer is a batch process)
	l.v.SetDefault("relax.path", "amber-relax")
	l.v.SetDefault("relax.timeout", "10m")
	l.v.SetDefault("relax.max_iterations", 2000)
	l.v.SetDefault("relax.tolerance", 2.39)
	l.v.SetDefault("relax.stiffness", 10.0)
	l.v.SetDefault("relax.use_gpu", false)

	// Display defaults
	l.v.SetDefault("display.color_scheme", "rainbow")
	l.v.SetDefault("display.variant", "raw")
	l.v.SetDefault("display.show_backbone", false)
	l.v.SetDefault("display.show_sidechains", false)
}

// ConfigFile returns the config file path if one was used.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Get returns a configuration value by key.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// Set sets a configuration value.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}
