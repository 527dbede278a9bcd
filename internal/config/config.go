package config

import "time"

// Config holds all application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Refine  RefineConfig  `mapstructure:"refine"`
	Design  DesignConfig  `mapstructure:"design"`
	Fold    FoldConfig    `mapstructure:"fold"`
	Relax   RelaxConfig   `mapstructure:"relax"`
	Display DisplayConfig `mapstructure:"display"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RefineConfig configures the prompt-refinement collaborator.
type RefineConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DesignConfig configures the sequence-design collaborator.
type DesignConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	Timeout      time.Duration `mapstructure:"timeout"`
	NumSequences int           `mapstructure:"num_sequences"`
}

// FoldConfig configures the structure-folding collaborator.
type FoldConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RelaxConfig configures the external relaxation executable.
type RelaxConfig struct {
	Path          string        `mapstructure:"path"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxIterations int           `mapstructure:"max_iterations"`
	Tolerance     float64       `mapstructure:"tolerance"`
	Stiffness     float64       `mapstructure:"stiffness"`
	UseGPU        bool          `mapstructure:"use_gpu"`
}

// DisplayConfig configures the display-layer defaults handed to new
// sessions. The orchestrator carries these opaquely.
type DisplayConfig struct {
	ColorScheme    string `mapstructure:"color_scheme"`
	Variant        string `mapstructure:"variant"`
	ShowBackbone   bool   `mapstructure:"show_backbone"`
	ShowSidechains bool   `mapstructure:"show_sidechains"`
}
