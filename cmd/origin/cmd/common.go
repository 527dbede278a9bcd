package cmd

import (
	"os"

	"github.com/spf13/viper"

	"github.com/universa-bio/origin/internal/adapters/design"
	"github.com/universa-bio/origin/internal/adapters/fold"
	"github.com/universa-bio/origin/internal/adapters/llm"
	"github.com/universa-bio/origin/internal/adapters/relax"
	"github.com/universa-bio/origin/internal/config"
	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/events"
	"github.com/universa-bio/origin/internal/logging"
	"github.com/universa-bio/origin/internal/service/workflow"
)

// newLogger builds the process logger from the persistent flags.
func newLogger() *logging.Logger {
	return logging.New(logging.Config{
		Level:  logLevel,
		Format: logFormat,
		Output: os.Stdout,
	})
}

// newLoader builds a config loader wired to the CLI's viper instance
// so flag bindings take precedence over file and env values.
func newLoader() *config.Loader {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	return loader
}

// buildRelaxer constructs the relaxation collaborator, or nil when no
// executable is configured. A missing binary still yields a relaxer;
// availability is rechecked per run so installing it later needs no
// restart.
func buildRelaxer(cfg *config.Config, logger *logging.Logger) core.Relaxer {
	if cfg.Relax.Path == "" {
		return nil
	}
	return relax.New(relax.Config{
		Path:    cfg.Relax.Path,
		Timeout: cfg.Relax.Timeout,
	}, logger)
}

// buildManager assembles the collaborator adapters, stage executors
// and session manager from the loaded configuration.
func buildManager(cfg *config.Config, bus *events.Bus, logger *logging.Logger) *workflow.Manager {
	refiner := llm.New(llm.Config{
		Endpoint: cfg.Refine.Endpoint,
		Model:    cfg.Refine.Model,
		APIKey:   cfg.Refine.APIKey,
		Timeout:  cfg.Refine.Timeout,
	}, logger)

	designer := design.New(design.Config{
		Endpoint: cfg.Design.Endpoint,
		Timeout:  cfg.Design.Timeout,
	}, logger)

	folder := fold.New(fold.Config{
		Endpoint: cfg.Fold.Endpoint,
		Timeout:  cfg.Fold.Timeout,
	}, logger)

	executors := []workflow.Executor{
		workflow.NewRefiner(refiner, logger),
		workflow.NewGenerator(designer, logger),
		workflow.NewPredictor(folder, buildRelaxer(cfg, logger), logger),
	}

	return workflow.NewManager(cfg.SessionSettings(), executors, bus, logger)
}
