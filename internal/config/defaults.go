package config

import "github.com/universa-bio/origin/internal/core"

// DefaultConfigYAML contains the default configuration scaffold written
// by `origin init`. Values not specified use the loader defaults.
const DefaultConfigYAML = `# origin configuration
#
# Values not specified here use sensible defaults.

log:
  level: info
  format: auto

http:
  addr: ":8090"

# Prompt refinement collaborator (LLM chat completions).
# The API key is read from the ORIGIN_REFINE_API_KEY environment
# variable; do not commit it to this file.
refine:
  model: mistral-small
  timeout: 45s

# Sequence design collaborator.
design:
  endpoint: http://www.denovo-pinal.com/
  timeout: 90s
  num_sequences: 5

# Structure folding collaborator.
fold:
  endpoint: https://api.esmatlas.com/foldSequence/v1/pdb/
  timeout: 90s

# External relaxation executable. Absence is not an error: prediction
# degrades to the raw structure.
relax:
  path: amber-relax
  timeout: 10m
  max_iterations: 2000
  tolerance: 2.39
  stiffness: 10.0
  use_gpu: false

display:
  color_scheme: rainbow   # rainbow | lDDT
  variant: raw            # raw | relaxed
  show_backbone: false
  show_sidechains: false
`

// SessionSettings converts the configured display/relax/design defaults
// into the settings a fresh session starts with.
func (c *Config) SessionSettings() core.Settings {
	s := core.DefaultSettings()
	if c.Relax.MaxIterations > 0 {
		s.Relax.MaxIterations = c.Relax.MaxIterations
	}
	if c.Relax.Tolerance > 0 {
		s.Relax.Tolerance = c.Relax.Tolerance
	}
	if c.Relax.Stiffness > 0 {
		s.Relax.Stiffness = c.Relax.Stiffness
	}
	s.Relax.UseGPU = c.Relax.UseGPU
	if c.Display.ColorScheme != "" {
		s.Display.ColorScheme = core.ColorScheme(c.Display.ColorScheme)
	}
	if c.Display.Variant != "" {
		s.Display.Variant = core.StructureVariant(c.Display.Variant)
	}
	s.Display.ShowBackbone = c.Display.ShowBackbone
	s.Display.ShowSidechains = c.Display.ShowSidechains
	if c.Design.NumSequences > 0 {
		s.Generate.NumSequences = c.Design.NumSequences
	}
	return s
}
