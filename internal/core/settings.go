package core

// ColorScheme selects how the structure view is colored.
// Rendering itself is a UI concern; the value is carried opaquely.
type ColorScheme string

const (
	ColorSchemeRainbow ColorScheme = "rainbow"
	ColorSchemeLDDT    ColorScheme = "lDDT"
)

// StructureVariant selects which structure the display layer shows.
type StructureVariant string

const (
	StructureVariantRaw     StructureVariant = "raw"
	StructureVariantRelaxed StructureVariant = "relaxed"
)

// RelaxSettings parameterizes the optional relaxation sub-step.
type RelaxSettings struct {
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
	Stiffness     float64 `json:"stiffness"`
	UseGPU        bool    `json:"use_gpu"`
}

// DisplaySettings parameterizes the display layer. The orchestrator
// never interprets these beyond choosing which structure variant to
// hand out.
type DisplaySettings struct {
	ColorScheme    ColorScheme      `json:"color_scheme"`
	Variant        StructureVariant `json:"variant"`
	ShowBackbone   bool             `json:"show_backbone"`
	ShowSidechains bool             `json:"show_sidechains"`
}

// GenerateSettings parameterizes the generate stage.
type GenerateSettings struct {
	NumSequences int `json:"num_sequences"`
}

// Settings is the session's nested configuration. It is mutated only
// through explicit settings operations and survives workflow resets.
type Settings struct {
	Relax    RelaxSettings    `json:"relax"`
	Display  DisplaySettings  `json:"display"`
	Generate GenerateSettings `json:"generate"`
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() Settings {
	return Settings{
		Relax: RelaxSettings{
			MaxIterations: 2000,
			Tolerance:     2.39,
			Stiffness:     10.0,
			UseGPU:        false,
		},
		Display: DisplaySettings{
			ColorScheme:    ColorSchemeRainbow,
			Variant:        StructureVariantRaw,
			ShowBackbone:   false,
			ShowSidechains: false,
		},
		Generate: GenerateSettings{
			NumSequences: 5,
		},
	}
}

// Validate checks settings invariants.
func (s Settings) Validate() error {
	if s.Relax.MaxIterations < 0 {
		return ErrValidation("RELAX_ITERATIONS_INVALID", "relax max iterations cannot be negative")
	}
	if s.Relax.Stiffness < 0 {
		return ErrValidation("RELAX_STIFFNESS_INVALID", "relax stiffness cannot be negative")
	}
	if s.Generate.NumSequences < 1 || s.Generate.NumSequences > MaxCandidateCount {
		return ErrValidation("NUM_SEQUENCES_INVALID", "number of sequences must be between 1 and 100")
	}
	switch s.Display.ColorScheme {
	case ColorSchemeRainbow, ColorSchemeLDDT:
	default:
		return ErrValidation("COLOR_SCHEME_INVALID", "unknown color scheme")
	}
	switch s.Display.Variant {
	case StructureVariantRaw, StructureVariantRelaxed:
	default:
		return ErrValidation("VARIANT_INVALID", "unknown structure variant")
	}
	return nil
}
