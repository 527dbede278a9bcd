package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"strings"
	"syscall"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/universa-bio/origin/internal/config"
	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/events"
	"github.com/universa-bio/origin/internal/service/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run [design idea]",
	Short: "Run the design pipeline once from the command line",
	Long: `Run the protein design pipeline for a single design idea.

By default all three stages run chained: the idea is refined into a
generator prompt, candidate sequences are generated, and the top
candidate's structure is predicted and relaxed.

Examples:
  # Full pipeline
  origin run "a thermostable esterase active at pH 9"

  # Generate only, 10 candidates
  origin run --stages generate --num-sequences 10 "a small zinc finger"

  # Save the predicted structure
  origin run --out structure.pdb "a short amphipathic helix"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runStages       []string
	runNoAuto       bool
	runNumSequences int
	runOut          string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&runStages, "stages", []string{"refine", "generate", "predict"},
		"stages to select (refine, generate, predict)")
	runCmd.Flags().BoolVar(&runNoAuto, "no-auto", false,
		"disable auto-chaining; only the first selected stage runs")
	runCmd.Flags().IntVar(&runNumSequences, "num-sequences", 0,
		"number of candidate sequences to request (default from config)")
	runCmd.Flags().StringVar(&runOut, "out", "",
		"write the predicted structure to this PDB file")
}

func runRun(_ *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := newLoader().Load()
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	bus := events.NewBus(64)
	defer bus.Close()
	manager := buildManager(cfg, bus, logger)

	ctrl, err := manager.Login(currentUsername())
	if err != nil {
		return err
	}
	ctrl.SetPrompt(strings.Join(args, " "))
	ctrl.SetAutoMode(!runNoAuto)

	for _, stage := range core.AllStages() {
		if err := ctrl.SelectStage(stage, false); err != nil {
			return err
		}
	}
	for _, name := range runStages {
		stage, err := core.ParseStage(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		if err := ctrl.SelectStage(stage, true); err != nil {
			return err
		}
	}
	if runNumSequences > 0 {
		settings := ctrl.SessionSnapshot().Settings
		settings.Generate.NumSequences = runNumSequences
		if err := ctrl.UpdateSettings(settings); err != nil {
			return err
		}
	}

	var first core.Stage
	for _, stage := range core.AllStages() {
		if ctrl.StageSelected(stage) {
			first = stage
			break
		}
	}
	if first == "" {
		return fmt.Errorf("no stages selected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reports, err := ctrl.TriggerAndDrain(ctx, first)
	if err != nil {
		return err
	}

	failed := printReports(ctrl, reports)

	if runOut != "" {
		if err := exportStructure(ctrl, runOut); err != nil {
			return err
		}
		fmt.Printf("\nStructure written to %s\n", runOut)
	}

	if failed {
		return fmt.Errorf("workflow finished with failed stages")
	}
	return nil
}

// printReports summarizes the run on stdout and reports whether any
// stage failed.
func printReports(ctrl *workflow.Controller, reports []workflow.StageReport) bool {
	failed := false
	for _, rep := range reports {
		switch {
		case rep.Status == core.StageStatusFailed:
			failed = true
			fmt.Printf("  ✗ %s: %s\n", rep.Stage, rep.Error)
		case rep.Degraded:
			fmt.Printf("  ⚠ %s completed (relaxation skipped)\n", rep.Stage)
		default:
			fmt.Printf("  ✓ %s completed\n", rep.Stage)
		}
	}

	if rt, ok := ctrl.Store().RefinedText(); ok {
		fmt.Printf("\nRefined prompt:\n%s\n", rt.Text)
	}
	if sc, ok := ctrl.Store().Candidates(); ok && !sc.Set.Empty() {
		fmt.Printf("\nCandidates (best first):\n")
		for i := 0; i < sc.Set.Len(); i++ {
			c, _ := sc.Set.At(i)
			fmt.Printf("  %2d. score=%.4f logp=%.4f %s\n", i+1, c.Score, c.LogProbPerToken, c.Sequence)
		}
	}
	if pred, ok := ctrl.Store().Prediction(); ok {
		variant := "raw"
		if pred.HasRelaxed() {
			variant = "relaxed"
		}
		fmt.Printf("\nPredicted structure: %d bytes (%s)\n", len(pred.Best(true)), variant)
		if pred.Degraded {
			fmt.Printf("  relaxation skipped: %s\n", pred.DegradedReason)
		}
	}
	return failed
}

// exportStructure writes the best available structure atomically.
func exportStructure(ctrl *workflow.Controller, path string) error {
	pred, ok := ctrl.Store().Prediction()
	if !ok {
		return fmt.Errorf("no structure prediction to export")
	}
	return renameio.WriteFile(path, []byte(pred.Best(true)), 0o644)
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "local"
}
