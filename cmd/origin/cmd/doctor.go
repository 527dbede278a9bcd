package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/universa-bio/origin/internal/config"
	"github.com/universa-bio/origin/internal/diagnostics"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check collaborators and host environment",
	Long: `Verify that the configured collaborator services are reachable,
credentials are set, the relaxation executable is installed and the
host has enough resources.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	logger := newLogger()

	cfg, err := newLoader().Load()
	if err != nil {
		return err
	}

	fmt.Println("Validating configuration...")
	if err := config.ValidateConfig(cfg); err != nil {
		if verrs, ok := err.(config.ValidationErrors); ok {
			for _, verr := range verrs {
				fmt.Printf("  ✗ %s\n", verr.Error())
			}
		} else {
			fmt.Printf("  ✗ %s\n", err.Error())
		}
		fmt.Println()
		fmt.Println("Fix .origin/config.yaml before running workflows.")
		return fmt.Errorf("configuration invalid")
	}
	fmt.Println("  ✓ configuration valid")
	fmt.Println()

	fmt.Printf("Host: %s\n", diagnostics.HostSummary())
	fmt.Println()
	fmt.Println("Checking collaborators and environment...")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runner := diagnostics.NewRunner(cfg, buildRelaxer(cfg, logger))
	results := runner.Run(ctx)

	for _, res := range results {
		icon := "✓"
		switch res.Status {
		case diagnostics.StatusWarning:
			icon = "⚠"
		case diagnostics.StatusError:
			icon = "✗"
		}
		fmt.Printf("  %s %s: %s\n", icon, res.Name, res.Detail)
	}
	fmt.Println()

	if !diagnostics.Healthy(results) {
		fmt.Println("Some required checks failed")
		return fmt.Errorf("diagnostics failed")
	}
	fmt.Println("All required checks passed")
	return nil
}
