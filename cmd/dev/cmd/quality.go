package cmd

import (
	"fmt"
	"log/slog"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

func step(use, short, what string, run func() error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Debug("running", "step", what)
			if err := run(); err != nil {
				return fmt.Errorf("failed to run %s: %w", what, err)
			}
			return nil
		},
	}
}

func TestCmd() *cobra.Command {
	return step("test", "Run unit tests", "tests", test.Test)
}

func LintCmd() *cobra.Command {
	return step("lint", "Run linting", "linting", test.Lint)
}

// IntegrationTestCmd runs tests that need a sensor attached to a bridge
func IntegrationTestCmd() *cobra.Command {
	return step("integration-test", "Run tests against attached hardware", "integration testing", test.Integ)
}
