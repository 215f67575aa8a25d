package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the analysis backend is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealth()
	},
}

func runHealth() error {
	cfg := loadedConfig()
	client := newClient(cfg)

	status, err := client.Health(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Backend unreachable"))
		return err
	}

	ok := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	fmt.Printf("%s %s: %s", ok, client.BaseURL(), status.Status)
	if status.Message != "" {
		fmt.Printf(" (%s)", status.Message)
	}
	fmt.Println()
	return nil
}
