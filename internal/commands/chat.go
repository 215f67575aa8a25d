package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PeuMauricio/Agente-ADG/internal/config"
	"github.com/PeuMauricio/Agente-ADG/internal/render"
	"github.com/PeuMauricio/Agente-ADG/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive analysis session",
	Long: `Start an interactive session with the data analysis agent.

Attach a dataset with /attach (or paste its path), then ask questions.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	cfg := loadedConfig()
	client := newClient(cfg)

	// Probe the backend before entering the TUI so connection problems
	// surface as a plain error instead of a broken first question
	spin := newSpinner("Connecting to " + client.BaseURL())
	spin.start()
	if _, err := client.Health(context.Background()); err != nil {
		spin.stopWithError()
		return fmt.Errorf("backend not reachable: %w", err)
	}
	spin.stopWithSuccess("Connected")

	render.SetTheme(config.ResolveTheme(cfg))
	tui.UpdateTheme()

	return tui.Run(client, cfg)
}
