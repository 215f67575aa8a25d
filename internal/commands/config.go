package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PeuMauricio/Agente-ADG/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow()
	},
}

var configServerCmd = &cobra.Command{
	Use:   "server <url>",
	Short: "Set the analysis backend URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadedConfig()
		cfg.ServerURL = args[0]
		if err := config.SaveConfig(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("server set to %s\n", args[0])
		return nil
	},
}

var configThemeCmd = &cobra.Command{
	Use:   "theme <light|dark>",
	Short: "Set the color theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.IsValidTheme(args[0]) {
			return fmt.Errorf("unknown theme %q (light or dark)", args[0])
		}
		cfg := loadedConfig()
		cfg.Theme = args[0]
		if err := config.SaveConfig(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("theme set to %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configServerCmd)
	configCmd.AddCommand(configThemeCmd)
}

func runConfigShow() error {
	cfg := loadedConfig()
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	theme := cfg.Theme
	if theme == "" {
		theme = "auto (" + config.ResolveTheme(cfg) + ")"
	}

	fmt.Printf("config file:  %s\n", path)
	fmt.Printf("server:       %s\n", serverURL(cfg))
	fmt.Printf("theme:        %s\n", theme)
	fmt.Printf("chart dir:    %s\n", cfg.ChartDir)
	fmt.Printf("copy answers: %v\n", cfg.CopyToClipboard)
	return nil
}
