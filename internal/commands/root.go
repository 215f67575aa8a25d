// Package commands provides CLI commands for adg.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/PeuMauricio/Agente-ADG/internal/api"
	"github.com/PeuMauricio/Agente-ADG/internal/config"
)

var (
	// Global flags
	serverFlag string
	fileFlag   string
	outputFlag string
	rawFlag    bool
	chartsFlag string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "adg [question]",
	Short: "Chat with the data analysis agent",
	Long: `adg is a terminal client for the data analysis agent. Attach a CSV or
ZIP dataset, ask questions in natural language and get answers with charts.

Examples:
  adg chat                                  Start the interactive session
  adg -f sales.csv "What drove Q3 growth?"  One-shot question
  cat question.md | adg -f sales.csv        Read the question from stdin
  adg -f data.zip "Plot revenue" -o out.md  Save the answer to a file
  adg health                                Check the backend`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("adg %s (built %s)\n", Version, BuildTime)
			return nil
		}

		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if len(args) > 0 {
			return runAsk(args[0])
		}

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runAsk(string(data))
		}

		// No question: show help
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "Analysis backend URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&chartsFlag, "charts", "", "Directory for downloaded charts")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Dataset to attach (.csv or .zip)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the answer to a file")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the raw answer without decoration")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}

// loadedConfig returns the persisted config, falling back to defaults.
func loadedConfig() config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// serverURL resolves the backend URL from flag or config.
func serverURL(cfg config.Config) string {
	if serverFlag != "" {
		return serverFlag
	}
	if cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return config.DefaultServerURL
}

// newClient builds the API client from flags and config.
func newClient(cfg config.Config) *api.Client {
	opts := []api.ClientOption{}

	chartDir := chartsFlag
	if chartDir == "" {
		chartDir, _ = config.GetChartDir(cfg)
	}
	if chartDir != "" {
		opts = append(opts, api.WithChartDir(chartDir))
	}

	return api.NewClient(serverURL(cfg), opts...)
}
