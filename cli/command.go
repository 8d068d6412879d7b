// Package cli wires the recap core into a cobra command tree. Argument
// parsing and output plumbing live here; conversion, discovery, ranking,
// and redaction semantics live in the pkg packages.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/recaptools/recap/config"
	"github.com/recaptools/recap/logging"
	"github.com/recaptools/recap/pkg/models"
	"github.com/recaptools/recap/version"
)

// NewRootCommand creates the recap root command with standard flags.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recap",
		Short: "Convert Claude, Codex, and Gemini session logs to Markdown transcripts",
		Long: "recap converts AI assistant session logs into readable Markdown.\n\n" +
			"Modes:\n" +
			fmt.Sprintf("  %-10s %s\n", models.ModeChat, models.ModeChat.Description()) +
			fmt.Sprintf("  %-10s %s\n", models.ModeThoughts, models.ModeThoughts.Description()) +
			fmt.Sprintf("  %-10s %s", models.ModeVerbose, models.ModeVerbose.Description()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to recap.yml config file")

	return cmd
}

// GetLogger creates a logger honoring the --debug flag.
func GetLogger(cmd *cobra.Command, component string) *logrus.Entry {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetLevel(component, logrus.DebugLevel)
	}
	return logging.NewLogger(component)
}

// LoadConfig loads the optional config file named by --config and resolves
// the storage roots once. A missing flag means built-in defaults plus
// environment overrides.
func LoadConfig(cmd *cobra.Command) (*config.Config, config.Roots, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil, config.ResolveRoots(nil), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, config.ResolveRoots(cfg), nil
}

// NewVersionCmd reports build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(os.Stdout, version.GetInfo().String())
		},
	}
}
