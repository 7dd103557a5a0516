package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "debinspect",
		Short: "Inspect Debian packages and source descriptions without dpkg",
		Long: `Debinspect reads Debian package files and source description
documents directly, without libapt or a system package manager.

Available inspections:
  - control metadata and content digests of a .deb file
  - byte-exact Debian version comparison (Debian Policy 5.6.12)
  - cross-validation of a .dsc file manifest against the filesystem`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewInfoCmd())
	rootCmd.AddCommand(NewCompareCmd())
	rootCmd.AddCommand(NewVerifyCmd())

	return rootCmd
}
