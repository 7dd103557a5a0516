package cli

import (
	"fmt"

	"github.com/ralt/debinspect/internal/version"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command
func NewCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <version-a> <version-b>",
		Short: "Compare two Debian version strings",
		Long: `Compares two version strings with the Debian Policy 5.6.12
algorithm and prints "lt", "eq" or "gt".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := version.CompareStrings(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case result < 0:
				fmt.Fprintln(out, "lt")
			case result > 0:
				fmt.Fprintln(out, "gt")
			default:
				fmt.Fprintln(out, "eq")
			}
			return nil
		},
	}
}
