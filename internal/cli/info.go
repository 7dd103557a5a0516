package cli

import (
	"fmt"

	"github.com/ralt/debinspect/internal/deb"
	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command
func NewInfoCmd() *cobra.Command {
	var ignoreMissing bool

	cmd := &cobra.Command{
		Use:   "info <package.deb>",
		Short: "Show control metadata and digests of a package file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []deb.Option
			if ignoreMissing {
				opts = append(opts, deb.IgnoreMissing())
			}

			pkg, err := deb.Open(args[0], opts...)
			if err != nil {
				return err
			}

			controlStr, err := pkg.ControlString()
			if err != nil {
				return err
			}

			sums, err := pkg.Digests()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, controlStr)
			fmt.Fprintf(out, "Size: %d\n", sums.Size)
			fmt.Fprintf(out, "MD5: %s\n", sums.MD5)
			fmt.Fprintf(out, "SHA1: %s\n", sums.SHA1)
			fmt.Fprintf(out, "SHA256: %s\n", sums.SHA256)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ignoreMissing, "ignore-missing", false,
		"Tolerate packages missing required control fields")

	return cmd
}
