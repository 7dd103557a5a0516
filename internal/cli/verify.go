package cli

import (
	"fmt"

	"github.com/ralt/debinspect/internal/dsc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <source.dsc>",
		Short: "Validate a source description against the files on disk",
		Long: `Parses a .dsc document and checks that every file its manifest
declares exists next to it with the declared size and digests. All
problems are reported, not just the first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := dsc.Open(args[0])
			if err != nil {
				return err
			}

			logrus.Debugf("validating %d manifest entries", len(doc.Manifest()))

			problems := 0
			for _, name := range doc.MissingFiles() {
				logrus.Errorf("missing file: %s", doc.Resolve(name))
				problems++
			}

			mismatches, err := doc.ChecksumMismatches()
			if err != nil {
				return err
			}
			for _, m := range mismatches {
				logrus.Errorf("%s: %s is %s, expected %s",
					m.Filename, m.Algorithm, m.Actual, m.Expected)
				problems++
			}

			if problems > 0 {
				return fmt.Errorf("%d validation problems in %s", problems, args[0])
			}

			logrus.Infof("%s: %d files OK", args[0], len(doc.Manifest()))
			return nil
		},
	}
}
