package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/OFFIS-RIT/dramaturgy/pkg/loader/csv"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader/markdown"

	"github.com/spf13/cobra"
)

func markdownCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "markdown <script.md>",
		Short: "Convert a markdown script to act,scene,player,text CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := markdown.Parse(content)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
					return err
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := csv.WritePlay(out, p); err != nil {
				return fmt.Errorf("failed to write csv: %w", err)
			}

			if output != "" {
				Good.Fprintf(cmd.ErrOrStderr(), "Processed %d entries from %s\n", len(p.Lines), args[0])
				Subtle.Fprintf(cmd.ErrOrStderr(), "Output written to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV file to write (default stdout)")
	return cmd
}
