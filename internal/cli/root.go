// Package cli implements the playparse command line tool: converting
// markdown scripts to CSV and reporting the character network of a script
// without a server.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/OFFIS-RIT/dramaturgy/internal/queue"
	"github.com/OFFIS-RIT/dramaturgy/pkg/loader"
	loaderio "github.com/OFFIS-RIT/dramaturgy/pkg/loader/io"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

// NewRootCmd returns the playparse command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "playparse",
		Short:         "playparse derives character networks from play scripts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("playparse {{ .Version }}\n")

	root.AddCommand(
		markdownCmd(),
		castCmd(),
		scenesCmd(),
		networkCmd(),
	)
	return root
}

func Execute() error {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		Bad.Fprintf(os.Stderr, "playparse: %v\n", err)
		return err
	}
	return nil
}

// readPlay parses a local CSV or markdown script. format overrides the
// extension based detection.
func readPlay(ctx context.Context, path, format string) (*play.Play, error) {
	f := loader.PlayFormat(format)
	if f == "" {
		f = loader.DetectFormat(path)
	}
	files := loaderio.NewIOFileLoader()
	parser, err := queue.PlayLoaderFor(f, files)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return parser.LoadPlay(ctx, loader.NewPlayFile(path, path, f, files))
}
