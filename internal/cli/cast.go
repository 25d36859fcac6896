package cli

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/OFFIS-RIT/dramaturgy/pkg/interaction"
	"github.com/OFFIS-RIT/dramaturgy/pkg/network"

	"github.com/spf13/cobra"
)

func castCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "cast <script>",
		Short: "Show characters ranked by importance with cast statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlay(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			net := network.Build(p.Lines)
			out := cmd.OutOrStdout()

			Banner(out, p.Title)
			if net.Empty() {
				Warn.Fprintln(out, "  "+interaction.NoDataMessage)
				return nil
			}

			nodes := slices.Clone(net.Nodes)
			slices.SortFunc(nodes, func(a, b network.Node) int {
				return cmp.Or(
					cmp.Compare(a.Group, b.Group),
					cmp.Compare(b.LineCount, a.LineCount),
					cmp.Compare(a.Name, b.Name),
				)
			})

			var rows [][]string
			for _, n := range nodes {
				rows = append(rows, []string{
					n.Name,
					groupLabel(n.Group),
					strconv.Itoa(n.LineCount),
					interaction.FormatPercent(net.LinePercent(n.LineCount)) + "%",
					strconv.Itoa(n.SceneCount),
					strconv.Itoa(net.Degree(n.Name)),
				})
			}
			Table(out, []string{"Character", "Group", "Lines", "Share", "Scenes", "Connections"}, rows)

			stats := net.Stats()
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Characters:          %d\n", stats.Characters)
			fmt.Fprintf(out, "  Connections:         %d\n", stats.Connections)
			fmt.Fprintf(out, "  Scenes:              %d\n", stats.Scenes)
			fmt.Fprintf(out, "  Avg scenes per char: %.1f\n", stats.AvgScenesPerChar)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Script format: csv or markdown (default from extension)")
	return cmd
}

func scenesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "scenes <script>",
		Short: "List the scenes of a script in order of appearance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlay(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, k := range p.Scenes() {
				fmt.Fprintf(out, "%-20s %s\n", k.Label(), Subtle.Sprint(interaction.SceneHref(k)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Script format: csv or markdown (default from extension)")
	return cmd
}

func networkCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "network <script>",
		Short: "Print the character network as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlay(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			net := network.Build(p.Lines)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Title string `json:"title"`
				*network.Network
				Stats network.CastStats `json:"stats"`
			}{p.Title, net, net.Stats()})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Script format: csv or markdown (default from extension)")
	return cmd
}
