package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/go-drift/filament/showcase"
)

type demoInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Steps    int    `json:"steps"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the showcase demos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			var infos []demoInfo
			for _, d := range showcase.Demos() {
				infos = append(infos, demoInfo{Name: d.Name, Title: d.Title, Category: d.Category, Steps: len(d.Steps)})
			}
			return f.success(infos, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tCATEGORY\tSTEPS\tTITLE")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", info.Name, info.Category, info.Steps, info.Title)
				}
				return tw.Flush()
			})
		},
	}
}
