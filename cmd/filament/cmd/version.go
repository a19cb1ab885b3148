package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/go-drift/filament/pkg/config"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			data := map[string]string{
				"version": Version,
				"runtime": config.Version,
				"built":   BuildTime,
			}
			return f.success(data, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "filament %s (runtime %s, built %s)\n", Version, config.Version, BuildTime)
				return err
			})
		},
	}
}
