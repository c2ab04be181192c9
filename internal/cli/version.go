package cli

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/scopekit/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			info := version.Get()
			if f.JSON() {
				return f.Success(info)
			}
			return f.Success(info.String())
		},
	}
}
