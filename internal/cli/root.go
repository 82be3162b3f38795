package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand 沒有指定子命令時等同 serve
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	serve := NewServeCommand(opts)
	cmd := &cobra.Command{
		Use:           "shopcore",
		Short:         "shopcore - commerce session core",
		Long:          "Buyer session service: cart, stock checks, order tracking and notifications.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to .env config file (default $CONFIG_PATH or ./.env)")

	cmd.AddCommand(serve)
	cmd.AddCommand(NewCheckCommand(opts))
	return cmd
}
