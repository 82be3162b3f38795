package cli

import (
	"fmt"

	"github.com/RoyceAzure/lab/shopcore/config"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote"
	"github.com/spf13/cobra"
)

// NewCheckCommand 檢查設定檔與遠端服務是否可連線
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate config and probe the commerce service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.ConfigPath
			if path == "" {
				path = ".env"
			}
			cf, err := config.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			client, err := remote.NewCommerceClient(cf.CommerceApiUrl, nil, remote.WithProbeTimeout(cf.CommerceProbeTimeout))
			if err != nil {
				return err
			}
			if err := client.Ping(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "remote %s: %s\n", cf.CommerceApiUrl, remote.UserMessage(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "remote %s: ok\n", cf.CommerceApiUrl)
			return nil
		},
	}
}
