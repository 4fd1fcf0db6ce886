package cli

import (
	"github.com/spf13/cobra"
)

func newGetCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Print one catalog record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, err := resolveEndpoint(args[0])
			if err != nil {
				return err
			}
			client, err := root.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			var record map[string]any
			if err := client.Fetch(cmd.Context(), endpoint, args[1], &record); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
}

func newListCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "Print every record of one catalog collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, err := resolveEndpoint(args[0])
			if err != nil {
				return err
			}
			client, err := root.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			var records any
			if err := client.List(cmd.Context(), endpoint, &records); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}
}
