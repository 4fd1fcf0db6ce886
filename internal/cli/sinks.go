package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/drblury/catalogflow"
	_ "github.com/drblury/catalogflow/transport/transports"
)

func newSinksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sinks",
		Short: "List the event sinks registration events can be published to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDURABLE\tORDERED\tHEADERS\tMAX SIZE")
			for _, caps := range catalogflow.DefaultSinkRegistry.Describe() {
				maxSize := "-"
				if caps.MaxMessageSize > 0 {
					maxSize = fmt.Sprintf("%d", caps.MaxMessageSize)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", caps.Name,
					yesNo(caps.Durable), yesNo(caps.SupportsOrdering), yesNo(caps.SupportsHeaders), maxSize)
			}
			return w.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
