package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/spf13/cobra"

	"github.com/drblury/catalogflow"
	iosink "github.com/drblury/catalogflow/transport/io"
)

func newEventsCommand() *cobra.Command {
	var (
		topic  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "events <journal>",
		Short: "Decode the registration events of an io sink journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := iosink.ReadJournal(args[0], topic)
			if err != nil {
				return fmt.Errorf("reading journal: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No registration events.")
				return nil
			}

			events := make([]catalogflow.RegistrationEvent, 0, len(entries))
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if !asJSON {
				fmt.Fprintln(w, "TIME\tENDPOINT\tRECORD\tOUTCOME\tSTATUS")
			}
			for _, entry := range entries {
				msg := message.NewMessage(entry.UUID, entry.Payload)
				msg.Metadata = entry.Metadata
				evt, data, err := catalogflow.DecodeEvent(msg)
				if err != nil {
					return fmt.Errorf("event %s: %w", entry.UUID, err)
				}
				events = append(events, data)
				if !asJSON {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
						evt.Time.Format(time.RFC3339),
						data.Endpoint, data.RecordID,
						outcomeColor(data.Outcome).Sprint(string(data.Outcome)),
						data.StatusCode)
				}
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), events)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "only decode events of this topic")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the event data in JSON format")
	return cmd
}
