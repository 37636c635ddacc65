package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aatuh/ulid-toolkit/ulid"
)

type parsed struct {
	ULID        ulid.ID `json:"ulid"`
	TimestampMs uint64  `json:"timestamp_ms"`
	Time        string  `json:"time"`
	Randomness  string  `json:"randomness"`
}

func newParseCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "parse ULID...",
		Short: "Decode ULIDs",
		Long:  "Decode one or more ULIDs and show their timestamp and randomness. Lowercase input is accepted.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			for _, arg := range args {
				id, err := ulid.Parse(arg)
				if err != nil {
					return err
				}
				entropy := id.Entropy()
				p := parsed{
					ULID:        id,
					TimestampMs: id.Time(),
					Time:        id.Timestamp().Format(time.RFC3339Nano),
					Randomness:  hex.EncodeToString(entropy[:]),
				}
				if asJSON {
					if err := enc.Encode(p); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "ULID:       %s\n", p.ULID)
				fmt.Fprintf(out, "Timestamp:  %d (%s)\n", p.TimestampMs, p.Time)
				fmt.Fprintf(out, "Randomness: %s\n", p.Randomness)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per ULID")
	return cmd
}
