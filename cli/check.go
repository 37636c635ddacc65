package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aatuh/ulid-toolkit/health"
	"github.com/aatuh/ulid-toolkit/idgen"
	"github.com/aatuh/ulid-toolkit/ports"
	"github.com/aatuh/ulid-toolkit/ulid"
)

const checkTimeout = 5 * time.Second

func newCheckCommand(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the entropy source and clock",
		Long:  "Run self-checks against the randomness source, the clock and the encoder, and print a JSON report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := idgen.NewGenerator(idgen.WithClock(d.Clock), idgen.WithEntropy(d.Entropy))

			m := health.New(checkTimeout)
			m.RegisterCheckers(
				health.NewEntropyChecker(d.Entropy),
				health.NewClockChecker(d.Clock),
				health.NewCodecChecker(func() (ulid.ID, error) { return gen.Generate(idgen.Request{}) }),
			)
			resp := m.GetDetailedHealth(cmd.Context())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if resp.Status == ports.HealthStatusUnhealthy {
				return fmt.Errorf("self-check %s: %d of %d checks failed", resp.Status, resp.Summary.Unhealthy, resp.Summary.Total)
			}
			return nil
		},
	}
}
