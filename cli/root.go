package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/aatuh/ulid-toolkit/clock"
	"github.com/aatuh/ulid-toolkit/config"
	"github.com/aatuh/ulid-toolkit/entropy"
	"github.com/aatuh/ulid-toolkit/envvar"
	"github.com/aatuh/ulid-toolkit/ports"
	"github.com/aatuh/ulid-toolkit/validation"
)

// Deps are the capabilities the commands run against. Tests swap them for
// frozen clocks, fixed entropy and a sleep that returns immediately.
type Deps struct {
	Clock    ports.Clock
	Entropy  ports.Entropy
	Sleep    func(ctx context.Context, d time.Duration) error
	Env      *envvar.Adapter
	EnvFiles []string
}

// DefaultDeps wires the system clock, crypto/rand and a real timer.
func DefaultDeps() Deps {
	return Deps{
		Clock:    clock.NewSystemClock(),
		Entropy:  entropy.NewCryptoSource(),
		Sleep:    sleepContext,
		Env:      envvar.New(),
		EnvFiles: config.DefaultEnvFiles,
	}
}

// NewRoot builds the ulidgen command tree with production dependencies.
func NewRoot() *cobra.Command {
	return NewRootWithDeps(DefaultDeps())
}

// NewRootWithDeps builds the command tree around d.
func NewRootWithDeps(d Deps) *cobra.Command {
	envErr := d.Env.LoadEnvFiles(d.EnvFiles)
	cfg, cfgErr := config.LoadFromEnv(d.Env)

	root := &cobra.Command{
		Use:   "ulidgen",
		Short: "Generate ULIDs",
		Long: `Generate Universally Unique Lexicographically Sortable Identifiers.

Each identifier is a 48-bit millisecond timestamp followed by 80 random bits,
printed as 26 Crockford Base32 characters. Defaults can be set through
ULIDGEN_* environment variables or a .env file; flags take precedence.`,
		Example: `  ulidgen
  ulidgen -C 5 -I 0 --monotonic
  ulidgen -N
  ulidgen parse 01ARZ3NDEKTSV4RRFFQ69G5FAV`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return envErr
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			cfg.Normalize()
			if err := cfg.Validate(cmd.Context(), validation.New()); err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), cfg, d)
		},
	}

	f := root.Flags()
	f.IntVarP(&cfg.Count, "count", "C", cfg.Count, "Number of ULIDs to generate")
	f.Int64VarP(&cfg.IntervalMs, "interval", "I", cfg.IntervalMs, "Interval between ULID generation in milliseconds")
	f.BoolVarP(&cfg.Nil, "nil", "N", cfg.Nil, "Generate nil ULID (all zeros)")
	f.BoolVarP(&cfg.Monotonic, "monotonic", "m", cfg.Monotonic, "Keep ULIDs within one millisecond strictly increasing")
	f.StringVarP(&cfg.Format, "format", "f", cfg.Format, "Output format: text, plain or json")
	f.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this file on exit")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	root.AddCommand(
		newParseCommand(),
		newCheckCommand(d),
		newVersionCommand(),
	)
	return root
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
