package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aatuh/ulid-toolkit/config"
	"github.com/aatuh/ulid-toolkit/idgen"
	"github.com/aatuh/ulid-toolkit/logzap"
	"github.com/aatuh/ulid-toolkit/metrics"
	"github.com/aatuh/ulid-toolkit/ports"
	"github.com/aatuh/ulid-toolkit/ulid"
)

const ruleWidth = 50

// overflowBackoff is how long the loop waits for the clock to tick after the
// monotonic randomness of the current millisecond runs out.
const overflowBackoff = time.Millisecond

func runGenerate(ctx context.Context, out io.Writer, cfg config.Config, d Deps) (err error) {
	log, err := logzap.NewCLI(cfg.LogLevel)
	if err != nil {
		return err
	}

	opts := []idgen.Option{
		idgen.WithClock(d.Clock),
		idgen.WithEntropy(d.Entropy),
		idgen.WithLogger(log),
	}
	if cfg.Monotonic {
		opts = append(opts, idgen.WithMonotonic())
	}
	if cfg.MetricsFile != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, idgen.WithMetrics(metrics.NewPrometheusRecorder(reg)))
		defer func() {
			if werr := metrics.WriteTextfile(cfg.MetricsFile, reg); werr != nil {
				err = errors.Join(err, werr)
			}
		}()
	}
	gen := idgen.NewGenerator(opts...)

	log.Debug("generating",
		"count", cfg.Count,
		"interval_ms", cfg.IntervalMs,
		"nil", cfg.Nil,
		"monotonic", cfg.Monotonic,
	)

	p := newPrinter(cfg.Format, out)
	if err := p.header(); err != nil {
		return err
	}
	for i := 0; i < cfg.Count; i++ {
		id, err := next(ctx, gen, cfg.Nil, d.Sleep, log)
		if err != nil {
			return err
		}
		if err := p.line(i+1, id); err != nil {
			return err
		}
		if i < cfg.Count-1 {
			if err := d.Sleep(ctx, cfg.Interval()); err != nil {
				return err
			}
		}
	}
	return p.footer()
}

// next asks the generator for one identifier, waiting out monotonic overflow
// until the clock moves on or ctx ends.
func next(ctx context.Context, gen *idgen.Generator, nilID bool, sleep func(context.Context, time.Duration) error, log ports.Logger) (ulid.ID, error) {
	for {
		id, err := gen.Generate(idgen.Request{Nil: nilID})
		if !errors.Is(err, ulid.ErrMonotonicOverflow) {
			return id, err
		}
		log.Debug("waiting for clock to advance")
		if err := sleep(ctx, overflowBackoff); err != nil {
			return ulid.Nil(), err
		}
	}
}

type printer struct {
	format string
	w      io.Writer
	enc    *json.Encoder
}

func newPrinter(format string, w io.Writer) *printer {
	return &printer{format: format, w: w, enc: json.NewEncoder(w)}
}

type jsonLine struct {
	Index       int     `json:"index"`
	ULID        ulid.ID `json:"ulid"`
	TimestampMs uint64  `json:"timestamp_ms"`
}

func (p *printer) header() error {
	if p.format != config.FormatText {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "Generated ULIDs:\n%s\n", strings.Repeat("─", ruleWidth))
	return err
}

func (p *printer) line(n int, id ulid.ID) error {
	var err error
	switch p.format {
	case config.FormatPlain:
		_, err = fmt.Fprintln(p.w, id)
	case config.FormatJSON:
		err = p.enc.Encode(jsonLine{Index: n, ULID: id, TimestampMs: id.Time()})
	default:
		_, err = fmt.Fprintf(p.w, " %d) %s\n", n, id)
	}
	return err
}

func (p *printer) footer() error {
	if p.format != config.FormatText {
		return nil
	}
	_, err := fmt.Fprintln(p.w, strings.Repeat("─", ruleWidth))
	return err
}
