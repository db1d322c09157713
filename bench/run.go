package bench

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/VividCortex/ewma"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/mass"
	"github.com/outofforest/parallel"
)

const (
	// throughputDecay is the age, in trials, of the moving average of throughput.
	throughputDecay = 10.0

	progressInterval = 100
)

// Header is the header of the CSV report.
var Header = []string{
	"algo_name", "data_type", "memory_bytes", "num_items", "num_sites", "replicate", "duration_s",
}

// Run executes all the trials defined by the config and writes CSV report to out.
func Run(ctx context.Context, config Config, out io.Writer) error {
	if err := config.Validate(); err != nil {
		return err
	}

	trials := config.Trials()
	massResult := mass.New[Result](uint64(len(trials)))
	resultCh := make(chan *Result)

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("runner", parallel.Continue, func(ctx context.Context) error {
			defer close(resultCh)

			log := logger.Get(ctx)
			throughput := ewma.NewMovingAverage(throughputDecay)
			for i, trial := range trials {
				if err := ctx.Err(); err != nil {
					return errors.WithStack(err)
				}

				result := massResult.New()
				if err := Execute(trial, result); err != nil {
					return errors.Wrapf(err, "trial %d failed", i)
				}

				if seconds := result.Duration.Seconds(); seconds > 0 {
					throughput.Add(float64(trial.NumItems) / seconds)
				}
				log.Debug("Trial finished",
					zap.String("algorithm", string(trial.Algorithm)),
					zap.String("dataType", trial.DataType),
					zap.Uint32("numSites", uint32(trial.NumSites)),
					zap.Uint32("numItems", trial.NumItems),
					zap.Uint32("replicate", trial.Replicate),
					zap.Duration("duration", result.Duration),
					zap.Uint64("fingerprint", result.Fingerprint),
				)

				select {
				case <-ctx.Done():
					return errors.WithStack(ctx.Err())
				case resultCh <- result:
				}

				if (i+1)%progressInterval == 0 {
					log.Info("Benchmark progress",
						zap.Int("done", i+1),
						zap.Int("total", len(trials)),
						zap.Float64("itemsPerSecond", throughput.Value()),
					)
				}
			}

			log.Info("Benchmark finished",
				zap.Int("trials", len(trials)),
				zap.Float64("itemsPerSecond", throughput.Value()),
			)
			return nil
		})
		spawn("writer", parallel.Exit, func(ctx context.Context) error {
			w := csv.NewWriter(out)
			if err := w.Write(Header); err != nil {
				return errors.WithStack(err)
			}
			for result := range resultCh {
				if err := w.Write(record(result)); err != nil {
					return errors.WithStack(err)
				}
			}
			w.Flush()
			return errors.WithStack(w.Error())
		})

		return nil
	})
}

func record(r *Result) []string {
	return []string{
		string(r.Algorithm),
		r.DataTypeName,
		strconv.FormatUint(r.MemoryBytes, 10),
		strconv.FormatUint(uint64(r.NumItems), 10),
		strconv.FormatUint(uint64(r.NumSites), 10),
		strconv.FormatUint(uint64(r.Replicate), 10),
		strconv.FormatFloat(r.Duration.Seconds(), 'g', -1, 64),
	}
}
