package parser

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Job is one document queued for ParseAll.
type Job struct {
	Institution models.Institution
	Document    *models.Document
}

// Outcome is the result of one job. Exactly one of Result and Err is set.
type Outcome struct {
	Document    string
	Institution models.Institution
	Result      *models.ParseResult
	Err         error
	Elapsed     time.Duration
}

// ParseAll parses independent documents on at most workers goroutines. Outcomes
// keep the order of jobs. A failing document never stops the others; a cancelled
// context marks the documents not yet started as failed.
func ParseAll(ctx context.Context, jobs []Job, workers int, opts Options) []Outcome {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := opts.logger()
	outcomes := make([]Outcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = parseOne(ctx, job, opts)
			o := outcomes[i]
			if o.Err != nil {
				logger.Error("statement failed",
					slog.String("document", o.Document),
					slog.String("institution", string(o.Institution)),
					slog.Any("error", o.Err),
				)
			}
			if opts.Observer != nil {
				opts.Observer.ObserveParse(o.Institution, o.Result, o.Err, o.Elapsed)
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func parseOne(ctx context.Context, job Job, opts Options) Outcome {
	o := Outcome{Institution: job.Institution}
	if job.Document != nil {
		o.Document = job.Document.Name
	}
	if err := ctx.Err(); err != nil {
		o.Err = err
		return o
	}

	p, err := New(job.Institution, opts)
	if err != nil {
		o.Err = err
		return o
	}
	start := time.Now()
	o.Result, o.Err = p.Parse(ctx, job.Document)
	o.Elapsed = time.Since(start)
	return o
}
