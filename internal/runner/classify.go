package runner

import (
	"context"
	"fmt"

	"github.com/infracollect/dicomcheck/internal/engine"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Classify asks checker about every file, running at most concurrency checks
// at once. Verdicts are returned in the order of files regardless of
// completion order. Per-file oracle failures are logged and recorded in the
// verdict; only context cancellation fails the whole call.
func Classify(ctx context.Context, logger *zap.Logger, checker engine.Checker, files []string, concurrency int) ([]engine.Verdict, error) {
	verdicts := make([]engine.Verdict, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			v := checker.Check(gctx, file)
			v.Path = file
			if v.Err != nil {
				v.Valid = false
				logger.Warn("oracle invocation failed, classifying file as corrupt",
					zap.String("file", file),
					zap.Error(v.Err),
				)
			}
			verdicts[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classification interrupted: %w", err)
	}
	// In-flight oracles killed by cancellation report corrupt; discard them.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("classification interrupted: %w", err)
	}

	return verdicts, nil
}
