package tigerweb

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/censusmap/internal/feature"
)

// fetchWorkers bounds how many boundary fetches run at once.
const fetchWorkers = 2

// Result holds one layer's fetch outcome: either its raw feature table or
// the structured error that prevented it.
type Result struct {
	Table feature.Raw
	Err   error
}

// FetchAll runs the given boundary queries with at most two in flight and
// returns a per-layer result map. Fetch failures are recorded per layer
// and logged; they never abort the other fetches, so the caller continues
// with whatever subset of layers succeeded.
func FetchAll(ctx context.Context, c *Client, reqs []LayerRequest) map[int]Result {
	var mu sync.Mutex
	results := make(map[int]Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)

	for _, req := range reqs {
		req := req
		g.Go(func() error {
			rows, err := c.Query(gctx, req)

			mu.Lock()
			results[req.LayerID] = Result{Table: rows, Err: err}
			mu.Unlock()

			if err != nil {
				zap.L().Warn("tigerweb: layer fetch failed",
					zap.Int("layer", req.LayerID),
					zap.Error(err),
				)
				return nil
			}

			zap.L().Info("tigerweb: fetched layer",
				zap.Int("layer", req.LayerID),
				zap.Int("rows", len(rows)),
			)
			return nil
		})
	}

	// Workers record their own failures, so Wait never returns an error.
	_ = g.Wait()

	return results
}
