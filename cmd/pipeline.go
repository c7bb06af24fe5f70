package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/censusmap/internal/basemap"
	"github.com/sells-group/censusmap/internal/census"
	"github.com/sells-group/censusmap/internal/config"
	"github.com/sells-group/censusmap/internal/feature"
	"github.com/sells-group/censusmap/internal/render"
	"github.com/sells-group/censusmap/internal/tigerweb"
)

// pipelineOptions holds the per-invocation knobs of the render pipeline.
type pipelineOptions struct {
	Zoom      int
	MinDecile int
	Join      census.JoinStrategy
	Basemap   bool
}

func defaultPipelineOptions(cfg *config.Config) pipelineOptions {
	return pipelineOptions{
		Zoom:      cfg.Basemap.Zoom,
		MinDecile: cfg.Render.MinDecile,
		Join:      census.JoinInner,
		Basemap:   true,
	}
}

func newTigerWebClient(cfg *config.Config) *tigerweb.Client {
	return tigerweb.NewClient(tigerweb.Options{
		BaseURL: cfg.TigerWeb.BaseURL,
		Service: cfg.TigerWeb.Service,
		Timeout: time.Duration(cfg.TigerWeb.TimeoutSecs) * time.Second,
	})
}

// runPipeline runs the full fetch/join/render pipeline and returns the
// finished renderer. Boundary layer failures degrade to a partial label
// set; everything downstream of a coercion or basemap failure is fatal.
func runPipeline(ctx context.Context, cfg *config.Config, opts pipelineOptions) (*render.Renderer, error) {
	log := zap.L().With(zap.String("run_id", uuid.New().String()[:8]))

	twClient := newTigerWebClient(cfg)

	// Boundary centroids: two layers fetched in parallel. Failed layers
	// simply contribute no rows.
	reqs := tigerweb.DefaultLayerRequests()
	results := tigerweb.FetchAll(ctx, twClient, reqs)

	var raws []feature.Raw
	for _, req := range reqs {
		if res := results[req.LayerID]; res.Err == nil {
			raws = append(raws, res.Table)
		}
	}

	feats, err := feature.Coerce(feature.ConcatRaw(raws...))
	if err != nil {
		return nil, eris.Wrap(err, "coerce boundary attributes")
	}
	feats.AssignDeciles(feature.DecileBuckets)
	log.Info("processed boundary features", zap.Int("rows", len(feats)))

	// Income data joined with block-group geometry.
	csClient := census.NewClient(census.Options{
		BaseURL:  cfg.Census.BaseURL,
		APIKey:   cfg.Census.APIKey,
		Product:  census.ProductSpec{Year: cfg.Census.Year, Dataset: cfg.Census.Dataset},
		Group:    cfg.Census.Group,
		GeoLevel: cfg.Census.GeoLevel,
	})
	within := census.Within{States: cfg.Census.States, Counties: cfg.Census.Counties}

	attrs, err := csClient.GetData(ctx, within)
	if err != nil {
		return nil, eris.Wrap(err, "fetch income data")
	}
	log.Info("fetched income rows", zap.Int("rows", len(attrs)))

	geoms, err := twClient.QueryGeometry(ctx, tigerweb.LayerRequest{
		LayerID:   tigerweb.LayerBlockGroups,
		Where:     within.WhereClause(),
		OutFields: "GEOID",
	})
	if err != nil {
		return nil, eris.Wrap(err, "fetch block group geometry")
	}

	incomes := census.JoinGeometry(attrs, geoms, csClient.Variable(), opts.Join, true)
	incomes.CleanSentinel()

	var bm render.Basemap
	if opts.Basemap {
		proxy, err := basemap.NewProxy(cfg.Basemap.URLTemplate, cfg.Basemap.CacheSize)
		if err != nil {
			return nil, err
		}
		bm = proxy
	}

	r := render.New(render.Options{
		Width:        cfg.Render.Width,
		Height:       cfg.Render.Height,
		Title:        cfg.Render.Title,
		MinDecile:    opts.MinDecile,
		BasemapAlpha: cfg.Basemap.Alpha,
	})

	visible, err := r.Render(ctx, incomes, feats, bm, opts.Zoom)
	if err != nil {
		return nil, eris.Wrap(err, "render map")
	}
	log.Info("rendered map",
		zap.Int("units", len(incomes)),
		zap.Int("labels", len(visible)),
	)

	return r, nil
}
