package basemap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	// Tile providers serve PNG or JPEG.
	_ "image/jpeg"
	_ "image/png"
)

// Proxy fetches raster basemap tiles from an upstream XYZ tile server,
// with a bounded in-run cache. It also serves tiles over HTTP for the
// serve command.
type Proxy struct {
	urlTemplate string
	client      *http.Client
	limiter     *rate.Limiter
	cache       *lru.Cache[string, []byte]
}

// NewProxy creates a basemap tile proxy. The template holds {z}, {x}, and
// {y} placeholders.
func NewProxy(urlTemplate string, cacheSize int) (*Proxy, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, eris.Wrap(err, "basemap: create tile cache")
	}
	return &Proxy{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(20, 20),
		cache:       cache,
	}, nil
}

// Fetch retrieves one tile's raw bytes from the upstream server or cache.
func (p *Proxy) Fetch(ctx context.Context, z, x, y int) ([]byte, error) {
	key := fmt.Sprintf("%d/%d/%d", z, x, y)
	if data, ok := p.cache.Get(key); ok {
		return data, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "basemap: rate limiter wait")
	}

	url := strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(p.urlTemplate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "basemap: create tile request")
	}
	req.Header.Set("User-Agent", "censusmap/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "basemap: fetch tile")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("basemap: upstream returned %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "basemap: read tile body")
	}

	p.cache.Add(key, data)
	zap.L().Debug("basemap: fetched tile", zap.String("url", url), zap.Int("bytes", len(data)))
	return data, nil
}

// Tile retrieves and decodes one tile image.
func (p *Proxy) Tile(ctx context.Context, z, x, y int) (image.Image, error) {
	data, err := p.Fetch(ctx, z, x, y)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "basemap: decode tile %d/%d/%d", z, x, y)
	}
	return img, nil
}

// ServeHTTP implements http.Handler for the tile proxy.
// Expected path format: /{z}/{x}/{y}.png
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var z, x, y int
	if _, err := fmt.Sscanf(r.URL.Path, "/%d/%d/%d.png", &z, &x, &y); err != nil {
		http.Error(w, "invalid tile path", http.StatusBadRequest)
		return
	}

	data, err := p.Fetch(r.Context(), z, x, y)
	if err != nil {
		zap.L().Error("basemap tile fetch failed", zap.Error(err))
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}
