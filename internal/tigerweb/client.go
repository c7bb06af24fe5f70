package tigerweb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/time/rate"

	"github.com/sells-group/censusmap/internal/feature"
)

// maxRecordCount is the single-page record cap. The service silently
// truncates result sets larger than this; no pagination loop exists.
const maxRecordCount = 100000

// Options configures the TIGERweb client.
type Options struct {
	BaseURL   string
	Service   string
	Timeout   time.Duration
	UserAgent string
}

// Client queries the TIGERweb ArcGIS REST map service.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
}

// LayerRequest selects one boundary layer query: the numeric layer id, an
// attribute filter predicate, and a comma-separated output field list.
type LayerRequest struct {
	LayerID   int
	Where     string
	OutFields string
}

// GeoFeature is one geometry-bearing feature from a QueryGeometry call.
type GeoFeature struct {
	Properties feature.Properties
	Geometry   geom.T
}

// NewClient creates a TIGERweb client with the given options.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://tigerweb.geo.census.gov/arcgis/rest/services"
	}
	if opts.Service == "" {
		opts.Service = "TIGERweb/tigerWMS_Current"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "censusmap/1.0"
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		limiter:    rate.NewLimiter(5, 5),
	}
}

// Query fetches a boundary layer without geometry and returns its raw
// attribute rows. Failures come back as *FetchError; the caller decides
// whether to proceed without the layer.
func (c *Client) Query(ctx context.Context, req LayerRequest) (feature.Raw, error) {
	body, err := c.get(ctx, req, false)
	if err != nil {
		return nil, err
	}

	var fc struct {
		Features []struct {
			Properties feature.Properties `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, &FetchError{Kind: ErrDecode, Message: err.Error(), Snippet: snippet(body)}
	}
	if fc.Features == nil {
		// ArcGIS reports query errors as a 200 with an "error" object and
		// no "features" key.
		return nil, &FetchError{Kind: ErrDecode, Message: `response has no "features" key`, Snippet: snippet(body)}
	}

	rows := make(feature.Raw, 0, len(fc.Features))
	for _, f := range fc.Features {
		rows = append(rows, f.Properties)
	}
	return rows, nil
}

// QueryGeometry fetches a boundary layer with polygon geometry included.
func (c *Client) QueryGeometry(ctx context.Context, req LayerRequest) ([]GeoFeature, error) {
	body, err := c.get(ctx, req, true)
	if err != nil {
		return nil, err
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, &FetchError{Kind: ErrDecode, Message: err.Error(), Snippet: snippet(body)}
	}

	out := make([]GeoFeature, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, GeoFeature{Properties: f.Properties, Geometry: f.Geometry})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, req LayerRequest, withGeometry bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "tigerweb: rate limiter wait")
	}

	u := fmt.Sprintf("%s/%s/MapServer/%d/query", c.opts.BaseURL, c.opts.Service, req.LayerID)

	q := url.Values{}
	q.Set("where", req.Where)
	q.Set("outFields", req.OutFields)
	q.Set("outSR", "4326")
	q.Set("f", "geojson")
	q.Set("returnGeometry", strconv.FormatBool(withGeometry))
	q.Set("returnCountOnly", "false")
	q.Set("resultOffset", "0")
	q.Set("resultRecordCount", strconv.Itoa(maxRecordCount))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "tigerweb: build request")
	}
	httpReq.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, Message: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			Kind:    ErrStatus,
			Message: fmt.Sprintf("unexpected status %d from layer %d", resp.StatusCode, req.LayerID),
			Snippet: snippet(body),
		}
	}

	return body, nil
}
