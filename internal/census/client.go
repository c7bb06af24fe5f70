package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ProductSpec selects a statistical product by year and dataset name.
type ProductSpec struct {
	Year    int
	Dataset string
}

// Within is a nested geographic filter: every county in Counties within
// every state in States.
type Within struct {
	States   []string
	Counties []string
}

// WhereClause renders the filter as a TIGERweb attribute predicate, used
// to fetch the matching boundary geometry.
func (w Within) WhereClause() string {
	return fmt.Sprintf("STATE IN (%s) AND COUNTY IN (%s)", quoteList(w.States), quoteList(w.Counties))
}

func quoteList(vals []string) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ",")
}

// geoLevelNames maps Census summary-level codes to API geography names.
var geoLevelNames = map[string]string{
	"050": "county",
	"140": "tract",
	"150": "block group",
}

// geoColumns is the canonical order of geography code columns in an API
// response; concatenating their values yields the GEOID.
var geoColumns = []string{"state", "county", "tract", "block group"}

// Options configures the Census data API client.
type Options struct {
	BaseURL  string
	APIKey   string
	Product  ProductSpec
	Group    string
	GeoLevel string
	Timeout  time.Duration
}

// Client fetches tabular data from the Census statistical data API for a
// configured product, variable group, and geography level.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
}

// AttributeRow is one tabular row keyed by its assembled GEOID.
type AttributeRow struct {
	GEOID  string
	Name   string
	Values map[string]string
}

// NewClient creates a Census data API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.census.gov/data"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		limiter:    rate.NewLimiter(2, 2),
	}
}

// Variable returns the estimate variable requested for the configured
// group, e.g. B19013_001E.
func (c *Client) Variable() string {
	return c.opts.Group + "_001E"
}

// GetData requests the configured variable at the configured geography
// level, restricted to the given nested filter.
func (c *Client) GetData(ctx context.Context, within Within) ([]AttributeRow, error) {
	geoName, ok := geoLevelNames[c.opts.GeoLevel]
	if !ok {
		return nil, eris.Errorf("census: unknown geography level code %q", c.opts.GeoLevel)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "census: rate limiter wait")
	}

	u := fmt.Sprintf("%s/%d/%s", c.opts.BaseURL, c.opts.Product.Year, c.opts.Product.Dataset)

	q := url.Values{}
	q.Set("get", "NAME,"+c.Variable())
	q.Set("for", geoName+":*")
	q.Set("in", fmt.Sprintf("state:%s county:%s",
		strings.Join(within.States, ","), strings.Join(within.Counties, ",")))
	if c.opts.APIKey != "" {
		q.Set("key", c.opts.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "census: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "census: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "census: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("census: unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return parseRows(body, c.Variable())
}

// parseRows decodes the API's array-of-arrays response. The first row is
// the header; geography code columns are concatenated into the GEOID.
func parseRows(body []byte, variable string) ([]AttributeRow, error) {
	var raw [][]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrapf(err, "census: decode response: %s", truncate(body, 200))
	}
	if len(raw) == 0 {
		return nil, eris.New("census: empty response")
	}

	header := raw[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	if _, ok := col[variable]; !ok {
		return nil, eris.Errorf("census: response missing variable %s", variable)
	}

	rows := make([]AttributeRow, 0, len(raw)-1)
	for _, rec := range raw[1:] {
		if len(rec) != len(header) {
			return nil, eris.Errorf("census: ragged row: got %d fields, want %d", len(rec), len(header))
		}

		var geoid strings.Builder
		for _, gc := range geoColumns {
			if i, ok := col[gc]; ok {
				geoid.WriteString(rec[i])
			}
		}

		row := AttributeRow{
			GEOID:  geoid.String(),
			Values: map[string]string{variable: rec[col[variable]]},
		}
		if i, ok := col["NAME"]; ok {
			row.Name = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
