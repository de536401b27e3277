// Package meta provides a client for the parts of the Meta Graph API used to
// report on ads accounts.
package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jcpaschoal/jhgestor/foundation/otel"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the versioned Graph API endpoint.
const DefaultBaseURL = "https://graph.facebook.com/v18.0"

const insightsFields = "spend,impressions,clicks,cpc,cpm,cpp,ctr,reach,actions,cost_per_action_type"

// Config holds the settings of a Client. Zero values pick the defaults.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
	Transport http.RoundTripper
}

// Client talks to the Graph API. Outbound calls share one token bucket so a
// busy sync cannot trip the API's own throttling.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// New constructs a Client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 5
	}
	if cfg.Burst == 0 {
		cfg.Burst = 10
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otel.NewTransport(cfg.Transport),
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
	}
}

// AdAccounts lists the ads accounts the token can read.
func (c *Client) AdAccounts(ctx context.Context, token string) ([]AdAccount, error) {
	params := url.Values{"fields": {"id,name,account_id,currency"}}

	var resp struct {
		Data []AdAccount `json:"data"`
	}
	if err := c.get(ctx, "/me/adaccounts", token, params, &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

// Campaigns lists the campaigns of an ads account.
func (c *Client) Campaigns(ctx context.Context, adAccountID string, token string) ([]Campaign, error) {
	params := url.Values{"fields": {"id,name,status,effective_status,objective,daily_budget,lifetime_budget"}}

	var resp struct {
		Data []Campaign `json:"data"`
	}
	if err := c.get(ctx, "/"+adAccountID+"/campaigns", token, params, &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

// AdSets lists the ad sets of a campaign.
func (c *Client) AdSets(ctx context.Context, campaignID string, token string) ([]Object, error) {
	return c.objects(ctx, "/"+campaignID+"/adsets", token)
}

// Ads lists the ads of an ad set.
func (c *Client) Ads(ctx context.Context, adSetID string, token string) ([]Object, error) {
	return c.objects(ctx, "/"+adSetID+"/ads", token)
}

// Insights reports on an object over the date range. Multiple rows, one per
// day or breakdown, are added up into one value. The bool is false when the
// API had no data for the window.
func (c *Client) Insights(ctx context.Context, objectID string, token string, level Level, dr DateRange) (Insights, bool, error) {
	params := url.Values{
		"fields": {insightsFields},
		"level":  {string(level)},
	}

	switch {
	case dr.Preset != "":
		params.Set("date_preset", dr.Preset)
	case dr.Since != "" && dr.Until != "":
		tr, err := json.Marshal(map[string]string{"since": dr.Since, "until": dr.Until})
		if err != nil {
			return Insights{}, false, err
		}
		params.Set("time_range", string(tr))
	default:
		params.Set("date_preset", Last30Days.Preset)
	}

	var resp struct {
		Data []insightsRow `json:"data"`
	}
	if err := c.get(ctx, "/"+objectID+"/insights", token, params, &resp); err != nil {
		return Insights{}, false, err
	}

	if len(resp.Data) == 0 {
		return Insights{}, false, nil
	}

	return aggregate(resp.Data), true, nil
}

// =============================================================================

func (c *Client) objects(ctx context.Context, path string, token string) ([]Object, error) {
	params := url.Values{"fields": {"id,name,status,effective_status"}}

	var resp struct {
		Data []Object `json:"data"`
	}
	if err := c.get(ctx, path, token, params, &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string, token string, params url.Values, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	params.Set("access_token", token)
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The url carries the token, keep it out of the error.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("get %s: %w", path, uerr.Err)
		}
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var eb struct {
			Error Error `json:"error"`
		}
		if err := json.Unmarshal(body, &eb); err != nil || eb.Error.Message == "" {
			return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		eb.Error.Status = resp.StatusCode
		return &eb.Error
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}
