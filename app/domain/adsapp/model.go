package adsapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/adsbus"
	"github.com/jcpaschoal/jhgestor/business/domain/metabus"
	"github.com/jcpaschoal/jhgestor/foundation/meta"
)

// Metrics is the ads summary of the tenant.
type Metrics struct {
	Leads         int     `json:"leads"`
	Reach         int64   `json:"reach"`
	Impressions   int64   `json:"impressions"`
	Spend         float64 `json:"spend"`
	CostPerResult float64 `json:"costPerResult"`
	Period        string  `json:"period"`
}

// Encode implements the web.Encoder interface.
func (m Metrics) Encode() ([]byte, string, error) {
	data, err := json.Marshal(m)
	return data, "application/json", err
}

// ToAppMetrics converts ads metrics for the wire.
func ToAppMetrics(bus adsbus.Metrics) Metrics {
	return Metrics{
		Leads:         bus.Leads,
		Reach:         bus.Reach,
		Impressions:   bus.Impressions,
		Spend:         bus.Spend,
		CostPerResult: bus.CostPerResult,
		Period:        bus.Period,
	}
}

// MetaConfig is the linked ads account. The access token never leaves the
// server.
type MetaConfig struct {
	AdAccountID   string `json:"adAccountId"`
	AdAccountName string `json:"adAccountName"`
	DateUpdated   string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (c MetaConfig) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

func toAppMetaConfig(bus metabus.Config) MetaConfig {
	return MetaConfig{
		AdAccountID:   bus.AdAccountID,
		AdAccountName: bus.AdAccountName,
		DateUpdated:   bus.UpdatedAt.Format(time.RFC3339),
	}
}

// Accounts lists the ads accounts a token can read.
type Accounts []meta.AdAccount

// Encode implements the web.Encoder interface.
func (a Accounts) Encode() ([]byte, string, error) {
	data, err := json.Marshal(a)
	return data, "application/json", err
}

// Campaigns lists the campaigns of the linked account.
type Campaigns []meta.Campaign

// Encode implements the web.Encoder interface.
func (c Campaigns) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

// =============================================================================

// SaveConfig defines the data needed to link an ads account.
type SaveConfig struct {
	AccessToken   string `json:"accessToken" validate:"required"`
	AdAccountID   string `json:"adAccountId" validate:"required"`
	AdAccountName string `json:"adAccountName"`
}

// Decode implements the web.Decoder interface.
func (app *SaveConfig) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app SaveConfig) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// =============================================================================

// parseDateRange reads preset or since and until from the query string.
func parseDateRange(r *http.Request) (meta.DateRange, error) {
	values := r.URL.Query()

	dr := meta.DateRange{
		Preset: values.Get("preset"),
		Since:  values.Get("since"),
		Until:  values.Get("until"),
	}

	if dr.Preset != "" {
		return meta.DateRange{Preset: dr.Preset}, nil
	}

	if dr.Since == "" && dr.Until == "" {
		return meta.Last30Days, nil
	}

	since, err := time.Parse(time.DateOnly, dr.Since)
	if err != nil {
		return meta.DateRange{}, fmt.Errorf("parse since: %w", err)
	}

	until, err := time.Parse(time.DateOnly, dr.Until)
	if err != nil {
		return meta.DateRange{}, fmt.Errorf("parse until: %w", err)
	}

	if until.Before(since) {
		return meta.DateRange{}, fmt.Errorf("until %s is before since %s", dr.Until, dr.Since)
	}

	return dr, nil
}
