// Package adsbus provides the ads metrics of a tenant, read from the Meta
// account linked to it.
package adsbus

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/metabus"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jcpaschoal/jhgestor/foundation/meta"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
)

// leadTypes are matched as substrings of the action type, so variants like
// onsite_conversion.messaging_conversation_started_7d count as well.
var leadTypes = []string{
	"lead",
	"on_facebook_lead",
	"offsite_conversion.fb_pixel_lead",
	"contact",
	"submit_application",
	"complete_registration",
	"subscribe",
	"messaging",
}

// Insighter is the part of the Graph API client this package needs.
type Insighter interface {
	Insights(ctx context.Context, objectID string, token string, level meta.Level, dr meta.DateRange) (meta.Insights, bool, error)
}

// ConfigFinder returns the ads account linked to a tenant.
type ConfigFinder interface {
	QueryByOwner(ctx context.Context, ownerID uuid.UUID) (metabus.Config, error)
}

// Core manages the set of APIs for ads metrics.
type Core struct {
	log     *logger.Logger
	configs ConfigFinder
	graph   Insighter
}

// NewCore constructs an ads core API for use.
func NewCore(log *logger.Logger, configs ConfigFinder, graph Insighter) *Core {
	return &Core{
		log:     log,
		configs: configs,
		graph:   graph,
	}
}

// QueryMetrics returns the tenant's metrics for the last 30 days. A tenant
// without a linked account gets zero metrics.
func (c *Core) QueryMetrics(ctx context.Context, ownerID uuid.UUID) (Metrics, error) {
	return c.QueryMetricsRange(ctx, ownerID, meta.Last30Days)
}

// QueryMetricsRange returns the tenant's metrics over the date range.
func (c *Core) QueryMetricsRange(ctx context.Context, ownerID uuid.UUID, dr meta.DateRange) (Metrics, error) {
	ctx, span := otel.AddSpan(ctx, "business.adsbus.querymetrics")
	defer span.End()

	m := Metrics{
		OwnerID: ownerID,
		Period:  dr.Label(),
	}

	cfg, err := c.configs.QueryByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, metabus.ErrNotFound) {
			return m, nil
		}
		return Metrics{}, fmt.Errorf("config: ownerID[%s]: %w", ownerID, err)
	}

	in, ok, err := c.graph.Insights(ctx, cfg.AdAccountID, cfg.AccessToken, meta.LevelAccount, dr)
	if err != nil {
		return Metrics{}, fmt.Errorf("insights: ownerID[%s] account[%s]: %w", ownerID, cfg.AdAccountID, err)
	}

	if !ok {
		c.log.Debug(ctx, "adsbus: no insights for window", "ownerID", ownerID, "period", m.Period)
		return m, nil
	}

	return summarize(m, in), nil
}

// Leads counts the lead-like actions of an insights value.
func Leads(in meta.Insights) int {
	var n int
	for _, a := range in.Actions {
		if isLead(a.Type) {
			n += int(math.Round(a.Value))
		}
	}
	return n
}

func isLead(actionType string) bool {
	t := strings.ToLower(actionType)
	for _, lt := range leadTypes {
		if strings.Contains(t, lt) {
			return true
		}
	}
	return false
}

func summarize(m Metrics, in meta.Insights) Metrics {
	m.Leads = Leads(in)
	m.Reach = in.Reach
	m.Impressions = in.Impressions
	m.Spend = in.Spend

	if m.Leads > 0 {
		m.CostPerResult = math.Round(in.Spend/float64(m.Leads)*100) / 100
	}

	return m
}
