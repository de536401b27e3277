package adsbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/adsbus"
	"github.com/jcpaschoal/jhgestor/business/domain/metabus"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jcpaschoal/jhgestor/foundation/meta"
)

type configs map[uuid.UUID]metabus.Config

func (c configs) QueryByOwner(ctx context.Context, ownerID uuid.UUID) (metabus.Config, error) {
	cfg, ok := c[ownerID]
	if !ok {
		return metabus.Config{}, metabus.ErrNotFound
	}
	return cfg, nil
}

type graph struct {
	in      meta.Insights
	ok      bool
	err     error
	calls   int
	account string
}

func (g *graph) Insights(ctx context.Context, objectID string, token string, level meta.Level, dr meta.DateRange) (meta.Insights, bool, error) {
	g.calls++
	g.account = objectID
	return g.in, g.ok, g.err
}

func Test_QueryMetrics(t *testing.T) {
	owner := uuid.New()
	cfgs := configs{owner: {OwnerID: owner, AccessToken: "tok", AdAccountID: "act_9"}}

	t.Run("unlinked", func(t *testing.T) {
		g := &graph{}
		core := adsbus.NewCore(logger.Discard(), cfgs, g)

		other := uuid.New()
		m, err := core.QueryMetrics(context.Background(), other)
		if err != nil {
			t.Fatalf("Should not fail: %s", err)
		}

		exp := adsbus.Metrics{OwnerID: other, Period: "last_30d"}
		if diff := cmp.Diff(exp, m); diff != "" {
			t.Errorf("Should get zero metrics:\n%s", diff)
		}
		if g.calls != 0 {
			t.Errorf("Should not call the graph api, got %d calls", g.calls)
		}
	})

	t.Run("linked", func(t *testing.T) {
		g := &graph{
			ok: true,
			in: meta.Insights{
				Spend:       100,
				Reach:       1200,
				Impressions: 5000,
				Actions: []meta.Action{
					{Type: "lead", Value: 3},
					{Type: "onsite_conversion.messaging_conversation_started_7d", Value: 5},
					{Type: "link_click", Value: 40},
				},
			},
		}
		core := adsbus.NewCore(logger.Discard(), cfgs, g)

		m, err := core.QueryMetrics(context.Background(), owner)
		if err != nil {
			t.Fatalf("Should not fail: %s", err)
		}

		exp := adsbus.Metrics{
			OwnerID:       owner,
			Leads:         8,
			Reach:         1200,
			Impressions:   5000,
			Spend:         100,
			CostPerResult: 12.5,
			Period:        "last_30d",
		}
		if diff := cmp.Diff(exp, m); diff != "" {
			t.Errorf("Should derive leads and cost per result:\n%s", diff)
		}
		if g.account != "act_9" {
			t.Errorf("Should query the linked account, got %q", g.account)
		}
	})

	t.Run("failure", func(t *testing.T) {
		g := &graph{err: errors.New("boom")}
		core := adsbus.NewCore(logger.Discard(), cfgs, g)

		if _, err := core.QueryMetrics(context.Background(), owner); err == nil {
			t.Fatal("Should return the graph error")
		}
	})
}
