package syncbus

import (
	"context"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/adsbus"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

// scope drops every record that does not belong to the snapshot's tenant.
func (o *Orchestrator) scope(ctx context.Context, s *Snapshot) {
	s.Clients = keepOwned(ctx, o.log, "clients", s.OwnerID, s.Clients, func(v clientbus.Client) uuid.UUID { return v.OwnerID })
	s.Tasks = keepOwned(ctx, o.log, "tasks", s.OwnerID, s.Tasks, func(v taskbus.Task) uuid.UUID { return v.OwnerID })
	s.Transactions = keepOwned(ctx, o.log, "transactions", s.OwnerID, s.Transactions, func(v transactionbus.Transaction) uuid.UUID { return v.OwnerID })
	s.Events = keepOwned(ctx, o.log, "events", s.OwnerID, s.Events, func(v eventbus.Event) uuid.UUID { return v.OwnerID })
	s.Messages = keepOwned(ctx, o.log, "messages", s.OwnerID, s.Messages, func(v chatbus.Message) uuid.UUID { return v.OwnerID })
	s.Groups = keepOwned(ctx, o.log, "groups", s.OwnerID, s.Groups, func(v chatbus.Group) uuid.UUID { return v.OwnerID })
	s.Suppliers = keepOwned(ctx, o.log, "suppliers", s.OwnerID, s.Suppliers, func(v supplierbus.Supplier) uuid.UUID { return v.OwnerID })
	s.Team = keepOwned(ctx, o.log, "team", s.OwnerID, s.Team, func(v userbus.User) uuid.UUID { return v.OwnerID })

	if s.Ads.OwnerID != s.OwnerID {
		o.log.Warn(ctx, "sync: foreign record dropped", "kind", "ads", "ownerID", s.OwnerID, "recordOwnerID", s.Ads.OwnerID)
		s.Ads = adsbus.Metrics{OwnerID: s.OwnerID, Period: s.Ads.Period}
	}
}

func keepOwned[T any](ctx context.Context, log *logger.Logger, kind string, ownerID uuid.UUID, items []T, ownerOf func(T) uuid.UUID) []T {
	out := make([]T, 0, len(items))

	for _, v := range items {
		if id := ownerOf(v); id != ownerID {
			log.Warn(ctx, "sync: foreign record dropped", "kind", kind, "ownerID", ownerID, "recordOwnerID", id)
			continue
		}
		out = append(out, v)
	}

	return out
}

// sameProfile reports whether the session copy still matches the profile
// just fetched. Every profile write moves UpdatedAt.
func sameProfile(session userbus.User, fetched userbus.User) bool {
	return session.ID == fetched.ID &&
		session.UpdatedAt.Equal(fetched.UpdatedAt) &&
		session.Status == fetched.Status &&
		session.Plan == fetched.Plan &&
		session.Role == fetched.Role &&
		session.OwnerID == fetched.OwnerID
}
