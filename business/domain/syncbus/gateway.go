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
)

// Gateway is the read side of remote persistence the orchestrator fetches
// from. Lists come back in the order the stores define.
type Gateway interface {
	Profile(ctx context.Context, userID uuid.UUID) (userbus.User, error)
	Team(ctx context.Context, ownerID uuid.UUID) ([]userbus.User, error)
	Clients(ctx context.Context, ownerID uuid.UUID) ([]clientbus.Client, error)
	Tasks(ctx context.Context, ownerID uuid.UUID) ([]taskbus.Task, error)
	Transactions(ctx context.Context, ownerID uuid.UUID) ([]transactionbus.Transaction, error)
	Events(ctx context.Context, ownerID uuid.UUID, userID uuid.UUID) ([]eventbus.Event, error)
	Messages(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Message, error)
	Groups(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Group, error)
	AdsMetrics(ctx context.Context, ownerID uuid.UUID) (adsbus.Metrics, error)
	Suppliers(ctx context.Context, ownerID uuid.UUID) ([]supplierbus.Supplier, error)
}

// Buses are the business cores a BusGateway reads through. User must be
// the uncached core so billing changes show up on the next pass.
type Buses struct {
	User        *userbus.Core
	Client      *clientbus.Core
	Task        *taskbus.Core
	Transaction *transactionbus.Core
	Event       *eventbus.Core
	Chat        *chatbus.Core
	Ads         *adsbus.Core
	Supplier    *supplierbus.Core
}

// BusGateway implements Gateway over the business cores.
type BusGateway struct {
	b Buses
}

// NewBusGateway constructs a gateway for use.
func NewBusGateway(b Buses) *BusGateway {
	return &BusGateway{b: b}
}

// Profile implements Gateway.
func (g *BusGateway) Profile(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	return g.b.User.QueryByID(ctx, userID)
}

// Team implements Gateway.
func (g *BusGateway) Team(ctx context.Context, ownerID uuid.UUID) ([]userbus.User, error) {
	return g.b.User.QueryByOwner(ctx, ownerID)
}

// Clients implements Gateway.
func (g *BusGateway) Clients(ctx context.Context, ownerID uuid.UUID) ([]clientbus.Client, error) {
	return g.b.Client.QueryByOwner(ctx, ownerID)
}

// Tasks implements Gateway.
func (g *BusGateway) Tasks(ctx context.Context, ownerID uuid.UUID) ([]taskbus.Task, error) {
	return g.b.Task.QueryByOwner(ctx, ownerID)
}

// Transactions implements Gateway.
func (g *BusGateway) Transactions(ctx context.Context, ownerID uuid.UUID) ([]transactionbus.Transaction, error) {
	return g.b.Transaction.QueryByOwner(ctx, ownerID)
}

// Events implements Gateway.
func (g *BusGateway) Events(ctx context.Context, ownerID uuid.UUID, userID uuid.UUID) ([]eventbus.Event, error) {
	return g.b.Event.QueryByOwnerUser(ctx, ownerID, userID)
}

// Messages implements Gateway.
func (g *BusGateway) Messages(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Message, error) {
	return g.b.Chat.QueryMessagesByOwner(ctx, ownerID)
}

// Groups implements Gateway.
func (g *BusGateway) Groups(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Group, error) {
	return g.b.Chat.QueryGroupsByOwner(ctx, ownerID)
}

// AdsMetrics implements Gateway.
func (g *BusGateway) AdsMetrics(ctx context.Context, ownerID uuid.UUID) (adsbus.Metrics, error) {
	return g.b.Ads.QueryMetrics(ctx, ownerID)
}

// Suppliers implements Gateway.
func (g *BusGateway) Suppliers(ctx context.Context, ownerID uuid.UUID) ([]supplierbus.Supplier, error) {
	return g.b.Supplier.QueryByOwner(ctx, ownerID)
}
