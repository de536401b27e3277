package syncbus

import (
	"time"

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

// Snapshot is everything a tenant's screens read, fetched in one pass. A
// published snapshot is never modified.
type Snapshot struct {
	OwnerID      uuid.UUID
	UserID       uuid.UUID
	Profile      userbus.User
	Clients      []clientbus.Client
	Tasks        []taskbus.Task
	Transactions []transactionbus.Transaction
	Events       []eventbus.Event
	Messages     []chatbus.Message
	Groups       []chatbus.Group
	Ads          adsbus.Metrics
	Suppliers    []supplierbus.Supplier
	Team         []userbus.User
	SyncedAt     time.Time
}
