package syncapp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jcpaschoal/jhgestor/app/domain/adsapp"
	"github.com/jcpaschoal/jhgestor/app/domain/chatapp"
	"github.com/jcpaschoal/jhgestor/app/domain/clientapp"
	"github.com/jcpaschoal/jhgestor/app/domain/eventapp"
	"github.com/jcpaschoal/jhgestor/app/domain/sessionapp"
	"github.com/jcpaschoal/jhgestor/app/domain/supplierapp"
	"github.com/jcpaschoal/jhgestor/app/domain/taskapp"
	"github.com/jcpaschoal/jhgestor/app/domain/transactionapp"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
)

// Set of pass results.
const (
	ResultSynced   = "synced"
	ResultInFlight = "in_flight"
	ResultStale    = "stale"
)

// Status reports how a requested pass ended.
type Status struct {
	Result   string `json:"result"`
	SyncedAt string `json:"syncedAt,omitempty"`
}

// Encode implements the web.Encoder interface.
func (s Status) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface. A pass that
// did not publish is reported as accepted.
func (s Status) HTTPStatus() int {
	if s.Result == ResultSynced {
		return http.StatusOK
	}
	return http.StatusAccepted
}

// Snapshot is the published state of the tenant.
type Snapshot struct {
	Profile      sessionapp.User              `json:"profile"`
	Team         []sessionapp.User            `json:"team"`
	Clients      []clientapp.Client           `json:"clients"`
	Suppliers    []supplierapp.Supplier       `json:"suppliers"`
	Tasks        []taskapp.Task               `json:"tasks"`
	Transactions []transactionapp.Transaction `json:"transactions"`
	Events       []eventapp.Event             `json:"events"`
	Messages     []chatapp.Message            `json:"messages"`
	Groups       []chatapp.Group              `json:"groups"`
	Ads          adsapp.Metrics               `json:"ads"`
	SyncedAt     string                       `json:"syncedAt"`
}

// Encode implements the web.Encoder interface.
func (s Snapshot) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

func toAppSnapshot(snap *syncbus.Snapshot) Snapshot {
	return Snapshot{
		Profile:      sessionapp.ToAppUser(snap.Profile),
		Team:         sessionapp.ToAppUsers(snap.Team),
		Clients:      clientapp.ToAppClients(snap.Clients),
		Suppliers:    supplierapp.ToAppSuppliers(snap.Suppliers),
		Tasks:        taskapp.ToAppTasks(snap.Tasks),
		Transactions: transactionapp.ToAppTransactions(snap.Transactions),
		Events:       eventapp.ToAppEvents(snap.Events),
		Messages:     chatapp.ToAppMessages(snap.Messages),
		Groups:       chatapp.ToAppGroups(snap.Groups),
		Ads:          adsapp.ToAppMetrics(snap.Ads),
		SyncedAt:     snap.SyncedAt.Format(time.RFC3339Nano),
	}
}
