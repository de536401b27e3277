package dashboardapp

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/jcpaschoal/jhgestor/app/domain/adsapp"
	"github.com/jcpaschoal/jhgestor/app/domain/eventapp"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
)

// upcomingLimit caps the agenda shown on the dashboard.
const upcomingLimit = 5

// Finance sums the tenant's ledger.
type Finance struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// Tasks counts the tenant's tasks.
type Tasks struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Open      int `json:"open"`
}

// Dashboard is the overview of the tenant, computed from the last snapshot.
type Dashboard struct {
	Finance   Finance          `json:"finance"`
	Tasks     Tasks            `json:"tasks"`
	Clients   int              `json:"clients"`
	Suppliers int              `json:"suppliers"`
	Team      int              `json:"team"`
	Unread    int              `json:"unread"`
	Upcoming  []eventapp.Event `json:"upcoming"`
	Ads       adsapp.Metrics   `json:"ads"`
	SyncedAt  string           `json:"syncedAt"`
}

// Encode implements the web.Encoder interface.
func (d Dashboard) Encode() ([]byte, string, error) {
	data, err := json.Marshal(d)
	return data, "application/json", err
}

func toAppDashboard(snap *syncbus.Snapshot, now time.Time) Dashboard {
	totals := transactionbus.Summarize(snap.Transactions)
	completed := taskbus.CountCompleted(snap.Tasks)

	return Dashboard{
		Finance: Finance{
			Income:  totals.Income,
			Expense: totals.Expense,
			Balance: totals.Balance(),
		},
		Tasks: Tasks{
			Total:     len(snap.Tasks),
			Completed: completed,
			Open:      len(snap.Tasks) - completed,
		},
		Clients:   len(snap.Clients),
		Suppliers: len(snap.Suppliers),
		Team:      len(snap.Team),
		Unread:    unread(snap.Messages, snap.UserID.String()),
		Upcoming:  eventapp.ToAppEvents(upcoming(snap.Events, now)),
		Ads:       adsapp.ToAppMetrics(snap.Ads),
		SyncedAt:  snap.SyncedAt.Format(time.RFC3339Nano),
	}
}

func unread(msgs []chatbus.Message, readerID string) int {
	var n int
	for _, m := range msgs {
		if m.SenderID.String() == readerID {
			continue
		}
		if !slices.Contains(m.ReadBy, readerID) {
			n++
		}
	}
	return n
}

// upcoming returns the next events that have not ended, soonest first.
func upcoming(evts []eventbus.Event, now time.Time) []eventbus.Event {
	var out []eventbus.Event
	for _, e := range evts {
		if e.End.After(now) {
			out = append(out, e)
		}
	}

	slices.SortFunc(out, func(a, b eventbus.Event) int {
		return a.Start.Compare(b.Start)
	})

	if len(out) > upcomingLimit {
		out = out[:upcomingLimit]
	}

	return out
}
