package userbus

import "github.com/jcpaschoal/jhgestor/business/sdk/order"

// DefaultOrderBy lists the newest tenants first.
var DefaultOrderBy = order.NewBy(OrderByCreatedAt, order.DESC)

// Set of fields the owner listing can be ordered by.
const (
	OrderByID        = "a"
	OrderByName      = "b"
	OrderByEmail     = "c"
	OrderByStatus    = "d"
	OrderByPlan      = "e"
	OrderByCreatedAt = "f"
)
