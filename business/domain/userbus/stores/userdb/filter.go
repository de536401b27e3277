package userdb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
)

func applyFilter(filter userbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	wc := []string{"COALESCE(u.owner_id, u.user_id) = u.user_id"}

	if filter.Name != nil {
		data["name"] = fmt.Sprintf("%%%s%%", *filter.Name)
		wc = append(wc, "u.name ILIKE :name")
	}

	if filter.Email != nil {
		data["email"] = filter.Email.Address
		wc = append(wc, "u.email = :email")
	}

	if filter.Status != nil {
		data["status"] = filter.Status.String()
		wc = append(wc, "u.status = :status")
	}

	if filter.Plan != nil {
		data["plan"] = filter.Plan.String()
		wc = append(wc, "u.plan = :plan")
	}

	if filter.StartCreatedAt != nil {
		data["start_created_at"] = filter.StartCreatedAt.UTC()
		wc = append(wc, "u.created_at >= :start_created_at")
	}

	if filter.EndCreatedAt != nil {
		data["end_created_at"] = filter.EndCreatedAt.UTC()
		wc = append(wc, "u.created_at <= :end_created_at")
	}

	buf.WriteString(" WHERE ")
	buf.WriteString(strings.Join(wc, " AND "))
}
