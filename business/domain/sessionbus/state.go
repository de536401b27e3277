package sessionbus

import (
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/status"
)

// State is where a process stands in the access gate.
type State string

// Set of access gate states.
const (
	Unauthenticated      State = "UNAUTHENTICATED"
	AuthenticatedActive  State = "AUTHENTICATED_ACTIVE"
	AuthenticatedBlocked State = "AUTHENTICATED_BLOCKED"
)

// BlockedMessage is shown to a user whose subscription is suspended.
const BlockedMessage = "Detectamos uma pendência na sua assinatura ou o plano foi suspenso manualmente. Para continuar, regularize seu pagamento."

// StateOf maps a session to its gate state. A past due subscription keeps
// full access until the processor gives up and blocks it.
func StateOf(usr userbus.User, ok bool) State {
	if !ok {
		return Unauthenticated
	}

	if usr.Status == status.Blocked {
		return AuthenticatedBlocked
	}

	return AuthenticatedActive
}

// Allowed reports whether a route group may be served in the state. Blocked
// sessions keep the billing group so they can regularize the subscription,
// and the refresh group so a settled payment lifts the block.
func (s State) Allowed(group string) bool {
	switch s {
	case AuthenticatedActive:
		return true
	case AuthenticatedBlocked:
		return group == GroupBilling || group == GroupRefresh || group == GroupLogout
	}
	return false
}

// Route groups the gate treats differently.
const (
	GroupBilling = "billing"
	GroupRefresh = "refresh"
	GroupLogout  = "logout"
)
