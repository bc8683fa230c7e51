package role

import (
	"github.com/google/uuid"

	"github.com/rakapradana/storefront/internal/session"
)

type Action string

const (
	ActionCancel         Action = "cancel"
	ActionProgress       Action = "progress"
	ActionMarkDelivered  Action = "markDelivered"
	ActionMarkReturned   Action = "markReturned"
	ActionViewAllOrders  Action = "viewAllOrders"
	ActionManageProducts Action = "manageProducts"
)

type Actions map[Action]struct{}

func (a Actions) Has(action Action) bool {
	_, ok := a[action]
	return ok
}

// Permitted derives the caller's allowed operations from the session's role
// flags and, for cancel, from whether the session owns the order identified by
// ownerID. It never mutates either input; callers use it to reject
// unauthorized operations before any network request is issued.
func Permitted(sess session.Session, ownerID uuid.UUID) Actions {
	actions := Actions{}
	if !sess.Authenticated() {
		return actions
	}
	if ownerID != uuid.Nil && sess.UserID == ownerID {
		actions[ActionCancel] = struct{}{}
	}
	if sess.IsDeliveryAdmin {
		actions[ActionProgress] = struct{}{}
		actions[ActionMarkDelivered] = struct{}{}
		actions[ActionMarkReturned] = struct{}{}
		actions[ActionViewAllOrders] = struct{}{}
	}
	if sess.IsProductAdmin {
		actions[ActionManageProducts] = struct{}{}
		actions[ActionViewAllOrders] = struct{}{}
	}
	return actions
}
