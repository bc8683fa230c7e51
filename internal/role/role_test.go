package role

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/rakapradana/storefront/internal/session"
)

func TestPermitted(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name     string
		sess     session.Session
		ownerID  uuid.UUID
		allowed  []Action
		rejected []Action
	}{
		{
			name:    "given unauthenticated session should allow nothing",
			sess:    session.Session{},
			ownerID: ownerID,
			rejected: []Action{
				ActionCancel,
				ActionProgress,
				ActionMarkDelivered,
				ActionMarkReturned,
				ActionViewAllOrders,
				ActionManageProducts,
			},
		},
		{
			name:    "given customer owning the order should allow cancel only",
			sess:    session.Session{Token: "token", UserID: ownerID},
			ownerID: ownerID,
			allowed: []Action{ActionCancel},
			rejected: []Action{
				ActionProgress,
				ActionMarkDelivered,
				ActionMarkReturned,
				ActionViewAllOrders,
				ActionManageProducts,
			},
		},
		{
			name:     "given customer not owning the order should reject cancel",
			sess:     session.Session{Token: "token", UserID: otherID},
			ownerID:  ownerID,
			rejected: []Action{ActionCancel, ActionProgress, ActionViewAllOrders},
		},
		{
			name:    "given delivery admin should allow fulfillment actions",
			sess:    session.Session{Token: "token", UserID: otherID, IsDeliveryAdmin: true},
			ownerID: ownerID,
			allowed: []Action{
				ActionProgress,
				ActionMarkDelivered,
				ActionMarkReturned,
				ActionViewAllOrders,
			},
			rejected: []Action{ActionCancel, ActionManageProducts},
		},
		{
			name:    "given delivery admin owning the order should also allow cancel",
			sess:    session.Session{Token: "token", UserID: ownerID, IsDeliveryAdmin: true},
			ownerID: ownerID,
			allowed: []Action{ActionCancel, ActionProgress, ActionMarkDelivered, ActionMarkReturned},
		},
		{
			name:    "given product admin should allow product management and order listing",
			sess:    session.Session{Token: "token", UserID: otherID, IsProductAdmin: true},
			ownerID: ownerID,
			allowed: []Action{ActionManageProducts, ActionViewAllOrders},
			rejected: []Action{
				ActionCancel,
				ActionProgress,
				ActionMarkDelivered,
				ActionMarkReturned,
			},
		},
		{
			name:     "given nil owner should never allow cancel",
			sess:     session.Session{Token: "token", UserID: uuid.Nil},
			ownerID:  uuid.Nil,
			rejected: []Action{ActionCancel},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actions := Permitted(test.sess, test.ownerID)
			for _, action := range test.allowed {
				assert.Truef(t, actions.Has(action), "action=%s should be allowed", action)
			}
			for _, action := range test.rejected {
				assert.Falsef(t, actions.Has(action), "action=%s should be rejected", action)
			}
		})
	}
}
