package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/backoffice/registry"
)

func TestPurchaseOrder_StatusMachine(t *testing.T) {
	po := registry.PurchaseOrder{OrderNumber: "PO-00001", Status: registry.OrderPending}

	po, err := po.WithStatus(registry.OrderApproved)
	require.NoError(t, err)

	po, err = po.WithStatus(registry.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, registry.OrderDelivered, po.Status)
}

func TestPurchaseOrder_SkippingApproval_Rejected(t *testing.T) {
	po := registry.PurchaseOrder{Status: registry.OrderPending}

	_, err := po.WithStatus(registry.OrderDelivered)
	assert.ErrorIs(t, err, registry.ErrInvalidStatusChange)
}

func TestPurchaseOrder_TerminalStates(t *testing.T) {
	delivered := registry.PurchaseOrder{Status: registry.OrderDelivered}
	_, err := delivered.WithStatus(registry.OrderCancelled)
	assert.ErrorIs(t, err, registry.ErrInvalidStatusChange)

	cancelled := registry.PurchaseOrder{Status: registry.OrderCancelled}
	_, err = cancelled.WithStatus(registry.OrderApproved)
	assert.ErrorIs(t, err, registry.ErrInvalidStatusChange)
}
