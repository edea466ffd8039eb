package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsledger/backend/internal/domain/shared"
)

func TestParseMovementType(t *testing.T) {
	for _, s := range []string{"receipt", "issue", "adjustment", "transfer_out", "transfer_in", "return"} {
		mt, err := ParseMovementType(s)
		require.NoError(t, err)
		assert.Equal(t, s, mt.String())
	}

	_, err := ParseMovementType("teleport")
	assert.ErrorIs(t, err, shared.ErrInvalidMovementType)

	_, err = ParseMovementType("")
	assert.ErrorIs(t, err, shared.ErrInvalidMovementType)
}

func TestMovementType_Direction(t *testing.T) {
	assert.True(t, MovementReceipt.IsInbound())
	assert.True(t, MovementTransferIn.IsInbound())
	assert.True(t, MovementReturn.IsInbound())
	assert.True(t, MovementIssue.IsOutbound())
	assert.True(t, MovementTransferOut.IsOutbound())

	// Adjustments are signed, neither direction
	assert.False(t, MovementAdjustment.IsInbound())
	assert.False(t, MovementAdjustment.IsOutbound())
}

func TestMovementValidate(t *testing.T) {
	negative := decimal.NewFromInt(-1)

	t.Run("receipt requires positive quantity", func(t *testing.T) {
		assert.NoError(t, Receipt{Quantity: 5}.Validate())
		assert.Error(t, Receipt{Quantity: 0}.Validate())
		assert.Error(t, Receipt{Quantity: -2}.Validate())
	})

	t.Run("receipt rejects negative unit cost", func(t *testing.T) {
		assert.Error(t, Receipt{Quantity: 5, UnitCost: &negative}.Validate())
	})

	t.Run("issue requires positive quantity", func(t *testing.T) {
		assert.NoError(t, Issue{Quantity: 3}.Validate())
		assert.Error(t, Issue{Quantity: 0}.Validate())
	})

	t.Run("transfer out requires a destination", func(t *testing.T) {
		assert.Error(t, TransferOut{Quantity: 3}.Validate())
		assert.NoError(t, TransferOut{Quantity: 3, ToLocationID: uuid.New()}.Validate())
	})

	t.Run("transfer in requires a source", func(t *testing.T) {
		assert.Error(t, TransferIn{Quantity: 3}.Validate())
		assert.NoError(t, TransferIn{Quantity: 3, FromLocationID: uuid.New()}.Validate())
	})

	t.Run("adjustment requires a non-zero signed delta", func(t *testing.T) {
		assert.NoError(t, Adjustment{Delta: 4}.Validate())
		assert.NoError(t, Adjustment{Delta: -4}.Validate())
		assert.Error(t, Adjustment{Delta: 0}.Validate())
	})
}

func TestNewLedgerEntry(t *testing.T) {
	companyID := uuid.New()
	partID := uuid.New()
	locationID := uuid.New()
	cost := decimal.NewFromFloat(2.50)

	t.Run("creates entry with derived total cost", func(t *testing.T) {
		entry, err := NewLedgerEntry(companyID, partID, locationID, MovementReceipt, 4, &cost, 0, 4)

		require.NoError(t, err)
		assert.Equal(t, MovementReceipt, entry.MovementType)
		assert.Equal(t, int64(4), entry.Quantity)
		require.NotNil(t, entry.TotalCost)
		assert.Equal(t, "10", entry.TotalCost.String())
		assert.Equal(t, int64(0), entry.BalanceBefore)
		assert.Equal(t, int64(4), entry.BalanceAfter)
		assert.False(t, entry.OccurredAt.IsZero())
	})

	t.Run("allows signed quantity only for adjustments", func(t *testing.T) {
		entry, err := NewLedgerEntry(companyID, partID, locationID, MovementAdjustment, -3, nil, 10, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(-3), entry.Quantity)

		_, err = NewLedgerEntry(companyID, partID, locationID, MovementIssue, -3, nil, 10, 7)
		require.Error(t, err)
	})

	t.Run("negative adjustment still gets a positive total cost", func(t *testing.T) {
		entry, err := NewLedgerEntry(companyID, partID, locationID, MovementAdjustment, -4, &cost, 10, 6)

		require.NoError(t, err)
		require.NotNil(t, entry.TotalCost)
		assert.Equal(t, "10", entry.TotalCost.String())
	})

	t.Run("rejects unknown movement type", func(t *testing.T) {
		_, err := NewLedgerEntry(companyID, partID, locationID, MovementType("teleport"), 1, nil, 0, 1)

		assert.ErrorIs(t, err, shared.ErrInvalidMovementType)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewLedgerEntry(companyID, partID, locationID, MovementReceipt, 0, nil, 0, 0)

		require.Error(t, err)
	})

	t.Run("signed quantity follows movement direction", func(t *testing.T) {
		in, err := NewLedgerEntry(companyID, partID, locationID, MovementReceipt, 5, nil, 0, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), in.SignedQuantity())

		out, err := NewLedgerEntry(companyID, partID, locationID, MovementIssue, 5, nil, 5, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(-5), out.SignedQuantity())
	})

	t.Run("fluent setters attach metadata", func(t *testing.T) {
		userID := uuid.New()
		toLocation := uuid.New()
		entry, err := NewLedgerEntry(companyID, partID, locationID, MovementTransferOut, 2, nil, 5, 3)
		require.NoError(t, err)

		entry.WithDetails(Details{Reason: "rebalance", Reference: "TRF-001", ReferenceType: ReferenceTypeTransfer}).
			WithTransferRoute(locationID, toLocation).
			WithUser(userID)

		assert.Equal(t, "rebalance", entry.Reason)
		assert.Equal(t, "TRF-001", entry.Reference)
		require.NotNil(t, entry.ToLocationID)
		assert.Equal(t, toLocation, *entry.ToLocationID)
		require.NotNil(t, entry.UserID)
		assert.Equal(t, userID, *entry.UserID)
	})
}
