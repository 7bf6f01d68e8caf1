package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Costo promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

func TestCostCalculator(t *testing.T) {
	cases := []struct {
		name     string
		stock    int
		cost     string
		qty      int
		unitCost string
		want     string
	}{
		{"primera entrada", 0, "0", 10, "12.5", "12.5"},
		{"promedio simple", 10, "10", 10, "20", "15"},
		{"redondeo a 4 decimales", 3, "1", 0, "0", "1"},
		{"tercios", 1, "1", 2, "2", "1.6667"},
		{"stock negativo no aporta", -5, "100", 4, "8", "8"},
		{"sin unidades", 0, "3", 0, "9", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.CostCalculator(tc.stock, decimal.RequireFromString(tc.cost), tc.qty, decimal.RequireFromString(tc.unitCost))
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas de préstamo
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeEffectiveStatus(t *testing.T) {
	due := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	before, after := due.Add(-time.Hour), due.Add(time.Minute)

	cases := []struct {
		status entity.LoanStatus
		now    time.Time
		want   entity.LoanStatus
	}{
		{entity.LoanOpen, before, entity.LoanOpen},
		{entity.LoanOpen, after, entity.LoanOverdue},
		{entity.LoanPartiallyReturned, after, entity.LoanOverdue},
		{entity.LoanOverdue, after, entity.LoanOverdue},
		{entity.LoanReturned, after, entity.LoanReturned},
		{entity.LoanLost, after, entity.LoanLost},
		{entity.LoanOpen, due, entity.LoanOpen},
	}
	for _, tc := range cases {
		loan := &entity.Loan{Status: tc.status, DueDate: due}
		assert.Equal(t, tc.want, inventory.ComputeEffectiveStatus(loan, tc.now), "estado %s en %s", tc.status, tc.now)
	}

	noDue := &entity.Loan{Status: entity.LoanOpen}
	assert.Equal(t, entity.LoanOpen, inventory.ComputeEffectiveStatus(noDue, after), "sin vencimiento nunca se atrasa")
}

func TestCheckLoanReturnAndLost(t *testing.T) {
	for _, s := range []entity.LoanStatus{entity.LoanOpen, entity.LoanPartiallyReturned, entity.LoanOverdue} {
		assert.NoError(t, inventory.CheckLoanReturn(&entity.Loan{Status: s}), "%s admite devolución", s)
		assert.NoError(t, inventory.CheckLoanLost(&entity.Loan{Status: s}), "%s admite pérdida", s)
	}
	for _, s := range []entity.LoanStatus{entity.LoanReturned, entity.LoanLost} {
		err := inventory.CheckLoanReturn(&entity.Loan{Status: s})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Equal(t, string(s), domain.Details(err)["status"])
		assert.ErrorIs(t, inventory.CheckLoanLost(&entity.Loan{Status: s}), domain.ErrInvalidState)
	}
}

func TestStatusAfterReturn(t *testing.T) {
	loan := &entity.Loan{Items: []entity.LoanItem{
		{QuantityIssued: 3, QuantityReturned: 3},
		{QuantityIssued: 2, QuantityReturned: 1},
	}}
	assert.Equal(t, entity.LoanPartiallyReturned, inventory.StatusAfterReturn(loan))

	loan.Items[1].QuantityReturned = 2
	assert.Equal(t, entity.LoanReturned, inventory.StatusAfterReturn(loan))
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados de transferencias
// ──────────────────────────────────────────────────────────────────────────────

func TestNextTransferStatus_TransicionesValidas(t *testing.T) {
	cases := []struct {
		from   entity.TransferStatus
		action string
		want   entity.TransferStatus
	}{
		{entity.TransferPending, inventory.TransferActionApprove, entity.TransferApproved},
		{entity.TransferApproved, inventory.TransferActionDispatch, entity.TransferInTransit},
		{entity.TransferApproved, inventory.TransferActionComplete, entity.TransferCompleted},
		{entity.TransferInTransit, inventory.TransferActionComplete, entity.TransferCompleted},
		{entity.TransferPending, inventory.TransferActionCancel, entity.TransferCancelled},
		{entity.TransferApproved, inventory.TransferActionCancel, entity.TransferCancelled},
	}
	for _, tc := range cases {
		got, err := inventory.NextTransferStatus(tc.from, tc.action)
		require.NoError(t, err, "%s --%s-->", tc.from, tc.action)
		assert.Equal(t, tc.want, got)
	}
}

func TestNextTransferStatus_TransicionesInvalidas(t *testing.T) {
	cases := []struct {
		from   entity.TransferStatus
		action string
	}{
		{entity.TransferPending, inventory.TransferActionDispatch},
		{entity.TransferPending, inventory.TransferActionComplete},
		{entity.TransferApproved, inventory.TransferActionApprove},
		{entity.TransferInTransit, inventory.TransferActionCancel},
		{entity.TransferCompleted, inventory.TransferActionComplete},
		{entity.TransferCompleted, inventory.TransferActionCancel},
		{entity.TransferCancelled, inventory.TransferActionApprove},
		{entity.TransferPending, "archivar"},
	}
	for _, tc := range cases {
		got, err := inventory.NextTransferStatus(tc.from, tc.action)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "%s --%s--> debe fallar", tc.from, tc.action)
		assert.Equal(t, tc.from, got, "el estado no cambia")
	}
}
