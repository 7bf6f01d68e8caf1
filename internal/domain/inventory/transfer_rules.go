package inventory

import (
	"github.com/jhoicas/Almoxarifado-api/internal/domain"
	"github.com/jhoicas/Almoxarifado-api/internal/domain/entity"
)

// Acciones sobre una transferencia.
const (
	TransferActionApprove  = "aprobar"
	TransferActionDispatch = "despachar"
	TransferActionComplete = "completar"
	TransferActionCancel   = "cancelar"
)

var transferTransitions = map[string]map[entity.TransferStatus]entity.TransferStatus{
	TransferActionApprove: {
		entity.TransferPending: entity.TransferApproved,
	},
	TransferActionDispatch: {
		entity.TransferApproved: entity.TransferInTransit,
	},
	TransferActionComplete: {
		entity.TransferApproved:  entity.TransferCompleted,
		entity.TransferInTransit: entity.TransferCompleted,
	},
	TransferActionCancel: {
		entity.TransferPending:  entity.TransferCancelled,
		entity.TransferApproved: entity.TransferCancelled,
	},
}

// NextTransferStatus devuelve el estado destino de action o InvalidStateError.
func NextTransferStatus(current entity.TransferStatus, action string) (entity.TransferStatus, error) {
	if next, ok := transferTransitions[action][current]; ok {
		return next, nil
	}
	return current, domain.InvalidState("transferencia", string(current), action)
}
