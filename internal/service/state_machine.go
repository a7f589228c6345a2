package service

import (
	"fmt"

	"github.com/TDXM1001/zugou-rental/internal/model"
)

// contractTransitions is the closed set of legal status transitions.
// terminated has no outgoing edges.
var contractTransitions = map[model.ContractStatus][]model.ContractStatus{
	model.ContractStatusDraft:      {model.ContractStatusPending, model.ContractStatusTerminated},
	model.ContractStatusPending:    {model.ContractStatusActive, model.ContractStatusTerminated},
	model.ContractStatusActive:     {model.ContractStatusExpired, model.ContractStatusTerminated, model.ContractStatusBreached},
	model.ContractStatusExpired:    {model.ContractStatusTerminated},
	model.ContractStatusBreached:   {model.ContractStatusTerminated},
	model.ContractStatusTerminated: {},
}

// CanTransition reports whether from → to is in the transition table.
func CanTransition(from, to model.ContractStatus) bool {
	for _, next := range contractTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to model.ContractStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot transition contract from %s to %s", ErrBusinessRule, from, to)
	}
	return nil
}
