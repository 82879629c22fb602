package subscriptions

import "github.com/angelmondragon/marketbill-backend/pkg/asaas"

// healStep is the next self-healing action after a rejected create call.
type healStep int

const (
	healGiveUp healStep = iota
	healRecreateCustomer
	healRepairCustomer
	healLastResortRecreate
)

func (s healStep) String() string {
	switch s {
	case healRecreateCustomer:
		return "recreate_customer"
	case healRepairCustomer:
		return "repair_customer"
	case healLastResortRecreate:
		return "last_resort_recreate"
	}
	return "give_up"
}

// healPolicy runs each step at most once per create call.
type healPolicy struct {
	recreated  bool
	repaired   bool
	lastResort bool
}

// next returns the step for a failure classified as kind.
func (p *healPolicy) next(kind asaas.ErrorKind) healStep {
	switch kind {
	case asaas.ErrorKindCustomerRemoved:
		if !p.recreated {
			p.recreated = true
			return healRecreateCustomer
		}
	case asaas.ErrorKindCustomerTaxID:
		if !p.repaired {
			p.repaired = true
			return healRepairCustomer
		}
		return p.escalate()
	}
	return healGiveUp
}

// escalate is used when a repair could not fix the customer.
func (p *healPolicy) escalate() healStep {
	if p.lastResort {
		return healGiveUp
	}
	p.lastResort = true
	return healLastResortRecreate
}
