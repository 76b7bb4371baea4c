package checkout

import (
	"github.com/angelmondragon/warehousepos-backend/internal/orders"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
)

// Machine tracks one checkout submission:
//
//	idle -> submitting -> success | failed
//	success | failed -> idle (Reset)
//
// A Machine guards the transitions of a single submission and is dropped
// when Execute returns; it is not persisted, so Reset only matters to callers
// that reuse one. It is not safe for concurrent use; cross-request exclusion
// is the submit lock's job.
type Machine struct {
	state enums.CheckoutState
	order *orders.OrderDTO
	err   error
}

func NewMachine() *Machine {
	return &Machine{state: enums.CheckoutStateIdle}
}

func (m *Machine) State() enums.CheckoutState { return m.state }

// Order is the created order once the machine reached success.
func (m *Machine) Order() *orders.OrderDTO { return m.order }

// Err is the submission failure once the machine reached failed.
func (m *Machine) Err() error { return m.err }

// Begin starts a submission. Only an idle machine with lines may begin.
func (m *Machine) Begin(lineCount int) error {
	if m.state != enums.CheckoutStateIdle {
		return m.illegal("begin")
	}
	if lineCount <= 0 {
		return pkgerrors.Invalid("items", "cart is empty")
	}
	m.state = enums.CheckoutStateSubmitting
	m.order = nil
	m.err = nil
	return nil
}

func (m *Machine) Succeed(order *orders.OrderDTO) error {
	if m.state != enums.CheckoutStateSubmitting {
		return m.illegal("succeed")
	}
	m.state = enums.CheckoutStateSuccess
	m.order = order
	return nil
}

func (m *Machine) Fail(err error) error {
	if m.state != enums.CheckoutStateSubmitting {
		return m.illegal("fail")
	}
	m.state = enums.CheckoutStateFailed
	m.err = err
	return nil
}

// Reset returns a finished machine to idle. The last order and error stay
// readable until the next Begin.
func (m *Machine) Reset() error {
	if !m.state.IsTerminal() {
		return m.illegal("reset")
	}
	m.state = enums.CheckoutStateIdle
	return nil
}

func (m *Machine) illegal(event string) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot %s checkout in state %s", event, m.state).
		WithDetails(map[string]string{"state": m.state.String(), "event": event})
}
