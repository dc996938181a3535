// Package execution turns OrderEvents into FillEvents. Implementations
// differ only in where the order goes: a simulated venue for backtests or a
// real exchange for live trading. The portfolio never knows which one it is
// talking to.
package execution

import "github.com/halcyonlab/halcyon/internal/types"

// Handler executes one order and enqueues exactly one FillEvent on success.
type Handler interface {
	ExecuteOrder(order types.OrderEvent) error
}
