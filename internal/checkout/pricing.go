// Package checkout turns a cart snapshot into a priced, committed order and
// reconciles stock afterwards. Pricing is pure; settlement is a small state
// machine with deliberately non-atomic side effects (see Flow.Submit).
package checkout

import (
	"github.com/TON618OFF/FactorioStore-sub000/internal/cart"
	"github.com/TON618OFF/FactorioStore-sub000/internal/orders"
)

// Card payments carry a 5% processing commission, floored to whole cents.
const (
	commissionNum = 5
	commissionDen = 100
)

// Quote is the priced view of a snapshot. All amounts are cents.
type Quote struct {
	Subtotal   int64 `json:"subtotal"`
	Commission int64 `json:"commission"`
	Total      int64 `json:"total"`
}

// Price computes the quote for a snapshot and payment method. Pure and
// deterministic; safe to recompute on every payment-method change.
func Price(lines []cart.Line, method orders.PaymentMethod) Quote {
	var subtotal int64
	for _, line := range lines {
		subtotal += line.Subtotal()
	}

	var commission int64
	if method == orders.PaymentCard {
		commission = subtotal * commissionNum / commissionDen // integer division floors
	}

	return Quote{
		Subtotal:   subtotal,
		Commission: commission,
		Total:      subtotal + commission,
	}
}
