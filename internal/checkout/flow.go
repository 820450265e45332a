package checkout

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/TON618OFF/FactorioStore-sub000/internal/cart"
	"github.com/TON618OFF/FactorioStore-sub000/internal/identity"
	"github.com/TON618OFF/FactorioStore-sub000/internal/orders"
)

// Cart is the slice of the cart manager the settlement flow consumes.
type Cart interface {
	Snapshot() []cart.Line
	Clear(ctx context.Context) error
}

// OrderWriter persists the committed order.
type OrderWriter interface {
	Create(ctx context.Context, o orders.Order) (orders.Order, error)
}

// StockAdjuster issues the best-effort post-order stock decrements.
type StockAdjuster interface {
	DecrementStock(ctx context.Context, productID string, qty int) error
}

// EventPublisher announces a settled order downstream. May be nil; a
// publish failure never fails the checkout.
type EventPublisher interface {
	OrderSettled(ctx context.Context, o orders.Order) error
}

// StockFailure records one line whose decrement failed after the order was
// already committed. Non-fatal by design.
type StockFailure struct {
	ProductID string
	Quantity  int
	Err       error
}

// Result is the outcome of a committed settlement.
type Result struct {
	Order         orders.Order
	Quote         Quote
	StockFailures []StockFailure
}

// Flow is one checkout attempt: Idle -> Pricing -> Submitting ->
// {Committed, Failed}. Construct a new Flow per checkout; a Failed flow may
// be Reset and resubmitted, a Committed one is done.
//
// Submit's side effects are intentionally non-atomic: the order document is
// committed first, then each line's stock decrement is issued as an
// independent best-effort write. Two concurrent settlements can both read
// the same pre-decrement stock and oversell; the store offers no
// multi-document transaction and this flow does not pretend otherwise.
type Flow struct {
	cart   Cart
	orders OrderWriter
	stock  StockAdjuster
	who    identity.Provider
	events EventPublisher

	mu     sync.Mutex
	status Status
}

func NewFlow(c Cart, o OrderWriter, s StockAdjuster, who identity.Provider, events EventPublisher) *Flow {
	return &Flow{
		cart:   c,
		orders: o,
		stock:  s,
		who:    who,
		events: events,
		status: StatusIdle,
	}
}

func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Quote prices the current snapshot for the given payment method. Called on
// every payment-method change; it moves the flow into Pricing but has no
// side effects.
func (f *Flow) Quote(method orders.PaymentMethod) (Quote, error) {
	if !method.Valid() {
		return Quote{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !CanTransitionTo(f.status, StatusPricing) {
		return Quote{}, ErrIllegalTransition
	}
	f.status = StatusPricing
	return Price(f.cart.Snapshot(), method), nil
}

// Submit settles the cart: validate, write the order, then reconcile stock
// and clear the cart. Validation failures abort before any state change.
// An order-write failure moves the flow to Failed with the cart untouched.
// Stock-decrement failures after the commit are reported in the Result and
// never block Committed.
func (f *Flow) Submit(ctx context.Context, method orders.PaymentMethod) (*Result, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !CanTransitionTo(f.status, StatusSubmitting) {
		return nil, ErrIllegalTransition
	}

	// Fail-fast validation: no transition happens on a validation error.
	id, ok := f.who.Current(ctx)
	if !ok {
		return nil, ErrNoIdentity
	}
	if id.Email == "" {
		return nil, ErrMissingEmail
	}
	snapshot := f.cart.Snapshot()
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}

	f.status = StatusSubmitting
	quote := Price(snapshot, method)

	order, err := f.orders.Create(ctx, orders.Order{
		UserID:        id.UID,
		Email:         id.Email,
		Lines:         snapshot,
		Subtotal:      quote.Subtotal,
		Commission:    quote.Commission,
		Total:         quote.Total,
		PaymentMethod: method,
	})
	if err != nil {
		// Cart stays untouched; the flow may be Reset and resubmitted.
		f.status = StatusFailed
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	result := &Result{Order: order, Quote: quote}

	// The order is committed; everything below is best-effort reconciliation.
	for _, line := range snapshot {
		if errDec := f.stock.DecrementStock(ctx, line.ProductID, line.Quantity); errDec != nil {
			log.Printf("checkout: stock decrement for %s failed after commit of order %s: %v",
				line.ProductID, order.ID, errDec)
			result.StockFailures = append(result.StockFailures, StockFailure{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Err:       errDec,
			})
		}
	}

	if errClear := f.cart.Clear(ctx); errClear != nil {
		log.Printf("checkout: clearing cart after commit of order %s failed: %v", order.ID, errClear)
	}

	f.status = StatusCommitted

	if f.events != nil {
		if errPub := f.events.OrderSettled(ctx, order); errPub != nil {
			log.Printf("checkout: publishing settled order %s failed: %v", order.ID, errPub)
		}
	}
	return result, nil
}

// Reset returns a Failed flow to Idle for another attempt.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !CanTransitionTo(f.status, StatusIdle) {
		return ErrIllegalTransition
	}
	f.status = StatusIdle
	return nil
}
