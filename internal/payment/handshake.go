// Package payment drives a single purchase: one order-creation round trip,
// delegation to the external checkout, and one verification round trip per
// checkout callback. Signature verification and ledger updates are entirely
// server-side; this package only carries the proof fields through.
package payment

import (
	"context"
	"errors"
	"sync"

	"notesportal/internal/api"
)

type State int

const (
	StateIdle State = iota
	StateOrderCreated
	StateCheckoutDelegated
	StateVerified
	StateVerifyFailed
	StateOrderFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOrderCreated:
		return "order_created"
	case StateCheckoutDelegated:
		return "checkout_delegated"
	case StateVerified:
		return "verified"
	case StateVerifyFailed:
		return "verify_failed"
	case StateOrderFailed:
		return "order_failed"
	default:
		return "unknown"
	}
}

// FeeRate is the displayed platform-fee fraction. Presentation only: the
// server's recorded split is authoritative.
const FeeRate = 0.10

// Breakdown computes the displayed price split. The total equals the price;
// the fee comes out of the seller's side.
func Breakdown(price float64) (fee, total float64) {
	return price * FeeRate, price
}

type Order struct {
	ID        string
	NoteID    string
	NoteTitle string
	Amount    float64
}

// Proof carries the payer-furnished fields from the checkout completion
// callback. They are forwarded verbatim to verification.
type Proof struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Checkout is the narrow capability interface over the external checkout
// widget. Open returns once the checkout is presented; completion and
// dismissal arrive later through the callbacks, driven by the user.
type Checkout interface {
	Open(order Order, onComplete func(Proof), onDismiss func()) error
}

// Gateway is the slice of the backend client the handshake needs.
type Gateway interface {
	CreateOrder(ctx context.Context, noteID string, amount float64) (string, error)
	VerifyPayment(ctx context.Context, orderID, paymentID, signature, noteID string) error
}

// ErrPurchaseInFlight means a purchase is already between order creation and
// settlement; Initiate is a no-op until it resolves.
var ErrPurchaseInFlight = errors.New("purchase already in flight")

type Handshake struct {
	gateway  Gateway
	checkout Checkout
	notify   func(State)

	mu    sync.Mutex
	state State
	gen   int
}

// New builds a handshake. notify, when non-nil, observes every state
// transition; callers use StateVerified to close the purchase flow and
// refresh dependent listings.
func New(gateway Gateway, checkout Checkout, notify func(State)) *Handshake {
	return &Handshake{gateway: gateway, checkout: checkout, notify: notify}
}

func (h *Handshake) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handshake) transition(to State) {
	h.mu.Lock()
	h.state = to
	h.mu.Unlock()
	if h.notify != nil {
		h.notify(to)
	}
}

// Initiate starts a purchase from any settled state. Order-creation failure
// is terminal for this attempt and the checkout is never opened. On success
// the checkout is delegated; its callbacks are keyed to this attempt, so a
// stale callback from an abandoned attempt is discarded.
func (h *Handshake) Initiate(ctx context.Context, note api.Note) error {
	h.mu.Lock()
	if h.state == StateOrderCreated || h.state == StateCheckoutDelegated {
		h.mu.Unlock()
		return ErrPurchaseInFlight
	}
	h.state = StateIdle
	h.gen++
	gen := h.gen
	h.mu.Unlock()

	orderID, err := h.gateway.CreateOrder(ctx, note.ID, note.Price)
	if err != nil {
		h.transition(StateOrderFailed)
		return err
	}
	h.transition(StateOrderCreated)

	// Callbacks may fire while Open is still running, so the attempt must
	// already be claimable before the checkout gets the order.
	h.transition(StateCheckoutDelegated)
	order := Order{ID: orderID, NoteID: note.ID, NoteTitle: note.Title, Amount: note.Price}
	err = h.checkout.Open(order,
		func(proof Proof) { h.complete(ctx, gen, note.ID, proof) },
		func() { h.dismiss(gen) },
	)
	if err != nil {
		if h.settle(gen) {
			h.transition(StateIdle)
		}
		return err
	}
	return nil
}

// complete performs exactly one verification for the callback's proof. The
// order reference comes from the proof itself, never from cached state.
func (h *Handshake) complete(ctx context.Context, gen int, noteID string, proof Proof) {
	if !h.settle(gen) {
		return
	}
	if err := h.gateway.VerifyPayment(ctx, proof.OrderID, proof.PaymentID, proof.Signature, noteID); err != nil {
		h.transition(StateVerifyFailed)
		return
	}
	h.transition(StateVerified)
}

// dismiss returns the handshake to a retryable idle state. No session or
// server state is touched; the next Initiate starts from scratch.
func (h *Handshake) dismiss(gen int) {
	if !h.settle(gen) {
		return
	}
	h.transition(StateIdle)
}

// settle claims the in-flight attempt for one callback. It fails for stale
// generations and for attempts that already settled, which makes the
// verification at most once per checkout callback.
func (h *Handshake) settle(gen int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.gen || h.state != StateCheckoutDelegated {
		return false
	}
	h.gen++
	return true
}
