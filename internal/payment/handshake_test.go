package payment

import (
	"context"
	"fmt"
	"testing"

	"notesportal/internal/api"
)

type fakeGateway struct {
	orders      int
	orderErr    error
	verifyErr   error
	verifyCalls []Proof
	verifyNotes []string
}

func (g *fakeGateway) CreateOrder(_ context.Context, _ string, _ float64) (string, error) {
	if g.orderErr != nil {
		return "", g.orderErr
	}
	g.orders++
	return fmt.Sprintf("order-%d", g.orders), nil
}

func (g *fakeGateway) VerifyPayment(_ context.Context, orderID, paymentID, signature, noteID string) error {
	g.verifyCalls = append(g.verifyCalls, Proof{OrderID: orderID, PaymentID: paymentID, Signature: signature})
	g.verifyNotes = append(g.verifyNotes, noteID)
	return g.verifyErr
}

type fakeCheckout struct {
	opens      []Order
	onComplete func(Proof)
	onDismiss  func()
}

func (c *fakeCheckout) Open(order Order, onComplete func(Proof), onDismiss func()) error {
	c.opens = append(c.opens, order)
	c.onComplete = onComplete
	c.onDismiss = onDismiss
	return nil
}

func premiumNote() api.Note {
	return api.Note{ID: "note-1", Title: "DSA Unit 3", IsPremium: true, Price: 49}
}

func TestOrderFailureNeverOpensCheckout(t *testing.T) {
	gateway := &fakeGateway{orderErr: &api.APIError{Status: 200, Code: "order_failed", Message: "Note no longer available"}}
	checkout := &fakeCheckout{}
	handshake := New(gateway, checkout, nil)

	err := handshake.Initiate(context.Background(), premiumNote())
	if err == nil {
		t.Fatalf("expected order failure")
	}
	if len(checkout.opens) != 0 {
		t.Fatalf("expected checkout to stay closed, got %d opens", len(checkout.opens))
	}
	if handshake.State() != StateOrderFailed {
		t.Fatalf("expected order_failed, got %s", handshake.State())
	}
}

func TestVerifiedFlow(t *testing.T) {
	gateway := &fakeGateway{}
	checkout := &fakeCheckout{}
	var states []State
	handshake := New(gateway, checkout, func(s State) { states = append(states, s) })

	if err := handshake.Initiate(context.Background(), premiumNote()); err != nil {
		t.Fatalf("initiate error: %v", err)
	}
	if handshake.State() != StateCheckoutDelegated {
		t.Fatalf("expected checkout_delegated, got %s", handshake.State())
	}
	if len(checkout.opens) != 1 || checkout.opens[0].ID != "order-1" || checkout.opens[0].Amount != 49 {
		t.Fatalf("unexpected checkout order: %+v", checkout.opens)
	}

	checkout.onComplete(Proof{OrderID: "order-1", PaymentID: "pay-1", Signature: "sig-1"})

	if handshake.State() != StateVerified {
		t.Fatalf("expected verified, got %s", handshake.State())
	}
	if len(gateway.verifyCalls) != 1 {
		t.Fatalf("expected one verification, got %d", len(gateway.verifyCalls))
	}
	if gateway.verifyCalls[0] != (Proof{OrderID: "order-1", PaymentID: "pay-1", Signature: "sig-1"}) {
		t.Fatalf("proof not forwarded verbatim: %+v", gateway.verifyCalls[0])
	}
	if gateway.verifyNotes[0] != "note-1" {
		t.Fatalf("expected note id with verification, got %s", gateway.verifyNotes[0])
	}

	want := []State{StateOrderCreated, StateCheckoutDelegated, StateVerified}
	if len(states) != len(want) {
		t.Fatalf("expected states %v, got %v", want, states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("expected states %v, got %v", want, states)
		}
	}
}

// immediateCheckout completes synchronously, before Open returns, the way a
// fast payer can beat the Open call in the browser flow.
type immediateCheckout struct{}

func (immediateCheckout) Open(order Order, onComplete func(Proof), _ func()) error {
	onComplete(Proof{OrderID: order.ID, PaymentID: "pay-fast", Signature: "sig-fast"})
	return nil
}

func TestCompletionBeforeOpenReturnsStillVerifies(t *testing.T) {
	gateway := &fakeGateway{}
	handshake := New(gateway, immediateCheckout{}, nil)

	if err := handshake.Initiate(context.Background(), premiumNote()); err != nil {
		t.Fatalf("initiate error: %v", err)
	}
	if len(gateway.verifyCalls) != 1 {
		t.Fatalf("expected one verification, got %d", len(gateway.verifyCalls))
	}
	if gateway.verifyCalls[0].OrderID != "order-1" {
		t.Fatalf("unexpected proof: %+v", gateway.verifyCalls[0])
	}
	if handshake.State() != StateVerified {
		t.Fatalf("expected verified, got %s", handshake.State())
	}
}

type failingCheckout struct{}

func (failingCheckout) Open(Order, func(Proof), func()) error {
	return fmt.Errorf("no display")
}

func TestOpenFailureReturnsToIdle(t *testing.T) {
	gateway := &fakeGateway{}
	handshake := New(gateway, failingCheckout{}, nil)

	if err := handshake.Initiate(context.Background(), premiumNote()); err == nil {
		t.Fatalf("expected open failure")
	}
	if handshake.State() != StateIdle {
		t.Fatalf("expected idle after open failure, got %s", handshake.State())
	}
	if err := handshake.Initiate(context.Background(), premiumNote()); err == nil {
		t.Fatalf("expected open failure on retry")
	}
	if gateway.orders != 2 {
		t.Fatalf("expected a fresh order per attempt, got %d", gateway.orders)
	}
}

func TestDismissalResetsWithoutResidualOrder(t *testing.T) {
	gateway := &fakeGateway{}
	checkout := &fakeCheckout{}
	handshake := New(gateway, checkout, nil)

	if err := handshake.Initiate(context.Background(), premiumNote()); err != nil {
		t.Fatalf("initiate error: %v", err)
	}
	checkout.onDismiss()
	if handshake.State() != StateIdle {
		t.Fatalf("expected idle after dismissal, got %s", handshake.State())
	}
	if len(gateway.verifyCalls) != 0 {
		t.Fatalf("expected no verification after dismissal")
	}

	// Retry gets a fresh order reference.
	if err := handshake.Initiate(context.Background(), premiumNote()); err != nil {
		t.Fatalf("second initiate error: %v", err)
	}
	if checkout.opens[1].ID != "order-2" {
		t.Fatalf("expected fresh order reference, got %s", checkout.opens[1].ID)
	}
}

func TestStaleCallbackDiscardedAfterDismissal(t *testing.T) {
	gateway := &fakeGateway{}
	checkout := &fakeCheckout{}
	handshake := New(gateway, checkout, nil)

	if err := handshake.Initiate(context.Background(), premiumNote()); err != nil {
		t.Fatalf("initiate error: %v", err)
	}
	staleComplete := checkout.onComplete
	checkout.onDismiss()

	if err := handshake.Initiate(context.Background(), premiumNote()); err != nil {
		t.Fatalf("second initiate error: %v", err)
	}

	// The abandoned attempt's callback must not verify against the new order.
	staleComplete(Proof{OrderID: "order-1", PaymentID: "pay-stale", Signature: "sig"})
	if len(gateway.verifyCalls) != 0 {
		t.Fatalf("expected stale callback to be discarded")
	}
	if handshake.State() != StateCheckoutDelegated {
		t.Fatalf("expected new attempt to remain delegated, got %s", handshake.State())
	}
}

func TestVerificationAtMostOncePerCallback(t *testing.T) {
	gateway := &fakeGateway{}
	checkout := &fakeCheckout{}
	handshake := New(gateway, checkout, nil)

	if err := handshake.Initiate(context.Background(), premiumNote()); err != nil {
		t.Fatalf("initiate error: %v", err)
	}
	proof := Proof{OrderID: "order-1", PaymentID: "pay-1", Signature: "sig-1"}
	checkout.onComplete(proof)
	checkout.onComplete(proof)

	if len(gateway.verifyCalls) != 1 {
		t.Fatalf("expected one verification, got %d", len(gateway.verifyCalls))
	}
}

func TestVerifyFailureLeavesPurchaseRetryable(t *testing.T) {
	gateway := &fakeGateway{verifyErr: &api.APIError{Status: 400, Code: "verification_failed"}}
	checkout := &fakeCheckout{}
	handshake := New(gateway, checkout, nil)

	if err := handshake.Initiate(context.Background(), premiumNote()); err != nil {
		t.Fatalf("initiate error: %v", err)
	}
	checkout.onComplete(Proof{OrderID: "order-1", PaymentID: "pay-1", Signature: "bad"})
	if handshake.State() != StateVerifyFailed {
		t.Fatalf("expected verify_failed, got %s", handshake.State())
	}

	gateway.verifyErr = nil
	if err := handshake.Initiate(context.Background(), premiumNote()); err != nil {
		t.Fatalf("retry initiate error: %v", err)
	}
	if checkout.opens[1].ID != "order-2" {
		t.Fatalf("expected retry to start from scratch, got %s", checkout.opens[1].ID)
	}
}

func TestInitiateWhileDelegatedIsNoOp(t *testing.T) {
	gateway := &fakeGateway{}
	checkout := &fakeCheckout{}
	handshake := New(gateway, checkout, nil)

	if err := handshake.Initiate(context.Background(), premiumNote()); err != nil {
		t.Fatalf("initiate error: %v", err)
	}
	if err := handshake.Initiate(context.Background(), premiumNote()); err != ErrPurchaseInFlight {
		t.Fatalf("expected ErrPurchaseInFlight, got %v", err)
	}
	if gateway.orders != 1 {
		t.Fatalf("expected one order, got %d", gateway.orders)
	}
}

func TestBreakdownIsPresentationOnly(t *testing.T) {
	fee, total := Breakdown(100)
	if fee != 10 {
		t.Fatalf("expected 10%% fee, got %v", fee)
	}
	if total != 100 {
		t.Fatalf("expected total to equal price, got %v", total)
	}
}
