package api

import (
	"context"
	"errors"
	"net/http"
	"time"
)

type Wallet struct {
	TotalEarnings    float64     `json:"totalEarnings"`
	CurrentBalance   float64     `json:"currentBalance"`
	PendingBalance   float64     `json:"pendingBalance"`
	TotalWithdrawals float64     `json:"totalWithdrawals"`
	BankAccount      BankAccount `json:"bankAccount"`
}

type BankAccount struct {
	AccountHolderName string `json:"accountHolderName"`
	AccountNumber     string `json:"accountNumber"`
	IFSCCode          string `json:"ifscCode"`
	BankName          string `json:"bankName"`
}

type Payment struct {
	ID          string    `json:"_id"`
	StudentID   string    `json:"studentId"`
	Note        NoteRef   `json:"noteId"`
	Amount      float64   `json:"amount"`
	PlatformFee float64   `json:"platformFee"`
	AdminProfit float64   `json:"adminProfit"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NoteRef is the populated note reference embedded in payment and purchase
// records.
type NoteRef struct {
	Title   string `json:"title"`
	Subject string `json:"subject"`
}

type Purchase struct {
	ID        string    `json:"_id"`
	Note      NoteRef   `json:"noteId"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateOrder asks the backend for a payment order for the note. A response
// with success=false is a business failure and surfaces as an *APIError so
// callers have a single failure path.
func (c *Client) CreateOrder(ctx context.Context, noteID string, amount float64) (string, error) {
	body := map[string]any{"noteId": noteID, "amount": amount}
	var out struct {
		Success bool   `json:"success"`
		OrderID string `json:"orderId"`
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/payment/create-order", nil, body, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", &APIError{Status: http.StatusOK, Code: "order_failed", Message: out.Message}
	}
	return out.OrderID, nil
}

// VerifyPayment forwards the checkout proof fields verbatim. One call per
// checkout callback; retries are the user's, never the client's.
func (c *Client) VerifyPayment(ctx context.Context, orderID, paymentID, signature, noteID string) error {
	body := map[string]string{
		"razorpayOrderId":   orderID,
		"razorpayPaymentId": paymentID,
		"razorpaySignature": signature,
		"noteId":            noteID,
	}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/payment/verify", nil, body, &out); err != nil {
		return err
	}
	if !out.Success {
		return &APIError{Status: http.StatusOK, Code: "verification_failed", Message: out.Message}
	}
	return nil
}

// AdminWallet retries once after a short delay on 404: the backend creates
// the wallet lazily on first access.
func (c *Client) AdminWallet(ctx context.Context) (Wallet, error) {
	wallet, err := c.adminWallet(ctx)
	var apiErr *APIError
	if err != nil && errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		select {
		case <-ctx.Done():
			return Wallet{}, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
		return c.adminWallet(ctx)
	}
	return wallet, err
}

func (c *Client) adminWallet(ctx context.Context) (Wallet, error) {
	var out struct {
		Success bool   `json:"success"`
		Wallet  Wallet `json:"wallet"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/payment/admin/wallet", nil, nil, &out); err != nil {
		return Wallet{}, err
	}
	return out.Wallet, nil
}

func (c *Client) PaymentHistory(ctx context.Context) ([]Payment, error) {
	var out struct {
		Payments []Payment `json:"payments"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/payment/admin/history", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Payments, nil
}

func (c *Client) StudentPurchases(ctx context.Context) ([]Purchase, error) {
	var out struct {
		Purchases []Purchase `json:"purchases"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/payment/student/purchases", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Purchases, nil
}

func (c *Client) UpdateBankDetails(ctx context.Context, account BankAccount) error {
	return c.doJSON(ctx, http.MethodPut, "/payment/admin/bank-details", nil, account, nil)
}

func (c *Client) RequestWithdrawal(ctx context.Context, amount float64) error {
	body := map[string]float64{"amount": amount}
	return c.doJSON(ctx, http.MethodPost, "/payment/admin/withdraw", nil, body, nil)
}
