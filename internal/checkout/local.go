// Package checkout presents the Razorpay widget through the user's browser.
// It serves a one-shot payment page on a loopback listener and relays the
// widget's completion or dismissal back through the purchase callbacks.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"math"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"notesportal/internal/payment"
)

// Browser serves the checkout page locally and opens it in the default
// browser. Each Open call binds a fresh listener and a fresh nonce, so a
// leftover tab from an earlier attempt cannot reach the current one.
type Browser struct {
	addr   string
	keyID  string
	launch func(url string) error
}

func NewBrowser(addr, keyID string) *Browser {
	return &Browser{addr: addr, keyID: keyID, launch: openInBrowser}
}

type proofPayload struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Open starts the loopback server, launches the browser, and returns. The
// purchase callbacks fire later from the page's HTTP requests, at most one
// of them per Open.
func (b *Browser) Open(order payment.Order, onComplete func(payment.Proof), onDismiss func()) error {
	listener, err := net.Listen("tcp", b.addr)
	if err != nil {
		return fmt.Errorf("checkout listener: %w", err)
	}

	nonce := uuid.NewString()
	server := &http.Server{}

	var once sync.Once
	settle := func(fn func()) {
		once.Do(func() {
			fn()
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				server.Shutdown(ctx)
			}()
		})
	}

	router := chi.NewRouter()
	router.Get("/pay/"+nonce, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		pageTemplate.Execute(w, pageData{
			KeyID:       b.keyID,
			OrderID:     order.ID,
			NoteTitle:   order.NoteTitle,
			AmountPaise: int64(math.Round(order.Amount * 100)),
		})
	})
	router.Post("/pay/"+nonce+"/complete", func(w http.ResponseWriter, r *http.Request) {
		var payload proofPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		settle(func() {
			onComplete(payment.Proof{OrderID: payload.OrderID, PaymentID: payload.PaymentID, Signature: payload.Signature})
		})
		w.WriteHeader(http.StatusNoContent)
	})
	router.Post("/pay/"+nonce+"/dismiss", func(w http.ResponseWriter, r *http.Request) {
		settle(onDismiss)
		w.WriteHeader(http.StatusNoContent)
	})
	server.Handler = router

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("checkout server: %v", err)
		}
	}()

	url := fmt.Sprintf("http://%s/pay/%s", listener.Addr().String(), nonce)
	if err := b.launch(url); err != nil {
		log.Printf("could not open browser, complete the payment at %s", url)
	}
	return nil
}

func openInBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

type pageData struct {
	KeyID       string
	OrderID     string
	NoteTitle   string
	AmountPaise int64
}

var pageTemplate = template.Must(template.New("checkout").Parse(`<!doctype html>
<html>
<head><title>Pay for {{.NoteTitle}}</title></head>
<body>
<p>Opening checkout for <strong>{{.NoteTitle}}</strong>&hellip;</p>
<script src="https://checkout.razorpay.com/v1/checkout.js"></script>
<script>
var rzp = new Razorpay({
	key: {{.KeyID}},
	order_id: {{.OrderID}},
	amount: {{.AmountPaise}},
	name: "NotesPortal",
	description: {{.NoteTitle}},
	handler: function (response) {
		fetch(window.location.pathname + "/complete", {
			method: "POST",
			headers: {"Content-Type": "application/json"},
			body: JSON.stringify(response)
		}).then(function () { document.body.innerHTML = "<p>Payment received. You can close this tab.</p>"; });
	},
	modal: {
		ondismiss: function () {
			fetch(window.location.pathname + "/dismiss", {method: "POST"}).then(function () {
				document.body.innerHTML = "<p>Payment cancelled. You can close this tab.</p>";
			});
		}
	}
});
rzp.open();
</script>
</body>
</html>
`))
