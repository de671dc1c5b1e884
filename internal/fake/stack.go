package fake

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/money"
)

// Stack serves all four collaborators over HTTP using the same wire contracts
// the real services expose. Demo mode runs one in-process and points the
// checkout clients at it.
type Stack struct {
	Cart     *Cart
	Catalog  *Catalog
	Shipping *Shipping
	Payment  *Payment

	ln net.Listener
}

// NewStack wires a stack around the given fakes.
func NewStack(cart *Cart, catalog *Catalog, shipping *Shipping, payment *Payment) *Stack {
	return &Stack{Cart: cart, Catalog: catalog, Shipping: shipping, Payment: payment}
}

// Listen binds the stack to addr. An empty addr picks an ephemeral localhost
// port; Addr reports the bound address either way.
func (s *Stack) Listen(addr string) error {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	s.ln = ln
	return nil
}

// Addr returns the bound host:port. Only valid after Listen.
func (s *Stack) Addr() string {
	return s.ln.Addr().String()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Stack) Run(ctx context.Context) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(s.ln); !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve collaborators")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Router exposes the collaborator routes. Split out from Run so tests can
// mount it on httptest servers.
func (s *Stack) Router() chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/cart/{userID}", s.getCart)
		r.Post("/cart/{userID}", s.addToCart)
		r.Delete("/cart/{userID}", s.clearCart)
		r.Get("/products/{productID}", s.getProduct)
		r.Post("/shipping/quote", s.quoteShipping)
		r.Post("/shipping/order", s.shipOrder)
		r.Post("/payment/charge", s.charge)
	})
	return r
}

func (s *Stack) getCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	items, _ := s.Cart.Fetch(r.Context(), userID)
	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "items": items})
}

func (s *Stack) addToCart(w http.ResponseWriter, r *http.Request) {
	var item checkout.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if item.ProductID == "" || item.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "productId and a positive quantity are required"})
		return
	}
	s.Cart.Add(chi.URLParam(r, "userID"), item)
	w.WriteHeader(http.StatusOK)
}

func (s *Stack) clearCart(w http.ResponseWriter, r *http.Request) {
	_ = s.Cart.Clear(r.Context(), chi.URLParam(r, "userID"))
	w.WriteHeader(http.StatusOK)
}

func (s *Stack) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Catalog.Get(chi.URLParam(r, "productID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type shippingRequest struct {
	Address checkout.Address    `json:"address"`
	Items   []checkout.CartItem `json:"items"`
}

func (s *Stack) quoteShipping(w http.ResponseWriter, r *http.Request) {
	var req shippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	cost, _ := s.Shipping.Quote(r.Context(), req.Address, req.Items)
	writeJSON(w, http.StatusOK, map[string]money.Money{"costUsd": cost})
}

func (s *Stack) shipOrder(w http.ResponseWriter, r *http.Request) {
	var req shippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	trackingID, err := s.Shipping.Ship(r.Context(), req.Address, req.Items)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"trackingId": trackingID})
}

type chargeRequest struct {
	Amount     money.Money             `json:"amount"`
	CreditCard checkout.CreditCardInfo `json:"creditCard"`
}

func (s *Stack) charge(w http.ResponseWriter, r *http.Request) {
	var req chargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	txID, err := s.Payment.Charge(r.Context(), req.Amount, req.CreditCard)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"transactionId": txID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
