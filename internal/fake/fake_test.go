package fake

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/money"
)

func getInto(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func postInto(t *testing.T, url string, in, out any) {
	t.Helper()
	body, err := json.Marshal(in)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestCart(t *testing.T) {
	ctx := context.Background()
	c := NewCart()

	c.Add("user-1", checkout.CartItem{ProductID: "p1", Quantity: 1})
	c.Add("user-1", checkout.CartItem{ProductID: "p2", Quantity: 3})
	c.Add("user-1", checkout.CartItem{ProductID: "p1", Quantity: 2})

	items, err := c.Fetch(ctx, "user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []checkout.CartItem{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 3},
	}, items)

	other, err := c.Fetch(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, c.Clear(ctx, "user-1"))
	items, err = c.Fetch(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCatalogUnitPrice(t *testing.T) {
	c := DefaultCatalog()

	price, err := c.UnitPrice(context.Background(), "OLJCESPC7Z")
	require.NoError(t, err)
	assert.Equal(t, money.New("USD", 19, 990_000_000), price)

	_, err = c.UnitPrice(context.Background(), "missing")
	var pnf *checkout.ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Equal(t, "missing", pnf.ProductID)
}

func TestLoadCatalog_Gzip(t *testing.T) {
	products := []Product{
		{ID: "p1", Name: "Thing", PriceUsd: money.New("USD", 3, 500_000_000)},
		{ID: "p2", Name: "Other Thing", PriceUsd: money.New("USD", 12, 0)},
	}

	path := filepath.Join(t.TempDir(), "products.json.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := pgzip.NewWriter(f)
	require.NoError(t, json.NewEncoder(gz).Encode(products))
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, c.List(), 2)

	price, err := c.UnitPrice(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, money.New("USD", 12, 0), price)
}

func TestShipping(t *testing.T) {
	ctx := context.Background()
	s := NewShipping()

	cost, err := s.Quote(ctx, checkout.Address{City: "Anywhere"}, nil)
	require.NoError(t, err)
	assert.Equal(t, money.New("USD", 8, 990_000_000), cost)

	trackingID, err := s.Ship(ctx, checkout.Address{City: "Anywhere"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, trackingID)
	assert.True(t, s.Shipped(trackingID))
	assert.False(t, s.Shipped("nope"))
}

func TestPaymentCharge(t *testing.T) {
	p := NewPayment()
	card := checkout.CreditCardInfo{Number: "4432801561520454", CVV: 672, ExpirationYear: 2039, ExpirationMonth: 1}

	txID, err := p.Charge(context.Background(), money.New("USD", 25, 0), card)
	require.NoError(t, err)
	require.NotEmpty(t, txID)

	charges := p.Charges()
	require.Len(t, charges, 1)
	assert.Equal(t, txID, charges[0].ID)
	assert.Equal(t, money.New("USD", 25, 0), charges[0].Amount)
}

func TestPaymentCharge_ExpiredCard(t *testing.T) {
	p := NewPayment()
	p.now = func() time.Time { return time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC) }

	cases := []struct {
		name  string
		year  int32
		month int32
		ok    bool
	}{
		{"past year", 2025, 12, false},
		{"past month", 2026, 2, false},
		{"current month", 2026, 3, true},
		{"future", 2030, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := checkout.CreditCardInfo{Number: "4432801561520454", ExpirationYear: tc.year, ExpirationMonth: tc.month}
			_, err := p.Charge(context.Background(), money.New("USD", 1, 0), card)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, checkout.ErrPaymentFailed)
			}
		})
	}
}

func TestPaymentCharge_Invalid(t *testing.T) {
	p := NewPayment()

	_, err := p.Charge(context.Background(), money.New("USD", 1, -1), checkout.CreditCardInfo{Number: "4", ExpirationYear: 2039, ExpirationMonth: 1})
	assert.ErrorIs(t, err, checkout.ErrPaymentFailed)

	_, err = p.Charge(context.Background(), money.New("USD", 1, 0), checkout.CreditCardInfo{ExpirationYear: 2039, ExpirationMonth: 1})
	assert.ErrorIs(t, err, checkout.ErrPaymentFailed)
	assert.Empty(t, p.Charges())
}

func TestOrderStore(t *testing.T) {
	ctx := context.Background()
	s := NewOrderStore()

	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"o-middle", "o-oldest", "o-newest"} {
		offsets := []time.Duration{time.Hour, 0, 2 * time.Hour}
		require.NoError(t, s.Save(ctx, &checkout.OrderResult{
			OrderID:   id,
			UserID:    "user-1",
			CreatedAt: base.Add(offsets[i]),
		}))
	}
	require.NoError(t, s.Save(ctx, &checkout.OrderResult{OrderID: "o-other", UserID: "user-2", CreatedAt: base}))

	orders, err := s.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "o-newest", orders[0].OrderID)
	assert.Equal(t, "o-middle", orders[1].OrderID)
	assert.Equal(t, "o-oldest", orders[2].OrderID)

	none, err := s.FindByUser(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStackRouter(t *testing.T) {
	cart := NewCart()
	cart.Add("user-1", checkout.CartItem{ProductID: "OLJCESPC7Z", Quantity: 2})

	stack := NewStack(cart, DefaultCatalog(), NewShipping(), NewPayment())
	srv := httptest.NewServer(stack.Router())
	defer srv.Close()

	t.Run("get cart", func(t *testing.T) {
		var body struct {
			UserID string              `json:"userId"`
			Items  []checkout.CartItem `json:"items"`
		}
		getInto(t, srv.URL+"/api/cart/user-1", &body)
		assert.Equal(t, "user-1", body.UserID)
		assert.Equal(t, []checkout.CartItem{{ProductID: "OLJCESPC7Z", Quantity: 2}}, body.Items)
	})

	t.Run("get product", func(t *testing.T) {
		var p Product
		getInto(t, srv.URL+"/api/products/OLJCESPC7Z", &p)
		assert.Equal(t, "Sunglasses", p.Name)
		assert.Equal(t, money.New("USD", 19, 990_000_000), p.PriceUsd)
	})

	t.Run("quote and ship", func(t *testing.T) {
		var quote struct {
			CostUsd money.Money `json:"costUsd"`
		}
		postInto(t, srv.URL+"/api/shipping/quote", shippingRequest{}, &quote)
		assert.Equal(t, money.New("USD", 8, 990_000_000), quote.CostUsd)

		var shipped struct {
			TrackingID string `json:"trackingId"`
		}
		postInto(t, srv.URL+"/api/shipping/order", shippingRequest{}, &shipped)
		assert.True(t, stack.Shipping.Shipped(shipped.TrackingID))
	})

	t.Run("charge", func(t *testing.T) {
		var charged struct {
			TransactionID string `json:"transactionId"`
		}
		postInto(t, srv.URL+"/api/payment/charge", chargeRequest{
			Amount:     money.New("USD", 48, 970_000_000),
			CreditCard: checkout.CreditCardInfo{Number: "4432801561520454", ExpirationYear: 2039, ExpirationMonth: 1},
		}, &charged)
		assert.NotEmpty(t, charged.TransactionID)
	})
}
