//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go/modules/compose"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	baseURL   string
	collabURL string

	httpClient *http.Client
)

// Response types are defined locally so the tests stay black-box: they speak
// the wire contract only, with no imports from internal packages.

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type moneyJSON struct {
	CurrencyCode string `json:"currencyCode"`
	Units        int64  `json:"units"`
	Nanos        int32  `json:"nanos"`
}

type cartItemJSON struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type orderItemJSON struct {
	Item cartItemJSON `json:"item"`
	Cost moneyJSON    `json:"cost"`
}

type orderJSON struct {
	OrderID            string          `json:"orderId"`
	ShippingTrackingID string          `json:"shippingTrackingId"`
	ShippingCost       moneyJSON       `json:"shippingCost"`
	Items              []orderItemJSON `json:"items"`
	UserID             string          `json:"userId"`
	Email              string          `json:"email"`
	TotalCost          moneyJSON       `json:"totalCost"`
	CreatedAt          time.Time       `json:"createdAt"`
	UserCurrency       string          `json:"userCurrency"`
}

type placeOrderResponse struct {
	Order orderJSON `json:"order"`
}

type orderHistoryResponse struct {
	Orders []orderJSON `json:"orders"`
}

func checkoutRequest(userID string) map[string]any {
	return map[string]any{
		"userId":       userID,
		"userCurrency": "USD",
		"email":        userID + "@example.com",
		"address": map[string]any{
			"streetAddress": "1600 Amphitheatre Pkwy",
			"city":          "Mountain View",
			"state":         "CA",
			"country":       "USA",
			"zipCode":       94043,
		},
		"creditCard": map[string]any{
			"creditCardNumber":          "4432801561520454",
			"creditCardCvv":             672,
			"creditCardExpirationYear":  2039,
			"creditCardExpirationMonth": 1,
		},
	}
}

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dc, err := tc.NewDockerCompose("docker-compose.test.yml")
	if err != nil {
		log.Fatalf("compose init: %v", err)
	}

	// Start postgres + checkout, wait until the readiness probe passes.
	err = dc.
		WaitForService("checkout", wait.ForHTTP("/readyz").WithPort("8080/tcp")).
		Up(ctx, tc.Wait(true))
	if err != nil {
		log.Fatalf("compose up: %v", err)
	}

	container, err := dc.ServiceContainer(ctx, "checkout")
	if err != nil {
		log.Fatalf("checkout container: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("host: %v", err)
	}
	apiPort, err := container.MappedPort(ctx, "8080/tcp")
	if err != nil {
		log.Fatalf("api port: %v", err)
	}
	collabPort, err := container.MappedPort(ctx, "9090/tcp")
	if err != nil {
		log.Fatalf("collaborator port: %v", err)
	}

	baseURL = fmt.Sprintf("http://%s:%s", host, apiPort.Port())
	collabURL = fmt.Sprintf("http://%s:%s", host, collabPort.Port())
	httpClient = &http.Client{Timeout: 10 * time.Second}
	log.Printf("checkout at %s, collaborators at %s", baseURL, collabURL)

	result := m.Run()

	if err := dc.Down(context.Background(), tc.RemoveOrphans(true)); err != nil {
		log.Printf("compose down: %v", err)
	}
	return result
}

// fillCart seeds the embedded cart collaborator for userID.
func fillCart(t *testing.T, userID string, items ...cartItemJSON) {
	t.Helper()
	for _, item := range items {
		resp := doPostURL(t, collabURL+"/api/cart/"+userID, item)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("fill cart: expected 200, got %d", resp.StatusCode)
		}
	}
}

func doGet(t *testing.T, path string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, baseURL+path, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func doPost(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	return doPostURL(t, baseURL+path, body)
}

func doPostURL(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
