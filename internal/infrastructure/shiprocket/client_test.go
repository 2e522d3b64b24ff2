package shiprocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type providerStub struct {
	srv         *httptest.Server
	loginCalls  atomic.Int32
	createCalls atomic.Int32

	loginStatus  int
	createStatus int
	createBody   string
}

func newProviderStub(t *testing.T) *providerStub {
	t.Helper()
	p := &providerStub{
		loginStatus:  http.StatusOK,
		createStatus: http.StatusOK,
		createBody:   `{"order_id":555,"shipment_id":784512,"awb_code":"AWB-784512","tracking_url":"https://shiprocket.in/track/784512"}`,
	}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/auth/login"):
			p.loginCalls.Add(1)
			if p.loginStatus != http.StatusOK {
				w.WriteHeader(p.loginStatus)
				return
			}
			_, _ = w.Write([]byte(`{"token":"tok-1"}`))
		case strings.HasSuffix(r.URL.Path, "/orders/create/adhoc"):
			p.createCalls.Add(1)
			if auth := r.Header.Get("Authorization"); auth != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(p.createStatus)
			_, _ = w.Write([]byte(p.createBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *providerStub) client() *Client {
	return &Client{
		BaseURL:  p.srv.URL,
		Email:    "ops@example.com",
		Password: "secret",
		Log:      testLogger(),
	}
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:         "order-1",
		UserID:     "u1",
		TotalPrice: 320.50,
		Status:     domain.OrderPaid,
		OrderDate:  time.Now(),
		Address: domain.Address{
			RecipientName: "Asha Sen",
			Street:        "12 Lake Road",
			City:          "Kolkata",
			State:         "West Bengal",
			PostalCode:    "700029",
			PhoneNumber:   "9876543210",
		},
	}
}

func TestCreateShipmentSuccess(t *testing.T) {
	p := newProviderStub(t)
	c := p.client()

	res := c.CreateShipment(context.Background(), testOrder(), &domain.User{Email: "asha@example.com"})

	assert.Equal(t, "CREATED", res.Status)
	assert.Equal(t, "784512", res.ShipmentID)
	assert.Equal(t, "AWB-784512", res.Awb)
	assert.Equal(t, "https://shiprocket.in/track/784512", res.TrackingURL)
	assert.Equal(t, int32(1), p.loginCalls.Load())
}

func TestConcurrentShipmentsLoginOnce(t *testing.T) {
	p := newProviderStub(t)
	c := p.client()

	const workers = 12
	results := make([]ShipmentResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.CreateShipment(context.Background(), testOrder(), nil)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), p.loginCalls.Load())
	for _, res := range results {
		assert.Equal(t, "CREATED", res.Status)
	}
}

func TestCreateShipmentFallsBackWhenLoginFails(t *testing.T) {
	p := newProviderStub(t)
	p.loginStatus = http.StatusUnauthorized
	c := p.client()

	res := c.CreateShipment(context.Background(), testOrder(), nil)

	assert.Equal(t, "TEST_MODE", res.Status)
	assert.True(t, strings.HasPrefix(res.ShipmentID, "SR-"))
	assert.True(t, strings.HasPrefix(res.Awb, "AWB-"))
	assert.Contains(t, res.TrackingURL, "mock")
	assert.Equal(t, int32(0), p.createCalls.Load())
}

func TestCreateShipmentFallsBackOnProviderError(t *testing.T) {
	p := newProviderStub(t)
	p.createStatus = http.StatusInternalServerError
	c := p.client()

	res := c.CreateShipment(context.Background(), testOrder(), nil)

	assert.Equal(t, "TEST_MODE", res.Status)
	assert.NotEmpty(t, res.ShipmentID)
	assert.Equal(t, int32(1), p.createCalls.Load())
}

func TestExpiredTokenTriggersSingleRelogin(t *testing.T) {
	p := newProviderStub(t)
	c := p.client()
	c.token = "tok-stale"
	c.tokenExpiry = time.Now().Add(-time.Minute)

	c.ensureAuthenticated(context.Background())

	assert.Equal(t, int32(1), p.loginCalls.Load())
	assert.Equal(t, "tok-1", c.currentToken())
}

func TestLoginFailureKeepsPreviousToken(t *testing.T) {
	p := newProviderStub(t)
	p.loginStatus = http.StatusInternalServerError
	c := p.client()
	c.token = "tok-old"
	c.tokenExpiry = time.Now().Add(-time.Minute)

	c.ensureAuthenticated(context.Background())

	assert.Equal(t, "tok-old", c.currentToken())
}

func TestFreshTokenSkipsLogin(t *testing.T) {
	p := newProviderStub(t)
	c := p.client()
	c.token = "tok-fresh"
	c.tokenExpiry = time.Now().Add(time.Hour)

	c.ensureAuthenticated(context.Background())

	assert.Equal(t, int32(0), p.loginCalls.Load())
	assert.Equal(t, "tok-fresh", c.currentToken())
}

func TestBuildPayloadDefaultsIncompleteAddress(t *testing.T) {
	c := &Client{PickupLocation: "Primary Warehouse"}
	order := testOrder()
	order.Address = domain.Address{}

	payload := c.buildPayload(order, &domain.User{Firstname: "Asha", Lastname: "Sen", Email: "asha@example.com"})

	assert.Equal(t, "ORDER-order-1", payload.OrderID)
	assert.Equal(t, "Asha Sen", payload.BillingCustomerName)
	assert.Equal(t, "Unknown City", payload.BillingCity)
	assert.Equal(t, "000000", payload.BillingPincode)
	assert.Equal(t, "India", payload.BillingCountry)
	assert.Equal(t, "9999999999", payload.BillingPhone)
	assert.Equal(t, "Prepaid", payload.PaymentMethod)
	assert.True(t, payload.ShippingIsBilling)
	require.Len(t, payload.OrderItems, 1)
	assert.Equal(t, 320.50, payload.OrderItems[0].SellingPrice)
}

func TestListShipments(t *testing.T) {
	shipments := []ShipmentResult{{OrderID: "o1", ShipmentID: "s1", Status: "DELIVERED"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/auth/login") {
			_, _ = w.Write([]byte(`{"token":"tok-1"}`))
			return
		}
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(shipments)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Log: testLogger()}
	out := c.ListShipments(context.Background())
	require.Len(t, out, 1)
	assert.Equal(t, "s1", out[0].ShipmentID)
}

func TestListShipmentsEmptyOnProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/auth/login") {
			_, _ = w.Write([]byte(`{"token":"tok-1"}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Log: testLogger()}
	assert.Empty(t, c.ListShipments(context.Background()))
}
