package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
)

// Client talks to the Razorpay orders API and verifies payment callback
// signatures locally.
type Client struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	HTTP      *http.Client
	Log       *logrus.Logger
}

// Intent is the gateway-side order created for a local order's amount.
type Intent struct {
	ID       string `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderReq struct {
	Amount         int    `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture bool   `json:"payment_capture"`
}

// PaiseFromRupees converts an INR amount to paise, rounding half-up.
// Callers must ensure two-decimal rounding is acceptable for the amount.
func PaiseFromRupees(amount float64) int {
	return int(math.Round(amount * 100))
}

// CreateIntent creates a gateway order for the given rupee amount. Any
// transport or API failure is reported as domain.ErrExternalService; the
// local order stays PENDING and the caller may retry.
func (c *Client) CreateIntent(ctx context.Context, amountInRupees float64, receiptID string) (Intent, error) {
	var out Intent
	body := createOrderReq{
		Amount:         PaiseFromRupees(amountInRupees),
		Currency:       "INR",
		Receipt:        receiptID,
		PaymentCapture: true,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return out, err
	}

	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = "https://api.razorpay.com/v1"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/orders", bytes.NewReader(raw))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return out, fmt.Errorf("%w: razorpay create order: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, fmt.Errorf("%w: razorpay returned %d: %s", domain.ErrExternalService, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return out, fmt.Errorf("%w: razorpay response decode: %v", domain.ErrExternalService, err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return out, fmt.Errorf("%w: razorpay response missing order id", domain.ErrExternalService)
	}
	if c.Log != nil {
		c.Log.Infof("Razorpay order created | ID: %s | Amount: %.2f INR | Receipt: %s", out.ID, amountInRupees, receiptID)
	}
	return out, nil
}

// VerifySignature checks the callback signature against
// HMAC-SHA256(secret, orderID + "|" + paymentID) rendered as lowercase
// hex. Deterministic, no network call. Returns false on any missing input
// or mismatch; never an error, and never logs the secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		if c.Log != nil {
			c.Log.Warn("Missing parameters for Razorpay signature verification")
		}
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	// Razorpay sends the signature as lowercase hex; the comparison is
	// byte-for-byte and constant time.
	ok := hmac.Equal([]byte(expected), []byte(signature))
	if c.Log != nil {
		if ok {
			c.Log.Infof("Razorpay signature verified for order %s", orderID)
		} else {
			c.Log.Errorf("Razorpay signature mismatch for order %s", orderID)
		}
	}
	return ok
}
