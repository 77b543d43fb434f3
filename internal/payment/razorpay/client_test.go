package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	c := New(Config{KeyID: "key", KeySecret: "secret"})

	assert.True(t, c.VerifySignature("order_1", "pay_1", sign("secret", "order_1", "pay_1")))
	assert.False(t, c.VerifySignature("order_1", "pay_1", sign("wrong", "order_1", "pay_1")))
	assert.False(t, c.VerifySignature("order_1", "pay_2", sign("secret", "order_1", "pay_1")))
	assert.False(t, c.VerifySignature("order_1", "pay_1", ""))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(50000), req["amount"])
		assert.Equal(t, "INR", req["currency"])

		json.NewEncoder(w).Encode(Order{
			ID:       "order_test",
			Amount:   50000,
			Currency: "INR",
			Receipt:  req["receipt"].(string),
			Status:   "created",
		})
	}))
	defer srv.Close()

	c := New(Config{KeyID: "key", KeySecret: "secret", BaseURL: srv.URL})

	order, err := c.CreateOrder(context.Background(), 50000, "INR", "rcpt_1")
	require.NoError(t, err)
	assert.Equal(t, "order_test", order.ID)
	assert.Equal(t, "created", order.Status)
}

func TestCreateOrder_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{KeyID: "key", KeySecret: "secret", BaseURL: srv.URL})

	_, err := c.CreateOrder(context.Background(), 100, "INR", "rcpt_2")
	assert.Error(t, err)
}
