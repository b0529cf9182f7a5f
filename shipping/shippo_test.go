package shipping_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberlane-studio/amberlane-backend-go/shipping"
)

func TestGetRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shipments", r.URL.Path)
		require.Equal(t, "ShippoToken test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "address_from")
		assert.Contains(t, body, "address_to")

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"rates": []map[string]interface{}{
				{"object_id": "rate-1", "provider": "USPS", "servicelevel_name": "Priority Mail", "amount": "8.50", "estimated_days": 2},
				{"object_id": "rate-2", "provider": "UPS", "servicelevel_name": "Ground", "amount": "11.20", "estimated_days": 4},
				{"object_id": "rate-bad", "provider": "FedEx", "servicelevel_name": "2Day", "amount": "oops", "estimated_days": 2},
			},
		})
	}))
	defer srv.Close()

	client := shipping.NewClient(srv.URL, "test-key")
	rates, err := client.GetRates(context.Background(),
		shipping.Address{City: "Portland"}, shipping.Address{City: "Austin"}, shipping.DefaultParcel)
	require.NoError(t, err)

	// the unparseable rate is dropped
	require.Len(t, rates, 2)
	assert.Equal(t, "rate-1", rates[0].RateID)
	assert.Equal(t, "USPS", rates[0].Carrier)
	assert.Equal(t, 8.50, rates[0].Amount)
	assert.Equal(t, 2, rates[0].EstimatedDays)
}

func TestPurchaseLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"tracking_number": "9400100000000000000000",
			"label_url":       "https://labels.example.com/label.pdf",
			"status":          "SUCCESS",
		})
	}))
	defer srv.Close()

	client := shipping.NewClient(srv.URL, "test-key")
	label, err := client.PurchaseLabel(context.Background(), "rate-1")
	require.NoError(t, err)
	assert.Equal(t, "9400100000000000000000", label.TrackingNumber)
	assert.Equal(t, "https://labels.example.com/label.pdf", label.LabelURL)
}

func TestPurchaseLabel_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ERROR"})
	}))
	defer srv.Close()

	client := shipping.NewClient(srv.URL, "test-key")
	_, err := client.PurchaseLabel(context.Background(), "rate-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERROR")
}

func TestValidateAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/addresses", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"street1":        "215 Clayton St",
			"city":           "San Francisco",
			"state":          "CA",
			"zip":            "94117",
			"country":        "US",
			"is_residential": true,
			"validation_results": map[string]interface{}{
				"is_valid": true,
				"messages": []map[string]string{{"text": "Street name standardized"}},
			},
		})
	}))
	defer srv.Close()

	client := shipping.NewClient(srv.URL, "test-key")
	result, err := client.ValidateAddress(context.Background(), shipping.Address{Street1: "215 clayton street"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.Residential)
	assert.Equal(t, "215 Clayton St", result.Address.Street1)
	assert.Equal(t, []string{"Street name standardized"}, result.Messages)
}

func TestUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := shipping.NewClient(srv.URL, "bad-key")
	_, err := client.GetRates(context.Background(), shipping.Address{}, shipping.Address{}, shipping.DefaultParcel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
