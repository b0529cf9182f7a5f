// Package shipping talks to the Shippo aggregator: address validation, rate
// shopping and label purchase. Shippo has no maintained Go SDK, so this is a
// thin JSON client over net/http; everything above the wire goes through the
// Client interface.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/amberlane-studio/amberlane-backend-go/config"
	"github.com/amberlane-studio/amberlane-backend-go/models"
)

type Address struct {
	Name        string `json:"name"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	Country     string `json:"country"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Residential bool   `json:"is_residential,omitempty"`
}

type Parcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

type ValidationResult struct {
	Address     Address
	Valid       bool
	Residential bool
	Messages    []string
}

type Rate struct {
	RateID        string  `json:"object_id"`
	Carrier       string  `json:"provider"`
	Service       string  `json:"servicelevel_name"`
	Amount        float64 `json:"-"`
	EstimatedDays int     `json:"estimated_days"`
}

type Label struct {
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
	Status         string `json:"status"`
}

type Client interface {
	ValidateAddress(ctx context.Context, a Address) (*ValidationResult, error)
	GetRates(ctx context.Context, from, to Address, parcel Parcel) ([]Rate, error)
	PurchaseLabel(ctx context.Context, rateID string) (*Label, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient returns a Client against the given API base (the real Shippo
// endpoint in production, an httptest server in tests).
func NewClient(baseURL, apiKey string) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *httpClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "ShippoToken "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("shippo %s: status %d: %s", path, resp.StatusCode, raw)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *httpClient) ValidateAddress(ctx context.Context, a Address) (*ValidationResult, error) {
	body := struct {
		Address
		Validate bool `json:"validate"`
	}{Address: a, Validate: true}

	var resp struct {
		Address
		ValidationResults struct {
			IsValid  bool `json:"is_valid"`
			Messages []struct {
				Text string `json:"text"`
			} `json:"messages"`
		} `json:"validation_results"`
	}
	if err := c.post(ctx, "/addresses", body, &resp); err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Address:     resp.Address,
		Valid:       resp.ValidationResults.IsValid,
		Residential: resp.Address.Residential,
	}
	for _, m := range resp.ValidationResults.Messages {
		result.Messages = append(result.Messages, m.Text)
	}
	return result, nil
}

func (c *httpClient) GetRates(ctx context.Context, from, to Address, parcel Parcel) ([]Rate, error) {
	body := map[string]interface{}{
		"address_from": from,
		"address_to":   to,
		"parcels":      []Parcel{parcel},
		"async":        false,
	}

	var resp struct {
		Rates []struct {
			Rate
			Amount string `json:"amount"`
		} `json:"rates"`
	}
	if err := c.post(ctx, "/shipments", body, &resp); err != nil {
		return nil, err
	}

	rates := make([]Rate, 0, len(resp.Rates))
	for _, r := range resp.Rates {
		amount, err := strconv.ParseFloat(r.Amount, 64)
		if err != nil {
			continue
		}
		rate := r.Rate
		rate.Amount = amount
		rates = append(rates, rate)
	}
	return rates, nil
}

func (c *httpClient) PurchaseLabel(ctx context.Context, rateID string) (*Label, error) {
	body := map[string]interface{}{
		"rate":            rateID,
		"label_file_type": "PDF",
		"async":           false,
	}

	var label Label
	if err := c.post(ctx, "/transactions", body, &label); err != nil {
		return nil, err
	}
	if label.Status != "" && label.Status != "SUCCESS" {
		return nil, fmt.Errorf("label purchase returned status %s", label.Status)
	}
	return &label, nil
}

// FromConfigAddress adapts the configured ship-from origin.
func FromConfigAddress(a config.ShipFromAddress) Address {
	return Address{
		Name:    a.Name,
		Street1: a.Street1,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
		Phone:   a.Phone,
		Email:   a.Email,
	}
}

// FromShipmentAddress adapts an order's destination sub-document.
func FromShipmentAddress(a *models.ShipmentAddress) Address {
	return Address{
		Name:    a.Name,
		Street1: a.Street1,
		Street2: a.Street2,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
		Phone:   a.Phone,
		Email:   a.Email,
	}
}

// DefaultParcel is the studio's standard jewelry shipper box.
var DefaultParcel = Parcel{
	Length:       "6",
	Width:        "4",
	Height:       "2",
	DistanceUnit: "in",
	Weight:       "6",
	MassUnit:     "oz",
}

var Default Client

func Init() {
	Default = NewClient(
		config.GetEnv("SHIPPO_API_URL", "https://api.goshippo.com"),
		config.GetEnv("SHIPPO_API_KEY", ""),
	)
}
