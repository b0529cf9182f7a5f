package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// LoadEnv loads environment variables from a .env file
func LoadEnv() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Error loading .env file")
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvInt retrieves an integer environment variable with a fallback
func GetEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// FreeShippingThreshold is the subtotal at or above which the customer-facing
// shipping cost is zeroed. Defaults to 100.00.
func FreeShippingThreshold() decimal.Decimal {
	raw := GetEnv("FREE_SHIPPING_THRESHOLD", "100.00")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NewFromInt(100)
	}
	return d
}

// ShipFromAddress is the default origin address used for rate shopping.
type ShipFromAddress struct {
	Name    string
	Street1 string
	City    string
	State   string
	Zip     string
	Country string
	Phone   string
	Email   string
}

func GetShipFromAddress() ShipFromAddress {
	return ShipFromAddress{
		Name:    GetEnv("SHIP_FROM_NAME", "Amberlane Studio"),
		Street1: GetEnv("SHIP_FROM_STREET", ""),
		City:    GetEnv("SHIP_FROM_CITY", ""),
		State:   GetEnv("SHIP_FROM_STATE", ""),
		Zip:     GetEnv("SHIP_FROM_ZIP", ""),
		Country: GetEnv("SHIP_FROM_COUNTRY", "US"),
		Phone:   GetEnv("SHIP_FROM_PHONE", ""),
		Email:   GetEnv("SHIP_FROM_EMAIL", ""),
	}
}
