package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/amberlane-studio/amberlane-backend-go/config"
	"github.com/amberlane-studio/amberlane-backend-go/models"
)

type SessionClaims struct {
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func GenerateSessionToken(userID string, role models.Role) (string, error) {
	claims := &SessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetEnv("JWT_SECRET", "")))
}

func ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GetEnv("JWT_SECRET", "")), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// PaymentLinkClaims back the 7-day signed payment links. The order total in
// cents is embedded so a later price adjustment invalidates every
// outstanding link without a revocation list: verification compares the
// claim against the live total.
type PaymentLinkClaims struct {
	OrderID    string `json:"orderId"`
	TotalCents int64  `json:"totalCents"`
	jwt.RegisteredClaims
}

var ErrStaleTotal = errors.New("payment link no longer matches the order total")

func GeneratePaymentLinkToken(orderID string, totalCents int64) (string, error) {
	claims := &PaymentLinkClaims{
		OrderID:    orderID,
		TotalCents: totalCents,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   "payment-link",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetEnv("JWT_SECRET", "")))
}

// ValidatePaymentLinkToken checks signature and expiry, then that the token
// still matches the order it was minted for and the order's current total.
func ValidatePaymentLinkToken(tokenString, orderID string, totalCents int64) (*PaymentLinkClaims, error) {
	claims := &PaymentLinkClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GetEnv("JWT_SECRET", "")), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.OrderID != orderID {
		return nil, jwt.ErrTokenInvalidSubject
	}
	if claims.TotalCents != totalCents {
		return nil, ErrStaleTotal
	}
	return claims, nil
}
