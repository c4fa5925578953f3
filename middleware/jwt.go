package middleware

import (
	"fmt"
	"strings"
	"time"

	"yideng/config"
	"yideng/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateJWT generates a JWT token bound to the account's ledger address
func GenerateJWT(accountID uint, address ledger.Address, name string) (string, error) {
	claims := jwt.MapClaims{
		"accountId": accountID,
		"address":   address.String(),
		"name":      name,
		"iat":       time.Now().Unix(),                     // issued at
		"exp":       time.Now().Add(24 * time.Hour).Unix(), // expiry 24h
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
	}
	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["accountId"] == nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
	}

	raw, _ := claims["address"].(string)
	address, err := ledger.ParseAddress(raw)
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
	}

	// JWT numbers decode as float64
	accountID := claims["accountId"].(float64)
	c.Locals("accountId", uint(accountID))
	c.Locals("address", address)

	return c.Next()
}

// Caller returns the authenticated ledger address set by JWTMiddleware.
func Caller(c *fiber.Ctx) ledger.Address {
	address, _ := c.Locals("address").(ledger.Address)
	return address
}
