package authValidator

import (
	"yideng/validators"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Address  string `json:"address" validate:"required,eth_addr"`
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Address  string `json:"address" validate:"required,eth_addr"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register validator middleware
func Register() fiber.Handler {
	return validators.Body[RegisterRequest]("validatedUser")
}

// Login validator middleware
func Login() fiber.Handler {
	return validators.Body[LoginRequest]("validatedLogin")
}
