package adminValidator

import (
	"yideng/validators"

	"github.com/gofiber/fiber/v2"
)

type RoleRequest struct {
	Scope   string `json:"scope" query:"scope" validate:"required,oneof=token certificate market vault"`
	Role    string `json:"role" query:"role" validate:"required,oneof=OWNER ADMIN MINTER ORACLE"`
	Address string `json:"address" validate:"required,eth_addr"`
}

// RoleQuery validates ?scope=&role= for listing members
type RoleQuery struct {
	Scope string `json:"scope" query:"scope" validate:"required,oneof=token certificate market vault"`
	Role  string `json:"role" query:"role" validate:"required,oneof=OWNER ADMIN MINTER ORACLE"`
}

func Role() fiber.Handler {
	return validators.Body[RoleRequest]("validatedRole")
}

func Members() fiber.Handler {
	return validators.Query[RoleQuery]("validatedRoleQuery")
}
